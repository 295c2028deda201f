package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newUserCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "user",
		Aliases: []string{"balance"},
		Short:   "Show account data (balance)",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			client, err := getClient()
			if err != nil {
				return err
			}
			resp, err := client.GetUserData(cmd.Context())
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, resp)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Username:    %s\nEnvironment: %s\nBalance:     %s\n",
				client.Username(), client.Environment(), resp.UserData.Balance)
			return nil
		}),
	}
}
