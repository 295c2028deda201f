package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/africastalking/atctl/internal/api"
	"github.com/africastalking/atctl/internal/cursor"
	"github.com/africastalking/atctl/internal/validation"
)

func newSubscriptionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "subscriptions",
		Aliases: []string{"subscription", "subs"},
		Short:   "Manage premium SMS subscriptions",
	}

	cmd.AddCommand(newSubscriptionChangeCmd("create", "Subscribe a number to a short code and keyword", api.OpCreateSubscription, api.ServiceSubscriptionCreate))
	cmd.AddCommand(newSubscriptionChangeCmd("delete", "Unsubscribe a number from a short code and keyword", api.OpDeleteSubscription, api.ServiceSubscriptionDelete))
	cmd.AddCommand(newSubscriptionsListCmd())

	return cmd
}

// newSubscriptionChangeCmd builds create and delete, which differ only in
// the endpoint they call.
func newSubscriptionChangeCmd(use, short string, op api.Operation, service api.Service) *cobra.Command {
	var sub api.SubscriptionRequest

	cmd := &cobra.Command{
		Use:     use,
		Short:   short,
		Example: fmt.Sprintf("  atctl subscriptions %s --phone +254711000000 --short-code 12345 --keyword news", use),
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			if err := validation.ValidatePhone(sub.PhoneNumber); err != nil {
				return invalidInput("phoneNumber", err)
			}
			sub.PhoneNumber = strings.TrimSpace(sub.PhoneNumber)

			if ok, err := previewRequest(cmd, op, service, paramsOf(sub)); ok {
				return err
			}

			client, err := getClient()
			if err != nil {
				return err
			}
			call := client.CreateSubscription
			if op == api.OpDeleteSubscription {
				call = client.DeleteSubscription
			}
			result, err := call(cmd.Context(), sub)
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, result)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", result.Status, result.Description)
			return nil
		}),
	}

	cmd.Flags().StringVar(&sub.PhoneNumber, "phone", "", "Subscriber number in international format")
	cmd.Flags().StringVar(&sub.ShortCode, "short-code", "", "Premium short code")
	cmd.Flags().StringVar(&sub.Keyword, "keyword", "", "Premium keyword")
	_ = cmd.MarkFlagRequired("phone")
	_ = cmd.MarkFlagRequired("short-code")
	_ = cmd.MarkFlagRequired("keyword")

	return cmd
}

func newSubscriptionsListCmd() *cobra.Command {
	var (
		shortCode      string
		keyword        string
		lastReceivedID string
		resume         bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls", "fetch"},
		Short:   "List subscribers of a short code and keyword",
		Long: strings.TrimSpace(`
List subscribers with an id greater than --last-received-id. With --resume
the highest id seen is kept in the cursor store per short code and keyword.
`),
		Example: strings.TrimSpace(`
  atctl subscriptions list --short-code 12345 --keyword news
  atctl subscriptions list --short-code 12345 --keyword news --resume -o json
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			if resume && flagOrAliasChanged(cmd, "last-received-id") {
				return fmt.Errorf("--resume conflicts with --last-received-id")
			}
			startID, err := validation.ParseCursorID(lastReceivedID, "--last-received-id")
			if err != nil {
				return invalidInput("lastReceivedId", err)
			}

			client, err := getClient()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			var store cursor.Store
			key := cursor.Key("subscriptions", client.Username(), client.Environment().String(), shortCode, keyword)
			if resume {
				store, err = openCursorStore()
				if err != nil {
					return err
				}
				defer func() { _ = store.Close() }()
				if startID, err = store.Load(ctx, key); err != nil {
					return err
				}
			}

			subs, err := client.FetchSubscriptions(ctx, shortCode, keyword, startID)
			if err != nil {
				return err
			}
			if store != nil {
				var last int64
				for _, s := range subs {
					last = max(last, s.ID)
				}
				if last > startID {
					if err := store.Save(ctx, key, last); err != nil {
						return err
					}
				}
			}

			if subs == nil {
				subs = []api.Subscription{}
			}
			if isJSON(cmd) {
				return printJSON(cmd, subs)
			}
			f := newFormatter(cmd)
			if len(subs) == 0 {
				f.Empty("No subscribers found")
				return nil
			}
			f.StartTable([]string{"ID", "PHONE", "DATE"})
			for _, s := range subs {
				f.Row(strconv.FormatInt(s.ID, 10), s.PhoneNumber, s.Date)
			}
			return f.EndTable()
		}),
	}

	cmd.Flags().StringVar(&shortCode, "short-code", "", "Premium short code")
	cmd.Flags().StringVar(&keyword, "keyword", "", "Premium keyword")
	cmd.Flags().StringVar(&lastReceivedID, "last-received-id", "0", "Return subscribers with a greater id")
	cmd.Flags().BoolVar(&resume, "resume", false, "Continue from the saved cursor and save the new one")
	flagAlias(cmd.Flags(), "last-received-id", "since")
	_ = cmd.MarkFlagRequired("short-code")
	_ = cmd.MarkFlagRequired("keyword")

	return cmd
}
