package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/africastalking/atctl/internal/resolve"
	"github.com/africastalking/atctl/internal/schema"
)

func newSchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "schema",
		Aliases: []string{"sc"},
		Short:   "Show request parameter schemas",
		Long:    "List gateway operations and show the JSON Schema of their request parameters",
		Example: strings.TrimSpace(`
  # List operations
  atctl schema list

  # Show the parameters of a B2C payment
  atctl schema show payments.b2c
`),
	}

	cmd.AddCommand(newSchemaListCmd())
	cmd.AddCommand(newSchemaShowCmd())

	return cmd
}

func newSchemaListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List operations with a schema",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			names := schema.List()

			if isJSON(cmd) {
				type summary struct {
					Operation   string `json:"operation"`
					Description string `json:"description"`
				}
				summaries := make([]summary, 0, len(names))
				for _, name := range names {
					e, _ := schema.Get(name)
					summaries = append(summaries, summary{Operation: name, Description: e.Description})
				}
				return printJSON(cmd, summaries)
			}

			w := newTabWriterFromCmd(cmd)
			_, _ = fmt.Fprintln(w, "OPERATION\tDESCRIPTION")
			for _, name := range names {
				e, _ := schema.Get(name)
				_, _ = fmt.Fprintf(w, "%s\t%s\n", name, e.Description)
			}
			return w.Flush()
		}),
	}
}

func newSchemaShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <operation>",
		Short: "Show the parameter schema of an operation",
		Long:  "Print the JSON Schema of an operation's request parameters. Close misspellings are corrected.",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			name, err := resolve.Canonicalize("operation", args[0], schema.List())
			if err != nil {
				return err
			}
			entry, err := schema.Get(name)
			if err != nil {
				return err
			}

			if isJSON(cmd) {
				return printJSON(cmd, entry.Schema)
			}
			data, err := json.MarshalIndent(entry.Schema, "", "  ")
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n\n%s\n", entry.Operation, entry.Description, data)
			return nil
		}),
	}
}
