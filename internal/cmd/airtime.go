package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/africastalking/atctl/internal/api"
	"github.com/africastalking/atctl/internal/resolve"
	"github.com/africastalking/atctl/internal/validation"
)

func newAirtimeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "airtime",
		Aliases: []string{"at"},
		Short:   "Send airtime",
	}
	cmd.AddCommand(newAirtimeSendCmd())
	return cmd
}

// parseAirtimeRecipient parses "+254711000000=KES 100". The currency code
// is canonicalised and the amount must be a positive number.
func parseAirtimeRecipient(s string) (api.AirtimeRecipient, error) {
	phone, amount, ok := strings.Cut(s, "=")
	if !ok {
		return api.AirtimeRecipient{}, fmt.Errorf("invalid recipient %q: must be PHONE=CURRENCY AMOUNT", s)
	}
	phone = strings.TrimSpace(phone)
	if err := validation.ValidatePhone(phone); err != nil {
		return api.AirtimeRecipient{}, err
	}

	fields := strings.Fields(amount)
	if len(fields) != 2 {
		return api.AirtimeRecipient{}, fmt.Errorf("invalid amount %q for %s: must be CURRENCY AMOUNT, e.g. KES 100", strings.TrimSpace(amount), phone)
	}
	currency, err := resolve.Currency(fields[0])
	if err != nil {
		return api.AirtimeRecipient{}, err
	}
	value, err := strconv.ParseFloat(fields[1], 64)
	if err != nil || value <= 0 {
		return api.AirtimeRecipient{}, fmt.Errorf("invalid amount %q for %s: must be a positive number", fields[1], phone)
	}
	return api.AirtimeRecipient{PhoneNumber: phone, Amount: currency + " " + fields[1]}, nil
}

func newAirtimeSendCmd() *cobra.Command {
	var recipients []string

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Top up one or more numbers",
		Example: strings.TrimSpace(`
  atctl airtime send --recipient "+254711000000=KES 100"
  atctl airtime send -r "+254711000000=KES 50" -r "+256772000000=UGX 1000"
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			parsed := make([]api.AirtimeRecipient, 0, len(recipients))
			for _, r := range recipients {
				recipient, err := parseAirtimeRecipient(r)
				if err != nil {
					return invalidInput("recipients", err)
				}
				parsed = append(parsed, recipient)
			}

			if ok, err := previewRequest(cmd, api.OpSendAirtime, api.ServiceAirtime, map[string]any{"recipients": parsed}); ok {
				return err
			}

			client, err := getClient()
			if err != nil {
				return err
			}
			results, err := client.SendAirtime(cmd.Context(), parsed)
			if err != nil {
				return err
			}

			if isJSON(cmd) {
				return printJSON(cmd, results)
			}
			f := newFormatter(cmd)
			f.StartTable([]string{"PHONE", "AMOUNT", "DISCOUNT", "STATUS", "REQUEST ID", "ERROR"})
			for _, r := range results {
				errMsg := r.ErrorMessage
				if errMsg == "None" {
					errMsg = ""
				}
				f.Row(r.PhoneNumber, r.Amount, r.Discount, r.Status, r.RequestID, errMsg)
			}
			return f.EndTable()
		}),
	}

	cmd.Flags().StringArrayVarP(&recipients, "recipient", "r", nil, "PHONE=CURRENCY AMOUNT (repeatable)")
	_ = cmd.MarkFlagRequired("recipient")

	return cmd
}
