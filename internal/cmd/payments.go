package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/africastalking/atctl/internal/api"
	"github.com/africastalking/atctl/internal/resolve"
	"github.com/africastalking/atctl/internal/validation"
)

func newPaymentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "payments",
		Aliases: []string{"pay"},
		Short:   "Mobile checkout and business payments",
		Long: strings.TrimSpace(`
Mobile payments. Provider names, transfer types, B2C reasons and currency
codes are matched case-insensitively. A partial value is completed only when
one known value matches it ("buygoods" becomes BusinessBuyGoods); "business"
matches several transfer types and is rejected with the candidates. Values
that match nothing are sent as given.
`),
	}

	cmd.AddCommand(newPaymentsCheckoutCmd())
	cmd.AddCommand(newPaymentsB2BCmd())
	cmd.AddCommand(newPaymentsB2CCmd())

	return cmd
}

func validateAmount(amount float64) error {
	if amount <= 0 {
		return invalidInput("amount", fmt.Errorf("must be greater than 0"))
	}
	return nil
}

func newPaymentsCheckoutCmd() *cobra.Command {
	var (
		req      api.CheckoutRequest
		metadata []string
	)

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Ask a subscriber to pay from their phone",
		Example: strings.TrimSpace(`
  atctl payments checkout --product Shop --phone +254711000000 --currency KES --amount 250
  atctl payments checkout --product Shop --phone +254711000000 --currency kes --amount 250 --metadata order=42
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			if err := validation.ValidatePhone(req.PhoneNumber); err != nil {
				return invalidInput("phoneNumber", err)
			}
			req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
			if err := validateAmount(req.Amount); err != nil {
				return err
			}
			currency, err := resolve.Currency(req.CurrencyCode)
			if err != nil {
				return err
			}
			req.CurrencyCode = currency
			if req.Metadata, err = parseKeyValues("metadata", metadata); err != nil {
				return err
			}

			if ok, err := previewRequest(cmd, api.OpCheckout, api.ServiceCheckout, paramsOf(req)); ok {
				return err
			}

			client, err := getClient()
			if err != nil {
				return err
			}
			entries, err := client.InitMobilePaymentCheckout(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printPaymentEntries(cmd, entries)
		}),
	}

	cmd.Flags().StringVar(&req.ProductName, "product", "", "Payment product name")
	cmd.Flags().StringVar(&req.PhoneNumber, "phone", "", "Subscriber number in international format")
	cmd.Flags().StringVar(&req.CurrencyCode, "currency", "", "ISO currency code, e.g. KES")
	cmd.Flags().Float64Var(&req.Amount, "amount", 0, "Amount to charge")
	cmd.Flags().StringVar(&req.ProviderChannel, "provider-channel", "", "Provider channel (paybill or till)")
	cmd.Flags().StringArrayVar(&metadata, "metadata", nil, "key=value metadata (repeatable)")
	for _, name := range []string{"product", "phone", "currency", "amount"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func newPaymentsB2BCmd() *cobra.Command {
	var (
		req      api.B2BRequest
		metadata []string
	)

	cmd := &cobra.Command{
		Use:   "b2b",
		Short: "Pay another business",
		Example: strings.TrimSpace(`
  atctl payments b2b --product Shop --provider mpesa --transfer-type buygoods \
    --destination-channel 5678 --destination-account acme --currency KES --amount 1500
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			var err error
			pd := &req.ProviderData
			// Empty provider data is left empty; the client rejects it by name.
			if pd.Provider != "" {
				if pd.Provider, err = resolve.Provider(pd.Provider); err != nil {
					return err
				}
			}
			if pd.TransferType != "" {
				if pd.TransferType, err = resolve.TransferType(pd.TransferType); err != nil {
					return err
				}
			}
			if err := pd.Validate(); err != nil {
				return err
			}
			if err := validateAmount(req.Amount); err != nil {
				return err
			}
			if req.CurrencyCode, err = resolve.Currency(req.CurrencyCode); err != nil {
				return err
			}
			if req.Metadata, err = parseKeyValues("metadata", metadata); err != nil {
				return err
			}

			if ok, err := previewRequest(cmd, api.OpB2B, api.ServiceB2B, paramsOf(req)); ok {
				return err
			}

			client, err := getClient()
			if err != nil {
				return err
			}
			resp, err := client.MobilePaymentB2BRequest(cmd.Context(), req)
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, resp)
			}
			w := newTabWriterFromCmd(cmd)
			_, _ = fmt.Fprintf(w, "Status:\t%s\n", resp.Status)
			if resp.TransactionID != "" {
				_, _ = fmt.Fprintf(w, "Transaction:\t%s\n", resp.TransactionID)
			}
			if resp.TransactionFee != "" {
				_, _ = fmt.Fprintf(w, "Fee:\t%s\n", resp.TransactionFee)
			}
			if resp.ErrorMessage != "" {
				_, _ = fmt.Fprintf(w, "Error:\t%s\n", resp.ErrorMessage)
			}
			return w.Flush()
		}),
	}

	cmd.Flags().StringVar(&req.ProductName, "product", "", "Payment product name")
	cmd.Flags().StringVar(&req.ProviderData.Provider, "provider", "", "Provider, e.g. Mpesa or Athena")
	cmd.Flags().StringVar(&req.ProviderData.TransferType, "transfer-type", "", "BusinessBuyGoods, BusinessPayBill, DisburseFundsToBusiness or BusinessToBusinessTransfer")
	cmd.Flags().StringVar(&req.ProviderData.DestinationChannel, "destination-channel", "", "Receiving paybill or till number")
	cmd.Flags().StringVar(&req.ProviderData.DestinationAccount, "destination-account", "", "Receiving account name")
	cmd.Flags().StringVar(&req.CurrencyCode, "currency", "", "ISO currency code, e.g. KES")
	cmd.Flags().Float64Var(&req.Amount, "amount", 0, "Amount to pay")
	cmd.Flags().StringArrayVar(&metadata, "metadata", nil, "key=value metadata (repeatable)")
	for _, name := range []string{"product", "currency", "amount"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

// readB2CRecipients decodes a JSON array of recipients and canonicalises
// their enum values.
func readB2CRecipients(r io.Reader) ([]api.B2CRecipient, error) {
	var recipients []api.B2CRecipient
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&recipients); err != nil {
		return nil, fmt.Errorf("invalid recipients file: %w", err)
	}
	if len(recipients) == 0 {
		return nil, invalidInput("recipients", fmt.Errorf("no recipients found"))
	}
	for i := range recipients {
		rec := &recipients[i]
		field := fmt.Sprintf("recipients[%d]", i)
		if err := validation.ValidatePhone(rec.PhoneNumber); err != nil {
			return nil, invalidInput(field, err)
		}
		if rec.Amount <= 0 {
			return nil, invalidInput(field, fmt.Errorf("amount must be greater than 0"))
		}
		var err error
		if rec.CurrencyCode, err = resolve.Currency(rec.CurrencyCode); err != nil {
			return nil, err
		}
		if rec.Reason != "" {
			if rec.Reason, err = resolve.B2CReason(rec.Reason); err != nil {
				return nil, err
			}
		}
	}
	return recipients, nil
}

func newPaymentsB2CCmd() *cobra.Command {
	var product, file string

	cmd := &cobra.Command{
		Use:   "b2c",
		Short: "Pay mobile subscribers",
		Long: strings.TrimSpace(fmt.Sprintf(`
Pay up to %d mobile subscribers in one request. --recipients-file is a JSON
array of objects with name, phoneNumber, currencyCode, amount and the
optional reason and metadata. See: atctl schema show payments.b2c
`, api.MaxB2CRecipients)),
		Example: strings.TrimSpace(`
  atctl payments b2c --product Payroll --recipients-file staff.json
  jq '.staff' export.json | atctl payments b2c --product Payroll --recipients-file -
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			in := cmd.InOrStdin()
			if file != "-" {
				f, err := os.Open(file)
				if err != nil {
					return fmt.Errorf("failed to open --recipients-file: %w", err)
				}
				defer func() { _ = f.Close() }()
				in = f
			}
			recipients, err := readB2CRecipients(in)
			if err != nil {
				return err
			}
			req := api.B2CRequest{ProductName: product, Recipients: recipients}

			var warnings []string
			if n := len(recipients); n > api.MaxB2CRecipients {
				warnings = append(warnings, fmt.Sprintf("%d recipients; the gateway accepts at most %d per request", n, api.MaxB2CRecipients))
			}
			if ok, err := previewRequest(cmd, api.OpB2C, api.ServiceB2C, paramsOf(req), warnings...); ok {
				return err
			}

			client, err := getClient()
			if err != nil {
				return err
			}
			entries, err := client.MobilePaymentB2CRequest(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printPaymentEntries(cmd, entries)
		}),
	}

	cmd.Flags().StringVar(&product, "product", "", "Payment product name")
	cmd.Flags().StringVar(&file, "recipients-file", "", "JSON file with the recipients ('-' for stdin)")
	_ = cmd.MarkFlagRequired("product")
	_ = cmd.MarkFlagRequired("recipients-file")

	return cmd
}

func printPaymentEntries(cmd *cobra.Command, entries []api.PaymentEntry) error {
	if isJSON(cmd) {
		return printJSON(cmd, entries)
	}
	f := newFormatter(cmd)
	f.StartTable([]string{"PHONE", "STATUS", "PROVIDER", "VALUE", "TRANSACTION", "ERROR"})
	for _, e := range entries {
		f.Row(e.PhoneNumber, e.Status, e.Provider, e.Value, e.TransactionID, e.ErrorMessage)
	}
	return f.EndTable()
}
