package cmd

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/africastalking/atctl/internal/api"
	"github.com/africastalking/atctl/internal/validation"
)

// bulkRow is one CSV line of sms bulk. Line is 1-based.
type bulkRow struct {
	Line    int
	Phone   string
	Message string
}

// bulkRowResult is what sms bulk reports per row.
type bulkRowResult struct {
	Line      int    `json:"line"`
	Phone     string `json:"phone"`
	Status    string `json:"status"`
	MessageID string `json:"messageId,omitempty"`
	Cost      string `json:"cost,omitempty"`
	Error     string `json:"error,omitempty"`
}

// readBulkRows parses "phone[,message]" lines. A first line whose first
// column is "phone" is a header. Rows without a message use defaultMessage.
func readBulkRows(r io.Reader, defaultMessage string) ([]bulkRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	var rows []bulkRow
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid CSV: %w", err)
		}
		line, _ := reader.FieldPos(0)
		phone := strings.TrimSpace(record[0])
		if len(rows) == 0 && strings.EqualFold(phone, "phone") {
			continue
		}
		if phone == "" && len(record) == 1 {
			continue
		}

		message := defaultMessage
		if len(record) > 1 && strings.TrimSpace(record[1]) != "" {
			message = record[1]
		}
		if err := validation.ValidatePhone(phone); err != nil {
			return nil, invalidInput("line "+strconv.Itoa(line), err)
		}
		if err := validation.ValidateMessageContent(message); err != nil {
			return nil, invalidInput("line "+strconv.Itoa(line), err)
		}
		rows = append(rows, bulkRow{Line: line, Phone: phone, Message: message})
	}
	if len(rows) == 0 {
		return nil, invalidInput("file", errors.New("no recipients found"))
	}
	return rows, nil
}

func newSMSBulkCmd() *cobra.Command {
	var (
		file        string
		message     string
		from        string
		enqueue     bool
		concurrency int64
		progress    bool
	)

	cmd := &cobra.Command{
		Use:   "bulk",
		Short: "Send one SMS per CSV row",
		Long: strings.TrimSpace(`
Send one SMS per row of a CSV file with columns phone[,message]. Rows without
a message use --message. Every row is validated before anything is sent.

Requests run in parallel (--concurrency). A failed row does not stop the
others; the command exits non-zero when any row failed.
`),
		Example: strings.TrimSpace(`
  # Same text for everyone
  atctl sms bulk --file recipients.csv --message "Service restored"

  # Per-row messages, 10 requests in flight, JSON lines per row
  atctl sms bulk --file personalised.csv --concurrency 10 -o jsonl

  # From stdin
  cat recipients.csv | atctl sms bulk --file - --message "Hi"
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			if concurrency < 1 || concurrency > MaxConcurrency {
				return fmt.Errorf("--concurrency must be between 1 and %d", MaxConcurrency)
			}

			in := cmd.InOrStdin()
			if file != "-" {
				f, err := os.Open(file)
				if err != nil {
					return fmt.Errorf("failed to open --file: %w", err)
				}
				defer func() { _ = f.Close() }()
				in = f
			}
			rows, err := readBulkRows(in, message)
			if err != nil {
				return err
			}

			var fromPtr *string
			if from != "" {
				fromPtr = &from
			}
			var enqueuePtr *int
			if enqueue {
				one := 1
				enqueuePtr = &one
			}
			build := func(row bulkRow) api.SMSMessage {
				return api.SMSMessage{To: row.Phone, Message: row.Message, From: fromPtr, Enqueue: enqueuePtr}
			}

			preview := make([]map[string]any, 0, len(rows))
			for _, row := range rows {
				preview = append(preview, paramsOf(build(row)))
			}
			if ok, err := previewRequest(cmd, api.OpSendMessage, api.ServiceMessaging, map[string]any{
				"messages":    preview,
				"concurrency": concurrency,
			}); ok {
				return err
			}

			client, err := getClient()
			if err != nil {
				return err
			}

			var progressOut io.Writer
			if progress && !isJSON(cmd) && !flags.Quiet {
				progressOut = cmd.ErrOrStderr()
			}
			results := runBulk(cmd.Context(), rows, concurrency, progressOut, func(ctx context.Context, row bulkRow) (*api.SMSResponse, error) {
				return client.SendMessage(ctx, build(row))
			})

			report := make([]bulkRowResult, len(results))
			for i, r := range results {
				report[i] = rowResult(rows[i], r)
			}
			failed := 0
			for _, r := range report {
				if r.Error != "" {
					failed++
				}
			}

			if err := printBulkReport(cmd, report); err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d messages failed", failed, len(report))
			}
			return nil
		}),
	}

	cmd.Flags().StringVar(&file, "file", "", "CSV file with phone[,message] rows ('-' for stdin)")
	cmd.Flags().StringVarP(&message, "message", "m", "", "Message for rows without one")
	cmd.Flags().StringVarP(&from, "from", "f", "", "Sender ID or short code")
	cmd.Flags().BoolVar(&enqueue, "enqueue", false, "Let the gateway queue the messages")
	cmd.Flags().Int64Var(&concurrency, "concurrency", DefaultConcurrency, "Requests in flight")
	cmd.Flags().BoolVar(&progress, "progress", false, "Show progress on stderr")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// rowResult flattens a send outcome. A 2xx response can still carry a
// per-recipient failure status.
func rowResult(row bulkRow, r bulkResult[*api.SMSResponse]) bulkRowResult {
	out := bulkRowResult{Line: row.Line, Phone: row.Phone}
	if r.Err != nil {
		out.Status = "Failed"
		out.Error = r.Err.Error()
		return out
	}
	if r.Data == nil || len(r.Data.SMSMessageData.Recipients) == 0 {
		out.Status = "Failed"
		if r.Data != nil {
			out.Error = r.Data.SMSMessageData.Message
		}
		if out.Error == "" {
			out.Error = "no recipient in response"
		}
		return out
	}
	recipient := r.Data.SMSMessageData.Recipients[0]
	out.Status = recipient.Status
	out.MessageID = recipient.MessageID
	out.Cost = recipient.Cost
	if !smsRecipientAccepted(recipient.StatusCode) {
		out.Error = recipient.Status
	}
	return out
}

// smsRecipientAccepted reports whether a per-recipient status code means the
// message was taken (100 Processed, 101 Sent, 102 Queued).
func smsRecipientAccepted(code int) bool {
	return code >= 100 && code <= 102
}

func printBulkReport(cmd *cobra.Command, report []bulkRowResult) error {
	if isJSON(cmd) {
		return printJSON(cmd, report)
	}
	f := newFormatter(cmd)
	f.StartTable([]string{"LINE", "PHONE", "STATUS", "MESSAGE ID", "ERROR"})
	for _, r := range report {
		f.Row(strconv.Itoa(r.Line), r.Phone, r.Status, r.MessageID, r.Error)
	}
	return f.EndTable()
}
