package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/africastalking/atctl/internal/api"
	"github.com/africastalking/atctl/internal/cursor"
	"github.com/africastalking/atctl/internal/validation"
)

func newSMSCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sms",
		Aliases: []string{"messages", "msg"},
		Short:   "Send and fetch SMS",
	}

	cmd.AddCommand(newSMSSendCmd())
	cmd.AddCommand(newSMSFetchCmd())
	cmd.AddCommand(newSMSBulkCmd())

	return cmd
}

func newSMSSendCmd() *cobra.Command {
	var (
		to         string
		message    string
		from       string
		bulkMode   int
		enqueue    int
		keyword    string
		linkID     string
		retryHours int
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send an SMS to one or more numbers",
		Example: strings.TrimSpace(`
  # One recipient
  atctl sms send --to +254711000000 --message "Hello"

  # Several recipients from a sender ID, queued by the gateway
  atctl sms send --to +254711000000,+254722000000 --message "Hi" --from ACME --enqueue

  # Premium reply to an inbound message
  atctl sms send --to +254711000000 --message "Thanks" --from 12345 --keyword news --link-id LINK --retry-hours 2
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			recipients, err := validation.ValidatePhoneList(to)
			if err != nil {
				return invalidInput("to", err)
			}
			if err := validation.ValidateMessageContent(message); err != nil {
				return invalidInput("message", err)
			}

			msg := api.SMSMessage{
				To:                   recipients,
				Message:              message,
				From:                 stringPtrIfChanged(cmd, "from", from),
				BulkSMSMode:          intPtrIfChanged(cmd, "bulk-mode", bulkMode),
				Keyword:              stringPtrIfChanged(cmd, "keyword", keyword),
				LinkID:               stringPtrIfChanged(cmd, "link-id", linkID),
				Enqueue:              intPtrIfChanged(cmd, "enqueue", enqueue),
				RetryDurationInHours: intPtrIfChanged(cmd, "retry-hours", retryHours),
			}
			if msg.Enqueue != nil && *msg.Enqueue != 0 && *msg.Enqueue != 1 {
				return invalidInput("enqueue", fmt.Errorf("must be 0 or 1"))
			}

			if ok, err := previewRequest(cmd, api.OpSendMessage, api.ServiceMessaging, paramsOf(msg)); ok {
				return err
			}

			client, err := getClient()
			if err != nil {
				return err
			}
			resp, err := client.SendMessage(cmd.Context(), msg)
			if err != nil {
				return err
			}
			return printSMSResult(cmd, resp)
		}),
	}

	cmd.Flags().StringVarP(&to, "to", "t", "", "Recipient number(s), comma separated, in international format")
	cmd.Flags().StringVarP(&message, "message", "m", "", "Message text")
	cmd.Flags().StringVarP(&from, "from", "f", "", "Sender ID or short code")
	cmd.Flags().IntVar(&bulkMode, "bulk-mode", api.DefaultBulkSMSMode, "bulkSMSMode (1 bills the sender)")
	cmd.Flags().IntVar(&enqueue, "enqueue", 0, "Set enqueue to 1 (gateway queues the messages) or 0; bare --enqueue means 1")
	cmd.Flags().Lookup("enqueue").NoOptDefVal = "1"
	cmd.Flags().StringVar(&keyword, "keyword", "", "Premium keyword")
	cmd.Flags().StringVar(&linkID, "link-id", "", "Link id of the inbound message being answered")
	cmd.Flags().IntVar(&retryHours, "retry-hours", 0, "Hours to retry a premium message")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("message")

	return cmd
}

func printSMSResult(cmd *cobra.Command, resp *api.SMSResponse) error {
	if isJSON(cmd) {
		return printJSON(cmd, resp)
	}
	out := cmd.OutOrStdout()
	if resp.SMSMessageData.Message != "" {
		_, _ = fmt.Fprintln(out, resp.SMSMessageData.Message)
	}
	f := newFormatter(cmd)
	if len(resp.SMSMessageData.Recipients) == 0 {
		return nil
	}
	f.StartTable([]string{"NUMBER", "STATUS", "CODE", "COST", "MESSAGE ID"})
	for _, r := range resp.SMSMessageData.Recipients {
		f.Row(r.Number, r.Status, strconv.Itoa(r.StatusCode), r.Cost, r.MessageID)
	}
	return f.EndTable()
}

func newSMSFetchCmd() *cobra.Command {
	var (
		lastReceivedID string
		resume         bool
		all            bool
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch inbound messages",
		Long: strings.TrimSpace(`
Fetch messages received after --last-received-id (0 for the oldest page).

With --resume the last seen message id is loaded from and saved to the cursor
store, so repeated runs only return new messages. The store is a file in the
config directory, or Redis when AT_REDIS_URL is set.
`),
		Example: strings.TrimSpace(`
  atctl sms fetch
  atctl sms fetch --last-received-id 120
  atctl sms fetch --resume --all -o jsonl
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
			key := cursor.Key("sms", client.Username(), client.Environment().String())
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

			var messages []api.InboundMessage
			id := startID
			for {
				resp, err := client.FetchMessages(ctx, id)
				if err != nil {
					return err
				}
				page := resp.SMSMessageData
				messages = append(messages, page.Messages...)
				next := page.LastID()
				if !all || len(page.Messages) == 0 || next <= id {
					break
				}
				id = next
			}

			if store != nil {
				if last := (api.InboxData{Messages: messages}).LastID(); last > startID {
					if err := store.Save(ctx, key, last); err != nil {
						return err
					}
					log.Debug().Str("key", key).Int64("last_received_id", last).Msg("cursor saved")
				}
			}

			if messages == nil {
				messages = []api.InboundMessage{}
			}
			if isJSON(cmd) {
				return printJSON(cmd, messages)
			}
			f := newFormatter(cmd)
			if len(messages) == 0 {
				f.Empty("No new messages")
				return nil
			}
			f.StartTable([]string{"ID", "DATE", "FROM", "TO", "TEXT"})
			for _, m := range messages {
				f.Row(strconv.FormatInt(m.ID, 10), m.Date, m.From, m.To, m.Text)
			}
			return f.EndTable()
		}),
	}

	cmd.Flags().StringVar(&lastReceivedID, "last-received-id", "0", "Return messages with a greater id")
	cmd.Flags().BoolVar(&resume, "resume", false, "Continue from the saved cursor and save the new one")
	cmd.Flags().BoolVar(&all, "all", false, "Keep fetching until a page is empty")
	flagAlias(cmd.Flags(), "last-received-id", "since")

	return cmd
}
