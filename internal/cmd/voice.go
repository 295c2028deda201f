package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/africastalking/atctl/internal/api"
	"github.com/africastalking/atctl/internal/validation"
)

func newVoiceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "voice",
		Aliases: []string{"vo"},
		Short:   "Place calls and manage voice queues",
	}

	cmd.AddCommand(newVoiceCallCmd())
	cmd.AddCommand(newVoiceQueueCmd())
	cmd.AddCommand(newVoiceUploadMediaCmd())

	return cmd
}

func newVoiceCallCmd() *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "call",
		Short: "Call one or more numbers",
		Example: strings.TrimSpace(`
  atctl voice call --from +254711082000 --to +254711000000
  atctl voice call --from +254711082000 --to +254711000000,+254722000000
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			if err := validation.ValidatePhone(from); err != nil {
				return invalidInput("from", err)
			}
			recipients, err := validation.ValidatePhoneList(to)
			if err != nil {
				return invalidInput("to", err)
			}
			from = strings.TrimSpace(from)

			if ok, err := previewRequest(cmd, api.OpCall, api.ServiceVoiceCall, map[string]any{"from": from, "to": recipients}); ok {
				return err
			}

			client, err := getClient()
			if err != nil {
				return err
			}
			entries, err := client.Call(cmd.Context(), from, recipients)
			if err != nil {
				return err
			}
			if entries == nil {
				entries = []api.CallEntry{}
			}
			if isJSON(cmd) {
				return printJSON(cmd, entries)
			}
			f := newFormatter(cmd)
			f.StartTable([]string{"PHONE", "STATUS", "SESSION ID"})
			for _, e := range entries {
				f.Row(e.PhoneNumber, e.Status, e.SessionID)
			}
			return f.EndTable()
		}),
	}

	cmd.Flags().StringVarP(&from, "from", "f", "", "One of your voice numbers")
	cmd.Flags().StringVarP(&to, "to", "t", "", "Number(s) to call, comma separated")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func newVoiceQueueCmd() *cobra.Command {
	var phoneNumbers, queueName string

	cmd := &cobra.Command{
		Use:     "queue",
		Aliases: []string{"queued"},
		Short:   "Show queued calls",
		Example: strings.TrimSpace(`
  atctl voice queue --phone-numbers +254711082000
  atctl voice queue --phone-numbers +254711082000 --queue-name support
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			numbers, err := validation.ValidatePhoneList(phoneNumbers)
			if err != nil {
				return invalidInput("phoneNumbers", err)
			}
			queue := stringPtrIfChanged(cmd, "queue-name", queueName)

			client, err := getClient()
			if err != nil {
				return err
			}
			entries, err := client.GetQueuedCalls(cmd.Context(), numbers, queue)
			if err != nil {
				return err
			}
			if entries == nil {
				entries = []api.QueuedCalls{}
			}
			if isJSON(cmd) {
				return printJSON(cmd, entries)
			}
			f := newFormatter(cmd)
			if len(entries) == 0 {
				f.Empty("No queued calls")
				return nil
			}
			f.StartTable([]string{"PHONE", "QUEUE", "CALLS"})
			for _, e := range entries {
				f.Row(e.PhoneNumber, e.QueueName, strconv.Itoa(e.NumCalls))
			}
			return f.EndTable()
		}),
	}

	cmd.Flags().StringVar(&phoneNumbers, "phone-numbers", "", "Voice number(s), comma separated")
	cmd.Flags().StringVar(&queueName, "queue-name", "", "Only this queue")
	_ = cmd.MarkFlagRequired("phone-numbers")

	return cmd
}

func newVoiceUploadMediaCmd() *cobra.Command {
	var mediaURL string

	cmd := &cobra.Command{
		Use:   "upload-media",
		Short: "Register a media file to play during calls",
		Example: strings.TrimSpace(`
  atctl voice upload-media --url https://example.com/greeting.mp3
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			mediaURL = strings.TrimSpace(mediaURL)
			if err := validation.ValidateMediaURL(mediaURL); err != nil {
				return invalidInput("url", err)
			}

			if ok, err := previewRequest(cmd, api.OpMediaUpload, api.ServiceVoiceMediaUpload, map[string]any{"url": mediaURL}); ok {
				return err
			}

			client, err := getClient()
			if err != nil {
				return err
			}
			resp, err := client.UploadMediaFile(cmd.Context(), mediaURL)
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, resp)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %s\n", mediaURL)
			return nil
		}),
	}

	cmd.Flags().StringVar(&mediaURL, "url", "", "Public http(s) URL of the media file")
	_ = cmd.MarkFlagRequired("url")

	return cmd
}
