package api

import (
	"context"
	"net/url"
	"strconv"
)

// DefaultBulkSMSMode is sent when SMSMessage.BulkSMSMode is nil.
const DefaultBulkSMSMode = 1

// SMSMessage is an outbound message. Nil optional fields are left out of the
// request entirely.
type SMSMessage struct {
	// To is one number or a comma separated list.
	To      string `json:"to" jsonschema_description:"Recipient number(s) in international format, comma separated"`
	Message string `json:"message"`

	From                 *string `json:"from,omitempty" jsonschema_description:"Sender ID or short code"`
	BulkSMSMode          *int    `json:"bulkSMSMode,omitempty" jsonschema:"enum=0,enum=1"`
	Enqueue              *int    `json:"enqueue,omitempty" jsonschema:"enum=0,enum=1"`
	Keyword              *string `json:"keyword,omitempty"`
	LinkID               *string `json:"linkId,omitempty"`
	RetryDurationInHours *int    `json:"retryDurationInHours,omitempty"`
}

func (m SMSMessage) params() url.Values {
	params := url.Values{}
	params.Set("to", m.To)
	params.Set("message", m.Message)
	bulk := DefaultBulkSMSMode
	if m.BulkSMSMode != nil {
		bulk = *m.BulkSMSMode
	}
	params.Set("bulkSMSMode", strconv.Itoa(bulk))
	setOptional(params, "from", m.From)
	setOptionalInt(params, "enqueue", m.Enqueue)
	setOptional(params, "keyword", m.Keyword)
	setOptional(params, "linkId", m.LinkID)
	setOptionalInt(params, "retryDurationInHours", m.RetryDurationInHours)
	return params
}

// SendMessage sends an SMS. The body is returned whatever the status code;
// per-recipient outcomes are in SMSMessageData.Recipients.
func (c *Client) SendMessage(ctx context.Context, msg SMSMessage) (*SMSResponse, error) {
	var result SMSResponse
	if err := c.call(ctx, c.formRequest(OpSendMessage, c.endpoints.Messaging, msg.params()), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// FetchMessages fetches inbound messages received after lastReceivedID. The
// provider returns at most 100 messages per call; pass 0 on the first call.
func (c *Client) FetchMessages(ctx context.Context, lastReceivedID int64) (*InboxResponse, error) {
	params := url.Values{}
	params.Set("lastReceivedId", strconv.FormatInt(lastReceivedID, 10))

	var result InboxResponse
	if err := c.call(ctx, c.queryRequest(OpFetchMessages, c.endpoints.Messaging, params), &result); err != nil {
		return nil, err
	}
	return &result, nil
}
