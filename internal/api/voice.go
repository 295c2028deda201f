package api

import (
	"context"
	"net/url"
)

// The voice API answers every request with an errorMessage field and uses
// the literal "None" for success; see responseRules.

// Call places a call from one of the account's numbers to one or more
// comma separated numbers.
func (c *Client) Call(ctx context.Context, from, to string) ([]CallEntry, error) {
	params := url.Values{}
	params.Set("from", from)
	params.Set("to", to)

	var result []CallEntry
	if err := c.call(ctx, c.formRequest(OpCall, c.endpoints.VoiceCall, params), &result); err != nil {
		return nil, err
	}
	return result, nil
}

// GetQueuedCalls reports queued calls for the given numbers. A nil queueName
// covers every queue.
func (c *Client) GetQueuedCalls(ctx context.Context, phoneNumbers string, queueName *string) ([]QueuedCalls, error) {
	params := url.Values{}
	params.Set("phoneNumbers", phoneNumbers)
	setOptional(params, "queueName", queueName)

	var result []QueuedCalls
	if err := c.call(ctx, c.formRequest(OpQueueStatus, c.endpoints.VoiceQueueStatus, params), &result); err != nil {
		return nil, err
	}
	return result, nil
}

// UploadMediaFile registers a media file URL to be played during calls.
func (c *Client) UploadMediaFile(ctx context.Context, mediaURL string) (*MediaUploadResponse, error) {
	params := url.Values{}
	params.Set("url", mediaURL)

	var result MediaUploadResponse
	if err := c.call(ctx, c.formRequest(OpMediaUpload, c.endpoints.VoiceMediaUpload, params), &result); err != nil {
		return nil, err
	}
	return &result, nil
}
