package api

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/africastalking/atctl/internal/debug"
)

// send performs one round trip and returns the status code and body.
func (c *Client) send(ctx context.Context, r *request) (int, []byte, error) {
	enc, err := c.encode(r)
	if err != nil {
		return 0, nil, err
	}
	req, err := enc.httpRequest(ctx)
	if err != nil {
		return 0, nil, err
	}

	var requestID string
	start := time.Now()
	if debug.IsEnabled(ctx) {
		requestID = uuid.NewString()
		log.Debug().
			Str("request_id", requestID).
			Str("operation", string(r.op)).
			Str("method", enc.Method).
			Str("url", enc.URL).
			Str("content_type", enc.ContentType).
			Msg("request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if debug.IsEnabled(ctx) {
			log.Debug().Str("request_id", requestID).Err(err).Msg("request failed")
		}
		return 0, nil, &NetworkError{Method: enc.Method, URL: enc.URL, Err: err}
	}
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return 0, nil, &NetworkError{Method: enc.Method, URL: enc.URL, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if debug.IsEnabled(ctx) {
		log.Debug().
			Str("request_id", requestID).
			Int("status", resp.StatusCode).
			Dur("duration", time.Since(start)).
			Int("bytes", len(body)).
			Msg("response")
	}
	return resp.StatusCode, body, nil
}

// call sends r, interprets the response per the operation's rule and decodes
// the payload into out.
func (c *Client) call(ctx context.Context, r *request, out any) error {
	status, body, err := c.send(ctx, r)
	if err != nil {
		return err
	}
	payload, err := interpret(r.op, status, body)
	if err != nil {
		return err
	}
	return decodePayload(r.op, payload, out)
}
