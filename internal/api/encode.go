package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

const (
	apiKeyHeader    = "apiKey"
	contentTypeForm = "application/x-www-form-urlencoded"
	contentTypeJSON = "application/json"
)

// request is one logical operation ready to be encoded. Exactly one of
// query, form or jsonBody is set.
type request struct {
	op       Operation
	method   string
	url      string
	query    url.Values
	form     url.Values
	jsonBody map[string]any
}

// encodedRequest is the wire form of a request.
type encodedRequest struct {
	Method      string
	URL         string
	Header      http.Header
	ContentType string
	Body        []byte
}

func (c *Client) queryRequest(op Operation, endpoint string, params url.Values) *request {
	if params == nil {
		params = url.Values{}
	}
	params.Set("username", c.username)
	return &request{op: op, method: http.MethodGet, url: endpoint, query: params}
}

func (c *Client) formRequest(op Operation, endpoint string, params url.Values) *request {
	if params == nil {
		params = url.Values{}
	}
	params.Set("username", c.username)
	return &request{op: op, method: http.MethodPost, url: endpoint, form: params}
}

func (c *Client) jsonRequest(op Operation, endpoint string, body map[string]any) *request {
	if body == nil {
		body = map[string]any{}
	}
	body["username"] = c.username
	return &request{op: op, method: http.MethodPost, url: endpoint, jsonBody: body}
}

// encode renders the request into its wire form with the provider headers.
func (c *Client) encode(r *request) (*encodedRequest, error) {
	out := &encodedRequest{
		Method: r.method,
		URL:    r.url,
		Header: http.Header{},
	}
	out.Header.Set("Accept", "application/json")
	out.Header.Set(apiKeyHeader, c.apiKey)
	if c.userAgent != "" {
		out.Header.Set("User-Agent", c.userAgent)
	}

	switch {
	case r.query != nil:
		u, err := url.Parse(r.url)
		if err != nil {
			return nil, fmt.Errorf("invalid endpoint %q: %w", r.url, err)
		}
		u.RawQuery = r.query.Encode()
		out.URL = u.String()
	case r.form != nil:
		out.ContentType = contentTypeForm
		out.Body = []byte(r.form.Encode())
	case r.jsonBody != nil:
		data, err := json.Marshal(r.jsonBody)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		out.ContentType = contentTypeJSON
		out.Body = data
	}
	if out.ContentType != "" {
		out.Header.Set("Content-Type", out.ContentType)
	}
	return out, nil
}

func (e *encodedRequest) httpRequest(ctx context.Context) (*http.Request, error) {
	var body io.Reader
	if e.Body != nil {
		body = bytes.NewReader(e.Body)
	}
	req, err := http.NewRequestWithContext(ctx, e.Method, e.URL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header = e.Header.Clone()
	return req, nil
}

// jsonField renders a nested structure as a JSON string form value.
func jsonField(field string, v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode %s: %w", field, err)
	}
	return string(data), nil
}

func setOptional(params url.Values, key string, v *string) {
	if v != nil {
		params.Set(key, *v)
	}
}

func setOptionalInt(params url.Values, key string, v *int) {
	if v != nil {
		params.Set(key, strconv.Itoa(*v))
	}
}

func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}
