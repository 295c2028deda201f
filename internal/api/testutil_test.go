package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
)

// stubDoer answers every request with a fixed status and body and records
// what it was sent.
type stubDoer struct {
	mu       sync.Mutex
	status   int
	body     string
	err      error
	requests []*http.Request
	bodies   []string
}

func (s *stubDoer) Do(req *http.Request) (*http.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var body string
	if req.Body != nil {
		data, _ := io.ReadAll(req.Body)
		body = string(data)
	}
	s.requests = append(s.requests, req)
	s.bodies = append(s.bodies, body)
	if s.err != nil {
		return nil, s.err
	}
	return &http.Response{
		StatusCode: s.status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(s.body)),
		Request:    req,
	}, nil
}

func (s *stubDoer) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func (s *stubDoer) lastForm(t *testing.T) url.Values {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.bodies) == 0 {
		t.Fatal("no request recorded")
	}
	values, err := url.ParseQuery(s.bodies[len(s.bodies)-1])
	if err != nil {
		t.Fatalf("request body is not form encoded: %v", err)
	}
	return values
}

func newStubClient(status int, body string) (*Client, *stubDoer) {
	doer := &stubDoer{status: status, body: body}
	return New("sandbox-user", "test-key", Sandbox, WithHTTPClient(doer)), doer
}

// hostRewriter sends every request to target, keeping path and query, so the
// fixed provider hosts can be served by an httptest.Server.
type hostRewriter struct {
	target *url.URL
	next   http.RoundTripper
}

func (h hostRewriter) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("X-Original-Host", req.URL.Host)
	clone.URL.Scheme = h.target.Scheme
	clone.URL.Host = h.target.Host
	clone.Host = h.target.Host
	return h.next.RoundTrip(clone)
}

func newServerClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	target, err := url.Parse(server.URL)
	if err != nil {
		t.Fatalf("parse server URL: %v", err)
	}
	return New("sandbox-user", "test-key", Sandbox, WithTransport(hostRewriter{target: target, next: http.DefaultTransport}))
}
