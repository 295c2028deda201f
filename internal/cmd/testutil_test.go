package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/require"

	"github.com/africastalking/atctl/internal/config"
)

// captureStdout executes fn and returns what it wrote to stdout.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// captureStderr executes fn and returns what it wrote to stderr.
func captureStderr(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w

	fn()

	_ = w.Close()
	os.Stderr = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// withStdin replaces os.Stdin with input for the duration of fn.
func withStdin(t *testing.T, input string, fn func()) {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	_, _ = w.WriteString(input)
	_ = w.Close()

	old := os.Stdin
	os.Stdin = r
	defer func() {
		os.Stdin = old
		_ = r.Close()
	}()
	fn()
}

// useMemoryKeyring gives the test one in-memory keyring shared by every
// config call, so saved profiles can be read back.
func useMemoryKeyring(t *testing.T) keyring.Keyring {
	t.Helper()
	ring := keyring.NewArrayKeyring(nil)
	cleanup := config.SetOpenKeyring(func(keyring.Config) (keyring.Keyring, error) {
		return ring, nil
	})
	t.Cleanup(cleanup)
	return ring
}

// hostRewriter sends every request to target, keeping the path and query,
// so the fixed gateway hosts can be served by an httptest.Server.
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

// recordedRequest is what the fake gateway saw.
type recordedRequest struct {
	Method string
	Host   string
	Path   string
	Query  url.Values
	Header http.Header
	Body   string
}

func (r recordedRequest) Form(t *testing.T) url.Values {
	t.Helper()
	values, err := url.ParseQuery(r.Body)
	require.NoError(t, err)
	return values
}

func (r recordedRequest) JSON(t *testing.T) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(r.Body), &out))
	return out
}

// testGateway is a fake gateway reached through clientTransport.
type testGateway struct {
	server *httptest.Server

	mu       sync.Mutex
	requests []recordedRequest
}

func (g *testGateway) Requests() []recordedRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]recordedRequest(nil), g.requests...)
}

func (g *testGateway) Last(t *testing.T) recordedRequest {
	t.Helper()
	reqs := g.Requests()
	require.NotEmpty(t, reqs, "no request reached the gateway")
	return reqs[len(reqs)-1]
}

// setupGateway serves handler as every gateway host and exports sandbox
// credentials through the environment.
func setupGateway(t *testing.T, handler http.Handler) *testGateway {
	t.Helper()

	gw := &testGateway{}
	gw.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gw.mu.Lock()
		gw.requests = append(gw.requests, recordedRequest{
			Method: r.Method,
			Host:   r.Header.Get("X-Original-Host"),
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
			Body:   string(body),
		})
		gw.mu.Unlock()
		r.Body = io.NopCloser(bytes.NewReader(body))
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(gw.server.Close)

	target, err := url.Parse(gw.server.URL)
	require.NoError(t, err)
	clientTransport = hostRewriter{target: target, next: http.DefaultTransport}
	t.Cleanup(func() { clientTransport = nil })

	t.Setenv("AT_USERNAME", "sandbox")
	t.Setenv("AT_API_KEY", "test-key")
	t.Setenv("AT_ENVIRONMENT", "sandbox")
	t.Setenv("AT_CREDENTIALS_DIR", t.TempDir())
	t.Setenv("AT_OUTPUT", "text")
	return gw
}

// jsonResponse answers with a JSON body and status.
func jsonResponse(statusCode int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_, _ = w.Write([]byte(body))
	}
}

// routeHandler routes on "METHOD PATH" and answers 404 otherwise.
type routeHandler struct {
	routes map[string]http.HandlerFunc
}

func newRouteHandler() *routeHandler {
	return &routeHandler{routes: make(map[string]http.HandlerFunc)}
}

func (rh *routeHandler) On(method, path string, handler http.HandlerFunc) *routeHandler {
	rh.routes[method+" "+path] = handler
	return rh
}

func (rh *routeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if handler, ok := rh.routes[r.Method+" "+r.URL.Path]; ok {
		handler(w, r)
		return
	}
	http.NotFound(w, r)
}

// writeTempFile writes content to a file in a per-test directory.
func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := t.TempDir() + string(os.PathSeparator) + name
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func decodeJSON[T any](t *testing.T, output string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(output)), &v), "output: %s", output)
	return v
}
