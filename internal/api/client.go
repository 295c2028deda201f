package api

import (
	"crypto/tls"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single provider request when no other timeout is set.
const DefaultTimeout = 30 * time.Second

// Doer performs a single HTTP round trip. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is the gateway client for the provider API.
//
// All fields are set by New and options, and never change afterwards, so a
// Client may be shared by concurrent callers as long as its Doer is safe for
// concurrent use (*http.Client is).
type Client struct {
	username  string
	apiKey    string
	env       Environment
	endpoints Endpoints
	http      Doer
	userAgent string
}

// Option configures a Client in New.
type Option func(*Client)

// WithHTTPClient replaces the transport used for every request.
func WithHTTPClient(d Doer) Option {
	return func(c *Client) {
		if d != nil {
			c.http = d
		}
	}
}

// WithTimeout sets the request timeout of the default transport. It has no
// effect when a custom Doer is supplied with WithHTTPClient.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if hc, ok := c.http.(*http.Client); ok && d > 0 {
			hc.Timeout = d
		}
	}
}

// WithTransport sets the round tripper of the default transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		if hc, ok := c.http.(*http.Client); ok && rt != nil {
			hc.Transport = rt
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New creates a gateway client for the given credentials and environment.
// Credentials are not validated locally; the provider rejects bad ones.
func New(username, apiKey string, env Environment, opts ...Option) *Client {
	c := &Client{
		username:  username,
		apiKey:    apiKey,
		env:       env,
		endpoints: ResolveEndpoints(env),
		http: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: defaultTransport(),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func defaultTransport() http.RoundTripper {
	base, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return http.DefaultTransport
	}
	transport := base.Clone()
	if transport.TLSClientConfig == nil {
		transport.TLSClientConfig = &tls.Config{}
	} else {
		transport.TLSClientConfig = transport.TLSClientConfig.Clone()
	}
	transport.TLSClientConfig.MinVersion = tls.VersionTLS12
	return transport
}

// Username returns the account username the client injects into requests.
func (c *Client) Username() string { return c.username }

// Environment returns the environment the client was built for.
func (c *Client) Environment() Environment { return c.env }

// Endpoints returns the resolved endpoint table.
func (c *Client) Endpoints() Endpoints { return c.endpoints }
