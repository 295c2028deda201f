package cmd

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/africastalking/atctl/internal/api"
	"github.com/africastalking/atctl/internal/config"
	"github.com/africastalking/atctl/internal/cursor"
)

// clientTransport, when set, replaces the HTTP transport of every client.
var clientTransport http.RoundTripper

type clientFactory struct {
	timeout     time.Duration
	userAgent   string
	profile     string
	environment string
}

func newClientFactory() *clientFactory {
	return &clientFactory{
		timeout:     flags.Timeout,
		userAgent:   fmt.Sprintf("atctl/%s", version),
		profile:     flags.Profile,
		environment: flags.Environment,
	}
}

// resolve returns credentials and the strictly parsed environment.
func (f *clientFactory) resolve() (config.ClientConfig, api.Environment, error) {
	cfg, err := config.ResolveClientConfig(f.profile, f.environment)
	if err != nil {
		return config.ClientConfig{}, api.Production, err
	}
	env, err := api.ParseEnvironmentStrict(cfg.Environment)
	if err != nil {
		return config.ClientConfig{}, api.Production, err
	}
	return cfg, env, nil
}

func (f *clientFactory) client() (*api.Client, error) {
	cfg, env, err := f.resolve()
	if err != nil {
		return nil, err
	}
	opts := []api.Option{api.WithUserAgent(f.userAgent)}
	if f.timeout > 0 {
		opts = append(opts, api.WithTimeout(f.timeout))
	}
	if clientTransport != nil {
		opts = append(opts, api.WithTransport(clientTransport))
	}
	return api.New(cfg.Username, cfg.APIKey, env, opts...), nil
}

// previewEnvironment picks the environment shown by --dry-run. Missing
// credentials are not an error there.
func (f *clientFactory) previewEnvironment() api.Environment {
	if _, env, err := f.resolve(); err == nil {
		return env
	}
	for _, candidate := range []string{f.environment, strings.TrimSpace(os.Getenv("AT_ENVIRONMENT"))} {
		if candidate == "" {
			continue
		}
		if env, err := api.ParseEnvironmentStrict(candidate); err == nil {
			return env
		}
	}
	return api.Production
}

// getClient creates a gateway client from flags, environment and stored profiles
func getClient() (*api.Client, error) {
	return newClientFactory().client()
}

// openCursorStore opens the store used by --resume.
var openCursorStore = func() (cursor.Store, error) {
	return cursor.Open(config.ConfigDir())
}
