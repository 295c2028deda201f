package config

import (
	"fmt"
	"os"
	"strings"
)

// ClientConfig contains resolved API client settings.
type ClientConfig struct {
	Username    string
	APIKey      string
	Environment string
	// Source is "env" or "profile:<name>".
	Source string
}

// ResolveClientConfig resolves credentials in order: AT_USERNAME/AT_API_KEY,
// then the profile named by profileOverride, AT_PROFILE or the current
// profile. A non-empty envOverride replaces the resolved environment.
func ResolveClientConfig(profileOverride, envOverride string) (ClientConfig, error) {
	cfg, err := resolveCredentials(profileOverride)
	if err != nil {
		return ClientConfig{}, err
	}
	if env := strings.TrimSpace(os.Getenv(envEnvironment)); env != "" {
		cfg.Environment = env
	}
	if envOverride != "" {
		cfg.Environment = envOverride
	}
	if cfg.Environment == "" {
		cfg.Environment = "production"
	}
	return cfg, nil
}

func resolveCredentials(profileOverride string) (ClientConfig, error) {
	username := strings.TrimSpace(os.Getenv(envUsername))
	apiKey := strings.TrimSpace(os.Getenv(envAPIKey))
	if username != "" || apiKey != "" {
		if username == "" || apiKey == "" {
			return ClientConfig{}, fmt.Errorf("environment variables %s and %s must both be set", envUsername, envAPIKey)
		}
		return ClientConfig{Username: username, APIKey: apiKey, Source: "env"}, nil
	}

	name := strings.TrimSpace(profileOverride)
	if name == "" {
		name = strings.TrimSpace(os.Getenv(envProfile))
	}
	if name == "" {
		current, err := CurrentProfile()
		if err != nil {
			return ClientConfig{}, err
		}
		name = current
	}

	profile, err := LoadProfile(name)
	if err != nil {
		return ClientConfig{}, err
	}
	if profile.Username == "" || profile.APIKey == "" {
		return ClientConfig{}, fmt.Errorf("profile %q is missing username or API key", name)
	}
	return ClientConfig{
		Username:    profile.Username,
		APIKey:      profile.APIKey,
		Environment: profile.Environment,
		Source:      "profile:" + name,
	}, nil
}
