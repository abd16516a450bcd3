package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the prefix of environment variables read by LoadSecrets.
const EnvPrefix = "HOSTGATE"

// Secrets holds values loaded from environment variables.
// The API key belongs here rather than in a CLI flag, where it would be
// visible in process listings.
type Secrets struct {
	// APIKey is the shared secret. Env: HOSTGATE_API_KEY
	APIKey string `envconfig:"API_KEY"`

	// ServerURL is the gateway address used by the client. Env: HOSTGATE_SERVER_URL
	ServerURL string `envconfig:"SERVER_URL"`
}

// LoadSecrets loads secrets from environment variables.
func LoadSecrets() (*Secrets, error) {
	var s Secrets
	if err := envconfig.Process(EnvPrefix, &s); err != nil {
		return nil, fmt.Errorf("load secrets from environment: %w", err)
	}
	return &s, nil
}

// Apply overrides cfg fields with any secrets that are set.
func (s *Secrets) Apply(cfg *Config) {
	if s.APIKey != "" {
		cfg.Auth.APIKey = s.APIKey
	}
	if s.ServerURL != "" {
		cfg.Client.ServerURL = s.ServerURL
	}
}
