// Package config provides configuration types for hostgate. These types map
// to a single YAML configuration file shared by the server and the client.
package config

import (
	"time"

	"github.com/xdg/hostgate/internal/pathutil"
)

// Config represents the hostgate configuration.
// It is typically stored at ~/.config/hostgate/config.yaml.
type Config struct {
	Server ServerConfig `yaml:"server,omitempty"`
	Auth   AuthConfig   `yaml:"auth,omitempty"`
	Policy PolicyConfig `yaml:"policy,omitempty"`
	Client ClientConfig `yaml:"client,omitempty"`
	Paths  PathsConfig  `yaml:"paths,omitempty"`
	Log    LogConfig    `yaml:"log,omitempty"`
}

// ServerConfig contains settings for the gateway HTTP server.
type ServerConfig struct {
	Listen        string `yaml:"listen,omitempty"`
	WorkspaceRoot string `yaml:"workspace_root,omitempty"`
	MaxBodyBytes  int64  `yaml:"max_body_bytes,omitempty"`
	// Shell overrides the platform shell used to run commands.
	Shell string `yaml:"shell,omitempty"`
}

// AuthConfig holds the shared secret. HOSTGATE_API_KEY takes precedence.
type AuthConfig struct {
	APIKey string `yaml:"api_key,omitempty"`
}

// PolicyConfig selects the command matcher and its whitelist.
type PolicyConfig struct {
	// Mode is one of prefix, regex or glob.
	Mode  string   `yaml:"mode,omitempty"`
	Allow []string `yaml:"allow,omitempty"`
}

// ClientConfig contains settings for the hostgate client command.
type ClientConfig struct {
	ServerURL string `yaml:"server_url,omitempty"`
	Timeout   string `yaml:"timeout,omitempty"`
}

// TimeoutDuration returns the parsed client timeout, or fallback when the
// value is empty or malformed.
func (c ClientConfig) TimeoutDuration(fallback time.Duration) time.Duration {
	if c.Timeout == "" {
		return fallback
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return fallback
	}
	return d
}

// PathsConfig describes the caller and host path conventions.
type PathsConfig struct {
	HostVolume      string `yaml:"host_volume,omitempty"`
	HostSeparator   string `yaml:"host_separator,omitempty"`
	CallerSeparator string `yaml:"caller_separator,omitempty"`
}

// Translator returns the path translator for these conventions.
func (p PathsConfig) Translator() pathutil.Translator {
	return pathutil.Translator{
		HostVolume:      p.HostVolume,
		HostSeparator:   p.HostSeparator,
		CallerSeparator: p.CallerSeparator,
	}
}

// LogConfig contains logging settings.
type LogConfig struct {
	File      string `yaml:"file,omitempty"`
	Level     string `yaml:"level,omitempty"`
	AuditFile string `yaml:"audit_file,omitempty"`
}
