package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/xdg/hostgate/internal/policy"
)

// validLogLevels defines the allowed log level values.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks that all fields contain usable values. It validates:
//   - server.listen is host:port or :port with a port in 1-65535
//   - server.max_body_bytes is non-negative
//   - policy.mode is known and every allow entry compiles for that mode
//   - client.server_url is an http(s) URL and client.timeout parses
//   - path separators are single characters
//   - log.level is one of: debug, info, warn, error (if non-empty)
//
// Returns nil if the config is valid, or an error naming the invalid field.
func Validate(cfg *Config) error {
	if cfg.Server.Listen != "" {
		if err := validateListenAddr(cfg.Server.Listen, "server.listen"); err != nil {
			return err
		}
	}
	if cfg.Server.MaxBodyBytes < 0 {
		return fmt.Errorf("server.max_body_bytes: must be non-negative, got %d", cfg.Server.MaxBodyBytes)
	}

	if _, err := policy.New(cfg.Policy.Mode, cfg.Policy.Allow); err != nil {
		return fmt.Errorf("policy: %w", err)
	}

	if cfg.Client.ServerURL != "" {
		if err := validateURL(cfg.Client.ServerURL, "client.server_url"); err != nil {
			return err
		}
	}
	if cfg.Client.Timeout != "" {
		if err := validateDuration(cfg.Client.Timeout, "client.timeout"); err != nil {
			return err
		}
	}

	if err := validateSeparator(cfg.Paths.HostSeparator, "paths.host_separator"); err != nil {
		return err
	}
	if err := validateSeparator(cfg.Paths.CallerSeparator, "paths.caller_separator"); err != nil {
		return err
	}

	if cfg.Log.Level != "" && !validLogLevels[cfg.Log.Level] {
		return fmt.Errorf("log.level: invalid value %q, must be one of: debug, info, warn, error", cfg.Log.Level)
	}

	return nil
}

// validateListenAddr validates a listen address in the format ":port" or "host:port".
// Port must be in the range 1-65535.
func validateListenAddr(addr, field string) error {
	colonIdx := strings.LastIndex(addr, ":")
	if colonIdx == -1 {
		return fmt.Errorf("%s: invalid format %q, expected host:port or :port", field, addr)
	}

	portStr := addr[colonIdx+1:]
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("%s: invalid port %q in %q", field, portStr, addr)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("%s: invalid port number %d, must be 1-65535", field, port)
	}

	return nil
}

// validateDuration validates that a duration string can be parsed by time.ParseDuration.
func validateDuration(d, field string) error {
	if _, err := time.ParseDuration(d); err != nil {
		return fmt.Errorf("%s: invalid duration %q", field, d)
	}
	return nil
}

func validateURL(raw, field string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s: invalid URL %q, expected http://host:port", field, raw)
	}
	return nil
}

func validateSeparator(sep, field string) error {
	if len([]rune(sep)) != 1 {
		return fmt.Errorf("%s: must be a single character, got %q", field, sep)
	}
	return nil
}
