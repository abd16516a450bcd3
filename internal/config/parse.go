package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/xdg/hostgate/internal/token"
)

// ParseConfig parses YAML data on top of DefaultConfig(), so fields absent
// from the file keep their defaults. It returns an error if the YAML is
// malformed, contains unknown fields, or has type mismatches.
// Empty input returns the defaults.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := strictUnmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// strictUnmarshal unmarshals YAML data into v, rejecting unknown fields.
// This helps catch typos in configuration files early.
// Empty input is treated as valid, leaving v unchanged.
func strictUnmarshal(data []byte, v any) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	err := decoder.Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("decode YAML: %w", err)
	}
	return nil
}

// MarshalConfig marshals a Config to YAML.
func MarshalConfig(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// Redacted returns a copy of cfg safe to print: the API key is masked.
func Redacted(cfg *Config) *Config {
	out := *cfg
	out.Policy.Allow = append([]string(nil), cfg.Policy.Allow...)
	out.Auth.APIKey = token.Mask(cfg.Auth.APIKey)
	return &out
}
