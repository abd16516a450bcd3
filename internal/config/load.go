package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/xdg/hostgate/internal/clog"
	"github.com/xdg/hostgate/internal/pathutil"
)

// Load reads the configuration from path, or from Path() when path is empty.
// A missing file yields DefaultConfig(). Environment secrets are applied,
// ~ is expanded in path fields, and the result is validated.
func Load(path string) (*Config, error) {
	if path == "" {
		path = Path()
	}
	clog.Debug("config: loading from %s", path)

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		clog.Debug("config: file not found, using defaults")
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		cfg, err = ParseConfig(data)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	}

	secrets, err := LoadSecrets()
	if err != nil {
		return nil, err
	}
	secrets.Apply(cfg)

	expandPaths(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// expandPaths expands ~ to the home directory in all path fields.
func expandPaths(cfg *Config) {
	cfg.Server.WorkspaceRoot = pathutil.ExpandHome(cfg.Server.WorkspaceRoot)
	cfg.Log.File = pathutil.ExpandHome(cfg.Log.File)
	cfg.Log.AuditFile = pathutil.ExpandHome(cfg.Log.AuditFile)
}
