package config

import (
	"os"

	"github.com/xdg/hostgate/internal/pathutil"
)

// Dir returns the hostgate configuration directory path.
// By default, this is ~/.config/hostgate/. If the XDG_CONFIG_HOME
// environment variable is set, it uses $XDG_CONFIG_HOME/hostgate/ instead.
// The returned path always has a trailing slash.
func Dir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		base = "~/.config"
	}
	return pathutil.ExpandHome(base) + "/hostgate/"
}

// Path returns the full path to the configuration file.
func Path() string {
	return Dir() + "config.yaml"
}
