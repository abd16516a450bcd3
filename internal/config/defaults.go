package config

import "github.com/xdg/hostgate/internal/pathutil"

// Default values.
const (
	DefaultListen        = "127.0.0.1:5000"
	DefaultServerURL     = "http://127.0.0.1:5000"
	DefaultClientTimeout = "30s"
	DefaultMaxBodyBytes  = 10 << 20 // 10MB
)

// DefaultAllow is the whitelist used when none is configured.
// Each entry is a raw prefix: "ls -l" also admits "ls -lart".
func DefaultAllow() []string {
	return []string{
		"git status",
		"git pull",
		"ls -l",
		"echo Hello",
	}
}

// DefaultConfig returns a Config with all defaults populated. The API key
// is intentionally empty; the server refuses to start without one.
func DefaultConfig() *Config {
	tr := pathutil.DefaultTranslator()
	return &Config{
		Server: ServerConfig{
			Listen:        DefaultListen,
			WorkspaceRoot: "~",
			MaxBodyBytes:  DefaultMaxBodyBytes,
		},
		Policy: PolicyConfig{
			Mode:  "prefix",
			Allow: DefaultAllow(),
		},
		Client: ClientConfig{
			ServerURL: DefaultServerURL,
			Timeout:   DefaultClientTimeout,
		},
		Paths: PathsConfig{
			HostVolume:      tr.HostVolume,
			HostSeparator:   tr.HostSeparator,
			CallerSeparator: tr.CallerSeparator,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
