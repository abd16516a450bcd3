package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// defaultConfigTemplate is the commented config written by WriteDefaultConfig.
// The single %q verb receives the generated API key.
const defaultConfigTemplate = `# hostgate configuration

server:
  # Address the gateway listens on. Bind to 127.0.0.1 unless callers are remote.
  listen: "127.0.0.1:5000"
  # Directory listed by GET /workspace/list when no path is given.
  workspace_root: "~"
  # Requests with larger bodies are rejected with 413.
  max_body_bytes: 10485760
  # Shell used to run commands. Empty selects /bin/sh -c (cmd /C on Windows).
  shell: ""

auth:
  # Shared secret sent in the X-API-Key header. HOSTGATE_API_KEY overrides it.
  api_key: %q

policy:
  # prefix: allowed when the trimmed command starts with an entry (not word-aware:
  #         "ls -l" also allows "ls -lart").
  # regex:  entries are Go regular expressions.
  # glob:   entries are glob patterns, e.g. "git status*".
  mode: prefix
  allow:
    - "git status"
    - "git pull"
    - "ls -l"
    - "echo Hello"

client:
  # Gateway address. HOSTGATE_SERVER_URL overrides it.
  server_url: "http://127.0.0.1:5000"
  timeout: "30s"

paths:
  # Rooted caller paths such as /work/file.txt become C:\work\file.txt.
  host_volume: "C:"
  host_separator: "\\"
  caller_separator: "/"

log:
  # Operational log file (JSON lines). Empty logs warnings to stderr only.
  file: ""
  level: info
  # Audit trail of every gateway request. Empty disables it.
  audit_file: ""
`

// WriteDefaultConfig creates the default configuration file at path with
// helpful comments and the given API key. If the file already exists, it
// returns nil without overwriting. Parent directories are created.
// The file is written with 0600 permissions (user read/write only).
func WriteDefaultConfig(path, apiKey string) error {
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat config file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("ensure config dir: %w", err)
	}

	content := fmt.Sprintf(defaultConfigTemplate, apiKey)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	return nil
}
