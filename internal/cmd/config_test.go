package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xdg/hostgate/internal/config"
	"github.com/xdg/hostgate/internal/term"
)

// captureOutput redirects term output for the duration of the test.
func captureOutput(t *testing.T) (*bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var out, errOut bytes.Buffer
	term.SetOutput(&out)
	term.SetErrOutput(&errOut)
	t.Cleanup(term.Reset)
	return &out, &errOut
}

// useConfigDir points config lookups at a fresh directory and clears
// environment overrides.
func useConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOSTGATE_API_KEY", "")
	t.Setenv("HOSTGATE_SERVER_URL", "")
	old := configPath
	configPath = ""
	t.Cleanup(func() { configPath = old })
	return dir
}

func TestConfigCmd_HasSubcommands(t *testing.T) {
	expected := map[string]bool{"show": false, "path": false, "init": false}
	for _, c := range configCmd.Commands() {
		if _, ok := expected[c.Name()]; ok {
			expected[c.Name()] = true
		}
	}
	for name, found := range expected {
		if !found {
			t.Errorf("missing subcommand: %s", name)
		}
	}
}

func TestConfigPath_PrintsPath(t *testing.T) {
	dir := useConfigDir(t)
	out, _ := captureOutput(t)

	runConfigPath(nil, nil)

	want := filepath.Join(dir, "hostgate", "config.yaml") + "\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestConfigInit_CreatesFile(t *testing.T) {
	dir := useConfigDir(t)
	out, _ := captureOutput(t)

	if err := runConfigInit(nil, nil); err != nil {
		t.Fatalf("runConfigInit() error = %v", err)
	}

	path := filepath.Join(dir, "hostgate", "config.yaml")
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}
	if len(cfg.Auth.APIKey) != 64 {
		t.Errorf("generated API key length = %d, want 64", len(cfg.Auth.APIKey))
	}
	if !strings.Contains(out.String(), "Created default config at: "+path) {
		t.Errorf("output = %q", out.String())
	}

	// A second init leaves the file alone.
	before, _ := os.ReadFile(path)
	out.Reset()
	if err := runConfigInit(nil, nil); err != nil {
		t.Fatalf("second runConfigInit() error = %v", err)
	}
	after, _ := os.ReadFile(path)
	if !bytes.Equal(before, after) {
		t.Error("second init modified the config file")
	}
	if !strings.Contains(out.String(), "already exists") {
		t.Errorf("second init output = %q", out.String())
	}
}

func TestConfigShow_MasksKey(t *testing.T) {
	useConfigDir(t)
	t.Setenv("HOSTGATE_API_KEY", "0123456789abcdef0123")
	out, _ := captureOutput(t)

	if err := runConfigShow(nil, nil); err != nil {
		t.Fatalf("runConfigShow() error = %v", err)
	}

	got := out.String()
	if strings.Contains(got, "0123456789abcdef0123") {
		t.Errorf("config show leaked the API key:\n%s", got)
	}
	for _, want := range []string{"********0123", "127.0.0.1:5000", "mode: prefix"} {
		if !strings.Contains(got, want) {
			t.Errorf("config show missing %q:\n%s", want, got)
		}
	}
}
