package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xdg/hostgate/internal/config"
	"github.com/xdg/hostgate/internal/term"
	"github.com/xdg/hostgate/internal/token"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage hostgate's configuration.

The configuration file is stored at ~/.config/hostgate/config.yaml
(or $XDG_CONFIG_HOME/hostgate/config.yaml if XDG_CONFIG_HOME is set).
HOSTGATE_API_KEY and HOSTGATE_SERVER_URL override the file.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective config",
	Long: `Print the effective configuration as YAML, after defaults and environment
overrides are applied. The API key is masked.`,
	RunE: runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print config file path",
	Run:   runConfigPath,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default config file",
	Long: `Create a commented configuration file with a freshly generated API key.
If the file already exists, this command does nothing.`,
	RunE: runConfigInit,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	data, err := config.MarshalConfig(config.Redacted(cfg))
	if err != nil {
		return err
	}

	term.Printf("%s", data)
	return nil
}

func runConfigPath(_ *cobra.Command, _ []string) {
	term.Println(selectedConfigPath())
}

func runConfigInit(_ *cobra.Command, _ []string) error {
	path := selectedConfigPath()

	if _, err := os.Stat(path); err == nil {
		term.Println("Config already exists at:", path)
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to check config: %w", err)
	}

	if err := config.WriteDefaultConfig(path, token.Generate()); err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}

	term.Printf("Created default config at: %s\n", path)
	term.Println("Give the auth.api_key value to callers (or export HOSTGATE_API_KEY).")
	return nil
}

// selectedConfigPath returns --config or the default config path.
func selectedConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.Path()
}
