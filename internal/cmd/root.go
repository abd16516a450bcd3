// Package cmd implements the CLI commands for hostgate.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/xdg/hostgate/internal/config"
	"github.com/xdg/hostgate/internal/term"
	"github.com/xdg/hostgate/internal/version"
)

var (
	configPath string
	quiet      bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "hostgate",
	Short: "Authenticated remote command gateway",
	Long: `Hostgate exposes a small HTTP API that lets a remote caller run whitelisted
shell commands, read and write files, and list directories on this host.

Every request must carry the shared API key. Commands must match the
configured whitelist; file and directory operations are authorized by the
API key alone.`,
	Version: version.Version,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		term.SetSilent(quiet)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default "+config.Path()+")")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress normal output")
}

// loadConfig loads the configuration selected by --config.
func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}

// Execute runs the root command and returns any error.
func Execute() error {
	return rootCmd.Execute()
}
