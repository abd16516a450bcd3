package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/xdg/hostgate/internal/audit"
	"github.com/xdg/hostgate/internal/clog"
	"github.com/xdg/hostgate/internal/config"
	"github.com/xdg/hostgate/internal/executor"
	"github.com/xdg/hostgate/internal/gateway"
	"github.com/xdg/hostgate/internal/policy"
	"github.com/xdg/hostgate/internal/term"
)

// shutdownTimeout bounds the wait for in-flight requests on shutdown.
const shutdownTimeout = 30 * time.Second

var (
	serveListen string
	serveDaemon bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the gateway server",
	Long: `Run the gateway HTTP server until interrupted (SIGINT or SIGTERM).

An API key is required (auth.api_key or HOSTGATE_API_KEY); run
'hostgate config init' to generate one.

Commands run through the host shell and are not stopped when a caller
gives up on a request.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "listen address (overrides server.listen)")
	serveCmd.Flags().BoolVar(&serveDaemon, "daemon", false, "log to file only (log.file, or the default state log)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if serveListen != "" {
		cfg.Server.Listen = serveListen
	}

	logFile := cfg.Log.File
	if serveDaemon && logFile == "" {
		logFile = clog.DefaultLogPath()
	}
	// With a log file, logs go to the file only.
	if err := clog.Configure(logFile, clog.ParseLevel(cfg.Log.Level), logFile != ""); err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = clog.Close() }()

	srv, closeAudit, err := newGatewayServer(cfg)
	if err != nil {
		return err
	}
	defer closeAudit()

	if err := srv.Start(); err != nil {
		return fmt.Errorf("failed to start gateway: %w", err)
	}
	clog.Info("gateway listening on %s", srv.ListenAddr())
	term.Printf("hostgate listening on %s\n", srv.ListenAddr())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	clog.Debug("shutting down gateway...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		return fmt.Errorf("error during gateway shutdown: %w", err)
	}

	clog.Debug("gateway stopped")
	return nil
}

// newGatewayServer builds a gateway from cfg. The returned func closes the
// audit log, if one was opened.
func newGatewayServer(cfg *config.Config) (*gateway.Server, func(), error) {
	if cfg.Auth.APIKey == "" {
		return nil, nil, errors.New("no API key configured; set auth.api_key or HOSTGATE_API_KEY (see 'hostgate config init')")
	}

	pol, err := policy.New(cfg.Policy.Mode, cfg.Policy.Allow)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid policy: %w", err)
	}
	clog.Info("command policy: mode=%s entries=%d", cfg.Policy.Mode, len(cfg.Policy.Allow))

	srv := gateway.NewServer(
		gateway.StaticSecret(cfg.Auth.APIKey),
		pol,
		executor.NewShellExecutor(cfg.Server.Shell),
		cfg.Server.WorkspaceRoot,
	)
	srv.Addr = cfg.Server.Listen
	srv.MaxBodyBytes = cfg.Server.MaxBodyBytes

	closeAudit := func() {}
	if cfg.Log.AuditFile != "" {
		f, err := clog.OpenLogFile(cfg.Log.AuditFile)
		if err != nil {
			clog.Warn("failed to open audit log file %s: %v", cfg.Log.AuditFile, err)
		} else {
			srv.AuditLogger = audit.NewLogger(f)
			closeAudit = func() { _ = f.Close() }
			clog.Info("audit logging enabled: %s", cfg.Log.AuditFile)
		}
	}

	return srv, closeAudit, nil
}
