package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	shell "github.com/krya-ai/shell"
	ctrlpkg "github.com/krya-ai/shell/internal/shell"
)

// createRunCommand creates the run subcommand
func createRunCommand(globalFlags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run [config.toml]",
		Short: "Run the shell supervisor",
		Long: `Run the shell supervisor in the foreground: start the backend, expose
the control API, and stop the backend before exiting on SIGINT/SIGTERM.

Examples:
  kryashell run                     # Run with built-in defaults
  kryashell run kryashell.toml      # Run with a specific config file`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(globalFlags, args)
		},
	}
}

func runShell(flags *GlobalFlags, args []string) error {
	configPath := flags.ConfigPath
	if len(args) > 0 {
		configPath = args[0]
	}

	cfg := shell.DefaultConfig()
	if configPath != "" {
		loaded, err := shell.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}
		cfg = loaded
	}

	log := shell.NewLogger(cfg.LogLevel)

	sup := shell.New(cfg, log)

	// Lifecycle journal, if configured.
	var hist shell.HistorySink
	if cfg.History != nil && cfg.History.Enabled {
		sink, err := shell.OpenHistory(cfg.History.Path)
		if err != nil {
			return fmt.Errorf("open history journal: %w", err)
		}
		defer func() { _ = sink.Close() }()
		sup.SetHistorySink(sink)
		hist = sink
	}

	// Metrics endpoint, if configured.
	if cfg.Metrics != nil && cfg.Metrics.Enabled {
		if err := shell.RegisterMetricsDefault(); err != nil {
			log.Warn("failed to register metrics", "err", err)
		}
		go func() {
			if err := shell.ServeMetrics(cfg.Metrics.Listen); err != nil {
				log.Error("metrics server stopped", "err", err)
			}
		}()
	}

	controller := shell.NewController(sup, log)
	controller.Setup(context.Background())

	server := shell.NewControlServer(cfg.Control.Listen, cfg.Control.BasePath, sup, hist)
	log.Info("control server listening", "addr", cfg.Control.Listen, "base_path", cfg.Control.BasePath)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	// The backend must be down before this process exits, whatever else
	// fails during teardown.
	controller.Shutdown(ctrlpkg.TriggerSignal)
	return server.Close()
}
