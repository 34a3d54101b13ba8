package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func main() {
	root := buildRoot()
	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// GlobalFlags holds minimal global/persistent flags for CLI commands
type GlobalFlags struct {
	ConfigPath string
}

// APIFlags holds connection flags for commands that talk to a running shell
type APIFlags struct {
	APIUrl     string
	APITimeout time.Duration
}

// buildRoot creates the root command with its subcommands
func buildRoot() *cobra.Command {
	globalFlags := &GlobalFlags{}
	apiFlags := &APIFlags{}

	root := createRootCommand(globalFlags)
	root.AddCommand(
		createRunCommand(globalFlags),
		createStatusCommand(apiFlags),
		createStartCommand(apiFlags),
		createStopCommand(apiFlags),
		createRestartCommand(apiFlags),
		createEventsCommand(apiFlags),
	)
	return root
}

// createRootCommand creates the root command with minimal persistent flags
func createRootCommand(flags *GlobalFlags) *cobra.Command {
	root := &cobra.Command{
		Use:   "kryashell",
		Short: "Desktop shell backend supervisor",
		Long: `Kryashell supervises the Python backend behind the spotlight shell:
it locates the packaged server sources, spawns the interpreter, waits for
the health endpoint, and guarantees the backend dies with the shell.

Examples:
  kryashell run                              # Run the shell supervisor
  kryashell run --config=kryashell.toml      # Run with a config file
  kryashell status                           # Backend status of a running shell
  kryashell restart                          # Restart the backend`,
	}
	root.PersistentFlags().StringVar(&flags.ConfigPath, "config", "", "path to TOML config file (optional)")
	return root
}
