package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/krya-ai/shell/pkg/client"
)

func newAPIClient(flags *APIFlags) *client.Client {
	cfg := client.DefaultConfig()
	if flags.APIUrl != "" {
		cfg.BaseURL = flags.APIUrl
	}
	if flags.APITimeout > 0 {
		cfg.Timeout = flags.APITimeout
	}
	return client.New(cfg)
}

func requireReachable(ctx context.Context, c *client.Client, flags *APIFlags) error {
	if !c.IsReachable(ctx) {
		url := flags.APIUrl
		if url == "" {
			url = client.DefaultConfig().BaseURL
		}
		return fmt.Errorf("shell not reachable at %s - start it first with 'kryashell run'", url)
	}
	return nil
}

func addAPIFlags(cmd *cobra.Command, flags *APIFlags) {
	cmd.Flags().StringVar(&flags.APIUrl, "api-url", "", "control API URL (e.g. http://127.0.0.1:8790/api)")
	cmd.Flags().DurationVar(&flags.APITimeout, "api-timeout", 10*time.Second, "request timeout")
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// createStatusCommand creates the status subcommand
func createStatusCommand(flags *APIFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show backend status of a running shell",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c := newAPIClient(flags)
			if err := requireReachable(ctx, c, flags); err != nil {
				return err
			}
			status, err := c.Status(ctx)
			if err != nil {
				return err
			}
			printJSON(status)
			return nil
		},
	}
	addAPIFlags(cmd, flags)
	return cmd
}

// createStartCommand creates the start subcommand
func createStartCommand(flags *APIFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the backend of a running shell",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c := newAPIClient(flags)
			if err := requireReachable(ctx, c, flags); err != nil {
				return err
			}
			if err := c.StartBackend(ctx); err != nil {
				return err
			}
			status, err := c.Status(ctx)
			if err != nil {
				return err
			}
			printJSON(status)
			return nil
		},
	}
	addAPIFlags(cmd, flags)
	return cmd
}

// createStopCommand creates the stop subcommand
func createStopCommand(flags *APIFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the backend of a running shell",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c := newAPIClient(flags)
			if err := requireReachable(ctx, c, flags); err != nil {
				return err
			}
			if err := c.StopBackend(ctx); err != nil {
				return err
			}
			status, err := c.Status(ctx)
			if err != nil {
				return err
			}
			printJSON(status)
			return nil
		},
	}
	addAPIFlags(cmd, flags)
	return cmd
}

// createRestartCommand creates the restart subcommand
func createRestartCommand(flags *APIFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restart",
		Short: "Restart the backend of a running shell",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c := newAPIClient(flags)
			if err := requireReachable(ctx, c, flags); err != nil {
				return err
			}
			if err := c.RestartBackend(ctx); err != nil {
				return err
			}
			status, err := c.Status(ctx)
			if err != nil {
				return err
			}
			printJSON(status)
			return nil
		},
	}
	addAPIFlags(cmd, flags)
	return cmd
}

// createEventsCommand creates the events subcommand
func createEventsCommand(flags *APIFlags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show recent backend lifecycle events",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c := newAPIClient(flags)
			if err := requireReachable(ctx, c, flags); err != nil {
				return err
			}
			events, err := c.Events(ctx, limit)
			if err != nil {
				return err
			}
			printJSON(events)
			return nil
		},
	}
	addAPIFlags(cmd, flags)
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of events")
	return cmd
}
