// Package shell is the boundary between the window/tray/shortcut toolkit
// and the backend supervisor. Every UI trigger source funnels through a
// Controller so the hard shutdown-ordering rule lives in one place: the
// backend must be stopped before the shell process exits, on every path.
package shell

import (
	"context"
	"log/slog"

	"github.com/krya-ai/shell/internal/supervisor"
)

// Quit trigger sources, recorded so the journal and logs show which path
// tore the backend down.
const (
	TriggerTrayQuit    = "tray-quit"
	TriggerWindowClose = "window-close"
	TriggerShortcut    = "shortcut"
	TriggerSignal      = "signal"
)

// Controller mediates between UI event handlers and the supervisor. All
// methods are safe to call repeatedly and from concurrent handlers; the
// supervisor serializes the underlying state changes.
type Controller struct {
	sup    *supervisor.Supervisor
	logger *slog.Logger
}

func NewController(sup *supervisor.Supervisor, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	return &Controller{sup: sup, logger: log}
}

// Setup runs at application start, before the UI is shown. A backend that
// fails to start degrades functionality but must not abort the shell, so
// resolution and spawn errors are logged and swallowed here.
func (c *Controller) Setup(ctx context.Context) {
	if err := c.sup.Start(ctx); err != nil {
		c.logger.Error("backend failed to start; shell continues without it", "err", err)
	}
}

// StartBackend starts the backend on behalf of a UI handler and returns the
// error for handlers that surface it (the settings window shows it inline).
func (c *Controller) StartBackend(ctx context.Context) error {
	return c.sup.Start(ctx)
}

// StopBackend stops the backend without exiting the shell.
func (c *Controller) StopBackend() {
	c.sup.Stop()
}

// Shutdown tears the backend down ahead of process exit. trigger names the
// quit source (tray menu, window close, shortcut, signal); concurrent quit
// triggers may race here and the supervisor resolves them to one kill.
func (c *Controller) Shutdown(trigger string) {
	c.logger.Info("shutting down", "trigger", trigger)
	c.sup.Stop()
}

// Status proxies the supervisor snapshot for UI display.
func (c *Controller) Status() supervisor.Status {
	return c.sup.Status()
}
