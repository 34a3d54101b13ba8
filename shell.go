package shell

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	cfg "github.com/krya-ai/shell/internal/config"
	"github.com/krya-ai/shell/internal/health"
	"github.com/krya-ai/shell/internal/history"
	histsqlite "github.com/krya-ai/shell/internal/history/sqlite"
	"github.com/krya-ai/shell/internal/logger"
	"github.com/krya-ai/shell/internal/metrics"
	"github.com/krya-ai/shell/internal/respath"
	iapi "github.com/krya-ai/shell/internal/server"
	ishell "github.com/krya-ai/shell/internal/shell"
	"github.com/krya-ai/shell/internal/supervisor"
)

// Re-export core types for external consumers.
// These are aliases so conversions are zero-cost.

type Config = cfg.Config

type BackendConfig = cfg.BackendConfig

type Status = supervisor.Status

type Supervisor = supervisor.Supervisor

type Controller = ishell.Controller

type Resolver = respath.Resolver

type ProbeOutcome = health.Outcome

type HistorySink = history.Sink

type Event = history.Event

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config { return cfg.Default() }

// LoadConfig reads a TOML config file and applies defaults for anything
// unset.
func LoadConfig(path string) (*Config, error) { return cfg.Load(path) }

// New builds a supervisor from the loaded config.
func New(c *Config, log *slog.Logger) *Supervisor {
	s := supervisor.New(supervisor.Config{
		Port:                c.Backend.Port,
		Interpreter:         c.Backend.Interpreter,
		FallbackInterpreter: c.Backend.FallbackInterpreter,
		HealthURL:           c.HealthURL(),
		StartupGrace:        c.Backend.StartupGrace,
		ProbeAttempts:       c.Backend.ProbeAttempts,
		ProbeInterval:       c.Backend.ProbeInterval,
		Log:                 c.Log,
	}, log)
	if c.Backend.EntryFile != "" || c.Backend.SourceDir != "" || c.Backend.ParentSteps > 0 {
		r := respath.New()
		if c.Backend.EntryFile != "" {
			r.EntryFile = c.Backend.EntryFile
		}
		if c.Backend.SourceDir != "" {
			r.SourceDir = c.Backend.SourceDir
		}
		if c.Backend.ParentSteps > 0 {
			r.ParentSteps = c.Backend.ParentSteps
		}
		s.SetResolver(r)
	}
	return s
}

// NewController wraps a supervisor for the window/tray layer.
func NewController(s *Supervisor, log *slog.Logger) *Controller {
	return ishell.NewController(s, log)
}

// NewLogger builds the shell's console logger at the given level.
func NewLogger(level string) *slog.Logger { return logger.NewDefault(level) }

// OpenHistory opens the SQLite lifecycle journal at path.
func OpenHistory(path string) (HistorySink, error) { return histsqlite.New(path) }

// NewControlServer starts the localhost control API using the given
// supervisor. hist may be nil when the journal is off.
func NewControlServer(addr, basePath string, s *Supervisor, hist HistorySink) *http.Server {
	return iapi.NewServer(addr, basePath, s, hist)
}

// Metrics helpers (public facade)

func RegisterMetrics(r prometheus.Registerer) error { return metrics.Register(r) }
func RegisterMetricsDefault() error                 { return metrics.Register(prometheus.DefaultRegisterer) }

// ServeMetrics starts an HTTP server on addr exposing /metrics using the
// default registry. It returns any immediate listen error; otherwise it runs
// the server in the caller goroutine.
func ServeMetrics(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv.ListenAndServe()
}
