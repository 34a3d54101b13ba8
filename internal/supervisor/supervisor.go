// Package supervisor owns the lifecycle of the single backend process: it
// resolves the entry point, spawns the interpreter with one fallback,
// confirms health on a bounded schedule and guarantees termination on every
// shutdown path. Start and Stop are safe to call concurrently from any
// event source.
package supervisor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"github.com/krya-ai/shell/internal/health"
	"github.com/krya-ai/shell/internal/history"
	"github.com/krya-ai/shell/internal/logger"
	"github.com/krya-ai/shell/internal/metrics"
	"github.com/krya-ai/shell/internal/respath"
)

// Config describes how the backend is launched and health-checked.
// Zero fields fall back to the packaged-product defaults.
type Config struct {
	Name                string        // used for log file naming; default "backend"
	Port                int           // backend listening port; default 8000
	Interpreter         string        // override the platform interpreter
	FallbackInterpreter string        // override the platform alternate
	HealthURL           string        // override the probed endpoint
	StartupGrace        time.Duration // bounded wait for the health probe
	ProbeAttempts       int
	ProbeInterval       time.Duration
	Log                 logger.Config // backend stdout/stderr capture
}

// SpawnError reports that both the primary interpreter and its alternate
// failed to spawn the backend.
type SpawnError struct {
	Primary     string
	Fallback    string
	PrimaryErr  error
	FallbackErr error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn backend with %s: %v; fallback %s: %v",
		e.Primary, e.PrimaryErr, e.Fallback, e.FallbackErr)
}

func (e *SpawnError) Unwrap() []error { return []error{e.PrimaryErr, e.FallbackErr} }

// Status is a point-in-time snapshot of the supervised backend.
type Status struct {
	Running   bool      `json:"running"`
	PID       int       `json:"pid,omitempty"`
	StartedAt time.Time `json:"started_at,omitzero"`
	LastProbe string    `json:"last_probe,omitempty"`
	Spawns    int       `json:"spawns"`
	Port      int       `json:"port"`
}

// Supervisor manages exactly one backend process instance.
type Supervisor struct {
	cfg      Config
	resolver *respath.Resolver
	prober   *health.Prober
	logger   *slog.Logger
	hist     history.Sink

	mu        sync.Mutex
	running   bool
	cmd       *exec.Cmd
	startedAt time.Time
	lastProbe string
	spawns    int
}

// New builds a Supervisor with defaults filled in. The resolver is anchored
// at the running executable; replace it via SetResolver in tests.
func New(cfg Config, log *slog.Logger) *Supervisor {
	if cfg.Name == "" {
		cfg.Name = "backend"
	}
	if cfg.Port <= 0 {
		cfg.Port = 8000
	}
	if cfg.StartupGrace <= 0 {
		cfg.StartupGrace = 5 * time.Second
	}
	if cfg.ProbeAttempts <= 0 {
		cfg.ProbeAttempts = health.DefaultAttempts
	}
	if cfg.ProbeInterval <= 0 {
		cfg.ProbeInterval = health.DefaultInterval
	}
	if log == nil {
		log = slog.Default()
	}
	return &Supervisor{
		cfg:      cfg,
		resolver: respath.New(),
		prober:   health.New(),
		logger:   log,
		hist:     history.Nop{},
	}
}

// SetResolver replaces the entry-point resolver.
func (s *Supervisor) SetResolver(r *respath.Resolver) { s.resolver = r }

// SetHistorySink attaches a lifecycle journal.
func (s *Supervisor) SetHistorySink(h history.Sink) {
	if h != nil {
		s.hist = h
	}
}

// Start spawns the backend if it is not already running. It resolves the
// entry point fresh on every call, attempts the primary interpreter and then
// exactly one fallback, and on success waits up to the startup grace for the
// health probe before returning. Probe failure is advisory: Start still
// returns nil so the shell UI can come up while the backend warms late.
func (s *Supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Debug("backend already running; start ignored")
		return nil
	}

	ep, err := s.resolver.Resolve()
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("resolve backend entry point: %w", err)
	}

	primary, fallback := s.interpreters()
	interp := primary
	cmd, outW, errW := s.buildCmd(primary, ep)
	usedFallback := false
	if startErr := cmd.Start(); startErr != nil {
		closeAll(outW, errW)
		cmd, outW, errW = s.buildCmd(fallback, ep)
		if fbErr := cmd.Start(); fbErr != nil {
			closeAll(outW, errW)
			s.mu.Unlock()
			return &SpawnError{Primary: primary, Fallback: fallback, PrimaryErr: startErr, FallbackErr: fbErr}
		}
		interp = fallback
		usedFallback = true
	}

	s.cmd = cmd
	s.running = true
	s.startedAt = time.Now()
	s.lastProbe = ""
	s.spawns++
	pid := cmd.Process.Pid
	s.mu.Unlock()

	metrics.IncSpawn()
	metrics.SetBackendUp(true)
	if usedFallback {
		metrics.IncSpawnFallback()
		s.logger.Warn("primary interpreter unavailable; backend started with fallback",
			"interpreter", interp, "pid", pid)
		s.record(history.EventSpawnedFallback, pid, interp)
	} else {
		s.logger.Info("backend started", "interpreter", interp, "script", ep.Script, "pid", pid)
		s.record(history.EventSpawned, pid, ep.Script)
	}

	go s.reap(cmd, pid, outW, errW)

	s.confirmHealth(ctx, pid)
	return nil
}

// Stop terminates the backend if one is running. The handle is taken out of
// shared state before acting on it, and the state is marked not-running even
// when termination reports an error: shutdown proceeds regardless.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	cmd := s.cmd
	s.cmd = nil
	s.running = false
	s.mu.Unlock()

	if cmd == nil || cmd.Process == nil {
		return
	}
	pid := cmd.Process.Pid
	metrics.SetBackendUp(false)
	if err := terminate(cmd.Process); err != nil {
		s.logger.Warn("backend termination reported error", "pid", pid, "err", err)
	}
	metrics.IncStop()
	s.record(history.EventStopped, pid, "")
	s.logger.Info("backend stopped", "pid", pid)
}

// Restart stops any running backend and starts a fresh one.
func (s *Supervisor) Restart(ctx context.Context) error {
	s.Stop()
	return s.Start(ctx)
}

// Status returns a snapshot of the supervised backend.
func (s *Supervisor) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Status{
		Running:   s.running,
		LastProbe: s.lastProbe,
		Spawns:    s.spawns,
		Port:      s.cfg.Port,
	}
	if s.running && s.cmd != nil && s.cmd.Process != nil {
		st.PID = s.cmd.Process.Pid
		st.StartedAt = s.startedAt
	}
	return st
}

// Running reports whether a backend process is currently recorded as running.
func (s *Supervisor) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Supervisor) interpreters() (string, string) {
	primary, fallback := defaultInterpreters()
	if s.cfg.Interpreter != "" {
		primary = s.cfg.Interpreter
	}
	if s.cfg.FallbackInterpreter != "" {
		fallback = s.cfg.FallbackInterpreter
	}
	return primary, fallback
}

// buildCmd assembles the launch command: <interpreter> <script> --port <n>
// with the entry point's directory as working directory. Output goes to the
// rotating log writers when configured, to the bit bucket otherwise.
func (s *Supervisor) buildCmd(interp string, ep respath.EntryPoint) (*exec.Cmd, io.WriteCloser, io.WriteCloser) {
	// #nosec G204 -- interpreter and script come from config and resolution, not request input
	cmd := exec.Command(interp, ep.Script, "--port", strconv.Itoa(s.cfg.Port))
	cmd.Dir = ep.Dir
	configureSysProcAttr(cmd)

	var outW, errW io.WriteCloser
	if s.cfg.Log.Enabled() {
		if s.cfg.Log.Dir != "" {
			_ = os.MkdirAll(s.cfg.Log.Dir, 0o750)
		}
		outW, errW, _ = s.cfg.Log.Writers(s.cfg.Name)
		if outW != nil {
			cmd.Stdout = outW
		}
		if errW != nil {
			cmd.Stderr = errW
		}
	}
	return cmd, outW, errW
}

// reap waits for the spawned process so it never lingers as a zombie, closes
// that run's log writers, and marks the state not-running if this run is
// still the current one (a Stop may have replaced it already).
func (s *Supervisor) reap(cmd *exec.Cmd, pid int, closers ...io.WriteCloser) {
	waitErr := cmd.Wait()

	s.mu.Lock()
	current := s.cmd == cmd
	if current {
		s.cmd = nil
		s.running = false
	}
	s.mu.Unlock()

	closeAll(closers...)

	if current {
		metrics.SetBackendUp(false)
		detail := ""
		if waitErr != nil {
			detail = waitErr.Error()
		}
		s.logger.Warn("backend exited on its own", "pid", pid, "err", waitErr)
		s.record(history.EventExited, pid, detail)
	}
}

// confirmHealth dispatches the probe on its own goroutine and joins it for
// at most the startup grace. A late result is still logged when it arrives;
// it no longer influences the already-returned Start.
func (s *Supervisor) confirmHealth(ctx context.Context, pid int) {
	url := s.cfg.HealthURL
	if url == "" {
		url = fmt.Sprintf("http://localhost:%d/", s.cfg.Port)
	}
	done := make(chan health.Outcome, 1)
	pctx := context.WithoutCancel(ctx)
	go func() {
		done <- s.prober.Probe(pctx, url, s.cfg.ProbeAttempts, s.cfg.ProbeInterval)
	}()

	select {
	case oc := <-done:
		s.noteProbe(pid, oc, false)
	case <-time.After(s.cfg.StartupGrace):
		s.logger.Warn("backend health not confirmed within grace period; continuing",
			"pid", pid, "grace", s.cfg.StartupGrace)
		go func() { s.noteProbe(pid, <-done, true) }()
	}
}

func (s *Supervisor) noteProbe(pid int, oc health.Outcome, late bool) {
	s.mu.Lock()
	s.lastProbe = oc.String()
	s.mu.Unlock()

	metrics.IncProbeOutcome(oc.String())
	switch oc {
	case health.Healthy:
		s.logger.Info("backend health confirmed", "pid", pid, "late", late)
		s.record(history.EventHealthy, pid, "")
	case health.Unreachable:
		s.logger.Warn("backend unreachable; continuing without confirmation", "pid", pid, "late", late)
		s.record(history.EventProbeUnreachable, pid, "")
	default:
		s.logger.Warn("backend did not report healthy; continuing without confirmation", "pid", pid, "late", late)
		s.record(history.EventProbeTimedOut, pid, "")
	}
}

func (s *Supervisor) record(t history.EventType, pid int, detail string) {
	e := history.Event{Type: t, OccurredAt: time.Now(), PID: pid, Detail: detail}
	if err := s.hist.Send(context.Background(), e); err != nil {
		s.logger.Debug("history write failed", "event", t, "err", err)
	}
}

func closeAll(closers ...io.WriteCloser) {
	for _, c := range closers {
		if c != nil {
			_ = c.Close()
		}
	}
}
