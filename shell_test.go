package shell

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func requireUnix(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires Unix-like environment")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kryashell.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSupervisorFacadeStartStatusStop(t *testing.T) {
	requireUnix(t)
	probe := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer probe.Close()

	// Dev layout with a shell script entry point so no Python is needed.
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "src"), 0o755); err != nil {
		t.Fatal(err)
	}
	script := filepath.Join(root, "src", "serve.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\nsleep 5\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	wd := filepath.Join(root, "ui", "src-shell")
	if err := os.MkdirAll(wd, 0o755); err != nil {
		t.Fatal(err)
	}

	// Point the health probe at the test server by matching its port.
	probePort, err := strconv.Atoi(probe.URL[strings.LastIndexByte(probe.URL, ':')+1:])
	if err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	cfg.Backend.Port = probePort
	cfg.Backend.Interpreter = "sh"
	cfg.Backend.FallbackInterpreter = "sh"
	cfg.Backend.StartupGrace = 500 * time.Millisecond
	cfg.Backend.ProbeAttempts = 1
	cfg.Backend.ProbeInterval = time.Millisecond
	cfg.Backend.EntryFile = "serve.sh"

	s := New(cfg, nil)
	s.SetResolver(&Resolver{ExecDir: filepath.Join(root, "no-packaged"), WorkingDir: wd, EntryFile: "serve.sh"})
	defer s.Stop()

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	st := s.Status()
	if !st.Running || st.PID == 0 {
		t.Fatalf("unexpected status: %+v", st)
	}
	s.Stop()
	if s.Running() {
		t.Fatal("still running after stop")
	}
}

func TestLoadConfigFacade(t *testing.T) {
	path := writeConfig(t, "log_level = \"debug\"\n\n[backend]\nport = 9100\n")
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend.Port != 9100 || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.HealthURL() != "http://localhost:9100/" {
		t.Fatalf("health url: %s", cfg.HealthURL())
	}
}

func TestRegisterMetricsFacade(t *testing.T) {
	if err := RegisterMetrics(prometheus.NewRegistry()); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := RegisterMetricsDefault(); err != nil {
		t.Fatalf("register default: %v", err)
	}
}
