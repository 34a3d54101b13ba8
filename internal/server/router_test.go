package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/krya-ai/shell/internal/history"
	"github.com/krya-ai/shell/internal/respath"
	"github.com/krya-ai/shell/internal/supervisor"
)

func requireUnix(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("tests require sh on Unix-like systems")
	}
}

func newTestRouter(t *testing.T) *Router {
	t.Helper()
	root := t.TempDir()
	src := filepath.Join(root, "src")
	if err := os.MkdirAll(src, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "run_server.py"), []byte("#!/bin/sh\nsleep 5\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	wd := filepath.Join(root, "ui", "src-shell")
	if err := os.MkdirAll(wd, 0o755); err != nil {
		t.Fatal(err)
	}

	sup := supervisor.New(supervisor.Config{
		Interpreter:         "sh",
		FallbackInterpreter: "sh",
		HealthURL:           "http://127.0.0.1:1/",
		ProbeAttempts:       1,
		ProbeInterval:       time.Millisecond,
		StartupGrace:        50 * time.Millisecond,
	}, nil)
	sup.SetResolver(&respath.Resolver{ExecDir: filepath.Join(root, "none"), WorkingDir: wd})
	t.Cleanup(sup.Stop)

	return NewRouter(sup, nil, "/api")
}

func do(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	h.ServeHTTP(rec, req)
	return rec
}

func TestStatusEndpoint(t *testing.T) {
	r := newTestRouter(t)
	h := r.Handler()

	rec := do(t, h, http.MethodGet, "/api/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("status code = %d", rec.Code)
	}
	var st supervisor.Status
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if st.Running {
		t.Fatalf("backend unexpectedly running: %+v", st)
	}
}

func TestStartStopRoundTrip(t *testing.T) {
	requireUnix(t)
	r := newTestRouter(t)
	h := r.Handler()

	if rec := do(t, h, http.MethodPost, "/api/start"); rec.Code != http.StatusOK {
		t.Fatalf("start code = %d body = %s", rec.Code, rec.Body.String())
	}
	rec := do(t, h, http.MethodGet, "/api/status")
	var st supervisor.Status
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatal(err)
	}
	if !st.Running || st.PID == 0 {
		t.Fatalf("backend not running after /start: %+v", st)
	}

	if rec := do(t, h, http.MethodPost, "/api/stop"); rec.Code != http.StatusOK {
		t.Fatalf("stop code = %d", rec.Code)
	}
	rec = do(t, h, http.MethodGet, "/api/status")
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatal(err)
	}
	if st.Running {
		t.Fatalf("backend still running after /stop: %+v", st)
	}
}

func TestStartReportsResolutionFailure(t *testing.T) {
	root := t.TempDir()
	sup := supervisor.New(supervisor.Config{Interpreter: "sh"}, nil)
	sup.SetResolver(&respath.Resolver{
		ExecDir:    filepath.Join(root, "none"),
		WorkingDir: filepath.Join(root, "ui", "src-shell"),
	})
	r := NewRouter(sup, nil, "/api")

	rec := do(t, r.Handler(), http.MethodPost, "/api/start")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unresolvable entry point, got %d", rec.Code)
	}
}

func TestEventsEndpoint(t *testing.T) {
	r := newTestRouter(t)
	h := r.Handler()

	rec := do(t, h, http.MethodGet, "/api/events")
	if rec.Code != http.StatusOK {
		t.Fatalf("events code = %d", rec.Code)
	}
	var events []history.Event
	if err := json.Unmarshal(rec.Body.Bytes(), &events); err != nil {
		t.Fatalf("decode events: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected empty journal, got %d", len(events))
	}

	if rec := do(t, h, http.MethodGet, "/api/events?limit=bogus"); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", rec.Code)
	}
}

func TestHealthzEndpoint(t *testing.T) {
	r := newTestRouter(t)
	if rec := do(t, r.Handler(), http.MethodGet, "/api/healthz"); rec.Code != http.StatusOK {
		t.Fatalf("healthz code = %d", rec.Code)
	}
}

func TestSanitizeBase(t *testing.T) {
	cases := map[string]string{
		"":      "",
		"/":     "",
		"api":   "/api",
		"/api":  "/api",
		"/api/": "/api",
	}
	for in, want := range cases {
		if got := sanitizeBase(in); got != want {
			t.Fatalf("sanitizeBase(%q) = %q, want %q", in, got, want)
		}
	}
}
