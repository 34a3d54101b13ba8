package respath

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestResolvePrefersPackagedResources(t *testing.T) {
	dir := t.TempDir()
	exeDir := filepath.Join(dir, "bin")
	resDir := filepath.Join(exeDir, "resources", "src")
	if err := os.MkdirAll(resDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(resDir, "run_server.py"), []byte("# server"), 0o644); err != nil {
		t.Fatal(err)
	}
	// A development-tree entry point exists too; packaged must still win.
	devSrc := filepath.Join(dir, "src")
	if err := os.MkdirAll(devSrc, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(devSrc, "run_server.py"), []byte("# dev"), 0o644); err != nil {
		t.Fatal(err)
	}

	r := &Resolver{
		ExecDir:     exeDir,
		WorkingDir:  filepath.Join(dir, "ui", "src-shell"),
		EntryFile:   DefaultEntryFile,
		SourceDir:   DefaultSourceDir,
		ParentSteps: DefaultParentSteps,
	}
	ep, err := r.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if ep.Dir != resDir {
		t.Fatalf("expected packaged dir %q, got %q", resDir, ep.Dir)
	}
	if ep.Script != filepath.Join(resDir, "run_server.py") {
		t.Fatalf("unexpected script path %q", ep.Script)
	}
}

func TestResolveMacBundleLayout(t *testing.T) {
	dir := t.TempDir()
	exeDir := filepath.Join(dir, "Contents", "MacOS")
	resDir := filepath.Join(dir, "Contents", "Resources", "resources", "src")
	for _, d := range []string{exeDir, resDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatal(err)
		}
	}

	r := &Resolver{ExecDir: exeDir, WorkingDir: dir}
	ep, err := r.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	// filepath.Join collapses the ".." segment.
	want := filepath.Join(dir, "Contents", "Resources", "resources", "src")
	if ep.Dir != want {
		t.Fatalf("expected bundle dir %q, got %q", want, ep.Dir)
	}
}

func TestResolveDevFallback(t *testing.T) {
	root := t.TempDir()
	devSrc := filepath.Join(root, "src")
	if err := os.MkdirAll(devSrc, 0o755); err != nil {
		t.Fatal(err)
	}
	script := filepath.Join(devSrc, "run_server.py")
	if err := os.WriteFile(script, []byte("# dev"), 0o644); err != nil {
		t.Fatal(err)
	}
	// Two levels below the project root, like ui/src-shell in a checkout.
	wd := filepath.Join(root, "ui", "src-shell")
	if err := os.MkdirAll(wd, 0o755); err != nil {
		t.Fatal(err)
	}

	r := &Resolver{ExecDir: filepath.Join(root, "nonexistent"), WorkingDir: wd}
	ep, err := r.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if ep.Script != script {
		t.Fatalf("expected dev script %q, got %q", script, ep.Script)
	}
	if ep.Dir != devSrc {
		t.Fatalf("expected dev dir %q, got %q", devSrc, ep.Dir)
	}
}

func TestResolveNotFound(t *testing.T) {
	root := t.TempDir()
	wd := filepath.Join(root, "ui", "src-shell")
	if err := os.MkdirAll(wd, 0o755); err != nil {
		t.Fatal(err)
	}

	r := &Resolver{ExecDir: filepath.Join(root, "nonexistent"), WorkingDir: wd}
	_, err := r.Resolve()
	if !errors.Is(err, ErrEntryPointNotFound) {
		t.Fatalf("expected ErrEntryPointNotFound, got %v", err)
	}
}

func TestNewFillsDefaults(t *testing.T) {
	r := New()
	if r.EntryFile != DefaultEntryFile || r.SourceDir != DefaultSourceDir {
		t.Fatalf("defaults not applied: %+v", r)
	}
	if r.ParentSteps != DefaultParentSteps {
		t.Fatalf("parent steps default not applied: %d", r.ParentSteps)
	}
	if r.ExecDir == "" || r.WorkingDir == "" {
		t.Fatalf("exec/working dir not discovered: %+v", r)
	}
}
