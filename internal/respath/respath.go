// Package respath locates the backend entry point on disk. A packaged
// install carries the backend under a resources folder next to the shell
// executable (or inside the bundle's Resources folder on macOS); a
// development checkout keeps it under <project root>/src. Resolution is
// recomputed on every start so a layout change between runs is picked up.
package respath

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrEntryPointNotFound is returned when no packaged resource directory
// exists and the development-tree entry point is missing as well.
var ErrEntryPointNotFound = errors.New("backend entry point not found")

// Default layout constants matching the packaged product.
const (
	DefaultEntryFile   = "run_server.py"
	DefaultSourceDir   = "src"
	DefaultParentSteps = 2
)

// EntryPoint is the absolute path of the backend launch script plus the
// working directory it must be launched from. Immutable once computed.
type EntryPoint struct {
	Script string // absolute path to the entry script
	Dir    string // working directory for the spawned process
}

// Resolver probes packaged-resource layouts first and falls back to the
// development tree. The zero value is not usable; call New for defaults.
type Resolver struct {
	ExecDir     string // directory containing the running executable
	WorkingDir  string // origin for the development-tree fallback
	EntryFile   string // entry script file name
	SourceDir   string // source subdirectory holding the entry script
	ParentSteps int    // parents to climb from WorkingDir to the project root
}

// New returns a Resolver anchored at the running executable and the current
// working directory. Errors from the OS lookups are deferred to Resolve.
func New() *Resolver {
	r := &Resolver{
		EntryFile:   DefaultEntryFile,
		SourceDir:   DefaultSourceDir,
		ParentSteps: DefaultParentSteps,
	}
	if exe, err := os.Executable(); err == nil {
		r.ExecDir = filepath.Dir(exe)
	}
	if wd, err := os.Getwd(); err == nil {
		r.WorkingDir = wd
	}
	return r
}

// Resolve returns the entry point for the current install layout.
// The first packaged candidate directory that exists wins and its entry
// file is used as-is. Only the development fallback verifies that the
// entry file itself exists; a missing file there is the sole fatal error.
func (r *Resolver) Resolve() (EntryPoint, error) {
	for _, dir := range r.packagedCandidates() {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return EntryPoint{Script: filepath.Join(dir, r.entryFile()), Dir: dir}, nil
		}
	}
	return r.resolveDev()
}

// packagedCandidates lists resource directories in probe order: a resources
// folder beside the executable, then the macOS bundle Resources folder one
// level up.
func (r *Resolver) packagedCandidates() []string {
	if r.ExecDir == "" {
		return nil
	}
	src := r.sourceDir()
	return []string{
		filepath.Join(r.ExecDir, "resources", src),
		filepath.Join(r.ExecDir, "..", "Resources", "resources", src),
	}
}

// resolveDev climbs ParentSteps parents from WorkingDir to the assumed
// project root, then descends into the source directory.
func (r *Resolver) resolveDev() (EntryPoint, error) {
	if r.WorkingDir == "" {
		return EntryPoint{}, fmt.Errorf("%w: working directory unknown", ErrEntryPointNotFound)
	}
	root := r.WorkingDir
	steps := r.ParentSteps
	if steps <= 0 {
		steps = DefaultParentSteps
	}
	for i := 0; i < steps; i++ {
		root = filepath.Dir(root)
	}
	dir := filepath.Join(root, r.sourceDir())
	script := filepath.Join(dir, r.entryFile())
	if info, err := os.Stat(script); err != nil || info.IsDir() {
		return EntryPoint{}, fmt.Errorf("%w: %s", ErrEntryPointNotFound, script)
	}
	return EntryPoint{Script: script, Dir: dir}, nil
}

func (r *Resolver) entryFile() string {
	if r.EntryFile == "" {
		return DefaultEntryFile
	}
	return r.EntryFile
}

func (r *Resolver) sourceDir() string {
	if r.SourceDir == "" {
		return DefaultSourceDir
	}
	return r.SourceDir
}
