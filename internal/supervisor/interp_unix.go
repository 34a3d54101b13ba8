//go:build !windows

package supervisor

// defaultInterpreters returns the platform interpreter command and its
// alternate. Unix installs typically expose python3; older ones only python.
func defaultInterpreters() (primary, fallback string) {
	return "python3", "python"
}
