//go:build windows

package supervisor

// defaultInterpreters returns the platform interpreter command and its
// alternate. Windows Python installers register python, not python3.
func defaultInterpreters() (primary, fallback string) {
	return "python", "python3"
}
