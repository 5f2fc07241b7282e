//go:build notui

package spinner

// RunWithSpinner falls back to plain progress text in notui builds.
func RunWithSpinner(message string, successMsg string, fn func() error) error {
	return RunPlain(message, successMsg, fn)
}
