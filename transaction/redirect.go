package transaction

import (
	"fmt"
	"os/exec"
	"runtime"
)

// Executor performs the client-side hand-off to the external payment
// processor. Implementations hold no state.
type Executor interface {
	// Redirect navigates to the given gateway target. An empty target is a
	// caller error; implementations must reject it.
	Redirect(target string) error
}

// BrowserExecutor opens the gateway target in the system browser.
type BrowserExecutor struct{}

var _ Executor = BrowserExecutor{}

func (BrowserExecutor) Redirect(target string) error {
	if target == "" {
		return ErrNoRedirectTarget
	}
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", target)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", target)
	default:
		cmd = exec.Command("xdg-open", target)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("opening browser: %w", err)
	}
	return nil
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(target string) error

func (f ExecutorFunc) Redirect(target string) error {
	if target == "" {
		return ErrNoRedirectTarget
	}
	return f(target)
}
