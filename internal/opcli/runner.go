package opcli

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// DefaultOpPath is the op binary name resolved through PATH.
const DefaultOpPath = "op"

// Runner executes op item create invocations as subprocesses.
type Runner struct {
	opPath string
}

// NewRunner creates a Runner using the given op binary path, or
// DefaultOpPath when empty.
func NewRunner(opPath string) *Runner {
	if opPath == "" {
		opPath = DefaultOpPath
	}
	return &Runner{opPath: opPath}
}

// OpPath returns the configured op binary path.
func (r *Runner) OpPath() string {
	return r.opPath
}

// Create runs the op invocation for one item and returns the tool's
// standard output. A non-zero exit or launch failure is surfaced as an
// *ErrToolFailed carrying the tool's own diagnostics. There are no
// retries; the call blocks until the tool exits.
func (r *Runner) Create(ctx context.Context, item *ItemCommand) (string, error) {
	cmd := exec.CommandContext(ctx, r.opPath, item.Args()...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		return "", &ErrToolFailed{
			Title:    item.Title,
			ExitCode: exitCode,
			Stdout:   stdout.String(),
			Stderr:   stderr.String(),
			Err:      err,
		}
	}

	return stdout.String(), nil
}
