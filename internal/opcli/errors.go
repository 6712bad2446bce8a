package opcli

import (
	"errors"
	"fmt"
	"strings"
)

// ErrToolFailed indicates that an op item create invocation returned a
// non-zero exit code or could not be launched. It carries the tool's own
// output so the user can see op's diagnostic for the failing item.
type ErrToolFailed struct {
	Title    string // Title of the item being created
	ExitCode int    // Exit code, or -1 if the tool never launched
	Stdout   string
	Stderr   string
	Err      error
}

func (e *ErrToolFailed) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "op item create failed for %q", e.Title)
	if e.ExitCode >= 0 {
		fmt.Fprintf(&sb, " (exit code %d)", e.ExitCode)
	} else if e.Err != nil {
		fmt.Fprintf(&sb, ": %v", e.Err)
	}
	if out := strings.TrimSpace(e.Stdout); out != "" {
		sb.WriteString("\nstdout: " + out)
	}
	if errOut := strings.TrimSpace(e.Stderr); errOut != "" {
		sb.WriteString("\nstderr: " + errOut)
	}
	return sb.String()
}

func (e *ErrToolFailed) Unwrap() error {
	return e.Err
}

// IsToolFailure returns true if the error is a tool invocation failure.
func IsToolFailure(err error) bool {
	var toolErr *ErrToolFailed
	return errors.As(err, &toolErr)
}
