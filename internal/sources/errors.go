package sources

import (
	"errors"
	"fmt"
	"strings"
)

// Lifecycle errors shared by every adapter.
var (
	ErrNotOpen     = errors.New("source not open")
	ErrAlreadyOpen = errors.New("source already open")
)

// ErrSourceNotFound indicates no registered adapter recognized the path.
type ErrSourceNotFound struct {
	Path string
}

func (e *ErrSourceNotFound) Error() string {
	return fmt.Sprintf("no source found for %q", e.Path)
}

// ErrInvalidFormat indicates the input file could not be parsed. It is
// fatal to the run: a file that fails to parse yields no cards at all.
type ErrInvalidFormat struct {
	Source  string
	Path    string
	Details string
	Err     error
}

func (e *ErrInvalidFormat) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: invalid format for %q", e.Source, e.Path)
	if e.Details != "" {
		sb.WriteString(": " + e.Details)
	}
	if e.Err != nil {
		sb.WriteString(": " + e.Err.Error())
	}
	return sb.String()
}

func (e *ErrInvalidFormat) Unwrap() error { return e.Err }

// ErrAuthenticationFailed indicates a wrong password or key file.
type ErrAuthenticationFailed struct {
	Source string
	Path   string
	Reason string
	Err    error
}

func (e *ErrAuthenticationFailed) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: authentication failed for %q", e.Source, e.Path)
	if e.Reason != "" {
		sb.WriteString(": " + e.Reason)
	}
	if e.Err != nil {
		sb.WriteString(": " + e.Err.Error())
	}
	return sb.String()
}

func (e *ErrAuthenticationFailed) Unwrap() error { return e.Err }

// ErrFileNotFound indicates the input file does not exist.
type ErrFileNotFound struct {
	Path string
}

func (e *ErrFileNotFound) Error() string {
	return fmt.Sprintf("file not found: %q", e.Path)
}

// ErrPartialRead reports attachments or records that could not be
// decoded while the rest of the file read fine. The adapter still
// returns every readable card; each failure message names the card it
// belongs to so the user can find it in the export.
type ErrPartialRead struct {
	Source     string
	TotalCards int
	ReadCards  int
	Failures   []string
	Errs       []error
}

func (e *ErrPartialRead) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: partial read - %d of %d cards fully read",
		e.Source, e.ReadCards, e.TotalCards)
	if len(e.Failures) > 0 {
		sb.WriteString("\nFailures:")
		for _, f := range e.Failures {
			sb.WriteString("\n  - " + f)
		}
	}
	return sb.String()
}

// AddFailure records one decode failure.
func (e *ErrPartialRead) AddFailure(description string, err error) {
	e.Failures = append(e.Failures, description)
	if err != nil {
		e.Errs = append(e.Errs, err)
	}
}

// HasFailures reports whether any failure has been recorded.
func (e *ErrPartialRead) HasFailures() bool {
	return len(e.Failures) > 0
}

// IsAuthError reports whether err is an authentication failure.
func IsAuthError(err error) bool {
	var target *ErrAuthenticationFailed
	return errors.As(err, &target)
}

// IsFormatError reports whether err is a format error.
func IsFormatError(err error) bool {
	var target *ErrInvalidFormat
	return errors.As(err, &target)
}

// IsPartialRead reports whether err is a partial read.
func IsPartialRead(err error) bool {
	var target *ErrPartialRead
	return errors.As(err, &target)
}

// IsNotFound reports whether err is a missing file or unknown source.
func IsNotFound(err error) bool {
	var fileErr *ErrFileNotFound
	var sourceErr *ErrSourceNotFound
	return errors.As(err, &fileErr) || errors.As(err, &sourceErr)
}
