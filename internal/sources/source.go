// Package sources provides adapters for reading cards from password
// manager export formats.
package sources

import (
	"github.com/rciovati/safeincloud-to-1password/internal/model"
)

// Source defines the interface for card source adapters.
// Each adapter reads one export format (SafeInCloud XML, KeePass .kdbx)
// and converts its entries to the internal card representation.
type Source interface {
	// Name returns the unique identifier for this source (e.g. "safeincloud").
	Name() string

	// Description returns a human-readable description of the source.
	Description() string

	// SupportedExtensions returns file extensions this source handles.
	SupportedExtensions() []string

	// Detect checks if the given path is valid for this source.
	// Returns a confidence score from 0-100 (100 = definitely this format).
	// A score of 0 means this source cannot handle the path.
	Detect(path string) (confidence int, err error)

	// Open initializes the source with the given path and options.
	// Parse failures abort the run: Open returns an *ErrInvalidFormat
	// and no cards are produced.
	Open(path string, opts OpenOptions) error

	// Read returns all cards from the source in document order.
	// May be called multiple times; returns the same results.
	// Returns *ErrPartialRead when some attachments or entries could not
	// be decoded; the successfully read cards are still returned.
	Read() ([]model.Card, error)

	// Close releases any resources held by the source.
	// Should clear sensitive data from memory where possible.
	Close() error
}

// OpenOptions provides configuration for opening a source.
type OpenOptions struct {
	// Password for encrypted sources (KeePass).
	Password string

	// KeyFilePath for sources that support key files (KeePass).
	KeyFilePath string

	// Interactive indicates whether the source may prompt for missing
	// credentials. If true, PasswordFunc is called when a password is
	// needed and none was supplied.
	Interactive bool

	// PasswordFunc is a callback for interactive password entry.
	PasswordFunc func(prompt string) (string, error)
}
