// Package attach manages the attachments directory: decoded card
// attachments are written there and referenced by op file assignments.
package attach

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rciovati/safeincloud-to-1password/internal/security"
)

// Dir is the directory decoded attachments are written into. It is
// created before processing begins and passed explicitly to everything
// that writes attachments. Auto-created temp directories are removed by
// Cleanup; user-supplied directories are kept.
type Dir struct {
	path string
	auto bool
	used map[string]bool
}

// Resolve prepares the attachments directory. An empty path creates a
// fresh temp directory; a user-supplied path is created if needed
// (including parents) and never cleaned up.
func Resolve(path string) (*Dir, error) {
	if path == "" {
		tmp, err := os.MkdirTemp("", "sic2op_")
		if err != nil {
			return nil, fmt.Errorf("failed to create temp attachments dir: %w", err)
		}
		return &Dir{path: tmp, auto: true, used: make(map[string]bool)}, nil
	}

	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create attachments dir %q: %w", path, err)
	}
	return &Dir{path: path, used: make(map[string]bool)}, nil
}

// Path returns the directory path.
func (d *Dir) Path() string {
	return d.path
}

// AutoCreated reports whether the directory was auto-generated.
func (d *Dir) AutoCreated() bool {
	return d.auto
}

// Cleanup removes the directory if it was auto-generated. User-supplied
// directories are left in place so attachments outlive the process.
func (d *Dir) Cleanup() error {
	if !d.auto {
		return nil
	}
	return os.RemoveAll(d.path)
}

// Write stores one decoded attachment under a collision-free name derived
// from the given name, and returns the written path.
func (d *Dir) Write(name string, data []byte) (string, error) {
	if err := security.ValidateAttachmentSize(name, len(data)); err != nil {
		return "", err
	}

	unique := d.uniqueName(SafeFileName(name))
	path := filepath.Join(d.path, unique)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write attachment %q: %w", unique, err)
	}

	d.used[unique] = true
	return path, nil
}

// uniqueName returns name, or name with a numeric suffix inserted before
// the extension when the name was already handed out in this run.
func (d *Dir) uniqueName(name string) string {
	if !d.used[name] {
		return name
	}

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s_%d%s", base, i, ext)
		if !d.used[candidate] {
			return candidate
		}
	}
}

var unsafeFileChars = regexp.MustCompile(`[^\w.\-]+`)

// SafeFileName reduces a string to a filesystem-safe filename: runs of
// unsafe characters collapse to underscores and the result is capped at
// MaxFileNameLength bytes. Blank input yields "attachment".
func SafeFileName(s string) string {
	s = unsafeFileChars.ReplaceAllString(strings.TrimSpace(s), "_")
	if len(s) > security.MaxFileNameLength {
		s = s[:security.MaxFileNameLength]
	}
	if s == "" {
		return "attachment"
	}
	return s
}

// ImageFileName generates the filename for an embedded image: sanitized
// card title plus card and image indexes, with the extension detected
// from the decoded bytes. The index pair keeps names distinct across
// cards sharing a title.
func ImageFileName(title string, cardIndex, imageIndex int, data []byte) string {
	base := SafeFileName(fmt.Sprintf("%s_%d_%d", title, cardIndex, imageIndex))
	return base + GuessExtension(data)
}

// Magic numbers for the attachment formats SafeInCloud embeds.
var (
	pngMagic   = []byte("\x89PNG\r\n\x1a\n")
	jpegMagic  = []byte("\xff\xd8\xff")
	gif87Magic = []byte("GIF87a")
	gif89Magic = []byte("GIF89a")
	pdfMagic   = []byte("%PDF-")
)

// GuessExtension detects a file extension from content magic bytes.
// Unrecognized content defaults to .png, the common case for SafeInCloud
// card images.
func GuessExtension(data []byte) string {
	switch {
	case bytes.HasPrefix(data, pngMagic):
		return ".png"
	case bytes.HasPrefix(data, jpegMagic):
		return ".jpg"
	case bytes.HasPrefix(data, gif87Magic), bytes.HasPrefix(data, gif89Magic):
		return ".gif"
	case bytes.HasPrefix(data, pdfMagic):
		return ".pdf"
	default:
		return ".png"
	}
}
