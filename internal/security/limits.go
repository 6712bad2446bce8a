package security

import "fmt"

// Input size limits. Exports are untrusted input; oversized payloads are
// rejected rather than written to disk.
const (
	// MaxAttachmentSize caps a single decoded attachment.
	MaxAttachmentSize = 10 * 1024 * 1024 // 10 MB

	// MaxFileNameLength caps generated attachment filenames.
	MaxFileNameLength = 80
)

// ValidateAttachmentSize rejects attachments larger than MaxAttachmentSize.
func ValidateAttachmentSize(name string, size int) error {
	if size > MaxAttachmentSize {
		return fmt.Errorf("attachment %q exceeds maximum size of %d bytes", name, MaxAttachmentSize)
	}
	return nil
}
