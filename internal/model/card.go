package model

import "strings"

// Card represents one normalized credential entry read from a source.
// It is the intermediate representation between the export formats and the
// op item create command built for the entry.
type Card struct {
	// ID is a unique identifier for the card.
	ID string

	// Title is the display name for the card.
	Title string

	// Username is the login name, if the card has one.
	Username string

	// Password is the login password, if the card has one.
	Password string

	// URL is the associated website URL.
	URL string

	// Notes contains free-form text notes.
	Notes string

	// Fields holds the remaining named fields in document order.
	Fields []Field

	// Attachments holds decoded binary attachments in document order.
	Attachments []Attachment

	// Group is the label or folder the card belongs to, if any.
	Group string

	// Template marks cards that are empty templates rather than real
	// entries. Template cards are skipped during import.
	Template bool
}

// Field is a named custom field on a card. Its op field type is decided by
// name-based classification, never by the value.
type Field struct {
	Name  string
	Value string
}

// Attachment is a decoded binary payload attached to a card.
type Attachment struct {
	// Name is the filename provided by the source. Empty for embedded
	// images, which get a generated name when written to disk.
	Name string

	// Data is the decoded binary content.
	Data []byte

	// Image marks attachments that came from an <image> element and
	// need their file extension detected from the content.
	Image bool
}

// DisplayTitle returns the card title, or "Untitled" when it is blank.
func (c *Card) DisplayTitle() string {
	if t := strings.TrimSpace(c.Title); t != "" {
		return t
	}
	return "Untitled"
}

// IsEmpty returns true if the card has no meaningful data.
func (c *Card) IsEmpty() bool {
	if c == nil {
		return true
	}
	if c.Title != "" || c.Username != "" || c.Password != "" || c.URL != "" || c.Notes != "" {
		return false
	}
	if len(c.Fields) > 0 || len(c.Attachments) > 0 {
		return false
	}
	return true
}

// Sanitize removes leading/trailing whitespace from string fields.
func (c *Card) Sanitize() {
	if c == nil {
		return
	}

	c.ID = strings.TrimSpace(c.ID)
	c.Title = strings.TrimSpace(c.Title)
	c.Username = strings.TrimSpace(c.Username)
	c.Password = strings.TrimSpace(c.Password)
	c.URL = strings.TrimSpace(c.URL)
	c.Notes = strings.TrimSpace(c.Notes)
	c.Group = strings.TrimSpace(c.Group)

	for i := range c.Fields {
		c.Fields[i].Name = strings.TrimSpace(c.Fields[i].Name)
	}
	for i := range c.Attachments {
		c.Attachments[i].Name = strings.TrimSpace(c.Attachments[i].Name)
	}
}
