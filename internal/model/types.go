// Package model defines the internal card data model shared by the source
// adapters and the op command builder.
package model

import "fmt"

// FieldType represents the 1Password assignment type for a field.
type FieldType int

const (
	// TypeText is a plain text field (the default classification).
	TypeText FieldType = iota
	// TypeEmail is an email address field.
	TypeEmail
	// TypePassword is a concealed password field.
	TypePassword
	// TypeURL is a website URL field.
	TypeURL
	// TypeFile is a file attachment field.
	TypeFile
)

// String returns the op CLI assignment type suffix for the field type.
func (t FieldType) String() string {
	switch t {
	case TypeText:
		return "text"
	case TypeEmail:
		return "email"
	case TypePassword:
		return "password"
	case TypeURL:
		return "url"
	case TypeFile:
		return "file"
	default:
		return fmt.Sprintf("unknown(%d)", t)
	}
}

// Concealed reports whether values of this field type are hidden in the
// 1Password UI.
func (t FieldType) Concealed() bool {
	return t == TypePassword
}

// ParseFieldType parses a string into a FieldType.
func ParseFieldType(s string) (FieldType, error) {
	switch s {
	case "text":
		return TypeText, nil
	case "email":
		return TypeEmail, nil
	case "password":
		return TypePassword, nil
	case "url":
		return TypeURL, nil
	case "file":
		return TypeFile, nil
	default:
		return TypeText, fmt.Errorf("unknown field type: %s", s)
	}
}
