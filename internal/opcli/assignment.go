package opcli

import (
	"strings"

	"github.com/rciovati/safeincloud-to-1password/internal/model"
)

// fieldLabelPrefix is prepended to custom field labels to keep them from
// colliding with 1Password's built-in field names.
const fieldLabelPrefix = "S:"

// Assignment is one `label[type]=value` argument of an op item create
// invocation. Built-in fields (username, password, notesPlain) carry no
// type suffix.
type Assignment struct {
	// Label is the unescaped field label.
	Label string

	// Type is the op field type. Only meaningful when Typed is true.
	Type model.FieldType

	// Typed controls whether the [type] suffix is emitted.
	Typed bool

	// Value is the field value, or the file path for file assignments.
	// Values are never escaped; op only requires escaping in labels.
	Value string
}

// String renders the assignment as a single op CLI argument.
func (a Assignment) String() string {
	var sb strings.Builder
	sb.WriteString(escapeLabel(a.Label))
	if a.Typed {
		sb.WriteString("[")
		sb.WriteString(a.Type.String())
		sb.WriteString("]")
	}
	sb.WriteString("=")
	sb.WriteString(a.Value)
	return sb.String()
}

// builtinAssignment creates an untyped assignment for a built-in field.
func builtinAssignment(label, value string) Assignment {
	return Assignment{Label: label, Value: value}
}

// fieldAssignment creates a typed assignment for a classified custom field.
func fieldAssignment(label string, fieldType model.FieldType, value string) Assignment {
	return Assignment{Label: label, Type: fieldType, Typed: true, Value: value}
}

// fileAssignment creates a file-type assignment referencing a path on disk.
func fileAssignment(label, path string) Assignment {
	return Assignment{Label: label, Type: model.TypeFile, Typed: true, Value: path}
}

// escapeLabel escapes the characters op treats specially in assignment
// labels: backslashes, periods, and equal signs.
func escapeLabel(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `.`, `\.`)
	s = strings.ReplaceAll(s, `=`, `\=`)
	return s
}
