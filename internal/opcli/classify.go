// Package opcli builds and executes 1Password CLI (op) item create
// invocations from cards.
package opcli

import (
	"strings"

	"github.com/rciovati/safeincloud-to-1password/internal/model"
)

// classificationRule pairs a field-name predicate with the op field type
// it assigns. Rules are checked in order; the first match wins.
type classificationRule struct {
	match     func(name string) bool
	fieldType model.FieldType
}

// classificationRules is the ordered classification policy. The order is
// user-visible behavior: a field named "email_password" is an email field
// because the email rule is checked first.
//
// Matching is by case-insensitive substring, so "pin" also matches
// unrelated words like "Pinterest". That is a known limitation of the
// heuristic, kept as documented behavior.
var classificationRules = []classificationRule{
	{nameContains("email"), model.TypeEmail},
	{nameContains("password", "pin"), model.TypePassword},
}

// ClassifyFieldName decides the op field type for a custom field from its
// name alone. It is a pure function: the field's value never participates.
// Names matching no rule are plain text fields.
func ClassifyFieldName(name string) model.FieldType {
	n := strings.ToLower(strings.TrimSpace(name))
	for _, rule := range classificationRules {
		if rule.match(n) {
			return rule.fieldType
		}
	}
	return model.TypeText
}

// nameContains returns a predicate matching names that contain any of the
// given lowercase substrings.
func nameContains(substrings ...string) func(string) bool {
	return func(name string) bool {
		for _, sub := range substrings {
			if strings.Contains(name, sub) {
				return true
			}
		}
		return false
	}
}
