package domain

import (
	"fmt"
	"strings"
)

// LanguagePolicy controls how the expressionLanguage field is normalized.
type LanguagePolicy string

const (
	// LanguageIgnore leaves the field untouched.
	LanguageIgnore LanguagePolicy = "ignore"
	// LanguageDelete removes the field when present.
	LanguageDelete LanguagePolicy = "delete"
	// LanguageJexl sets the field to "jexl" only when it is already present.
	LanguageJexl LanguagePolicy = "jexl"
	// LanguageJexlAll sets the field to "jexl" on every visited document.
	LanguageJexlAll LanguagePolicy = "jexlall"
)

// ParseLanguagePolicy parses a policy name. The empty string means LanguageIgnore.
func ParseLanguagePolicy(s string) (LanguagePolicy, error) {
	switch p := LanguagePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return LanguageIgnore, nil
	case LanguageIgnore, LanguageDelete, LanguageJexl, LanguageJexlAll:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q (want ignore, delete, jexl or jexlall)", ErrInvalidLanguagePolicy, s)
	}
}

// ScansTaggedDocuments reports whether documents that merely carry an
// expressionLanguage field must be selected, even without legacy expressions.
func (p LanguagePolicy) ScansTaggedDocuments() bool {
	return p == LanguageDelete || p == LanguageJexlAll
}
