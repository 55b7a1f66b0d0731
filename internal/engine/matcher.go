package engine

import (
	"fmt"
	"regexp"
)

// LegacyPattern recognizes the legacy dialect: a "${" template opening followed,
// anywhere later on the same line, by the "@" context sigil. It does not check
// that delimiters are balanced.
const LegacyPattern = `\$\{.*@`

var legacyExpr = regexp.MustCompile(LegacyPattern)

// Matches reports whether v plausibly contains a legacy expression.
// Non-string values are matched against their textual form.
func Matches(v any) bool {
	return legacyExpr.MatchString(Text(v))
}

// Text renders a field value for matching and reporting. It never fails.
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
