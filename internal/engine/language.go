package engine

import "github.com/aretw0/exprmig/pkg/domain"

// ApplyLanguagePolicy normalizes the expressionLanguage field of doc in place.
// The outcome depends only on the policy and on whether the field is present.
// It reports whether the document was modified.
func ApplyLanguagePolicy(doc domain.Document, policy domain.LanguagePolicy) bool {
	prev, present := doc[domain.FieldExpressionLanguage]

	switch policy {
	case domain.LanguageDelete:
		if !present {
			return false
		}
		delete(doc, domain.FieldExpressionLanguage)
		return true
	case domain.LanguageJexl:
		if !present {
			return false
		}
	case domain.LanguageJexlAll:
	default:
		return false
	}

	doc[domain.FieldExpressionLanguage] = domain.ExpressionLanguageJexl
	return !present || prev != domain.ExpressionLanguageJexl
}
