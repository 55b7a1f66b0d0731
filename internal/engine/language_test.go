package engine

import (
	"testing"

	"github.com/aretw0/exprmig/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestApplyLanguagePolicy(t *testing.T) {
	tests := []struct {
		policy   domain.LanguagePolicy
		present  bool
		want     any
		wantSet  bool
		modified bool
	}{
		{domain.LanguageIgnore, true, "legacy", true, false},
		{domain.LanguageIgnore, false, nil, false, false},
		{domain.LanguageDelete, true, nil, false, true},
		{domain.LanguageDelete, false, nil, false, false},
		{domain.LanguageJexl, true, "jexl", true, true},
		{domain.LanguageJexl, false, nil, false, false},
		{domain.LanguageJexlAll, true, "jexl", true, true},
		{domain.LanguageJexlAll, false, "jexl", true, true},
	}

	for _, tt := range tests {
		name := string(tt.policy)
		if tt.present {
			name += "/present"
		} else {
			name += "/absent"
		}
		t.Run(name, func(t *testing.T) {
			doc := domain.Document{"_id": 1}
			if tt.present {
				doc["expressionLanguage"] = "legacy"
			}

			modified := ApplyLanguagePolicy(doc, tt.policy)
			assert.Equal(t, tt.modified, modified)

			v, ok := doc["expressionLanguage"]
			assert.Equal(t, tt.wantSet, ok)
			if tt.wantSet {
				assert.Equal(t, tt.want, v)
			}
		})
	}
}

func TestApplyLanguagePolicy_AlreadyJexl(t *testing.T) {
	doc := domain.Document{"expressionLanguage": "jexl"}

	assert.False(t, ApplyLanguagePolicy(doc, domain.LanguageJexlAll))
	assert.Equal(t, "jexl", doc["expressionLanguage"])
}
