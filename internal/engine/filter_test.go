package engine

import (
	"testing"

	"github.com/aretw0/exprmig/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFilter_Default(t *testing.T) {
	filter := BuildFilter(domain.LanguageIgnore, Scope{})

	and, ok := filter.(domain.And)
	require.True(t, ok)
	require.Len(t, and, 1)

	or, ok := and[0].(domain.Or)
	require.True(t, ok)
	require.Len(t, or, 10)
	for i, field := range siteFields() {
		assert.Equal(t, domain.Regex{Field: field, Pattern: LegacyPattern}, or[i])
	}
}

func TestBuildFilter_TaggedDocuments(t *testing.T) {
	for _, policy := range []domain.LanguagePolicy{domain.LanguageDelete, domain.LanguageJexlAll} {
		and := BuildFilter(policy, Scope{}).(domain.And)
		or := and[0].(domain.Or)
		require.Len(t, or, 11, string(policy))
		assert.Equal(t, domain.Exists{Field: "expressionLanguage"}, or[10])
	}

	and := BuildFilter(domain.LanguageJexl, Scope{}).(domain.And)
	assert.Len(t, and[0].(domain.Or), 10)
}

func TestBuildFilter_Scope(t *testing.T) {
	scope := Scope{
		ServiceRegex:    "^smart",
		SubserviceRegex: ".*",
		DeviceIDRegex:   "dev-.*",
		Service:         "smartcity",
		Subservice:      "/gardens",
	}

	and := BuildFilter(domain.LanguageIgnore, scope).(domain.And)
	require.Len(t, and, 5)

	assert.Equal(t, domain.Regex{Field: "id", Pattern: "dev-.*"}, and[1])
	assert.Equal(t, domain.Regex{Field: "service", Pattern: "^smart"}, and[2])
	assert.Equal(t, domain.Equal{Field: "service", Value: "smartcity"}, and[3])
	assert.Equal(t, domain.Equal{Field: "subservice", Value: "/gardens"}, and[4])
}
