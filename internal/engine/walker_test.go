package engine

import (
	"testing"

	"github.com/aretw0/exprmig/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(doc domain.Document) []Site {
	var sites []Site
	for s := range Locate(doc) {
		sites = append(sites, s)
	}
	return sites
}

func TestLocate_Order(t *testing.T) {
	doc := domain.Document{
		"explicitAttrs": true,
		"endpoint":      "http://host",
		"commands": []any{
			map[string]any{"name": "reset", "expression": "c0"},
		},
		"attributes": []any{
			map[string]any{"expression": "a0", "entity_name": "n0", "reverse": map[string]any{"expression": "r0"}},
		},
		"active": []any{
			map[string]any{"expression": "x0"},
			map[string]any{"entity_name": "n1", "reverse": map[string]any{"expression": "r1"}},
		},
		"entityNameExp": "e",
	}

	var paths []string
	var types []domain.SiteType
	for _, s := range collect(doc) {
		paths = append(paths, s.Path)
		types = append(types, s.Type)
	}

	assert.Equal(t, []string{
		"active[0].expression",
		"active[1].entity_name",
		"active[1].reverse.expression",
		"attributes[0].expression",
		"attributes[0].entity_name",
		"attributes[0].reverse.expression",
		"commands[0].expression",
		"endpoint",
		"entityNameExp",
		"explicitAttrs",
	}, paths)

	assert.Equal(t, []domain.SiteType{
		domain.SiteActiveExpression,
		domain.SiteActiveEntityName,
		domain.SiteActiveReverseExpression,
		domain.SiteAttributeExpression,
		domain.SiteAttributeEntityName,
		domain.SiteAttributeReverseExpression,
		domain.SiteCommandExpression,
		domain.SiteEndpoint,
		domain.SiteEntityNameExp,
		domain.SiteExplicitAttrs,
	}, types)
}

func TestLocate_SkipsMalformed(t *testing.T) {
	doc := domain.Document{
		"active":     "not an array",
		"attributes": []any{"not an object", nil, map[string]any{"reverse": "not an object"}},
		"commands":   []any{map[string]any{"name": "no expression"}},
	}

	assert.Empty(t, collect(doc))
}

func TestLocate_EmptyDocument(t *testing.T) {
	assert.Empty(t, collect(domain.Document{}))
	assert.Empty(t, collect(nil))
}

func TestSite_SetWritesInPlace(t *testing.T) {
	reverse := map[string]any{"expression": "${@old}"}
	doc := domain.Document{
		"attributes": []any{map[string]any{"reverse": reverse}},
		"endpoint":   "${@ep}",
	}

	sites := collect(doc)
	require.Len(t, sites, 2)

	sites[0].Set("new")
	sites[1].Set("ep")

	assert.Equal(t, "new", reverse["expression"])
	assert.Equal(t, "ep", doc["endpoint"])

	v, ok := sites[0].Get()
	assert.True(t, ok)
	assert.Equal(t, "new", v)
}

func TestLocate_StopsEarly(t *testing.T) {
	doc := domain.Document{"endpoint": "a", "entityNameExp": "b", "explicitAttrs": "c"}

	count := 0
	for range Locate(doc) {
		count++
		break
	}
	assert.Equal(t, 1, count)
}

func TestSiteFields(t *testing.T) {
	assert.Equal(t, []string{
		"active.expression",
		"active.entity_name",
		"active.reverse.expression",
		"attributes.expression",
		"attributes.entity_name",
		"attributes.reverse.expression",
		"commands.expression",
		"endpoint",
		"entityNameExp",
		"explicitAttrs",
	}, siteFields())
}
