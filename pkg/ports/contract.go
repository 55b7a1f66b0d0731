package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/exprmig/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ContractDocuments is the fixture a DocumentStore must be seeded with before
// RunDocumentStoreContract is called. Identifiers are strings so that every adapter
// can store them as-is.
func ContractDocuments() []domain.Document {
	return []domain.Document{
		{
			"_id":        "dev-1",
			"id":         "sensor-1",
			"type":       "Sensor",
			"service":    "smartcity",
			"subservice": "/gardens",
			"active": []any{
				map[string]any{"name": "t", "expression": "${@t * 2}"},
			},
		},
		{
			"_id":           "dev-2",
			"id":            "sensor-2",
			"type":          "Sensor",
			"service":       "smartcity",
			"subservice":    "/parking",
			"explicitAttrs": true,
			"attributes": []any{
				map[string]any{"name": "p", "reverse": map[string]any{"expression": "${@p}"}},
			},
		},
		{
			"_id":                "dev-3",
			"id":                 "meter-1",
			"type":               "Meter",
			"service":            "water",
			"subservice":         "/",
			"endpoint":           "http://device/cmd",
			"expressionLanguage": "legacy",
		},
	}
}

// RunDocumentStoreContract runs a suite of tests to verify that a DocumentStore implementation
// adheres to the defined interface contract. The store must hold exactly ContractDocuments.
func RunDocumentStoreContract(t *testing.T, store DocumentStore) {
	ctx := context.Background()

	ids := func(filter domain.Filter) []string {
		t.Helper()
		var out []string
		for doc, err := range store.Find(ctx, filter) {
			require.NoError(t, err)
			out = append(out, domain.FormatID(doc.ID()))
		}
		return out
	}

	t.Run("Find All", func(t *testing.T) {
		assert.ElementsMatch(t, []string{"dev-1", "dev-2", "dev-3"}, ids(domain.And{}))
	})

	t.Run("Find Equal", func(t *testing.T) {
		assert.ElementsMatch(t, []string{"dev-3"}, ids(domain.Equal{Field: "service", Value: "water"}))
	})

	t.Run("Find Regex Across Arrays", func(t *testing.T) {
		got := ids(domain.Regex{Field: "active.expression", Pattern: `\$\{.*@`})
		assert.Equal(t, []string{"dev-1"}, got)

		got = ids(domain.Regex{Field: "attributes.reverse.expression", Pattern: `\$\{.*@`})
		assert.Equal(t, []string{"dev-2"}, got)
	})

	t.Run("Regex Ignores Non-Strings", func(t *testing.T) {
		assert.Empty(t, ids(domain.Regex{Field: "explicitAttrs", Pattern: "true"}))
	})

	t.Run("Find Exists", func(t *testing.T) {
		assert.Equal(t, []string{"dev-3"}, ids(domain.Exists{Field: "expressionLanguage"}))
	})

	t.Run("Find And Or", func(t *testing.T) {
		filter := domain.And{
			domain.Or{
				domain.Regex{Field: "active.expression", Pattern: `\$\{.*@`},
				domain.Exists{Field: "expressionLanguage"},
			},
			domain.Regex{Field: "type", Pattern: "^Sen"},
		}
		assert.Equal(t, []string{"dev-1"}, ids(filter))
		assert.Empty(t, ids(domain.Or{}))
	})

	t.Run("Replace", func(t *testing.T) {
		var target domain.Document
		for doc, err := range store.Find(ctx, domain.Equal{Field: "_id", Value: "dev-1"}) {
			require.NoError(t, err)
			target = doc
		}
		require.NotNil(t, target)

		target["active"].([]any)[0].(map[string]any)["expression"] = "t * 2"
		target["expressionLanguage"] = "jexl"
		require.NoError(t, store.Replace(ctx, target.ID(), target))

		assert.Empty(t, ids(domain.Regex{Field: "active.expression", Pattern: `\$\{.*@`}))
		assert.ElementsMatch(t, []string{"dev-1", "dev-3"}, ids(domain.Exists{Field: "expressionLanguage"}))
	})

	t.Run("Replace Non-Existent", func(t *testing.T) {
		err := store.Replace(ctx, "missing", domain.Document{"_id": "missing"})
		assert.ErrorIs(t, err, domain.ErrDocumentNotFound)
	})
}

// RunBackupStoreContract runs a suite of tests to verify that a BackupStore implementation
// adheres to the defined interface contract.
func RunBackupStoreContract(t *testing.T, store BackupStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102T150405")

	docs := []domain.Document{
		{"_id": "dev-1", "service": "s", "active": []any{map[string]any{"expression": "${@a}"}}},
		{"_id": "dev-2", "service": "s", "explicitAttrs": true},
	}

	t.Run("Save and Load", func(t *testing.T) {
		err := store.Save(ctx, sessionID, docs)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		require.Len(t, loaded, 2)
		assert.Equal(t, "dev-1", domain.FormatID(loaded[0].ID()))
		assert.Equal(t, "${@a}", loaded[0]["active"].([]any)[0].(map[string]any)["expression"])
		assert.Equal(t, true, loaded[1]["explicitAttrs"])
	})

	t.Run("Save Existing Keeps First Set", func(t *testing.T) {
		err := store.Save(ctx, sessionID, docs[:1])
		assert.ErrorIs(t, err, domain.ErrBackupExists)

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Len(t, loaded, 2, "the first set must survive a second Save")
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrBackupNotFound)
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		require.NoError(t, store.Save(ctx, id1, docs))
		require.NoError(t, store.Save(ctx, id2, docs[:1]))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrBackupNotFound, "Load after Delete should return ErrBackupNotFound")

		require.NoError(t, store.Save(ctx, sessionID, docs[:1]), "a deleted session ID can be reused")
		require.NoError(t, store.Delete(ctx, sessionID))
	})
}
