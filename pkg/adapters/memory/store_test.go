package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/exprmig/pkg/adapters/memory"
	"github.com/aretw0/exprmig/pkg/domain"
	"github.com/aretw0/exprmig/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore(ports.ContractDocuments()...)
	ports.RunDocumentStoreContract(t, store)
}

func TestMemoryBackupStore_Contract(t *testing.T) {
	store := memory.NewBackupStore()
	ports.RunBackupStoreContract(t, store)
}

func TestMemoryStore_Isolation(t *testing.T) {
	seed := domain.Document{"_id": "a", "active": []any{map[string]any{"expression": "x"}}}
	store := memory.NewStore(seed)

	// Mutating the seed after insertion must not change the stored document
	seed["active"].([]any)[0].(map[string]any)["expression"] = "mutated"

	got, ok := store.Get("a")
	require.True(t, ok)
	assert.Equal(t, "x", got["active"].([]any)[0].(map[string]any)["expression"])

	// Neither must mutating a document yielded by Find
	for doc, err := range store.Find(context.Background(), domain.And{}) {
		require.NoError(t, err)
		doc["active"] = nil
	}
	got, _ = store.Get("a")
	assert.NotNil(t, got["active"])
	assert.Equal(t, 0, store.Replaces())
}

func TestMemoryStore_FindCanceled(t *testing.T) {
	store := memory.NewStore(ports.ContractDocuments()...)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var errs []error
	for _, err := range store.Find(ctx, domain.And{}) {
		errs = append(errs, err)
	}
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], context.Canceled)
}

func TestMemoryStore_InvalidRegex(t *testing.T) {
	store := memory.NewStore(ports.ContractDocuments()...)
	for _, err := range store.Find(context.Background(), domain.Regex{Field: "service", Pattern: "("}) {
		assert.Error(t, err)
	}
}
