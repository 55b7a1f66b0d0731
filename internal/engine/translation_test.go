package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/exprmig/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestTranslationTable_Resolve(t *testing.T) {
	table, err := NewTranslationTable([]string{"${@a}", "${@b}", "${@a}"}, []string{"a", "b", "second"})
	require.NoError(t, err)

	assert.True(t, table.Loaded())
	assert.Equal(t, 2, table.Len())

	to, res := table.Resolve("${@a}")
	assert.Equal(t, Resolved, res)
	assert.Equal(t, "a", to, "first occurrence of a duplicate wins")

	_, res = table.Resolve("${@missing}")
	assert.Equal(t, Unresolved, res)
}

func TestTranslationTable_EmptyTranslation(t *testing.T) {
	table, err := NewTranslationTable([]string{"${@a}"}, []string{""})
	require.NoError(t, err)

	to, res := table.Resolve("${@a}")
	assert.Equal(t, Resolved, res)
	assert.Equal(t, "", to)
}

func TestTranslationTable_Nil(t *testing.T) {
	var table *TranslationTable

	assert.False(t, table.Loaded())
	assert.Equal(t, 0, table.Len())

	_, res := table.Resolve("${@a}")
	assert.Equal(t, NoTable, res)
}

func TestTranslationTable_Empty(t *testing.T) {
	table, err := NewTranslationTable(nil, nil)
	require.NoError(t, err)
	assert.False(t, table.Loaded())
}

func TestTranslationTable_Mismatch(t *testing.T) {
	_, err := NewTranslationTable([]string{"a", "b"}, []string{"a"})
	assert.ErrorIs(t, err, domain.ErrTranslationMismatch)
}

func TestLoadTranslationTable(t *testing.T) {
	t.Run("JSON", func(t *testing.T) {
		path := writeFile(t, "translation.json", `[["${@t * 2}", "${@p}"], ["t * 2", "p"]]`)

		table, err := LoadTranslationTable(path)
		require.NoError(t, err)

		to, res := table.Resolve("${@p}")
		assert.Equal(t, Resolved, res)
		assert.Equal(t, "p", to)
	})

	t.Run("YAML", func(t *testing.T) {
		path := writeFile(t, "translation.yaml", "- [\"${@t * 2}\"]\n- [\"t * 2\"]\n")

		table, err := LoadTranslationTable(path)
		require.NoError(t, err)

		to, res := table.Resolve("${@t * 2}")
		assert.Equal(t, Resolved, res)
		assert.Equal(t, "t * 2", to)
	})

	t.Run("Wrong Shape", func(t *testing.T) {
		path := writeFile(t, "translation.json", `[["a"]]`)

		_, err := LoadTranslationTable(path)
		assert.Error(t, err)
	})

	t.Run("Mismatch", func(t *testing.T) {
		path := writeFile(t, "translation.json", `[["a", "b"], ["a"]]`)

		_, err := LoadTranslationTable(path)
		assert.ErrorIs(t, err, domain.ErrTranslationMismatch)
	})

	t.Run("Invalid JSON", func(t *testing.T) {
		path := writeFile(t, "translation.json", `{`)

		_, err := LoadTranslationTable(path)
		assert.Error(t, err)
	})

	t.Run("Missing File", func(t *testing.T) {
		_, err := LoadTranslationTable(filepath.Join(t.TempDir(), "missing.json"))
		assert.Error(t, err)
	})
}
