package cli

import (
	"bytes"
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/exprmig/internal/config"
	"github.com/aretw0/exprmig/internal/logging"
	"github.com/aretw0/exprmig/pkg/adapters/memory"
	"github.com/aretw0/exprmig/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2024, 3, 9, 7, 5, 1, 0, time.UTC)

const sessionID = "20240309T070501"

func seed() *memory.Store {
	return memory.NewStore(
		domain.Document{
			"_id":        1,
			"service":    "s",
			"subservice": "/sp",
			"active":     []any{map[string]any{"expression": "${a@}"}},
		},
		domain.Document{
			"_id":        2,
			"service":    "t",
			"subservice": "/",
			"endpoint":   "${@unknown}",
		},
	)
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()

	translation := filepath.Join(dir, "translation.json")
	require.NoError(t, os.WriteFile(translation, []byte(`[["${a@}"], ["a"]]`), 0644))

	cfg := config.Default()
	cfg.Database = "iotagent"
	cfg.Collection = "devices"
	cfg.Translation = translation
	cfg.OutputDir = filepath.Join(dir, "out")
	cfg.Backup.Dir = filepath.Join(dir, "backups")
	return cfg
}

func testDeps(store *memory.Store, out *bytes.Buffer) Deps {
	return Deps{
		Out:    out,
		Logger: logging.NewNop(),
		Store:  store,
		Clock:  func() time.Time { return fixedTime },
	}
}

func TestMigrate_DryRun(t *testing.T) {
	var out bytes.Buffer
	store := seed()
	cfg := testConfig(t)

	require.NoError(t, Migrate(context.Background(), cfg, testDeps(store, &out)))

	assert.Contains(t, out.String(), "Found 2 legacy expressions in 2 documents")
	assert.NotContains(t, out.String(), "Updated")
	assert.Contains(t, out.String(), "| `${a@}` | 1 | 0 | 1 |")
	assert.Equal(t, 0, store.Replaces())

	for _, name := range []string{
		"legacy_expression_occurrences.json",
		"legacy_expressions_list.json",
		"documents_replaced.json",
		"documents_backup.json",
		"legacy_expression_errors.json",
	} {
		assert.FileExists(t, filepath.Join(cfg.OutputDir, sessionID+"_"+name))
	}
}

func TestMigrate_CommitThenRollback(t *testing.T) {
	var out bytes.Buffer
	store := seed()
	cfg := testConfig(t)
	cfg.Commit = true
	cfg.Metrics.File = filepath.Join(t.TempDir(), "exprmig.prom")

	require.NoError(t, Migrate(context.Background(), cfg, testDeps(store, &out)))

	assert.Contains(t, out.String(), "Updated 2 documents in the database")
	assert.Contains(t, out.String(), "exprmig rollback "+sessionID)

	doc, _ := store.Get(1)
	assert.Equal(t, "a", doc["active"].([]any)[0].(map[string]any)["expression"])

	prom, err := os.ReadFile(cfg.Metrics.File)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "exprmig_resolution_errors_total 1")

	out.Reset()
	require.NoError(t, ListBackups(context.Background(), cfg, testDeps(store, &out)))
	assert.Contains(t, out.String(), "- "+sessionID)

	out.Reset()
	require.NoError(t, Rollback(context.Background(), cfg, sessionID, "", testDeps(store, &out)))
	assert.Contains(t, out.String(), "Restored 2 documents")

	doc, _ = store.Get(1)
	assert.Equal(t, "${a@}", doc["active"].([]any)[0].(map[string]any)["expression"])

	out.Reset()
	require.NoError(t, DeleteBackups(context.Background(), cfg, []string{sessionID}, testDeps(store, &out)))
	out.Reset()
	require.NoError(t, ListBackups(context.Background(), cfg, testDeps(store, &out)))
	assert.Contains(t, out.String(), "No backups found.")
}

func TestRollback_FromArtifact(t *testing.T) {
	var out bytes.Buffer
	store := seed()
	cfg := testConfig(t)
	cfg.Commit = true

	require.NoError(t, Migrate(context.Background(), cfg, testDeps(store, &out)))

	artifact := filepath.Join(cfg.OutputDir, sessionID+"_documents_backup.json")
	require.NoError(t, Rollback(context.Background(), cfg, "", artifact, testDeps(store, &out)))

	doc, _ := store.Get(1)
	assert.Equal(t, "${a@}", doc["active"].([]any)[0].(map[string]any)["expression"])
}

func TestRollback_NeedsExactlyOneSource(t *testing.T) {
	cfg := testConfig(t)
	var out bytes.Buffer

	assert.Error(t, Rollback(context.Background(), cfg, "", "", testDeps(seed(), &out)))
	assert.Error(t, Rollback(context.Background(), cfg, "a", "b", testDeps(seed(), &out)))
}

func TestMigrate_ConfigErrors(t *testing.T) {
	var out bytes.Buffer

	cfg := testConfig(t)
	cfg.Commit = true
	cfg.Translation = ""
	assert.ErrorIs(t, Migrate(context.Background(), cfg, testDeps(seed(), &out)), domain.ErrTranslationRequired)

	cfg = testConfig(t)
	cfg.Translation = filepath.Join(t.TempDir(), "missing.json")
	assert.Error(t, Migrate(context.Background(), cfg, testDeps(seed(), &out)))

	assert.Empty(t, out.String())
}

func TestMigrate_RedisBackups(t *testing.T) {
	mr := miniredis.RunT(t)

	var out bytes.Buffer
	store := seed()
	cfg := testConfig(t)
	cfg.Commit = true
	cfg.Redis.Addr = mr.Addr()
	cfg.Backup.TTL = time.Hour

	require.NoError(t, Migrate(context.Background(), cfg, testDeps(store, &out)))
	assert.True(t, mr.Exists("exprmig:backup:"+sessionID))
	assert.False(t, mr.Exists("exprmig:lock:"+cfg.LockKey()), "run guard released")

	out.Reset()
	require.NoError(t, ListBackups(context.Background(), cfg, testDeps(store, &out)))
	assert.Contains(t, out.String(), sessionID)
}

func TestMigrate_RedisUnreachable(t *testing.T) {
	var out bytes.Buffer
	cfg := testConfig(t)
	cfg.Redis.Addr = "127.0.0.1:1"

	assert.Error(t, Migrate(context.Background(), cfg, testDeps(seed(), &out)))
}

func TestMigrate_EncryptedBackups(t *testing.T) {
	var out bytes.Buffer
	store := seed()
	cfg := testConfig(t)
	cfg.Commit = true
	cfg.Backup.EncryptionKey = base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{9}, 32))

	require.NoError(t, Migrate(context.Background(), cfg, testDeps(store, &out)))

	raw, err := os.ReadFile(filepath.Join(cfg.Backup.Dir, sessionID+".backup.json"))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "${a@}")

	require.NoError(t, Rollback(context.Background(), cfg, sessionID, "", testDeps(store, &out)))
	doc, _ := store.Get(1)
	assert.Equal(t, "${a@}", doc["active"].([]any)[0].(map[string]any)["expression"])

	cfg.Backup.EncryptionKey = base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{3}, 32))
	assert.Error(t, Rollback(context.Background(), cfg, sessionID, "", testDeps(store, &out)))
}
