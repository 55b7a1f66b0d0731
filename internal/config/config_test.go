package config

import (
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/exprmig/pkg/domain"
	"github.com/aretw0/exprmig/pkg/persistence/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Empty(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_YAML(t *testing.T) {
	path := write(t, "exprmig.yaml", `
database: iotagentjson
collection: devices
commit: "true"
translation: translation.json
expressionlanguage: jexlall
statistics: subservice
regexservice: ^smart
servicepath: /gardens
backup:
  ttl: 72h
redis:
  addr: localhost:6379
  db: "2"
metrics:
  file: /var/lib/node_exporter/exprmig.prom
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "iotagentjson", cfg.Database)
	assert.Equal(t, "devices", cfg.Collection)
	assert.True(t, cfg.Commit)
	assert.Equal(t, "jexlall", cfg.ExpressionLanguage)
	assert.Equal(t, GroupBySubservice, cfg.Statistics)
	assert.Equal(t, "^smart", cfg.ServiceRegex)
	assert.Equal(t, ".*", cfg.DeviceIDRegex, "unset keys keep their defaults")
	assert.Equal(t, "/gardens", cfg.Subservice)
	assert.Equal(t, 72*time.Hour, cfg.Backup.TTL)
	assert.Equal(t, filepath.Join(".exprmig", "backups"), cfg.Backup.Dir)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, "/var/lib/node_exporter/exprmig.prom", cfg.Metrics.File)
	assert.NoError(t, cfg.Validate())

	policy, err := cfg.Policy()
	require.NoError(t, err)
	assert.Equal(t, domain.LanguageJexlAll, policy)
}

func TestLoad_JSON(t *testing.T) {
	path := write(t, "exprmig.json", `{"database": "db", "collection": "groups", "mongouri": "mongodb://mongo:27017"}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "groups", cfg.Collection)
	assert.Equal(t, "mongodb://mongo:27017", cfg.MongoURI)
}

func TestLoad_UnknownKey(t *testing.T) {
	path := write(t, "exprmig.yaml", "databse: typo\n")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		cfg := Default()
		cfg.Database = "db"
		cfg.Collection = "devices"
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		target error
	}{
		{"valid", func(*Config) {}, nil},
		{"missing database", func(c *Config) { c.Database = "" }, ErrMissingTarget},
		{"missing collection", func(c *Config) { c.Collection = "" }, ErrMissingTarget},
		{"invalid policy", func(c *Config) { c.ExpressionLanguage = "python" }, domain.ErrInvalidLanguagePolicy},
		{"invalid statistics", func(c *Config) { c.Statistics = "device" }, ErrInvalidStatistics},
		{"commit without translation", func(c *Config) { c.Commit = true }, domain.ErrTranslationRequired},
		{"short encryption key", func(c *Config) { c.Backup.EncryptionKey = "c2hvcnQ=" }, middleware.ErrInvalidKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.target == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestLockKey(t *testing.T) {
	cfg := Config{Database: "iotagent", Collection: "devices"}
	assert.Equal(t, "iotagent.devices", cfg.LockKey())
}

func TestBackupConfig_Encryption(t *testing.T) {
	key := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{7}, 32))
	old := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{1}, 32))

	enc, err := BackupConfig{}.Encryption()
	require.NoError(t, err)
	assert.Nil(t, enc)

	enc, err = BackupConfig{EncryptionKey: key, FallbackKeys: []string{old}}.Encryption()
	require.NoError(t, err)
	require.NotNil(t, enc)
	assert.Len(t, enc.ActiveKey, 32)
	assert.Len(t, enc.FallbackKeys, 1)

	_, err = BackupConfig{FallbackKeys: []string{old}}.Encryption()
	assert.Error(t, err)

	_, err = BackupConfig{EncryptionKey: key, FallbackKeys: []string{"%%"}}.Encryption()
	assert.Error(t, err)
}
