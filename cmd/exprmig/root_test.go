package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parse builds a throwaway command carrying the root and migrate flags.
func parse(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	definePersistentFlags(cmd.Flags())
	defineMigrateFlags(cmd.Flags())
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestLoadConfig_Flags(t *testing.T) {
	cmd := parse(t,
		"--database", "iotagentjson",
		"--collection", "devices",
		"--commit",
		"--translation", "translation.json",
		"--expressionlanguage", "jexlall",
		"--regexservice", "^smart",
		"--servicepath", "/gardens",
		"--backup-ttl", "2h",
		"--redis-db", "3",
	)

	cfg, err := loadConfig(cmd)
	require.NoError(t, err)

	assert.Equal(t, "iotagentjson", cfg.Database)
	assert.True(t, cfg.Commit)
	assert.Equal(t, "jexlall", cfg.ExpressionLanguage)
	assert.Equal(t, "^smart", cfg.ServiceRegex)
	assert.Equal(t, ".*", cfg.DeviceIDRegex)
	assert.Equal(t, "/gardens", cfg.Subservice)
	assert.Equal(t, 2*time.Hour, cfg.Backup.TTL)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exprmig.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database: fromfile\ncollection: devices\nstatistics: subservice\n"), 0644))

	cmd := parse(t, "--config", path, "--database", "fromflag")

	cfg, err := loadConfig(cmd)
	require.NoError(t, err)
	assert.Equal(t, "fromflag", cfg.Database)
	assert.Equal(t, "devices", cfg.Collection)
	assert.Equal(t, "subservice", cfg.Statistics, "unset flags keep file values")
}

func TestCommands_Registered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"migrate", "rollback", "backups", "version"} {
		assert.True(t, names[want], want)
	}
}
