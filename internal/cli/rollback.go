package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/exprmig"
	"github.com/aretw0/exprmig/internal/config"
	"github.com/aretw0/exprmig/pkg/codec"
)

// Rollback restores the documents of a saved backup set, or of a backup artifact
// when fromFile is set.
func Rollback(ctx context.Context, cfg config.Config, sessionID, fromFile string, deps Deps) error {
	if cfg.Database == "" || cfg.Collection == "" {
		return config.ErrMissingTarget
	}
	if (sessionID == "") == (fromFile == "") {
		return errors.New("give either a session ID or a backup file")
	}
	deps = deps.withDefaults(cfg)

	store, closeStore, err := openDocumentStore(ctx, cfg, deps)
	if err != nil {
		return err
	}
	defer closeStore()

	backups, locker, closeBackups, err := openBackupStore(ctx, cfg, deps)
	if err != nil {
		return err
	}
	defer closeBackups()

	opts := []exprmig.Option{
		exprmig.WithLogger(deps.Logger),
		exprmig.WithBackupStore(backups),
	}
	if locker != nil {
		opts = append(opts, exprmig.WithLocker(locker, cfg.LockKey(), exprmig.DefaultLockTTL))
	}
	m, err := exprmig.New(store, opts...)
	if err != nil {
		return err
	}

	var restored int
	if fromFile != "" {
		data, err := os.ReadFile(fromFile)
		if err != nil {
			return fmt.Errorf("failed to read backup file: %w", err)
		}
		docs, err := codec.UnmarshalDocuments(data)
		if err != nil {
			return fmt.Errorf("failed to parse backup file: %w", err)
		}
		restored, err = m.Restore(ctx, docs)
		fmt.Fprintf(deps.Out, "Restored %d documents in the database\n", restored)
		return err
	}

	restored, err = m.Rollback(ctx, sessionID)
	fmt.Fprintf(deps.Out, "Restored %d documents in the database\n", restored)
	return err
}
