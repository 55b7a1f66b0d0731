package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/exprmig/internal/config"
)

// ListBackups prints the sessions that have a saved backup set.
func ListBackups(ctx context.Context, cfg config.Config, deps Deps) error {
	deps = deps.withDefaults(cfg)

	backups, _, closeBackups, err := openBackupStore(ctx, cfg, deps)
	if err != nil {
		return err
	}
	defer closeBackups()

	sessions, err := backups.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	if len(sessions) == 0 {
		fmt.Fprintln(deps.Out, "No backups found.")
		return nil
	}

	fmt.Fprintln(deps.Out, "Backups:")
	for _, s := range sessions {
		fmt.Fprintln(deps.Out, "- "+s)
	}
	return nil
}

// DeleteBackups removes the backup sets of the given sessions. Every session is
// attempted; failures are joined.
func DeleteBackups(ctx context.Context, cfg config.Config, sessionIDs []string, deps Deps) error {
	deps = deps.withDefaults(cfg)

	backups, _, closeBackups, err := openBackupStore(ctx, cfg, deps)
	if err != nil {
		return err
	}
	defer closeBackups()

	var errs []error
	for _, id := range sessionIDs {
		if err := backups.Delete(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("failed to remove %s: %w", id, err))
			continue
		}
		fmt.Fprintf(deps.Out, "Removed backup '%s'\n", id)
	}
	return errors.Join(errs...)
}
