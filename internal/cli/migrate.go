package cli

import (
	"context"
	"fmt"

	"github.com/aretw0/exprmig"
	"github.com/aretw0/exprmig/internal/config"
	"github.com/aretw0/exprmig/internal/metrics"
	"github.com/aretw0/exprmig/internal/report"
)

// Migrate runs one migration session and writes its artifacts, summary and statistics.
func Migrate(ctx context.Context, cfg config.Config, deps Deps) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	deps = deps.withDefaults(cfg)
	logger := deps.Logger

	policy, _ := cfg.Policy()

	var table *exprmig.TranslationTable
	if cfg.Translation != "" {
		t, err := exprmig.LoadTranslationTable(cfg.Translation)
		if err != nil {
			return err
		}
		table = t
		logger.Info("loaded translation table", "path", cfg.Translation, "expressions", t.Len())
	}

	logScope(cfg, deps)

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

	collector := metrics.New()
	if cfg.Metrics.Addr != "" {
		srv := metrics.NewServer(cfg.Metrics.Addr, collector, logger)
		if _, err := srv.Start(ctx); err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
		defer srv.Shutdown(context.Background())
	}

	opts := []exprmig.Option{
		exprmig.WithLogger(logger),
		exprmig.WithTranslation(table),
		exprmig.WithCommit(cfg.Commit),
		exprmig.WithLanguagePolicy(policy),
		exprmig.WithScope(cfg.Scope),
		exprmig.WithBackupStore(backups),
		exprmig.WithLifecycleHooks(collector.Hooks()),
		exprmig.WithClock(deps.Clock),
	}
	if locker != nil {
		opts = append(opts, exprmig.WithLocker(locker, cfg.LockKey(), exprmig.DefaultLockTTL))
	}

	m, err := exprmig.New(store, opts...)
	if err != nil {
		return err
	}

	res, runErr := m.Run(ctx)
	if res == nil {
		return runErr
	}
	if runErr != nil {
		logger.Error("session ended early, writing partial artifacts", "err", runErr)
	}

	artifacts, err := report.WriteArtifacts(cfg.OutputDir, res.SessionID, res.Result)
	if err != nil {
		return err
	}

	printer := report.NewPrinter(deps.Out)
	printer.Summary(res.Result)
	if err := printer.Statistics(report.BuildPivot(res.Occurrences, cfg.Statistics)); err != nil {
		logger.Warn("failed to print statistics", "err", err)
	}
	printer.Artifacts(artifacts)
	if res.BackupSaved {
		printer.Line("\nBackup saved as session %s, undo with: exprmig rollback %s", res.SessionID, res.SessionID)
	}

	if cfg.Metrics.File != "" {
		if err := collector.WriteTextfile(cfg.Metrics.File); err != nil {
			logger.Warn("failed to export metrics", "err", err)
		}
	}

	return runErr
}

// logScope reports the active scope filters, one record per filter.
func logScope(cfg config.Config, deps Deps) {
	regex := []struct{ name, value string }{
		{"device id", cfg.DeviceIDRegex},
		{"entity type", cfg.EntityTypeRegex},
		{"service", cfg.ServiceRegex},
		{"servicepath", cfg.SubserviceRegex},
	}
	for _, f := range regex {
		if f.value != "" && f.value != ".*" {
			deps.Logger.Info("filtering by regex "+f.name, "pattern", f.value)
		}
	}

	exact := []struct{ name, value string }{
		{"device id", cfg.DeviceID},
		{"entity type", cfg.EntityType},
		{"service", cfg.Service},
		{"servicepath", cfg.Subservice},
	}
	for _, f := range exact {
		if f.value != "" {
			deps.Logger.Info("filtering by "+f.name, "value", f.value)
		}
	}
}
