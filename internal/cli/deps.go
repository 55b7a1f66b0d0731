package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/aretw0/exprmig/internal/config"
	"github.com/aretw0/exprmig/internal/logging"
	"github.com/aretw0/exprmig/pkg/adapters/file"
	"github.com/aretw0/exprmig/pkg/adapters/mongo"
	"github.com/aretw0/exprmig/pkg/adapters/redis"
	"github.com/aretw0/exprmig/pkg/persistence/middleware"
	"github.com/aretw0/exprmig/pkg/ports"
)

// Deps carries the collaborators of a command. Zero values select the production ones.
type Deps struct {
	Out    io.Writer
	Logger *slog.Logger
	// Store replaces the MongoDB connection, e.g. with an in-memory store.
	Store ports.DocumentStore
	Clock func() time.Time
}

func (d Deps) withDefaults(cfg config.Config) Deps {
	if d.Out == nil {
		d.Out = os.Stdout
	}
	if d.Logger == nil {
		d.Logger = logging.New(logging.Level(cfg.Debug))
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	return d
}

// openDocumentStore connects to MongoDB unless a store was injected.
func openDocumentStore(ctx context.Context, cfg config.Config, deps Deps) (ports.DocumentStore, func(), error) {
	if deps.Store != nil {
		return deps.Store, func() {}, nil
	}

	store, err := mongo.Connect(ctx, cfg.MongoURI, cfg.Database, cfg.Collection)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to %s: %w", cfg.MongoURI, err)
	}
	deps.Logger.Info("connected", "database", cfg.Database, "collection", cfg.Collection)

	return store, func() {
		if err := store.Close(context.Background()); err != nil {
			deps.Logger.Warn("failed to close mongo client", "err", err)
		}
	}, nil
}

// openBackupStore selects the Redis backup store and run guard when an address is
// configured, the file backup store otherwise. The locker is nil without Redis.
// Backup sets are sealed when an encryption key is configured.
func openBackupStore(ctx context.Context, cfg config.Config, deps Deps) (ports.BackupStore, ports.DistributedLocker, func(), error) {
	enc, err := cfg.Backup.Encryption()
	if err != nil {
		return nil, nil, nil, err
	}
	seal := func(store ports.BackupStore) (ports.BackupStore, error) {
		if enc == nil {
			return store, nil
		}
		mw, err := middleware.NewEncryptionMiddleware(*enc)
		if err != nil {
			return nil, err
		}
		deps.Logger.Debug("backup encryption enabled", "fallback_keys", len(enc.FallbackKeys))
		return middleware.Chain(store, mw), nil
	}

	if cfg.Redis.Addr == "" {
		store, err := seal(file.New(cfg.Backup.Dir))
		if err != nil {
			return nil, nil, nil, err
		}
		return store, nil, func() {}, nil
	}

	store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, redis.WithTTL(cfg.Backup.TTL))
	if err := store.Client().Ping(ctx).Err(); err != nil {
		store.Close()
		return nil, nil, nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.Redis.Addr, err)
	}
	deps.Logger.Debug("using redis backup store", "addr", cfg.Redis.Addr, "ttl", cfg.Backup.TTL)

	sealed, err := seal(store)
	if err != nil {
		store.Close()
		return nil, nil, nil, err
	}

	locker := redis.NewLocker(store.Client(), "exprmig:")
	return sealed, locker, func() {
		if err := store.Close(); err != nil {
			deps.Logger.Warn("failed to close redis client", "err", err)
		}
	}, nil
}
