package exprmig

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/exprmig/internal/engine"
	"github.com/aretw0/exprmig/internal/logging"
	"github.com/aretw0/exprmig/internal/report"
	"github.com/aretw0/exprmig/pkg/domain"
	"github.com/aretw0/exprmig/pkg/ports"
)

// DefaultLockTTL bounds how long a crashed committing run can keep the collection locked.
const DefaultLockTTL = 30 * time.Minute

// maxSessionSuffix bounds the "-N" suffixes tried when a session ID already holds a backup.
const maxSessionSuffix = 100

// TranslationTable maps legacy expressions to their replacement.
type TranslationTable = engine.TranslationTable

// Scope narrows the documents selected for migration.
type Scope = engine.Scope

// LoadTranslationTable reads a JSON or YAML translation file.
func LoadTranslationTable(path string) (*TranslationTable, error) {
	return engine.LoadTranslationTable(path)
}

// NewTranslationTable builds a table from positional from/to lists.
func NewTranslationTable(from, to []string) (*TranslationTable, error) {
	return engine.NewTranslationTable(from, to)
}

// Result is the outcome of one migration session.
type Result struct {
	*engine.Result

	// SessionID keys the artifacts and the saved backup set.
	SessionID string
	// BackupSaved reports whether the backup set reached the backup store.
	BackupSaved bool
}

// Migrator is the high-level entry point of the library.
// It wraps the engine session with backups, the run guard and hooks.
type Migrator struct {
	store   ports.DocumentStore
	backups ports.BackupStore
	locker  ports.DistributedLocker
	lockKey string
	lockTTL time.Duration

	table  *TranslationTable
	commit bool
	policy domain.LanguagePolicy
	scope  Scope

	hooks  domain.LifecycleHooks
	logger *slog.Logger
	clock  func() time.Time
}

// Option defines a functional option for configuring the Migrator.
type Option func(*Migrator)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Migrator) {
		m.logger = logger
	}
}

// WithTranslation sets the translation table. Without one every run is a dry run.
func WithTranslation(table *TranslationTable) Option {
	return func(m *Migrator) {
		m.table = table
	}
}

// WithCommit persists the rewritten documents.
func WithCommit(commit bool) Option {
	return func(m *Migrator) {
		m.commit = commit
	}
}

// WithLanguagePolicy sets how expressionLanguage is normalized.
func WithLanguagePolicy(policy domain.LanguagePolicy) Option {
	return func(m *Migrator) {
		m.policy = policy
	}
}

// WithScope restricts the selected documents.
func WithScope(scope Scope) Option {
	return func(m *Migrator) {
		m.scope = scope
	}
}

// WithBackupStore saves the pre-images of committing runs so that they can be rolled back.
func WithBackupStore(store ports.BackupStore) Option {
	return func(m *Migrator) {
		m.backups = store
	}
}

// WithLocker guards committing runs and rollbacks with a distributed lock on key.
func WithLocker(locker ports.DistributedLocker, key string, ttl time.Duration) Option {
	return func(m *Migrator) {
		m.locker = locker
		m.lockKey = key
		m.lockTTL = ttl
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Migrator) {
		m.hooks = hooks
	}
}

// WithClock overrides the time source of session IDs.
func WithClock(clock func() time.Time) Option {
	return func(m *Migrator) {
		m.clock = clock
	}
}

// New creates a Migrator over store.
func New(store ports.DocumentStore, opts ...Option) (*Migrator, error) {
	if store == nil {
		return nil, errors.New("document store is required")
	}

	m := &Migrator{
		store:   store,
		policy:  domain.LanguageIgnore,
		lockTTL: DefaultLockTTL,
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.logger == nil {
		m.logger = logging.NewNop()
	}
	if m.lockTTL <= 0 {
		m.lockTTL = DefaultLockTTL
	}
	return m, nil
}

// Run executes one migration session.
// Configuration errors are returned before any document is read. A committing run saves
// its backup set before the first replace; when that fails, nothing is replaced and the
// partial result is returned with the error. A scan failure also returns the partial result.
func (m *Migrator) Run(ctx context.Context) (*Result, error) {
	sessionID := report.SessionID(m.clock())
	result := &Result{SessionID: sessionID}
	logger := m.logger.With("session", sessionID)

	opts := []engine.Option{engine.WithLogger(m.logger), engine.WithLifecycleHooks(m.hooks)}
	if m.commit && m.backups != nil {
		opts = append(opts, engine.WithCheckpoint(func(ctx context.Context, backups []domain.Document) error {
			id, err := m.saveBackups(ctx, sessionID, backups)
			if err != nil {
				logger.Error("failed to save backup set", "err", err)
				return fmt.Errorf("failed to save backup set: %w", err)
			}
			result.SessionID = id
			result.BackupSaved = true
			logger.Info("saved backup set", "id", id, "documents", len(backups))
			return nil
		}))
	}

	session := engine.NewSession(m.store, engine.Config{
		Commit: m.commit,
		Table:  m.table,
		Policy: m.policy,
		Scope:  m.scope,
	}, opts...)

	if err := session.Validate(); err != nil {
		return nil, err
	}

	if m.commit {
		unlock, err := m.lock(ctx)
		if err != nil {
			return nil, err
		}
		defer unlock()
		logger.Info("running in commit mode, this will update the database")
	}

	res, err := session.Run(ctx)
	result.Result = res
	return result, err
}

// saveBackups stores the set under base, or under base-N when base is already taken
// by an earlier session that started in the same second.
func (m *Migrator) saveBackups(ctx context.Context, base string, docs []domain.Document) (string, error) {
	id := base
	for n := 2; ; n++ {
		err := m.backups.Save(ctx, id, docs)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, domain.ErrBackupExists) || n > maxSessionSuffix {
			return "", err
		}
		id = fmt.Sprintf("%s-%d", base, n)
	}
}

// Rollback restores every document of a saved backup set. It returns how many
// documents were restored.
func (m *Migrator) Rollback(ctx context.Context, sessionID string) (int, error) {
	if m.backups == nil {
		return 0, errors.New("no backup store configured")
	}

	docs, err := m.backups.Load(ctx, sessionID)
	if err != nil {
		return 0, fmt.Errorf("failed to load backup %s: %w", sessionID, err)
	}
	return m.Restore(ctx, docs)
}

// Restore replaces each document in the store with the given pre-image.
// Failures do not stop the restore; they are joined in the returned error.
func (m *Migrator) Restore(ctx context.Context, docs []domain.Document) (int, error) {
	unlock, err := m.lock(ctx)
	if err != nil {
		return 0, err
	}
	defer unlock()

	restored := 0
	var errs []error
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		id := domain.FormatID(doc.ID())
		if err := m.store.Replace(ctx, doc.ID(), doc); err != nil {
			m.logger.Error("failed to restore document", "document", id, "err", err)
			errs = append(errs, &domain.PersistenceError{DocumentID: id, Err: err})
			continue
		}
		restored++
		m.logger.Debug("restored document", "document", id)
	}
	return restored, errors.Join(errs...)
}

func (m *Migrator) lock(ctx context.Context) (func(), error) {
	if m.locker == nil {
		return func() {}, nil
	}

	release, err := m.locker.Lock(ctx, m.lockKey, m.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", m.lockKey, err)
	}
	m.logger.Debug("acquired run guard", "key", m.lockKey)

	return func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			m.logger.Warn("failed to release run guard", "key", m.lockKey, "err", err)
		}
	}, nil
}
