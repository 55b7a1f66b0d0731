package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/exprmig/internal/logging"
	"github.com/aretw0/exprmig/pkg/domain"
	"github.com/aretw0/exprmig/pkg/ports"
)

// Config holds the plain values a migration session runs with.
type Config struct {
	// Commit persists rewritten documents. Requires a loaded Table.
	Commit bool
	// Table is the translation table. Nil means dry-run semantics.
	Table *TranslationTable
	// Policy normalizes expressionLanguage. Empty means ignore.
	Policy domain.LanguagePolicy
	// Scope narrows the selected documents.
	Scope Scope
}

// Checkpoint receives every pre-image of a committing session after the scan and before
// the first replace. An error cancels the commit phase.
type Checkpoint func(ctx context.Context, backups []domain.Document) error

// Session drives one pass over the selected documents of a store.
// A Session is single-use state-wise: every Run starts from an empty registry.
type Session struct {
	store      ports.DocumentStore
	cfg        Config
	logger     *slog.Logger
	hooks      domain.LifecycleHooks
	checkpoint Checkpoint
}

// Option configures the Session.
type Option func(*Session)

// WithLogger configures a logger for the Session.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Session) {
		s.hooks = hooks
	}
}

// WithCheckpoint registers the step that secures the pre-images before any write.
func WithCheckpoint(fn Checkpoint) Option {
	return func(s *Session) {
		s.checkpoint = fn
	}
}

// NewSession creates a session over store.
func NewSession(store ports.DocumentStore, cfg Config, opts ...Option) *Session {
	s := &Session{
		store:  store,
		cfg:    cfg,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Validate rejects configurations that must fail before any document is read.
func (s *Session) Validate() error {
	if _, err := domain.ParseLanguagePolicy(string(s.cfg.Policy)); err != nil {
		return err
	}
	if s.cfg.Commit && !s.cfg.Table.Loaded() {
		return domain.ErrTranslationRequired
	}
	return nil
}

// Run validates the configuration, scans every selected document and returns the
// accumulated artifacts. Recoverable per-site and per-document errors are collected in
// the result. A scan failure or cancellation returns the partial result with the error.
//
// In commit mode nothing is written until the scan has completed and the checkpoint has
// accepted the pre-images. Documents are then replaced in scan order; a cancellation
// stops between documents.
func (s *Session) Run(ctx context.Context) (*Result, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	policy, _ := domain.ParseLanguagePolicy(string(s.cfg.Policy))

	filter := BuildFilter(policy, s.cfg.Scope)
	s.logger.Debug("selection filter", "filter", fmt.Sprintf("%+v", filter))

	registry := NewRegistry()
	rw := &rewriter{
		registry: registry,
		table:    s.cfg.Table,
		policy:   policy,
		store:    s.store,
		commit:   s.cfg.Commit,
		logger:   s.logger,
		hooks:    s.hooks,
	}

	result := &Result{Filter: filter, Commit: s.cfg.Commit}
	defer func() {
		result.Expressions = registry.Expressions()
	}()

	var pending []*DocumentResult
	for doc, err := range s.store.Find(ctx, filter) {
		if err != nil {
			return result, fmt.Errorf("document scan failed: %w", err)
		}
		res := rw.process(ctx, doc)
		result.add(res)
		if rw.commits() {
			pending = append(pending, res)
		}
	}

	if len(pending) == 0 {
		return result, nil
	}

	if s.checkpoint != nil {
		if err := s.checkpoint(ctx, result.Backups); err != nil {
			return result, fmt.Errorf("pre-images not secured, no document was replaced: %w", err)
		}
	}

	for _, res := range pending {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		rw.persist(ctx, res)
		result.addPersisted(res)
	}

	return result, nil
}

// Result holds everything a session accumulated, for the reporting collaborator.
type Result struct {
	Filter domain.Filter
	Commit bool

	// Occurrences in discovery order.
	Occurrences []domain.Occurrence
	// Expressions is the registry: distinct expressions in first-seen order.
	Expressions []string
	// Backups holds one pre-image per visited document.
	Backups []domain.Document
	// Rewritten holds every visited document after rewriting, committed or not.
	Rewritten []domain.Document
	// Replaced counts documents successfully persisted.
	Replaced int

	ResolutionErrors  []*domain.ResolutionError
	PersistenceErrors []*domain.PersistenceError
	Warnings          []*domain.TypeChangeWarning
}

func (r *Result) add(doc *DocumentResult) {
	r.Backups = append(r.Backups, doc.Backup)
	r.Rewritten = append(r.Rewritten, doc.Rewritten)
	r.Occurrences = append(r.Occurrences, doc.Occurrences...)
	r.ResolutionErrors = append(r.ResolutionErrors, doc.ResolutionErrors...)
	r.Warnings = append(r.Warnings, doc.Warnings...)
}

func (r *Result) addPersisted(doc *DocumentResult) {
	if doc.PersistenceError != nil {
		r.PersistenceErrors = append(r.PersistenceErrors, doc.PersistenceError)
	}
	if doc.Persisted {
		r.Replaced++
	}
}

// Documents returns how many documents were visited.
func (r *Result) Documents() int {
	return len(r.Rewritten)
}

// Errors returns every recoverable error of the session: resolution errors first,
// then persistence errors.
func (r *Result) Errors() []error {
	errs := make([]error, 0, len(r.ResolutionErrors)+len(r.PersistenceErrors))
	for _, e := range r.ResolutionErrors {
		errs = append(errs, e)
	}
	for _, e := range r.PersistenceErrors {
		errs = append(errs, e)
	}
	return errs
}
