package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/exprmig/pkg/domain"
	"github.com/aretw0/exprmig/pkg/ports"
)

// DocumentResult is the outcome of one document pass.
type DocumentResult struct {
	ID         any
	DocumentID string
	Header     domain.Header

	// Backup is the document exactly as read, captured before any mutation.
	Backup domain.Document
	// Rewritten is the document after substitutions and language normalization.
	Rewritten domain.Document

	Occurrences      []domain.Occurrence
	ResolutionErrors []*domain.ResolutionError
	Warnings         []*domain.TypeChangeWarning
	Rewrites         int

	Persisted        bool
	PersistenceError *domain.PersistenceError
}

// rewriter runs the per-document pass. Its registry is shared across the session.
type rewriter struct {
	registry *Registry
	table    *TranslationTable
	policy   domain.LanguagePolicy
	store    ports.DocumentStore
	commit   bool
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
}

func (r *rewriter) process(ctx context.Context, doc domain.Document) *DocumentResult {
	res := &DocumentResult{
		ID:         doc.ID(),
		DocumentID: domain.FormatID(doc.ID()),
		Backup:     doc.Clone(),
	}

	header, err := doc.DecodeHeader()
	if err != nil {
		r.logger.Warn("unreadable document header", "document", res.DocumentID, "err", err)
	}
	res.Header = header

	if r.hooks.OnDocument != nil {
		r.hooks.OnDocument(ctx, &domain.DocumentEvent{
			DocumentID: res.DocumentID,
			Service:    header.Service,
			Subservice: header.Subservice,
		})
	}

	for site := range Locate(doc) {
		value, _ := site.Get()
		if !Matches(value) {
			continue
		}
		text := Text(value)

		occ := domain.Occurrence{
			DocumentID:      res.DocumentID,
			Expression:      text,
			Type:            site.Type,
			Path:            site.Path,
			Service:         header.Service,
			Subservice:      header.Subservice,
			ExpressionIndex: r.registry.Register(text),
		}
		res.Occurrences = append(res.Occurrences, occ)
		r.logger.Debug("occurrence", "document", res.DocumentID, "path", site.Path, "expression", text)
		if r.hooks.OnOccurrence != nil {
			r.hooks.OnOccurrence(ctx, &occ)
		}

		if !r.table.Loaded() {
			continue
		}

		replacement, resolution := r.table.Resolve(text)
		if resolution != Resolved {
			rerr := &domain.ResolutionError{
				DocumentID: res.DocumentID,
				Expression: text,
				Type:       site.Type,
				Path:       site.Path,
			}
			res.ResolutionErrors = append(res.ResolutionErrors, rerr)
			r.logger.Error("expression not found in translation file",
				"expression", text, "document", res.DocumentID, "path", site.Path)
			if r.hooks.OnResolutionError != nil {
				r.hooks.OnResolutionError(ctx, rerr)
			}
			continue
		}

		if _, isString := value.(string); !isString {
			warning := &domain.TypeChangeWarning{
				DocumentID: res.DocumentID,
				Path:       site.Path,
				FromType:   fmt.Sprintf("%T", value),
			}
			res.Warnings = append(res.Warnings, warning)
			r.logger.Warn("non-string field rewritten to a string",
				"document", res.DocumentID, "path", site.Path, "from", warning.FromType)
		}

		site.Set(replacement)
		res.Rewrites++
		r.logger.Debug("replaced expression", "document", res.DocumentID, "path", site.Path, "replacement", replacement)
		if r.hooks.OnRewrite != nil {
			r.hooks.OnRewrite(ctx, &domain.RewriteEvent{
				DocumentID:  res.DocumentID,
				Type:        site.Type,
				Path:        site.Path,
				Expression:  text,
				Replacement: replacement,
			})
		}
	}

	if ApplyLanguagePolicy(doc, r.policy) {
		r.logger.Debug("normalized expressionLanguage", "document", res.DocumentID, "policy", r.policy)
	}

	res.Rewritten = doc
	return res
}

// commits reports whether processed documents are to be written back.
func (r *rewriter) commits() bool {
	return r.commit && r.table.Loaded()
}

// persist writes a processed document back, whole.
func (r *rewriter) persist(ctx context.Context, res *DocumentResult) {
	if err := r.store.Replace(ctx, res.ID, res.Rewritten); err != nil {
		perr := &domain.PersistenceError{DocumentID: res.DocumentID, Err: err}
		res.PersistenceError = perr
		r.logger.Error("failed to replace document", "document", res.DocumentID, "err", err)
		if r.hooks.OnPersistenceError != nil {
			r.hooks.OnPersistenceError(ctx, perr)
		}
		return
	}

	res.Persisted = true
	if r.hooks.OnReplace != nil {
		r.hooks.OnReplace(ctx, &domain.DocumentEvent{
			DocumentID: res.DocumentID,
			Service:    res.Header.Service,
			Subservice: res.Header.Subservice,
		})
	}
}
