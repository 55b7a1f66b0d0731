package ports

import (
	"context"
	"iter"

	"github.com/aretw0/exprmig/pkg/domain"
)

// DocumentStore is the document database collaborator of the engine.
type DocumentStore interface {
	// Find lazily yields every document matching the filter, in store-defined order.
	// A failure is yielded once as a non-nil error, after which the sequence ends.
	Find(ctx context.Context, filter domain.Filter) iter.Seq2[domain.Document, error]

	// Replace overwrites the whole document identified by id.
	// Returns domain.ErrDocumentNotFound if no document has that identifier.
	Replace(ctx context.Context, id any, doc domain.Document) error
}

// BackupStore persists the pre-image set of a session so that it can be rolled back.
type BackupStore interface {
	// Save persists the backup set for a given session ID.
	// Returns domain.ErrBackupExists if the session already has one; the stored set is kept.
	Save(ctx context.Context, sessionID string, docs []domain.Document) error

	// Load retrieves the backup set for a given session ID.
	// Returns domain.ErrBackupNotFound if the session has no backup.
	Load(ctx context.Context, sessionID string) ([]domain.Document, error)

	// Delete removes the backup set for a given session ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns the session IDs that have a backup.
	List(ctx context.Context) ([]string, error)
}
