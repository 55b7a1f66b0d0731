package memory

import (
	"context"
	"sync"

	"github.com/aretw0/exprmig/pkg/domain"
)

// BackupStore implements ports.BackupStore in memory.
// Safe for concurrent use.
type BackupStore struct {
	data map[string][]domain.Document
	mu   sync.RWMutex
}

// NewBackupStore creates a new in-memory backup store.
func NewBackupStore() *BackupStore {
	return &BackupStore{
		data: make(map[string][]domain.Document),
	}
}

// Save persists a copy of the backup set.
func (s *BackupStore) Save(ctx context.Context, sessionID string, docs []domain.Document) error {
	copied := cloneAll(docs)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[sessionID]; ok {
		return domain.ErrBackupExists
	}
	s.data[sessionID] = copied
	return nil
}

// Load retrieves a copy of the backup set.
func (s *BackupStore) Load(ctx context.Context, sessionID string) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs, ok := s.data[sessionID]
	if !ok {
		return nil, domain.ErrBackupNotFound
	}
	return cloneAll(docs), nil
}

// Delete removes the backup set.
func (s *BackupStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

// List returns the sessions that have a backup.
func (s *BackupStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]string, 0, len(s.data))
	for id := range s.data {
		sessions = append(sessions, id)
	}
	return sessions, nil
}

func cloneAll(docs []domain.Document) []domain.Document {
	out := make([]domain.Document, len(docs))
	for i, doc := range docs {
		out[i] = doc.Clone()
	}
	return out
}
