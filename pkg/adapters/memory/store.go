package memory

import (
	"context"
	"iter"
	"sync"

	"github.com/aretw0/exprmig/pkg/domain"
)

// Store implements ports.DocumentStore in memory.
// Safe for concurrent use. Documents are copied on the way in and out so that
// callers never share state with the store.
type Store struct {
	mu       sync.RWMutex
	docs     []domain.Document
	index    map[string]int
	replaces int
}

// NewStore creates a new in-memory document store seeded with docs.
func NewStore(docs ...domain.Document) *Store {
	s := &Store{
		index: make(map[string]int),
	}
	s.Insert(docs...)
	return s
}

// Insert adds documents to the store, overwriting any document with the same identifier.
func (s *Store) Insert(docs ...domain.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, doc := range docs {
		key := domain.FormatID(doc.ID())
		if i, ok := s.index[key]; ok {
			s.docs[i] = doc.Clone()
			continue
		}
		s.index[key] = len(s.docs)
		s.docs = append(s.docs, doc.Clone())
	}
}

// Find yields copies of the documents matching filter, in insertion order.
func (s *Store) Find(ctx context.Context, filter domain.Filter) iter.Seq2[domain.Document, error] {
	return func(yield func(domain.Document, error) bool) {
		match, err := compile(filter)
		if err != nil {
			yield(nil, err)
			return
		}

		s.mu.RLock()
		var matched []domain.Document
		for _, doc := range s.docs {
			if match(doc) {
				matched = append(matched, doc.Clone())
			}
		}
		s.mu.RUnlock()

		for _, doc := range matched {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			if !yield(doc, nil) {
				return
			}
		}
	}
}

// Replace overwrites the document identified by id.
func (s *Store) Replace(ctx context.Context, id any, doc domain.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[domain.FormatID(id)]
	if !ok {
		return domain.ErrDocumentNotFound
	}
	s.docs[i] = doc.Clone()
	s.replaces++
	return nil
}

// Get returns a copy of the document identified by id.
func (s *Store) Get(id any) (domain.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[domain.FormatID(id)]
	if !ok {
		return nil, false
	}
	return s.docs[i].Clone(), true
}

// Replaces returns how many successful Replace calls the store has served.
func (s *Store) Replaces() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.replaces
}
