// Package file implements ports.BackupStore on the local filesystem.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/exprmig/pkg/codec"
	"github.com/aretw0/exprmig/pkg/domain"
)

const backupExt = ".backup.json"

// BackupStore implements ports.BackupStore using the local filesystem.
// Each backup set is one Extended JSON file named after its session.
type BackupStore struct {
	BasePath string
}

// New creates a new BackupStore with the given base path.
// If basePath is empty, it defaults to ".exprmig/backups".
func New(basePath string) *BackupStore {
	if basePath == "" {
		basePath = filepath.Join(".exprmig", "backups")
	}
	return &BackupStore{BasePath: basePath}
}

func (s *BackupStore) path(sessionID string) string {
	return filepath.Join(s.BasePath, sessionID+backupExt)
}

// Save persists the backup set atomically. An existing set is never overwritten.
func (s *BackupStore) Save(ctx context.Context, sessionID string, docs []domain.Document) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID cannot be empty")
	}

	data, err := codec.MarshalDocuments(docs)
	if err != nil {
		return fmt.Errorf("failed to marshal backup: %w", err)
	}
	if err := WriteExclusive(s.BasePath, sessionID+backupExt, data); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return domain.ErrBackupExists
		}
		return err
	}
	return nil
}

// Load retrieves the backup set of a session.
func (s *BackupStore) Load(ctx context.Context, sessionID string) ([]domain.Document, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("sessionID cannot be empty")
	}

	data, err := os.ReadFile(s.path(sessionID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrBackupNotFound
		}
		return nil, fmt.Errorf("failed to read backup file: %w", err)
	}

	docs, err := codec.UnmarshalDocuments(data)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal backup: %w", err)
	}
	return docs, nil
}

// Delete removes the backup file of a session.
func (s *BackupStore) Delete(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID cannot be empty")
	}

	err := os.Remove(s.path(sessionID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete backup file: %w", err)
	}
	return nil
}

// List returns every session that has a backup file.
func (s *BackupStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}

	var sessions []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, "tmp-") || !strings.HasSuffix(name, backupExt) {
			continue
		}
		sessions = append(sessions, strings.TrimSuffix(name, backupExt))
	}
	return sessions, nil
}
