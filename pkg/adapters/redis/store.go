package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/exprmig/pkg/codec"
	"github.com/aretw0/exprmig/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// BackupStore implements ports.BackupStore using Redis.
// Each backup set is a single Extended JSON value; a ZSET indexes the sessions.
type BackupStore struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*BackupStore)

// WithTTL sets the expiration for backup sets.
func WithTTL(ttl time.Duration) Option {
	return func(s *BackupStore) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for backup sets.
func WithPrefix(prefix string) Option {
	return func(s *BackupStore) {
		s.prefix = prefix
	}
}

// New creates a new Redis backup store with options.
func New(address, password string, db int, opts ...Option) *BackupStore {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis backup store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *BackupStore {
	store := &BackupStore{
		client: client,
		prefix: "exprmig:backup:",
		ttl:    0, // No expiration by default
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

func (s *BackupStore) key(sessionID string) string {
	return s.prefix + sessionID
}

func (s *BackupStore) indexKey() string {
	return s.prefix + "index"
}

// Save persists the backup set to Redis. SET NX keeps an existing set intact.
func (s *BackupStore) Save(ctx context.Context, sessionID string, docs []domain.Document) error {
	data, err := codec.MarshalDocuments(docs)
	if err != nil {
		return fmt.Errorf("failed to marshal backup: %w", err)
	}

	created, err := s.client.SetNX(ctx, s.key(sessionID), data, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	if !created {
		return domain.ErrBackupExists
	}

	// Score = expiry time, so List can prune entries whose value already expired.
	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = 4102444800 // 2100-01-01
	}
	err = s.client.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  score,
		Member: sessionID,
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to index backup: %w", err)
	}
	return nil
}

// Load retrieves the backup set from Redis.
func (s *BackupStore) Load(ctx context.Context, sessionID string) ([]domain.Document, error) {
	val, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if err != nil {
		if err == backend.Nil {
			return nil, domain.ErrBackupNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	docs, err := codec.UnmarshalDocuments(val)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal backup: %w", err)
	}
	return docs, nil
}

// Delete removes the backup set.
func (s *BackupStore) Delete(ctx context.Context, sessionID string) error {
	pipe := s.client.Pipeline()

	pipe.Del(ctx, s.key(sessionID))
	pipe.ZRem(ctx, s.indexKey(), sessionID)

	_, err := pipe.Exec(ctx)
	return err
}

// List returns the sessions with a live backup, pruning expired index entries first.
func (s *BackupStore) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())

	err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to prune expired backups: %w", err)
	}

	sessions, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}
	return sessions, nil
}

// Client returns the underlying redis client, e.g. to share it with a Locker.
func (s *BackupStore) Client() *backend.Client {
	return s.client
}

// Close closes the redis client.
func (s *BackupStore) Close() error {
	return s.client.Close()
}
