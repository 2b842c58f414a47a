package repository

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"
)

// BlobStore is a key-value store of opaque payloads. Set overwrites the whole
// value of a key.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

var _ BlobStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.blobs[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = append([]byte(nil), value...)
	return nil
}

type PostgresStore struct {
	db *gorm.DB
}

var _ BlobStore = (*PostgresStore)(nil)

func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var row struct {
		Key     string
		Payload string
	}
	err := s.db.WithContext(ctx).Raw(`
		SELECT key, payload::text AS payload
		FROM document_blobs
		WHERE key = ?
		LIMIT 1
	`, key).Scan(&row).Error
	if err != nil {
		return nil, false, err
	}
	if row.Key == "" {
		return nil, false, nil
	}
	return []byte(row.Payload), true, nil
}

func (s *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	return s.db.WithContext(ctx).Exec(`
		INSERT INTO document_blobs (key, payload, updated_at)
		VALUES (?, CAST(? AS JSONB), ?)
		ON CONFLICT (key) DO UPDATE
		SET payload = EXCLUDED.payload,
			updated_at = EXCLUDED.updated_at
	`, key, string(value), time.Now().UTC()).Error
}
