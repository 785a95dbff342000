package db

import (
	"context"
	"time"
)

// Cache is the key-value backend behind the embedding cache.
type Cache interface {
	Pinger
	KVStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// DocumentRow is a stored protocol document as persisted.
type DocumentRow struct {
	ID          int64
	SpecialtyID int64
	Title       string
	Text        string
	Embedding   []byte
}

// DocumentStore provides protocol document persistence.
type DocumentStore interface {
	Pinger
	DocumentIDs(ctx context.Context, specialtyID int64) ([]int64, error)
	Documents(ctx context.Context, ids []int64) ([]DocumentRow, error)
	InsertDocument(ctx context.Context, row DocumentRow) (int64, error)
	CountBySpecialty(ctx context.Context) (map[int64]int, error)
}
