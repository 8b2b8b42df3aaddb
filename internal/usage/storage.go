package usage

import (
	"context"
	"sync"
)

// Storage persists usage counters. AddStats must add delta to whatever is
// stored, so several processes can share one backend.
type Storage interface {
	LoadStats(ctx context.Context) (*Stats, error)
	AddStats(ctx context.Context, delta *Stats) error
	Close() error
}

// MemoryStorage keeps counters in process; they are lost on restart.
type MemoryStorage struct {
	mu    sync.Mutex
	stats *Stats
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{stats: NewStats()}
}

// LoadStats implements Storage
func (m *MemoryStorage) LoadStats(ctx context.Context) (*Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats.Clone(), nil
}

// AddStats implements Storage
func (m *MemoryStorage) AddStats(ctx context.Context, delta *Stats) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats.Merge(delta)
	return nil
}

func (m *MemoryStorage) Close() error { return nil }

// BackendLabel names the storage implementation for logs and metrics.
func BackendLabel(s Storage) string {
	switch s.(type) {
	case *MemoryStorage:
		return "memory"
	case *FileStorage:
		return "file"
	case *RedisStorage:
		return "redis"
	case *PostgresStorage:
		return "postgres"
	case *MongoStorage:
		return "mongodb"
	default:
		return "custom"
	}
}
