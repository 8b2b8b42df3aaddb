package usage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	log "github.com/sirupsen/logrus"
)

const statsFileName = "stats.json"

// FileStorage implements Storage with a JSON file rewritten atomically.
type FileStorage struct {
	dataDir string
	mu      sync.Mutex
}

// NewFileStorage creates a new file-based storage
func NewFileStorage(dataDir string) (*FileStorage, error) {
	if dataDir == "" {
		dataDir = "./data/usage"
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	return &FileStorage{dataDir: dataDir}, nil
}

func (f *FileStorage) path() string { return filepath.Join(f.dataDir, statsFileName) }

// LoadStats implements Storage
func (f *FileStorage) LoadStats(ctx context.Context) (*Stats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.readLocked()
}

func (f *FileStorage) readLocked() (*Stats, error) {
	data, err := os.ReadFile(f.path())
	if err != nil {
		if os.IsNotExist(err) {
			return NewStats(), nil
		}
		return nil, err
	}
	var stats Stats
	if err := json.Unmarshal(data, &stats); err != nil {
		log.WithError(err).WithField("path", f.path()).Warn("failed to unmarshal usage stats, starting empty")
		return NewStats(), nil
	}
	stats.ensureMaps()
	return &stats, nil
}

// AddStats implements Storage
func (f *FileStorage) AddStats(ctx context.Context, delta *Stats) error {
	if delta.Empty() {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	current, err := f.readLocked()
	if err != nil {
		return err
	}
	current.Merge(delta)

	data, err := json.MarshalIndent(current, "", "  ")
	if err != nil {
		return err
	}
	tempFile := f.path() + ".tmp"
	if err := os.WriteFile(tempFile, data, 0o644); err != nil {
		return err
	}
	// Atomic rename
	if err := os.Rename(tempFile, f.path()); err != nil {
		_ = os.Remove(tempFile)
		return err
	}
	return nil
}

func (f *FileStorage) Close() error { return nil }
