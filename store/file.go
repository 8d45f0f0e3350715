package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"photo-catalog/catalog"
)

// FileStore keeps the catalog in a single JSON or YAML document, picked by the file extension.
type FileStore struct {
	path   string
	format format
	logger *zap.Logger
}

var _ catalog.Store = (*FileStore)(nil)

// NewFileStore returns a store for path. Nothing is touched on disk until the first Save.
func NewFileStore(path string, logger *zap.Logger) *FileStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStore{path: path, format: formatFor(path), logger: logger}
}

// Path returns the snapshot file location.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Load() (*catalog.Catalog, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, catalog.ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", s.path, err)
	}
	c, err := decode(data, s.format)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return c, nil
}

// Save writes the snapshot atomically: temp file, fsync, rename.
func (s *FileStore) Save(c *catalog.Catalog) error {
	data, err := encode(c, s.format)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir %s: %w", dir, err)
	}

	tmpPath := s.path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("fsync snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename snapshot: %w", err)
	}

	s.logger.Debug("snapshot written", zap.String("path", s.path), zap.Int("bytes", len(data)))
	return nil
}

func (s *FileStore) Close() error { return nil }
