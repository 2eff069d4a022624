package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"gitlab.lucky-team.pro/luckyads/go.ssl-monitor/internal/entities"
)

// Storage is a JSON file based implementation of storage.Store.
type Storage struct {
	mu     sync.Mutex
	path   string
	logger *zap.Logger
}

// New returns Storage that keeps the table in the file at path.
func New(logger *zap.Logger, path string) *Storage {
	return &Storage{
		path:   path,
		logger: logger,
	}
}

// Load reads the table from disk. A missing file yields an empty table.
// Any error returned is internal.
func (s *Storage) Load(_ context.Context) (entities.Domains, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Info("storage file not found, starting with empty table", zap.String("path", s.path))
		return make(entities.Domains), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", s.path, err)
	}

	domains := make(entities.Domains)
	if err := json.Unmarshal(data, &domains); err != nil {
		return nil, fmt.Errorf("failed to decode %q: %w", s.path, err)
	}

	return domains, nil
}

// Save writes the table next to the target file and renames it
// over the target, so readers never observe a partial file.
// Any error returned is internal.
func (s *Storage) Save(_ context.Context, domains entities.Domains) error {
	data, err := json.MarshalIndent(domains, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode domains: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck,gosec
		return fmt.Errorf("failed to write %q: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close() //nolint:errcheck,gosec
		return fmt.Errorf("failed to sync %q: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %q: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace %q: %w", s.path, err)
	}

	s.logger.Debug("domains saved", zap.String("path", s.path), zap.Int("count", len(domains)))
	return nil
}

// Close is a no-op, the file is opened per call.
func (s *Storage) Close() error {
	return nil
}
