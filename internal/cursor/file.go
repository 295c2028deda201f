package cursor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

const fileName = "cursors.json"

// FileStore keeps all cursors in one JSON object on disk.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore returns a store backed by dir/cursors.json. The directory is
// created on first Save.
func NewFileStore(dir string) *FileStore {
	return &FileStore{path: filepath.Join(dir, fileName)}
}

func (s *FileStore) read() (map[string]int64, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]int64{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cursors: %w", err)
	}
	cursors := map[string]int64{}
	if len(data) == 0 {
		return cursors, nil
	}
	if err := json.Unmarshal(data, &cursors); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return cursors, nil
}

func (s *FileStore) Load(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cursors, err := s.read()
	if err != nil {
		return 0, err
	}
	return cursors[key], nil
}

func (s *FileStore) Save(_ context.Context, key string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cursors, err := s.read()
	if err != nil {
		return err
	}
	if id <= cursors[key] {
		return nil
	}
	cursors[key] = id

	data, err := json.MarshalIndent(cursors, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cursors: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create cursor dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write cursors: %w", err)
	}
	return os.Rename(tmp, s.path)
}

func (s *FileStore) Close() error { return nil }
