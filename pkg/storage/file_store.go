package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore keeps values in a small JSON document on disk. Every operation
// re-reads the file under the lock so separate processes see each other's
// writes.
type FileStore struct {
	path string
	lock LockConfig
}

// NewFileStore creates a store backed by the JSON file at path
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("store path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &FileStore{path: path, lock: DefaultLockConfig()}, nil
}

// Path returns the backing file
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Get(ctx context.Context, key string) (string, bool, error) {
	var (
		value string
		found bool
	)
	err := withLock(ctx, s.path, s.lock, func() error {
		values, err := s.read()
		if err != nil {
			return err
		}
		value, found = values[key]
		return nil
	})
	return value, found, err
}

func (s *FileStore) Set(ctx context.Context, key, value string) error {
	return s.update(ctx, func(values map[string]string) {
		values[key] = value
	})
}

func (s *FileStore) Delete(ctx context.Context, key string) error {
	return s.update(ctx, func(values map[string]string) {
		delete(values, key)
	})
}

func (s *FileStore) update(ctx context.Context, mutate func(map[string]string)) error {
	return withLock(ctx, s.path, s.lock, func() error {
		values, err := s.read()
		if err != nil {
			return err
		}
		mutate(values)

		data, err := json.MarshalIndent(values, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode store: %w", err)
		}
		return atomicWrite(s.path, data, 0600)
	})
}

// read loads the document; a missing or empty file is an empty store
func (s *FileStore) read() (map[string]string, error) {
	values := make(map[string]string)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return values, nil
		}
		return nil, fmt.Errorf("failed to read store: %w", err)
	}
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to decode store %s: %w", s.path, err)
	}
	if values == nil {
		// A literal null decodes to a nil map
		values = make(map[string]string)
	}
	return values, nil
}

var _ Store = (*FileStore)(nil)
