package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"guardian/pkg/platform/sentinel"
)

var errCorruptFile = errors.New("corrupt store file")

// FileStore persists the whole key space as one JSON object. Every write
// replaces the file through a temp file and rename, so a crash mid-write
// leaves either the old or the new contents.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFile returns a store backed by path. The parent directory is created
// with 0700 permissions on first write.
func NewFile(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file location.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.load()
	if err != nil {
		return "", err
	}
	v, ok := values[key]
	if !ok {
		return "", sentinel.ErrNotFound
	}
	return v, nil
}

func (s *FileStore) MultiGet(_ context.Context, keys []string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := values[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (s *FileStore) Set(ctx context.Context, key, value string) error {
	return s.Apply(ctx, NewBatch().Set(key, value))
}

func (s *FileStore) Remove(ctx context.Context, key string) error {
	return s.Apply(ctx, NewBatch().Remove(key))
}

func (s *FileStore) MultiRemove(ctx context.Context, keys []string) error {
	return s.Apply(ctx, NewBatch().Remove(keys...))
}

func (s *FileStore) Apply(ctx context.Context, b *Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.load()
	if errors.Is(err, errCorruptFile) {
		// An unreadable file holds nothing we can recover; the write replaces it.
		values = make(map[string]string)
	} else if err != nil {
		return err
	}
	b.applyTo(values)
	return s.write(values)
}

func (s *FileStore) load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", sentinel.ErrUnavailable, s.path, err)
	}
	values := make(map[string]string)
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("%w: %w: %w", sentinel.ErrUnavailable, errCorruptFile, err)
	}
	return values, nil
}

func (s *FileStore) write(values map[string]string) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("%w: create %s: %w", sentinel.ErrUnavailable, dir, err)
	}
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".store-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %w", sentinel.ErrUnavailable, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write temp file: %w", sentinel.ErrUnavailable, err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: chmod temp file: %w", sentinel.ErrUnavailable, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: sync temp file: %w", sentinel.ErrUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close temp file: %w", sentinel.ErrUnavailable, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("%w: replace %s: %w", sentinel.ErrUnavailable, s.path, err)
	}
	return nil
}
