package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/matzehuels/callout/pkg/errors"
)

// FileStore keeps one JSON file per scene in a directory.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

// NewFileStore creates dir if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create scene dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the storage directory.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Get implements Store.
func (s *FileStore) Get(_ context.Context, id string) (*Record, error) {
	if err := errors.ValidateID("scene", id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read(s.path(id), id)
}

func (s *FileStore) read(path, id string) (*Record, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("read scene file: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse scene %s: %w", id, err)
	}
	return &rec, nil
}

// Put implements Store.
func (s *FileStore) Put(_ context.Context, rec *Record) error {
	if err := validate(rec); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *rec
	if prev, err := s.read(s.path(rec.ID), rec.ID); err == nil {
		cp.CreatedAt = prev.CreatedAt
	}
	data, err := json.MarshalIndent(&cp, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal scene: %w", err)
	}
	if err := os.WriteFile(s.path(rec.ID), data, 0o600); err != nil {
		return fmt.Errorf("write scene file: %w", err)
	}
	return nil
}

// Delete implements Store.
func (s *FileStore) Delete(_ context.Context, id string) error {
	if err := errors.ValidateID("scene", id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	err := os.Remove(s.path(id))
	if os.IsNotExist(err) {
		return notFound(id)
	}
	if err != nil {
		return fmt.Errorf("remove scene file: %w", err)
	}
	return nil
}

// List implements Store. Unreadable files are skipped.
func (s *FileStore) List(_ context.Context, limit int) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read scene dir: %w", err)
	}
	var out []*Record
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		id := e.Name()[:len(e.Name())-len(".json")]
		rec, err := s.read(filepath.Join(s.dir, e.Name()), id)
		if err != nil {
			continue
		}
		out = append(out, rec)
	}
	return newestFirst(out, limit), nil
}

// Close implements Store.
func (s *FileStore) Close() error { return nil }

var _ Store = (*FileStore)(nil)
