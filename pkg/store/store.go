// Package store persists scenes for the HTTP API.
//
// Backends:
//   - [MemoryStore]: in-process map for development and tests
//   - [FileStore]: one JSON file per scene, for single-instance servers
//   - [MongoStore]: MongoDB collection for multi-instance deployments
//
// Scene ids are generated with [NewID] and validated with
// errors.ValidateID before they reach a backend, so they are safe to use
// as file names and document keys.
package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/callout/pkg/errors"
	"github.com/matzehuels/callout/pkg/scene"
)

// Record is a stored scene.
type Record struct {
	ID        string       `json:"id" bson:"_id"`
	Scene     *scene.Scene `json:"scene" bson:"scene"`
	CreatedAt time.Time    `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time    `json:"updated_at" bson:"updated_at"`
}

// Store is the interface for scene storage backends.
type Store interface {
	// Get returns the record, or an ErrCodeNotFound error.
	Get(ctx context.Context, id string) (*Record, error)

	// Put creates or replaces a record. CreatedAt is preserved on replace.
	Put(ctx context.Context, rec *Record) error

	// Delete removes a record. Deleting a missing record is an
	// ErrCodeNotFound error.
	Delete(ctx context.Context, id string) error

	// List returns up to limit records, newest first. A limit of zero
	// returns all of them.
	List(ctx context.Context, limit int) ([]*Record, error)

	Close() error
}

// NewID returns a fresh scene id.
func NewID() string { return uuid.NewString() }

// NewRecord wraps s in a record with a fresh id.
func NewRecord(s *scene.Scene) *Record {
	now := time.Now().UTC()
	return &Record{ID: NewID(), Scene: s, CreatedAt: now, UpdatedAt: now}
}

func validate(rec *Record) error {
	if err := errors.ValidateID("scene", rec.ID); err != nil {
		return err
	}
	if rec.Scene == nil {
		return errors.New(errors.ErrCodeInvalidScene, "record %s has no scene", rec.ID)
	}
	return nil
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeNotFound, "scene %s not found", id)
}

// MemoryStore keeps records in a map.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
}

// NewMemoryStore returns an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*Record)}
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, notFound(id)
	}
	cp := *rec
	return &cp, nil
}

// Put implements Store.
func (s *MemoryStore) Put(_ context.Context, rec *Record) error {
	if err := validate(rec); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *rec
	if prev, ok := s.records[rec.ID]; ok {
		cp.CreatedAt = prev.CreatedAt
	}
	s.records[rec.ID] = &cp
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return notFound(id)
	}
	delete(s.records, id)
	return nil
}

// List implements Store.
func (s *MemoryStore) List(_ context.Context, limit int) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Record, 0, len(s.records))
	for _, rec := range s.records {
		cp := *rec
		out = append(out, &cp)
	}
	return newestFirst(out, limit), nil
}

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }

func newestFirst(recs []*Record, limit int) []*Record {
	slices.SortFunc(recs, func(a, b *Record) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return recs
}

var _ Store = (*MemoryStore)(nil)
