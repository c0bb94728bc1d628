package store

import (
	"context"
	"testing"
	"time"

	"github.com/matzehuels/callout/pkg/errors"
	"github.com/matzehuels/callout/pkg/geom"
	"github.com/matzehuels/callout/pkg/scene"
)

func testScene(name string) *scene.Scene {
	return &scene.Scene{
		Name:    name,
		Frame:   geom.Rect{Width: 100, Height: 100},
		Targets: []scene.Target{{ID: "a", Width: 10, Height: 10}},
	}
}

func backends(t *testing.T) map[string]Store {
	t.Helper()
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return map[string]Store{
		"memory": NewMemoryStore(),
		"file":   fs,
	}
}

func TestStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			defer s.Close()

			rec := NewRecord(testScene("first"))
			if err := s.Put(ctx, rec); err != nil {
				t.Fatalf("Put() error: %v", err)
			}
			got, err := s.Get(ctx, rec.ID)
			if err != nil {
				t.Fatalf("Get() error: %v", err)
			}
			if got.Scene.Name != "first" || !got.CreatedAt.Equal(rec.CreatedAt) {
				t.Errorf("Get() = %+v", got)
			}

			// Replacing keeps the creation time.
			replaced := &Record{
				ID:        rec.ID,
				Scene:     testScene("second"),
				CreatedAt: rec.CreatedAt.Add(time.Hour),
				UpdatedAt: rec.UpdatedAt.Add(time.Hour),
			}
			if err := s.Put(ctx, replaced); err != nil {
				t.Fatalf("Put(replace) error: %v", err)
			}
			got, _ = s.Get(ctx, rec.ID)
			if got.Scene.Name != "second" || !got.CreatedAt.Equal(rec.CreatedAt) {
				t.Errorf("after replace Get() = %+v", got)
			}

			if err := s.Delete(ctx, rec.ID); err != nil {
				t.Fatalf("Delete() error: %v", err)
			}
			if _, err := s.Get(ctx, rec.ID); !errors.Is(err, errors.ErrCodeNotFound) {
				t.Errorf("Get(deleted) error = %v, want NOT_FOUND", err)
			}
			if err := s.Delete(ctx, rec.ID); !errors.Is(err, errors.ErrCodeNotFound) {
				t.Errorf("Delete(deleted) error = %v, want NOT_FOUND", err)
			}
		})
	}
}

func TestStoreList(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for i, id := range []string{"old", "mid", "new"} {
				ts := base.Add(time.Duration(i) * time.Minute)
				rec := &Record{ID: id, Scene: testScene(id), CreatedAt: ts, UpdatedAt: ts}
				if err := s.Put(ctx, rec); err != nil {
					t.Fatal(err)
				}
			}

			all, err := s.List(ctx, 0)
			if err != nil {
				t.Fatalf("List() error: %v", err)
			}
			var ids []string
			for _, r := range all {
				ids = append(ids, r.ID)
			}
			if len(ids) != 3 || ids[0] != "new" || ids[2] != "old" {
				t.Errorf("List() ids = %v, want [new mid old]", ids)
			}

			two, _ := s.List(ctx, 2)
			if len(two) != 2 {
				t.Errorf("List(2) returned %d records", len(two))
			}
		})
	}
}

func TestStoreRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			err := s.Put(ctx, &Record{ID: "../escape", Scene: testScene("x")})
			if !errors.Is(err, errors.ErrCodeInvalidID) {
				t.Errorf("Put(bad id) error = %v, want INVALID_ID", err)
			}
			err = s.Put(ctx, &Record{ID: "ok"})
			if !errors.Is(err, errors.ErrCodeInvalidScene) {
				t.Errorf("Put(nil scene) error = %v, want INVALID_SCENE", err)
			}
		})
	}
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	if a == b {
		t.Error("NewID() repeated")
	}
	if err := errors.ValidateID("scene", a); err != nil {
		t.Errorf("NewID() = %q is not a valid id: %v", a, err)
	}
}
