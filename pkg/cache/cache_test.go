package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set() error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get() = %q, %v, %v, want miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete() error: %v", err)
	}
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if err := c.Set(ctx, "a", []byte("1"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "b", []byte("2"), 0); err != nil {
		t.Fatal(err)
	}
	if data, hit, _ := c.Get(ctx, "a"); !hit || string(data) != "1" {
		t.Errorf("Get(a) = %q, %v", data, hit)
	}

	now = now.Add(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("expired entry returned")
	}
	if _, hit, _ := c.Get(ctx, "b"); !hit {
		t.Error("entry without ttl expired")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}

	_ = c.Delete(ctx, "b")
	if _, hit, _ := c.Get(ctx, "b"); hit {
		t.Error("deleted entry returned")
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Errorf("Get(missing) = %v, %v", hit, err)
	}

	if err := c.Set(ctx, "svg", []byte("<svg/>"), time.Hour); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if data, hit, err := c.Get(ctx, "svg"); err != nil || !hit || string(data) != "<svg/>" {
		t.Errorf("Get() = %q, %v, %v", data, hit, err)
	}

	now = now.Add(2 * time.Hour)
	if _, hit, _ := c.Get(ctx, "svg"); hit {
		t.Error("expired entry returned")
	}
	if _, err := os.Stat(c.path("svg")); !os.IsNotExist(err) {
		t.Error("expired entry left on disk")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	path := c.path("bad")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "bad"); hit || err != nil {
		t.Errorf("Get(corrupt) = %v, %v, want silent miss", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}
	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear() = %d, want 3", n)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("entry survived Clear")
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash is not deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("different inputs share a hash")
	}
	if len(h1) != 64 {
		t.Errorf("len(Hash()) = %d, want 64", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()
	layout := LayoutKeyOpts{Steps: 0, Measurer: "basic"}

	if k.LayoutKey("h", layout) == k.LayoutKey("h", LayoutKeyOpts{Steps: 5, Measurer: "basic"}) {
		t.Error("steps not part of the layout key")
	}
	if k.LayoutKey("h1", layout) == k.LayoutKey("h2", layout) {
		t.Error("scene hash not part of the layout key")
	}

	svg := k.ArtifactKey("h", layout, ArtifactKeyOpts{Format: "svg"})
	live := k.ArtifactKey("h", layout, ArtifactKeyOpts{Format: "svg", Live: true})
	png := k.ArtifactKey("h", layout, ArtifactKeyOpts{Format: "png"})
	if svg == live || svg == png {
		t.Error("artifact options not part of the key")
	}
	if svg[:len("artifact:svg:")] != "artifact:svg:" {
		t.Errorf("ArtifactKey() = %q, want artifact:svg: prefix", svg)
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(nil, "tenant:")
	inner := NewDefaultKeyer()
	opts := LayoutKeyOpts{Steps: 1}

	if got, want := scoped.LayoutKey("h", opts), "tenant:"+inner.LayoutKey("h", opts); got != want {
		t.Errorf("LayoutKey() = %q, want %q", got, want)
	}
	a := ArtifactKeyOpts{Format: "json"}
	if got, want := scoped.ArtifactKey("h", opts, a), "tenant:"+inner.ArtifactKey("h", opts, a); got != want {
		t.Errorf("ArtifactKey() = %q, want %q", got, want)
	}
}

var errTransient = errors.New("transient")

func TestRetryable(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) != nil")
	}
	err := Retryable(errTransient)
	if !IsRetryable(err) || !errors.Is(err, errTransient) {
		t.Errorf("Retryable() = %v", err)
	}
	if err.Error() != errTransient.Error() {
		t.Errorf("Error() = %q", err.Error())
	}
	if IsRetryable(errTransient) {
		t.Error("plain error reported as retryable")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name      string
		failures  int
		retryable bool
		wantCalls int
		wantErr   bool
	}{
		{"first try", 0, true, 1, false},
		{"recovers", 2, true, 3, false},
		{"gives up", 5, true, 3, true},
		{"permanent", 5, false, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := RetryWithBackoff(ctx, 3, time.Millisecond, func() error {
				calls++
				if calls > tt.failures {
					return nil
				}
				if tt.retryable {
					return Retryable(errTransient)
				}
				return errTransient
			})
			if (err != nil) != tt.wantErr {
				t.Errorf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := RetryWithBackoff(ctx, 3, time.Hour, func() error { return Retryable(errTransient) })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestRedisUnavailable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := NewRedisCache(ctx, RedisConfig{Addr: "127.0.0.1:1"})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("NewRedisCache() error = %v, want ErrUnavailable", err)
	}
}
