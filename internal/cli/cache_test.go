package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/callout/pkg/cache"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCachePath(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, "[cache]\ndir = \""+filepath.ToSlash(dir)+"\"\n")

	out, err := runCommand(t, "--config", cfg, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(out); got != filepath.ToSlash(dir) {
		t.Errorf("cache path = %q, want %q", got, dir)
	}
}

func TestCacheClear(t *testing.T) {
	dir := t.TempDir()
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := fc.Set(ctx, "layout", []byte("{}"), time.Hour); err != nil {
		t.Fatal(err)
	}

	cfg := writeConfig(t, "[cache]\ndir = \""+filepath.ToSlash(dir)+"\"\n")
	if _, err := runCommand(t, "--config", cfg, "cache", "clear"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := fc.Get(ctx, "layout"); ok {
		t.Error("entry survived cache clear")
	}
}

func TestCacheDirDefault(t *testing.T) {
	c := New(os.Stderr, LogInfo)
	dir, err := c.cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if !strings.HasSuffix(dir, appName) {
		t.Errorf("cacheDir() = %q, should end with %q", dir, appName)
	}
}

func TestNewCacheDisabled(t *testing.T) {
	c := New(os.Stderr, LogInfo)
	c.Config.Cache.Disabled = true
	ch, err := c.newCache(false)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := ch.(cache.NullCache); !ok {
		t.Errorf("newCache() = %T, want NullCache", ch)
	}
}
