package cli

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/callout/pkg/callout"
	"github.com/matzehuels/callout/pkg/geom"
	"github.com/matzehuels/callout/pkg/placement"
)

func TestBrowseOptsConfig(t *testing.T) {
	opts := browseOpts{target: "#save", boundary: "main", side: "left", align: 0.25, mode: "polling", interval: time.Second}
	cfg, err := opts.config()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Target != "#save" || cfg.Boundary != "main" {
		t.Errorf("handles = %q, %q", cfg.Target, cfg.Boundary)
	}
	if cfg.Side != placement.Left || cfg.Mode != callout.ModePolling || cfg.Interval != time.Second {
		t.Errorf("cfg = %+v", cfg)
	}

	if _, err := (browseOpts{side: "up", mode: "event"}).config(); err == nil {
		t.Error("expected an error for a bad side")
	}
	if _, err := (browseOpts{side: "top", mode: "sometimes"}).config(); err == nil {
		t.Error("expected an error for a bad mode")
	}
}

// fakePage grows its viewport after the first read and moves the box on
// every resize.
type fakePage struct {
	mu      sync.Mutex
	reads   int
	resizes int
	x       int
}

func (p *fakePage) ViewportSize() (float64, float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reads++
	if p.reads == 1 {
		return 800, 600, nil
	}
	return 1024, 768, nil
}

func (p *fakePage) NotifyResize() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resizes++
	p.x += 10
}

func (p *fakePage) Last() (placement.Result, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return placement.Result{Box: geom.Point{X: p.x}, Side: placement.Top}, true
}

func TestWatchPlacements(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 450*time.Millisecond)
	defer cancel()

	page := &fakePage{}
	changes := watchPlacements(ctx, page, page, page)

	if page.resizes != 1 {
		t.Errorf("resizes = %d, want 1", page.resizes)
	}
	if changes != 2 {
		t.Errorf("changes = %d, want 2", changes)
	}
}
