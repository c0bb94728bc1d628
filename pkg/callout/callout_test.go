package callout_test

import (
	"testing"
	"time"

	"github.com/matzehuels/callout/pkg/callout"
	"github.com/matzehuels/callout/pkg/errors"
	"github.com/matzehuels/callout/pkg/geom"
	"github.com/matzehuels/callout/pkg/host/memhost"
	"github.com/matzehuels/callout/pkg/placement"
	"github.com/matzehuels/callout/pkg/textsize"
	"github.com/matzehuels/callout/pkg/trigger"
)

// newScene returns a host whose boxes are 80x40 for 8 characters of text,
// with a 50x20 target at (100, 100) and a 120x500 boundary at the origin.
func newScene(t *testing.T) *memhost.Host {
	t.Helper()
	h := memhost.New(
		memhost.WithMeasurer(textsize.Fixed{CharWidth: 10, LineHeight: 40}),
		memhost.WithPadding(0, 0),
		memhost.WithArrowSize(10, 10),
		memhost.WithOrigin(geom.Rect{X: 3, Y: 4, Width: 800, Height: 600}),
	)
	if err := h.AddElement("target", geom.Rect{X: 100, Y: 100, Width: 50, Height: 20}); err != nil {
		t.Fatal(err)
	}
	if err := h.AddElement("frame", geom.Rect{X: 0, Y: 0, Width: 120, Height: 500}); err != nil {
		t.Fatal(err)
	}
	return h
}

func baseConfig() callout.Config {
	return callout.Config{
		ID:     "c1",
		Target: "target",
		Side:   placement.Top,
		Align:  0.5,
		Text:   "abcdefgh",
	}
}

func position(t *testing.T, h *memhost.Host, id callout.Handle) geom.Rect {
	t.Helper()
	info, ok := h.Info(id)
	if !ok {
		t.Fatalf("node %s not found", id)
	}
	return info.Rect
}

func TestNewPlacesImmediately(t *testing.T) {
	h := newScene(t)
	c, err := callout.New(h, trigger.NewManual(), baseConfig())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer c.Close()

	if got := position(t, h, c.Box()); got.X != 85 || got.Y != 50 {
		t.Errorf("box at (%v, %v), want (85, 50)", got.X, got.Y)
	}
	// Arrow sits below the box, 35px in.
	if got := position(t, h, c.Arrow()); got.X != 85+35 || got.Y != 50+40 {
		t.Errorf("arrow at (%v, %v), want (120, 90)", got.X, got.Y)
	}
	res, ok := c.Last()
	if !ok || res.Clamped() {
		t.Errorf("Last() = %+v, %v", res, ok)
	}
}

func TestBoundaryClamp(t *testing.T) {
	h := newScene(t)
	cfg := baseConfig()
	cfg.Boundary = "frame"
	c, err := callout.New(h, trigger.NewManual(), cfg)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer c.Close()

	res, _ := c.Last()
	if res.Box.X != 40 || res.Shift != 45 || res.Arrow != 80 {
		t.Errorf("result = %+v, want Box.X 40, Shift 45, Arrow 80", res)
	}
}

func TestDefaults(t *testing.T) {
	h := newScene(t)
	cfg := baseConfig()
	cfg.ID = ""
	cfg.Text = ""
	c, err := callout.New(h, trigger.NewManual(), cfg)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer c.Close()

	if c.ID() == "" {
		t.Error("ID() is empty")
	}
	if c.Text() != callout.DefaultText {
		t.Errorf("Text() = %q, want %q", c.Text(), callout.DefaultText)
	}
	if c.Config().Interval != callout.DefaultInterval {
		t.Errorf("Interval = %v, want %v", c.Config().Interval, callout.DefaultInterval)
	}
	info, _ := h.Info(c.Box())
	if info.Text != callout.DefaultText {
		t.Errorf("host text = %q", info.Text)
	}
}

func TestInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*callout.Config)
		code   errors.Code
	}{
		{"no target", func(c *callout.Config) { c.Target = callout.Root }, errors.ErrCodeInvalidInput},
		{"zero side", func(c *callout.Config) { c.Side = 0 }, errors.ErrCodeInvalidSide},
		{"align high", func(c *callout.Config) { c.Align = 1.5 }, errors.ErrCodeInvalidAlign},
		{"align negative", func(c *callout.Config) { c.Align = -0.1 }, errors.ErrCodeInvalidAlign},
		{"bad mode", func(c *callout.Config) { c.Mode = 7 }, errors.ErrCodeInvalidInput},
		{"negative interval", func(c *callout.Config) { c.Interval = -time.Second }, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newScene(t)
			cfg := baseConfig()
			tt.modify(&cfg)
			_, err := callout.New(h, trigger.NewManual(), cfg)
			if !errors.Is(err, tt.code) {
				t.Errorf("New() error = %v, want %s", err, tt.code)
			}
			if n := len(h.Snapshot()); n != 2 {
				t.Errorf("host has %d nodes after rejected config, want 2", n)
			}
		})
	}
}

func TestTriggerModes(t *testing.T) {
	t.Run("event", func(t *testing.T) {
		m := trigger.NewManual()
		c, err := callout.New(newScene(t), m, baseConfig())
		if err != nil {
			t.Fatal(err)
		}
		if ticks, resizes := m.Pending(); ticks != 0 || resizes != 1 {
			t.Errorf("Pending() = %d, %d, want 0, 1", ticks, resizes)
		}
		c.Close()
		if ticks, resizes := m.Pending(); ticks != 0 || resizes != 0 {
			t.Errorf("after Close Pending() = %d, %d, want 0, 0", ticks, resizes)
		}
	})

	t.Run("polling", func(t *testing.T) {
		m := trigger.NewManual()
		cfg := baseConfig()
		cfg.Mode = callout.ModePolling
		c, err := callout.New(newScene(t), m, cfg)
		if err != nil {
			t.Fatal(err)
		}
		defer c.Close()
		if ticks, resizes := m.Pending(); ticks != 1 || resizes != 0 {
			t.Errorf("Pending() = %d, %d, want 1, 0", ticks, resizes)
		}
		if iv := m.Intervals(); len(iv) != 1 || iv[0] != callout.DefaultInterval {
			t.Errorf("Intervals() = %v", iv)
		}
	})
}

func TestFollowsTarget(t *testing.T) {
	h := newScene(t)
	m := trigger.NewManual()
	c, err := callout.New(h, m, baseConfig())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if err := h.MoveElement("target", geom.Rect{X: 300, Y: 200, Width: 50, Height: 20}); err != nil {
		t.Fatal(err)
	}
	// Nothing moves until the trigger fires.
	if got := position(t, h, c.Box()); got.X != 85 {
		t.Errorf("box moved before resize: %v", got)
	}
	m.Resize()
	if got := position(t, h, c.Box()); got.X != 285 || got.Y != 150 {
		t.Errorf("box at (%v, %v), want (285, 150)", got.X, got.Y)
	}
}

func TestReferenceFrameMoves(t *testing.T) {
	h := newScene(t)
	m := trigger.NewManual()
	c, err := callout.New(h, m, baseConfig())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	// Scrolling the frame moves everything together; relative placement
	// is unchanged.
	h.SetReference(geom.Rect{X: -200, Y: -50, Width: 800, Height: 600})
	m.Resize()
	res, ok := c.Last()
	if !ok || res.Box != (geom.Point{X: 85, Y: 50}) {
		t.Errorf("Last() = %+v, %v, want box (85, 50)", res, ok)
	}
}

func TestSkippedCycles(t *testing.T) {
	h := newScene(t)
	m := trigger.NewManual()
	c, err := callout.New(h, m, baseConfig())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if err := h.Detach("target"); err != nil {
		t.Fatal(err)
	}
	m.Resize()
	m.Resize()
	if c.Failures() != 2 {
		t.Errorf("Failures() = %d, want 2", c.Failures())
	}
	// The box keeps its last position.
	if got := position(t, h, c.Box()); got.X != 85 || got.Y != 50 {
		t.Errorf("box at (%v, %v), want (85, 50)", got.X, got.Y)
	}
	if _, ok := c.Update(); ok {
		t.Error("Update() succeeded with detached target")
	}

	if err := h.Attach("target"); err != nil {
		t.Fatal(err)
	}
	m.Resize()
	if c.Failures() != 0 {
		t.Errorf("Failures() = %d after recovery, want 0", c.Failures())
	}
}

func TestUpdateText(t *testing.T) {
	h := newScene(t)
	c, err := callout.New(h, trigger.NewManual(), baseConfig())
	if err != nil {
		t.Fatal(err)
	}

	// 4 characters -> 40px wide box, recentred over the target.
	if err := c.UpdateText("abcd"); err != nil {
		t.Fatalf("UpdateText() error: %v", err)
	}
	if got := position(t, h, c.Box()); got.X != 105 || got.Width != 40 {
		t.Errorf("box = %v, want x 105 width 40", got)
	}
	if c.Text() != "abcd" {
		t.Errorf("Text() = %q", c.Text())
	}

	c.Close()
	if err := c.UpdateText("x"); !errors.Is(err, errors.ErrCodeClosed) {
		t.Errorf("UpdateText() after Close error = %v, want CLOSED", err)
	}
}

func TestShowOnHover(t *testing.T) {
	h := newScene(t)
	c, err := callout.New(h, trigger.NewManual(), baseConfig())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if err := c.ShowOnHover(callout.Root); err != nil {
		t.Fatalf("ShowOnHover() error: %v", err)
	}
	info, _ := h.Info(c.Box())
	if info.Opacity != 0 || info.Transition != callout.HoverTransition || c.Visible() {
		t.Errorf("after ShowOnHover: %+v visible=%v", info, c.Visible())
	}

	h.Hover("target", true)
	if info, _ := h.Info(c.Box()); info.Opacity != 1 || !c.Visible() {
		t.Errorf("after enter opacity = %v", info.Opacity)
	}
	h.Hover("target", false)
	if info, _ := h.Info(c.Box()); info.Opacity != 0 || c.Visible() {
		t.Errorf("after leave opacity = %v", info.Opacity)
	}

	// Re-registering replaces the previous listener.
	if err := c.ShowOnHover("frame"); err != nil {
		t.Fatal(err)
	}
	if h.HoverCount() != 1 {
		t.Errorf("HoverCount() = %d, want 1", h.HoverCount())
	}
}

type plainHost struct{ callout.Host }

func TestShowOnHoverUnsupported(t *testing.T) {
	h := newScene(t)
	c, err := callout.New(plainHost{h}, trigger.NewManual(), baseConfig())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	if err := c.ShowOnHover(callout.Root); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("ShowOnHover() error = %v, want UNSUPPORTED", err)
	}
}

// nestFailHost refuses to nest the arrow inside the box.
type nestFailHost struct{ *memhost.Host }

func (h nestFailHost) AppendChild(parent, child callout.Handle) error {
	if parent != callout.Root {
		return errors.New(errors.ErrCodeInternal, "cannot nest %s", child)
	}
	return h.Host.AppendChild(parent, child)
}

func TestNewCleansUpNodesOnFailure(t *testing.T) {
	h := newScene(t)
	_, err := callout.New(nestFailHost{h}, trigger.NewManual(), baseConfig())
	if !errors.Is(err, errors.ErrCodeInternal) {
		t.Fatalf("New() error = %v, want INTERNAL_ERROR", err)
	}
	for _, id := range []callout.Handle{"c1-box", "c1-arrow"} {
		if _, ok := h.Info(id); ok {
			t.Errorf("node %s left in host after failed New()", id)
		}
	}
}

func TestCloseRemovesNodes(t *testing.T) {
	h := newScene(t)
	c, err := callout.New(h, trigger.NewManual(), baseConfig())
	if err != nil {
		t.Fatal(err)
	}
	if err := c.ShowOnHover(callout.Root); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second Close() error: %v", err)
	}
	if _, ok := h.Info(c.Box()); ok {
		t.Error("box still present after Close")
	}
	if h.HoverCount() != 0 {
		t.Errorf("HoverCount() = %d after Close", h.HoverCount())
	}
	if !c.Closed() {
		t.Error("Closed() = false")
	}
	if _, ok := c.Update(); ok {
		t.Error("Update() succeeded after Close")
	}
}

func TestArrowPosition(t *testing.T) {
	box := geom.Rect{Width: 80, Height: 40}
	arrow := geom.Rect{Width: 10, Height: 6}
	tests := []struct {
		side     placement.Side
		wantLeft int
		wantTop  int
	}{
		{placement.Top, 35, 40},
		{placement.Bottom, 35, -6},
		{placement.Left, 80, 35},
		{placement.Right, -10, 35},
	}
	for _, tt := range tests {
		t.Run(tt.side.String(), func(t *testing.T) {
			left, top := callout.ArrowPosition(placement.Result{Side: tt.side, Arrow: 35}, box, arrow)
			if left != tt.wantLeft || top != tt.wantTop {
				t.Errorf("ArrowPosition() = (%d, %d), want (%d, %d)", left, top, tt.wantLeft, tt.wantTop)
			}
		})
	}
}

func TestPollingWithClock(t *testing.T) {
	h := newScene(t)
	clock := trigger.NewClock(t.Context())
	cfg := baseConfig()
	cfg.Mode = callout.ModePolling
	cfg.Interval = time.Millisecond
	c, err := callout.New(h, clock, cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if err := h.MoveElement("target", geom.Rect{X: 300, Y: 200, Width: 50, Height: 20}); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if res, _ := c.Last(); res.Box.X == 285 {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Error("polling callout never followed the target")
}
