package scene

import (
	"context"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/callout/pkg/callout"
	"github.com/matzehuels/callout/pkg/errors"
	"github.com/matzehuels/callout/pkg/geom"
	"github.com/matzehuels/callout/pkg/host/memhost"
	"github.com/matzehuels/callout/pkg/motion"
	"github.com/matzehuels/callout/pkg/placement"
	"github.com/matzehuels/callout/pkg/textsize"
	"github.com/matzehuels/callout/pkg/trigger"
)

// BoundaryHandle is the memhost handle of the scene boundary. It is not a
// valid scene id, so it cannot collide with targets or callouts.
const BoundaryHandle callout.Handle = "@boundary"

// Options configures resolution.
type Options struct {
	// Steps advances the scene this many ticks after the initial
	// placement.
	Steps int

	// Measurer sizes box text. Defaults to textsize.Basic().
	Measurer textsize.Measurer

	// PaddingX and PaddingY pad box text; memhost defaults when zero.
	PaddingX, PaddingY float64

	// ArrowSize is the arrow node's width and height; memhost default
	// when zero.
	ArrowSize float64

	Logger *log.Logger
}

// Layout is a resolved scene. All rectangles are relative to the frame.
type Layout struct {
	Name     string         `json:"name,omitempty"`
	Frame    geom.Rect      `json:"frame"`
	Boundary *geom.Rect     `json:"boundary,omitempty"`
	Tick     int            `json:"tick"`
	Targets  []PlacedTarget `json:"targets"`
	Callouts []Placed       `json:"callouts"`
}

// PlacedTarget is a target at its current position.
type PlacedTarget struct {
	ID   string    `json:"id"`
	Rect geom.Rect `json:"rect"`
}

// Placed is one callout after resolution.
type Placed struct {
	ID       string           `json:"id"`
	Target   string           `json:"target"`
	Text     string           `json:"text"`
	Side     placement.Side   `json:"side"`
	Align    float64          `json:"align"`
	Mode     string           `json:"mode"`
	Bounded  bool             `json:"bounded"`
	Box      geom.Rect        `json:"box"`
	Arrow    geom.Rect        `json:"arrow"`
	Result   placement.Result `json:"result"`
	Placed   bool             `json:"placed"`
	Visible  bool             `json:"visible"`
	Failures int              `json:"failures,omitempty"`
}

// Target returns the placed target with the given id.
func (l *Layout) Target(id string) (PlacedTarget, bool) {
	for _, t := range l.Targets {
		if t.ID == id {
			return t, true
		}
	}
	return PlacedTarget{}, false
}

// Callout returns the placed callout with the given id.
func (l *Layout) Callout(id string) (Placed, bool) {
	for _, c := range l.Callouts {
		if c.ID == id {
			return c, true
		}
	}
	return Placed{}, false
}

// Resolve places every callout of s, advances opts.Steps ticks and returns
// the resulting layout.
func Resolve(ctx context.Context, s *Scene, opts Options) (*Layout, error) {
	live, err := Open(ctx, s, opts)
	if err != nil {
		return nil, err
	}
	defer live.Close()
	live.Step(opts.Steps)
	return live.Layout(), nil
}

// Live is a scene instantiated on a memhost, driven by a manual scheduler.
type Live struct {
	mu sync.Mutex

	scene    *Scene
	host     *memhost.Host
	sched    *trigger.Manual
	callouts []*callout.Callout
	defs     []Callout
	motions  map[string]*motion.Script
	offsets  map[string]geom.Point
	tick     int
	logger   *log.Logger
}

// Open validates s and instantiates it. Every callout is placed once.
func Open(ctx context.Context, s *Scene, opts Options) (*Live, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	hostOpts := []memhost.Option{memhost.WithOrigin(s.Frame)}
	if opts.Measurer != nil {
		hostOpts = append(hostOpts, memhost.WithMeasurer(opts.Measurer))
	}
	if opts.PaddingX > 0 || opts.PaddingY > 0 {
		hostOpts = append(hostOpts, memhost.WithPadding(opts.PaddingX, opts.PaddingY))
	}
	if opts.ArrowSize > 0 {
		hostOpts = append(hostOpts, memhost.WithArrowSize(opts.ArrowSize, opts.ArrowSize))
	}

	l := &Live{
		scene:   s,
		host:    memhost.New(hostOpts...),
		sched:   trigger.NewManual(),
		motions: make(map[string]*motion.Script),
		offsets: make(map[string]geom.Point),
		logger:  logger,
	}

	for _, t := range s.Targets {
		if err := l.host.AddElement(callout.Handle(t.ID), t.Rect()); err != nil {
			return nil, err
		}
		if t.Motion != "" {
			script, err := motion.Compile(t.Motion)
			if err != nil {
				return nil, err
			}
			l.motions[t.ID] = script
		}
	}
	if s.Boundary != nil {
		if err := l.host.AddElement(BoundaryHandle, *s.Boundary); err != nil {
			return nil, err
		}
	}

	for _, def := range s.Callouts {
		side, _ := placement.ParseSide(def.Side)
		mode, _ := callout.ParseMode(def.Mode)
		cfg := callout.Config{
			ID:     def.ID,
			Target: callout.Handle(def.Target),
			Side:   side,
			Align:  def.Alignment(),
			Mode:   mode,
			Text:   def.Text,
		}
		if s.Boundary != nil && !def.Unbounded {
			cfg.Boundary = BoundaryHandle
		}

		c, err := callout.New(l.host, l.sched, cfg, callout.WithLogger(logger), callout.WithContext(ctx))
		if err != nil {
			l.Close()
			return nil, errors.Wrap(errors.ErrCodeInvalidScene, err, "callout %q", def.ID)
		}
		if def.Hover {
			if err := c.ShowOnHover(callout.Root); err != nil {
				c.Close()
				l.Close()
				return nil, err
			}
		}
		l.callouts = append(l.callouts, c)
		l.defs = append(l.defs, def)
	}

	logger.Debug("scene opened", "name", s.Name, "targets", len(s.Targets), "callouts", len(s.Callouts))
	return l, nil
}

// Host returns the underlying memhost.
func (l *Live) Host() *memhost.Host { return l.host }

// Scene returns the scene the live instance was opened from.
func (l *Live) Scene() *Scene { return l.scene }

// Tick returns the number of ticks stepped so far.
func (l *Live) Tick() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tick
}

// Step advances n ticks: scripted targets move, then polling callouts
// recompute. Event-mode callouts only follow on Resize.
func (l *Live) Step(n int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for range n {
		l.tick++
		l.applyMotion()
		l.sched.Tick()
	}
}

func (l *Live) applyMotion() {
	for _, t := range l.scene.Targets {
		script, ok := l.motions[t.ID]
		if !ok {
			continue
		}
		off, err := script.Eval(l.tick)
		if err != nil {
			l.logger.Debug("motion skipped", "target", t.ID, "tick", l.tick, "err", err)
			continue
		}
		l.place(t.ID, off.Apply(l.base(t)))
	}
}

func (l *Live) base(t Target) geom.Rect {
	off := l.offsets[t.ID]
	return t.Rect().Translate(float64(off.X), float64(off.Y))
}

func (l *Live) place(id string, r geom.Rect) {
	if err := l.host.MoveElement(callout.Handle(id), r); err != nil {
		l.logger.Debug("move target", "target", id, "err", err)
	}
}

// Resize fires the resize trigger: every event-mode callout recomputes.
func (l *Live) Resize() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sched.Resize()
}

// SetFrame resizes the reference frame and fires the resize trigger.
func (l *Live) SetFrame(r geom.Rect) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.host.SetReference(r)
	l.sched.Resize()
}

// Nudge moves a target's base position by (dx, dy). Scripted motion is
// applied on top of the base on the next tick. Nothing recomputes until
// the next Step or Resize.
func (l *Live) Nudge(id string, dx, dy int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	t, ok := l.scene.Target(id)
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "target %q not found", id)
	}
	off := l.offsets[id]
	off.X += dx
	off.Y += dy
	l.offsets[id] = off

	r := l.base(t)
	if script, ok := l.motions[id]; ok {
		if o, err := script.Eval(l.tick); err == nil {
			r = o.Apply(r)
		}
	}
	l.place(id, r)
	return nil
}

// Hover simulates the pointer entering or leaving a target.
func (l *Live) Hover(id string, inside bool) {
	l.host.Hover(callout.Handle(id), inside)
}

// Layout snapshots the current state.
func (l *Live) Layout() *Layout {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := &Layout{
		Name:     l.scene.Name,
		Frame:    l.scene.Frame,
		Boundary: l.scene.Boundary,
		Tick:     l.tick,
	}
	if ref, err := l.host.Reference(); err == nil {
		out.Frame = ref
	}
	for _, t := range l.scene.Targets {
		info, _ := l.host.Info(callout.Handle(t.ID))
		out.Targets = append(out.Targets, PlacedTarget{ID: t.ID, Rect: info.Rect})
	}
	for i, c := range l.callouts {
		def := l.defs[i]
		cfg := c.Config()
		box, _ := l.host.Info(c.Box())
		arrow, _ := l.host.Info(c.Arrow())
		res, placed := c.Last()
		out.Callouts = append(out.Callouts, Placed{
			ID:       c.ID(),
			Target:   def.Target,
			Text:     c.Text(),
			Side:     cfg.Side,
			Align:    cfg.Align,
			Mode:     cfg.Mode.String(),
			Bounded:  cfg.Boundary != callout.Root,
			Box:      box.Rect,
			Arrow:    arrow.Rect,
			Result:   res,
			Placed:   placed,
			Visible:  c.Visible(),
			Failures: c.Failures(),
		})
	}
	return out
}

// Callout returns the live callout with the given id.
func (l *Live) Callout(id string) (*callout.Callout, bool) {
	for _, c := range l.callouts {
		if c.ID() == id {
			return c, true
		}
	}
	return nil, false
}

// Close closes every callout.
func (l *Live) Close() {
	for _, c := range l.callouts {
		_ = c.Close()
	}
}
