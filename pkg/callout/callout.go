package callout

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/callout/pkg/errors"
	"github.com/matzehuels/callout/pkg/geom"
	"github.com/matzehuels/callout/pkg/observability"
	"github.com/matzehuels/callout/pkg/placement"
	"github.com/matzehuels/callout/pkg/trigger"
)

// Option configures a Callout.
type Option func(*Callout)

// WithLogger sets the logger used for skipped cycles and lifecycle events.
func WithLogger(l *log.Logger) Option {
	return func(c *Callout) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithContext sets the context passed to observability hooks.
func WithContext(ctx context.Context) Option {
	return func(c *Callout) { c.ctx = ctx }
}

// Callout is one callout box instance.
type Callout struct {
	mu sync.Mutex

	cfg   Config
	host  Host
	box   Handle
	arrow Handle

	text    string
	visible bool

	reg   trigger.Registration
	hover trigger.Registration

	failures int
	last     placement.Result
	placed   bool
	closed   bool

	ctx    context.Context
	logger *log.Logger
}

// New validates cfg, creates the box and arrow nodes, registers the
// trigger selected by cfg.Mode and performs a first placement.
func New(host Host, sched trigger.Scheduler, cfg Config, opts ...Option) (*Callout, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}

	c := &Callout{
		cfg:     cfg,
		host:    host,
		box:     Handle(cfg.ID + "-box"),
		arrow:   Handle(cfg.ID + "-arrow"),
		text:    cfg.Text,
		visible: true,
		hover:   trigger.Nop,
		ctx:     context.Background(),
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.createNodes(); err != nil {
		return nil, err
	}

	if cfg.Mode == ModePolling {
		c.reg = sched.Every(cfg.Interval, func() { c.Update() })
	} else {
		c.reg = sched.OnResize(func() { c.Update() })
	}

	c.logger.Debug("callout created", "id", cfg.ID, "side", cfg.Side, "align", cfg.Align, "mode", cfg.Mode)
	c.Update()
	return c, nil
}

func (c *Callout) createNodes() error {
	steps := []func() error{
		func() error { return c.host.CreateNode(c.box, KindBox) },
		func() error { return c.host.CreateNode(c.arrow, KindArrow) },
		func() error { return c.host.AppendChild(c.box, c.arrow) },
		func() error { return c.host.AppendChild(Root, c.box) },
		func() error { return c.host.SetText(c.box, c.text) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			_ = c.host.Remove(c.box)
			_ = c.host.Remove(c.arrow)
			return errors.Wrap(errors.ErrCodeInternal, err, "create callout %s", c.cfg.ID)
		}
	}
	return nil
}

// ID returns the callout id.
func (c *Callout) ID() string { return c.cfg.ID }

// Config returns the configuration with defaults applied.
func (c *Callout) Config() Config { return c.cfg }

// Box returns the handle of the box node.
func (c *Callout) Box() Handle { return c.box }

// Arrow returns the handle of the arrow node.
func (c *Callout) Arrow() Handle { return c.arrow }

// Text returns the current text.
func (c *Callout) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}

// Visible reports whether the box was last shown.
func (c *Callout) Visible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visible
}

// Failures returns the number of consecutive skipped cycles.
func (c *Callout) Failures() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failures
}

// Last returns the most recently applied placement, and false if no cycle
// has succeeded yet.
func (c *Callout) Last() (placement.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last, c.placed
}

// Closed reports whether Close has been called.
func (c *Callout) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// UpdateText replaces the box text and recomputes the placement, since the
// box size depends on its content.
func (c *Callout) UpdateText(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.New(errors.ErrCodeClosed, "callout %s is closed", c.cfg.ID)
	}
	if err := c.host.SetText(c.box, text); err != nil {
		return err
	}
	c.text = text
	c.updateLocked()
	return nil
}

// Show makes the box fully opaque.
func (c *Callout) Show() error { return c.setOpacity(1, true) }

// Hide makes the box fully transparent.
func (c *Callout) Hide() error { return c.setOpacity(0, false) }

func (c *Callout) setOpacity(o float64, visible bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.New(errors.ErrCodeClosed, "callout %s is closed", c.cfg.ID)
	}
	if err := c.host.SetOpacity(c.box, o); err != nil {
		return err
	}
	c.visible = visible
	return nil
}

// ShowOnHover hides the box and shows it only while the pointer is over h
// (the target when h is Root). The host must implement HoverHost. Calling
// it again replaces the previous hover registration.
func (c *Callout) ShowOnHover(h Handle) error {
	hh, ok := c.host.(HoverHost)
	if !ok {
		return errors.New(errors.ErrCodeUnsupported, "host does not support hover events")
	}
	if h == Root {
		h = c.cfg.Target
	}

	if err := c.Hide(); err != nil {
		return err
	}
	if err := c.host.SetTransition(c.box, HoverTransition); err != nil {
		return err
	}

	reg, err := hh.OnHover(h,
		func() { _ = c.Show() },
		func() { _ = c.Hide() },
	)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.hover.Cancel()
	c.hover = reg
	return nil
}

// Update runs one recomputation cycle. It returns the applied placement
// and true, or the previous placement and false when the cycle was skipped
// or the callout is closed.
func (c *Callout) Update() (placement.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return c.last, false
	}
	return c.updateLocked()
}

func (c *Callout) updateLocked() (placement.Result, bool) {
	start := time.Now()

	in, err := c.measure()
	if err == nil {
		var res placement.Result
		if res, err = placement.Place(in); err == nil {
			if err = c.apply(res, in); err == nil {
				c.failures = 0
				c.last, c.placed = res, true
				observability.Placement().OnCycle(c.ctx, c.cfg.ID, res.Clamped(), time.Since(start))
				return res, true
			}
		}
	}

	c.failures++
	c.logger.Debug("skipping placement cycle", "id", c.cfg.ID, "failures", c.failures, "err", err)
	observability.Placement().OnSkip(c.ctx, c.cfg.ID, c.failures, err)
	return c.last, false
}

// measure reads every rectangle the engine needs, relative to the
// reference frame.
func (c *Callout) measure() (placement.Input, error) {
	ref, err := c.host.Reference()
	if err != nil {
		return placement.Input{}, errors.Wrap(errors.ErrCodeUnmeasurable, err, "measure reference frame")
	}

	read := func(h Handle) (geom.Rect, error) {
		r, err := c.host.Measure(h)
		if err != nil {
			return geom.Rect{}, errors.Wrap(errors.ErrCodeUnmeasurable, err, "measure %q", string(h))
		}
		return geom.ToRelative(r, ref), nil
	}

	in := placement.Input{Side: c.cfg.Side, Align: c.cfg.Align}
	if in.Target, err = read(c.cfg.Target); err != nil {
		return in, err
	}
	if in.Box, err = read(c.box); err != nil {
		return in, err
	}
	if in.Arrow, err = read(c.arrow); err != nil {
		return in, err
	}
	if c.cfg.Boundary != Root {
		b, err := read(c.cfg.Boundary)
		if err != nil {
			return in, err
		}
		in.Boundary = &b
	}
	return in, nil
}

// apply positions the box in the reference frame and the arrow inside the
// box. On the fixed axis the arrow straddles the box edge facing the
// target.
func (c *Callout) apply(res placement.Result, in placement.Input) error {
	if err := c.host.SetPosition(c.box, res.Box.X, res.Box.Y); err != nil {
		return err
	}
	x, y := ArrowPosition(res, in.Box, in.Arrow)
	return c.host.SetPosition(c.arrow, x, y)
}

// ArrowPosition returns the arrow node's position relative to the box for
// a placement result.
func ArrowPosition(res placement.Result, box, arrow geom.Rect) (left, top int) {
	switch res.Side {
	case placement.Top:
		return res.Arrow, int(box.Height)
	case placement.Bottom:
		return res.Arrow, -int(arrow.Height)
	case placement.Left:
		return int(box.Width), res.Arrow
	default:
		return -int(arrow.Width), res.Arrow
	}
}

// Close cancels the callout's registrations and removes its nodes from the
// host. It is safe to call more than once.
func (c *Callout) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.reg.Cancel()
	c.hover.Cancel()
	c.logger.Debug("callout closed", "id", c.cfg.ID)
	return c.host.Remove(c.box)
}
