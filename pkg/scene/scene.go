package scene

import (
	"github.com/matzehuels/callout/pkg/callout"
	"github.com/matzehuels/callout/pkg/errors"
	"github.com/matzehuels/callout/pkg/geom"
	"github.com/matzehuels/callout/pkg/motion"
	"github.com/matzehuels/callout/pkg/placement"
)

// DefaultAlign is used when a callout gives neither align nor
// align_percent.
const DefaultAlign = 0.5

// Scene is a declarative callout layout.
type Scene struct {
	Name     string     `json:"name,omitempty" toml:"name,omitempty" bson:"name,omitempty"`
	Frame    geom.Rect  `json:"frame" toml:"frame" bson:"frame"`
	Boundary *geom.Rect `json:"boundary,omitempty" toml:"boundary,omitempty" bson:"boundary,omitempty"`
	Targets  []Target   `json:"targets" toml:"targets" bson:"targets"`
	Callouts []Callout  `json:"callouts" toml:"callouts" bson:"callouts"`
}

// Target is a static (or scripted) element callouts point at.
type Target struct {
	ID     string  `json:"id" toml:"id" bson:"id"`
	X      float64 `json:"x" toml:"x" bson:"x"`
	Y      float64 `json:"y" toml:"y" bson:"y"`
	Width  float64 `json:"width" toml:"width" bson:"width"`
	Height float64 `json:"height" toml:"height" bson:"height"`

	// Motion is an optional script moving the target per tick.
	Motion string `json:"motion,omitempty" toml:"motion,omitempty" bson:"motion,omitempty"`
}

// Rect returns the target's rectangle in frame coordinates.
func (t Target) Rect() geom.Rect { return geom.NewRect(t.X, t.Y, t.Width, t.Height) }

// Callout describes one callout box.
type Callout struct {
	ID     string `json:"id" toml:"id" bson:"id"`
	Target string `json:"target" toml:"target" bson:"target"`
	Text   string `json:"text,omitempty" toml:"text,omitempty" bson:"text,omitempty"`
	Side   string `json:"side" toml:"side" bson:"side"`

	// Align is a fraction in [0, 1]; AlignPercent the same as 0-100.
	// At most one may be set.
	Align        *float64 `json:"align,omitempty" toml:"align,omitempty" bson:"align,omitempty"`
	AlignPercent *float64 `json:"align_percent,omitempty" toml:"align_percent,omitempty" bson:"align_percent,omitempty"`

	// Mode is "event" (default) or "polling".
	Mode string `json:"mode,omitempty" toml:"mode,omitempty" bson:"mode,omitempty"`

	// Unbounded opts the callout out of the scene boundary.
	Unbounded bool `json:"unbounded,omitempty" toml:"unbounded,omitempty" bson:"unbounded,omitempty"`

	// Hover hides the box until the pointer is over the target.
	Hover bool `json:"hover,omitempty" toml:"hover,omitempty" bson:"hover,omitempty"`
}

// Alignment returns the alignment fraction, DefaultAlign when unset.
func (c Callout) Alignment() float64 {
	switch {
	case c.Align != nil:
		return *c.Align
	case c.AlignPercent != nil:
		return placement.AlignFromPercent(*c.AlignPercent)
	}
	return DefaultAlign
}

// Target returns the target with the given id.
func (s *Scene) Target(id string) (Target, bool) {
	for _, t := range s.Targets {
		if t.ID == id {
			return t, true
		}
	}
	return Target{}, false
}

// Validate checks the scene for structural errors. It reports the first
// problem found.
func (s *Scene) Validate() error {
	if s.Frame.Width <= 0 || s.Frame.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidScene, "frame must have a positive size, got %v", s.Frame)
	}
	if s.Boundary != nil && !s.Boundary.Valid() {
		return errors.New(errors.ErrCodeInvalidScene, "boundary has a negative size: %v", *s.Boundary)
	}

	ids := make(map[string]string)
	claim := func(kind, id string) error {
		if err := errors.ValidateID(kind, id); err != nil {
			return err
		}
		if prev, ok := ids[id]; ok {
			return errors.New(errors.ErrCodeInvalidScene, "%s id %q already used by a %s", kind, id, prev)
		}
		ids[id] = kind
		return nil
	}

	for _, t := range s.Targets {
		if err := claim("target", t.ID); err != nil {
			return err
		}
		if !t.Rect().Valid() {
			return errors.New(errors.ErrCodeInvalidScene, "target %q has a negative size", t.ID)
		}
		if t.Motion != "" {
			if _, err := motion.Compile(t.Motion); err != nil {
				return err
			}
		}
	}

	for _, c := range s.Callouts {
		if err := claim("callout", c.ID); err != nil {
			return err
		}
		if _, ok := s.Target(c.Target); !ok {
			return errors.New(errors.ErrCodeInvalidScene, "callout %q points at unknown target %q", c.ID, c.Target)
		}
		if _, err := placement.ParseSide(c.Side); err != nil {
			return err
		}
		if c.Align != nil && c.AlignPercent != nil {
			return errors.New(errors.ErrCodeInvalidAlign, "callout %q sets both align and align_percent", c.ID)
		}
		if err := placement.ValidateAlign(c.Alignment()); err != nil {
			return err
		}
		if _, err := callout.ParseMode(c.Mode); err != nil {
			return err
		}
	}
	// Node handles derived from callout ids must not shadow targets.
	for _, c := range s.Callouts {
		for _, h := range []string{c.ID + "-box", c.ID + "-arrow"} {
			if kind, ok := ids[h]; ok {
				return errors.New(errors.ErrCodeInvalidScene, "%s id %q collides with callout %q", kind, h, c.ID)
			}
		}
	}
	return nil
}
