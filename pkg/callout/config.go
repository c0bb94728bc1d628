package callout

import (
	"time"

	"github.com/matzehuels/callout/pkg/errors"
	"github.com/matzehuels/callout/pkg/placement"
)

const (
	// DefaultText is shown until UpdateText is called.
	DefaultText = "No Data"

	// DefaultInterval is the polling interval used when Config.Interval is zero.
	DefaultInterval = 5 * time.Millisecond

	// HoverTransition is the opacity transition applied by ShowOnHover.
	HoverTransition = 500 * time.Millisecond
)

// Mode selects what triggers recomputation.
type Mode int

const (
	// ModeEvent recomputes on resize notifications.
	ModeEvent Mode = iota
	// ModePolling recomputes every Config.Interval.
	ModePolling
)

func (m Mode) String() string {
	if m == ModePolling {
		return "polling"
	}
	return "event"
}

// ParseMode parses "event" or "polling". The empty string is ModeEvent.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "event":
		return ModeEvent, nil
	case "polling":
		return ModePolling, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "unknown mode %q (must be 'event' or 'polling')", s)
}

// Config is the immutable configuration of one callout.
type Config struct {
	// ID names the callout; node handles are derived from it. A random id
	// is generated when empty.
	ID string

	// Target is the node the box points at.
	Target Handle

	// Boundary optionally names a node the box is kept inside of on the
	// alignment axis. Root is not a valid boundary; leave it empty for
	// unconstrained placement.
	Boundary Handle

	Side  placement.Side
	Align float64

	Mode     Mode
	Interval time.Duration

	// Text is the initial text; DefaultText when empty.
	Text string
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Target == Root {
		return errors.New(errors.ErrCodeInvalidInput, "target handle cannot be empty")
	}
	if !c.Side.Valid() {
		return errors.New(errors.ErrCodeInvalidSide, "unrecognized side %d", int(c.Side))
	}
	if err := placement.ValidateAlign(c.Align); err != nil {
		return err
	}
	if c.Mode != ModeEvent && c.Mode != ModePolling {
		return errors.New(errors.ErrCodeInvalidInput, "unknown mode %d", int(c.Mode))
	}
	if c.Interval < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "negative polling interval %s", c.Interval)
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.Interval == 0 {
		c.Interval = DefaultInterval
	}
	if c.Text == "" {
		c.Text = DefaultText
	}
	return c
}
