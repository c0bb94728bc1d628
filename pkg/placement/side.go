package placement

import (
	"strings"

	"github.com/matzehuels/callout/pkg/errors"
	"github.com/matzehuels/callout/pkg/geom"
)

// Side is the edge of the target the box points from. The zero value is
// not a valid side.
type Side int

const (
	Top Side = iota + 1
	Bottom
	Left
	Right
)

// Sides lists all valid sides in declaration order.
var Sides = []Side{Top, Bottom, Left, Right}

var sideNames = map[Side]string{
	Top:    "top",
	Bottom: "bottom",
	Left:   "left",
	Right:  "right",
}

// ParseSide parses a side name ("top", "bottom", "left", "right"),
// ignoring case and surrounding whitespace.
func ParseSide(s string) (Side, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for side, n := range sideNames {
		if n == name {
			return side, nil
		}
	}
	return 0, errors.New(errors.ErrCodeInvalidSide,
		"unknown side %q (must be 'top', 'bottom', 'left' or 'right')", s)
}

// Valid reports whether s is one of the four sides.
func (s Side) Valid() bool {
	_, ok := sideNames[s]
	return ok
}

func (s Side) String() string {
	if n, ok := sideNames[s]; ok {
		return n
	}
	return "invalid"
}

// Axis returns the perpendicular axis, along which alignment and boundary
// clamping apply.
func (s Side) Axis() geom.Axis {
	if s == Left || s == Right {
		return geom.Vertical
	}
	return geom.Horizontal
}

// FixedAxis returns the axis along which the box keeps its gap from the
// target.
func (s Side) FixedAxis() geom.Axis { return s.Axis().Other() }

// before reports whether the box sits before the target on the fixed axis
// (above it or to its left).
func (s Side) before() bool { return s == Top || s == Left }

// arrowSign is the sign applied to half the arrow size in the arrow offset.
func (s Side) arrowSign() float64 {
	if s == Top || s == Right {
		return -1
	}
	return 1
}

// MarshalText implements encoding.TextMarshaler.
func (s Side) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidSide, "invalid side %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Side) UnmarshalText(b []byte) error {
	v, err := ParseSide(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
