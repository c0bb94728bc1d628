package placement

import (
	"math"

	"github.com/matzehuels/callout/pkg/errors"
	"github.com/matzehuels/callout/pkg/geom"
)

// Gap is the distance kept between the target edge and the box on the
// fixed axis.
const Gap = 10

// Input is one recomputation's worth of geometry. Only the sizes of Box and
// Arrow are used; their positions are whatever the host last rendered.
type Input struct {
	Target   geom.Rect  `json:"target"`
	Box      geom.Rect  `json:"box"`
	Arrow    geom.Rect  `json:"arrow"`
	Boundary *geom.Rect `json:"boundary,omitempty"`
	Side     Side       `json:"side"`
	Align    float64    `json:"align"`
}

// Result is where the box and arrow go.
type Result struct {
	// Box is the top-left corner of the box.
	Box geom.Point `json:"box"`

	// Arrow is the arrow node's offset inside the box along the
	// perpendicular axis, as applied to the host. It includes the
	// side-dependent half-arrow term.
	Arrow int `json:"arrow"`

	// Tip is the perpendicular offset inside the box that the arrow's
	// centre line points along, pinned to the box extent.
	Tip int `json:"tip"`

	// RawAnchor is the box start on the perpendicular axis before
	// clamping, Anchor after. Shift is RawAnchor - Anchor.
	RawAnchor int `json:"raw_anchor"`
	Anchor    int `json:"anchor"`
	Shift     int `json:"shift"`

	Side Side `json:"side,omitempty"`
}

// Clamped reports whether the boundary moved the box.
func (r Result) Clamped() bool { return r.Shift != 0 }

// BoxRect returns the placed box as a rectangle of the given size.
func (r Result) BoxRect(size geom.Rect) geom.Rect {
	return geom.Rect{X: float64(r.Box.X), Y: float64(r.Box.Y), Width: size.Width, Height: size.Height}
}

// ArrowBase returns the centre of the arrow's base relative to the box's
// top-left corner: Tip on the perpendicular axis, and the box edge facing
// the target on the fixed axis.
func (r Result) ArrowBase(box geom.Rect) geom.Point {
	fixed := r.Side.FixedAxis()
	edge := 0
	if r.Side.before() {
		edge = int(math.Floor(box.Size(fixed)))
	}
	if fixed == geom.Vertical {
		return geom.Point{X: r.Tip, Y: edge}
	}
	return geom.Point{X: edge, Y: r.Tip}
}

// ValidateAlign checks that a is a finite fraction in [0, 1].
func ValidateAlign(a float64) error {
	if math.IsNaN(a) || a < 0 || a > 1 {
		return errors.New(errors.ErrCodeInvalidAlign, "align offset %v outside [0, 1]", a)
	}
	return nil
}

// AlignFromPercent converts a percentage (0-100) to an alignment fraction.
func AlignFromPercent(p float64) float64 { return p / 100 }

// Validate checks the configuration part of the input: side and alignment.
// Rectangles are not validated; hosts report whatever they measure.
func (in Input) Validate() error {
	if !in.Side.Valid() {
		return errors.New(errors.ErrCodeInvalidSide, "unrecognized side %d", int(in.Side))
	}
	return ValidateAlign(in.Align)
}

// Place validates in and computes the placement.
func Place(in Input) (Result, error) {
	if err := in.Validate(); err != nil {
		return Result{}, err
	}
	return compute(in), nil
}

func compute(in Input) Result {
	perp := in.Side.Axis()
	fixed := perp.Other()
	boxSize := in.Box.Size(perp)

	raw := RawAnchor(in.Target, in.Box, in.Side, in.Align)
	anchor := raw
	if in.Boundary != nil {
		anchor = ClampAnchor(raw, boxSize, *in.Boundary, perp)
	}
	shift := raw - anchor

	var fixedPos int
	if in.Side.before() {
		fixedPos = floor(in.Target.Pos(fixed) - (in.Box.Size(fixed) + Gap))
	} else {
		fixedPos = floor(in.Target.End(fixed) + Gap)
	}

	half := in.Arrow.Size(perp) / 2
	arrow := floor(in.Side.arrowSign()*half + boxSize/2 + float64(shift))
	tip := floor(boxSize/2 + float64(shift))
	limit := floor(boxSize)

	res := Result{
		Arrow:     clampInt(arrow, 0, limit),
		Tip:       clampInt(tip, 0, limit),
		RawAnchor: raw,
		Anchor:    anchor,
		Shift:     shift,
		Side:      in.Side,
	}
	if perp == geom.Horizontal {
		res.Box = geom.Point{X: anchor, Y: fixedPos}
	} else {
		res.Box = geom.Point{X: fixedPos, Y: anchor}
	}
	return res
}

// RawAnchor is the unclamped box start on the perpendicular axis:
// floor(target.pos + align*target.size - box.size/2).
func RawAnchor(target, box geom.Rect, side Side, align float64) int {
	a := side.Axis()
	return floor(target.Pos(a) + align*target.Size(a) - box.Size(a)/2)
}

// ClampAnchor keeps a box of the given size starting at raw inside the
// boundary along axis a. When no integer start fits, either because the
// box is larger than the boundary or because the boundary's fractional
// edges leave no whole position, the box is aligned with the boundary
// start and overflows its end.
func ClampAnchor(raw int, size float64, boundary geom.Rect, a geom.Axis) int {
	lo := int(math.Ceil(boundary.Pos(a)))
	hi := floor(boundary.End(a) - size)
	if size > boundary.Size(a) || lo > hi {
		return lo
	}
	switch {
	case raw < lo:
		return lo
	case raw > hi:
		return hi
	}
	return raw
}

func floor(v float64) int { return int(math.Floor(v)) }

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
