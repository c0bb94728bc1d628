package geom

import "fmt"

// Axis selects the horizontal (X/Width) or vertical (Y/Height) component
// of a rectangle.
type Axis int

const (
	Horizontal Axis = iota
	Vertical
)

// Other returns the perpendicular axis.
func (a Axis) Other() Axis {
	if a == Horizontal {
		return Vertical
	}
	return Horizontal
}

func (a Axis) String() string {
	if a == Horizontal {
		return "horizontal"
	}
	return "vertical"
}

// Rect is an axis-aligned rectangle with its origin at the top-left corner.
type Rect struct {
	X      float64 `json:"x" toml:"x" bson:"x"`
	Y      float64 `json:"y" toml:"y" bson:"y"`
	Width  float64 `json:"width" toml:"width" bson:"width"`
	Height float64 `json:"height" toml:"height" bson:"height"`
}

// NewRect creates a rectangle from its position and size.
func NewRect(x, y, w, h float64) Rect {
	return Rect{X: x, Y: y, Width: w, Height: h}
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Pos returns the start coordinate of r along a.
func (r Rect) Pos(a Axis) float64 {
	if a == Horizontal {
		return r.X
	}
	return r.Y
}

// Size returns the extent of r along a.
func (r Rect) Size(a Axis) float64 {
	if a == Horizontal {
		return r.Width
	}
	return r.Height
}

// End returns Pos(a) + Size(a).
func (r Rect) End(a Axis) float64 { return r.Pos(a) + r.Size(a) }

// WithPos returns a copy of r whose start coordinate along a is v.
func (r Rect) WithPos(a Axis, v float64) Rect {
	if a == Horizontal {
		r.X = v
	} else {
		r.Y = v
	}
	return r
}

// Translate returns r moved by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// Contains reports whether o lies entirely inside r.
func (r Rect) Contains(o Rect) bool {
	return o.X >= r.X && o.Y >= r.Y && o.Right() <= r.Right() && o.Bottom() <= r.Bottom()
}

// ContainsPoint reports whether (x, y) lies inside r. The right and bottom
// edges are exclusive.
func (r Rect) ContainsPoint(x, y float64) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Valid reports whether r has non-negative dimensions.
func (r Rect) Valid() bool { return r.Width >= 0 && r.Height >= 0 }

func (r Rect) String() string {
	return fmt.Sprintf("{x:%g y:%g w:%g h:%g}", r.X, r.Y, r.Width, r.Height)
}

// Point is an integer position, as applied to rendered nodes.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Coord returns the component of p along a.
func (p Point) Coord(a Axis) int {
	if a == Horizontal {
		return p.X
	}
	return p.Y
}

// ToRelative rebases raw, given in absolute viewport coordinates, onto the
// reference frame ref. Width and height are carried over unchanged.
func ToRelative(raw, ref Rect) Rect {
	return Rect{
		X:      raw.X - ref.X,
		Y:      raw.Y - ref.Y,
		Width:  raw.Width,
		Height: raw.Height,
	}
}

// FromRelative is the inverse of ToRelative.
func FromRelative(rel, ref Rect) Rect {
	return Rect{
		X:      rel.X + ref.X,
		Y:      rel.Y + ref.Y,
		Width:  rel.Width,
		Height: rel.Height,
	}
}
