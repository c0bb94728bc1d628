package geom

import "testing"

func TestToRelative(t *testing.T) {
	tests := []struct {
		name string
		raw  Rect
		ref  Rect
		want Rect
	}{
		{
			name: "zero reference",
			raw:  Rect{X: 10, Y: 20, Width: 30, Height: 40},
			ref:  Rect{},
			want: Rect{X: 10, Y: 20, Width: 30, Height: 40},
		},
		{
			name: "offset body",
			raw:  Rect{X: 108, Y: 58, Width: 50, Height: 20},
			ref:  Rect{X: 8, Y: 8, Width: 1024, Height: 768},
			want: Rect{X: 100, Y: 50, Width: 50, Height: 20},
		},
		{
			name: "scrolled body gives negative origin",
			raw:  Rect{X: 0, Y: 0, Width: 5, Height: 5},
			ref:  Rect{X: 0, Y: -300, Width: 800, Height: 2000},
			want: Rect{X: 0, Y: 300, Width: 5, Height: 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, ref := tt.raw, tt.ref
			got := ToRelative(raw, ref)
			if got != tt.want {
				t.Errorf("ToRelative() = %v, want %v", got, tt.want)
			}
			if raw != tt.raw || ref != tt.ref {
				t.Error("ToRelative modified its inputs")
			}
			if back := FromRelative(got, ref); back != raw {
				t.Errorf("FromRelative() = %v, want %v", back, raw)
			}
		})
	}
}

func TestRectAxes(t *testing.T) {
	r := Rect{X: 1, Y: 2, Width: 3, Height: 4}

	if r.Pos(Horizontal) != 1 || r.Pos(Vertical) != 2 {
		t.Errorf("Pos = (%v, %v), want (1, 2)", r.Pos(Horizontal), r.Pos(Vertical))
	}
	if r.Size(Horizontal) != 3 || r.Size(Vertical) != 4 {
		t.Errorf("Size = (%v, %v), want (3, 4)", r.Size(Horizontal), r.Size(Vertical))
	}
	if r.End(Horizontal) != 4 || r.End(Vertical) != 6 {
		t.Errorf("End = (%v, %v), want (4, 6)", r.End(Horizontal), r.End(Vertical))
	}
	if got := r.WithPos(Vertical, 9); got.Y != 9 || r.Y != 2 {
		t.Errorf("WithPos() = %v (receiver %v)", got, r)
	}
	if Horizontal.Other() != Vertical || Vertical.Other() != Horizontal {
		t.Error("Other() should swap axes")
	}
}

func TestRectContains(t *testing.T) {
	outer := Rect{X: 0, Y: 0, Width: 100, Height: 100}

	if !outer.Contains(Rect{X: 10, Y: 10, Width: 90, Height: 90}) {
		t.Error("touching the far edge should be contained")
	}
	if outer.Contains(Rect{X: 10, Y: 10, Width: 91, Height: 10}) {
		t.Error("overflowing rect should not be contained")
	}
	if !outer.ContainsPoint(0, 0) || outer.ContainsPoint(100, 50) {
		t.Error("ContainsPoint edge handling is wrong")
	}
}

func TestPointCoord(t *testing.T) {
	p := Point{X: 3, Y: 7}
	if p.Coord(Horizontal) != 3 || p.Coord(Vertical) != 7 {
		t.Errorf("Coord = (%d, %d), want (3, 7)", p.Coord(Horizontal), p.Coord(Vertical))
	}
}
