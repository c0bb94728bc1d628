package callout

import (
	"time"

	"github.com/matzehuels/callout/pkg/geom"
	"github.com/matzehuels/callout/pkg/trigger"
)

// Handle identifies a node in the host's render tree.
type Handle string

// Root is the handle of the host's root node (the document body).
const Root Handle = ""

// NodeKind tells the host what a created node is for.
type NodeKind int

const (
	KindBox NodeKind = iota + 1
	KindArrow
)

func (k NodeKind) String() string {
	switch k {
	case KindBox:
		return "box"
	case KindArrow:
		return "arrow"
	}
	return "unknown"
}

// Host is the render tree a callout is drawn into.
//
// Measure and Reference report rectangles in absolute viewport
// coordinates. SetPosition takes coordinates relative to the node's parent
// (the reference frame for the box, the box for the arrow).
type Host interface {
	Reference() (geom.Rect, error)
	Measure(h Handle) (geom.Rect, error)

	CreateNode(h Handle, kind NodeKind) error
	AppendChild(parent, child Handle) error
	Remove(h Handle) error

	SetPosition(h Handle, left, top int) error
	SetText(h Handle, text string) error
	SetOpacity(h Handle, opacity float64) error
	SetTransition(h Handle, d time.Duration) error
}

// HoverHost is a Host that can report pointer enter and leave events.
type HoverHost interface {
	Host
	OnHover(h Handle, enter, leave func()) (trigger.Registration, error)
}
