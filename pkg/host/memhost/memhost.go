// Package memhost is an in-memory render tree implementing callout.Host.
//
// It backs scene resolution, the terminal UI and tests. Static elements
// (targets, boundaries) are added with explicit rectangles; callout boxes
// are sized from their text with a [textsize.Measurer] plus padding, and
// arrows have a fixed size.
//
// Rectangles passed to AddElement and returned by Snapshot are relative to
// the reference frame. Measure and Reference report viewport coordinates,
// offset by the frame origin, as a browser would.
package memhost

import (
	"sync"
	"time"

	"github.com/matzehuels/callout/pkg/callout"
	"github.com/matzehuels/callout/pkg/errors"
	"github.com/matzehuels/callout/pkg/geom"
	"github.com/matzehuels/callout/pkg/textsize"
	"github.com/matzehuels/callout/pkg/trigger"
)

// Kind classifies nodes in the tree.
type Kind int

const (
	KindElement Kind = iota
	KindBox
	KindArrow
)

func (k Kind) String() string {
	switch k {
	case KindBox:
		return "box"
	case KindArrow:
		return "arrow"
	}
	return "element"
}

// Defaults for box and arrow sizing.
const (
	DefaultPaddingX = 8
	DefaultPaddingY = 6
	DefaultArrow    = 10
)

// Option configures a Host.
type Option func(*Host)

// WithMeasurer sets the text measurer used to size boxes.
func WithMeasurer(m textsize.Measurer) Option { return func(h *Host) { h.measurer = m } }

// WithPadding sets the padding added around box text on each side.
func WithPadding(x, y float64) Option { return func(h *Host) { h.padX, h.padY = x, y } }

// WithArrowSize sets the arrow node size.
func WithArrowSize(w, hgt float64) Option { return func(h *Host) { h.arrow = geom.Rect{Width: w, Height: hgt} } }

// WithOrigin sets the reference frame (body) rectangle in viewport
// coordinates.
func WithOrigin(r geom.Rect) Option { return func(h *Host) { h.origin = r } }

type node struct {
	kind     Kind
	parent   callout.Handle
	attached bool // linked into its parent's children
	children []callout.Handle

	rect       geom.Rect // elements: frame rect; boxes/arrows: X/Y relative to parent
	positioned bool
	text       string
	opacity    float64
	transition time.Duration
}

type hoverEntry struct {
	target       callout.Handle
	enter, leave func()
}

// Host is an in-memory callout.HoverHost.
type Host struct {
	mu       sync.Mutex
	origin   geom.Rect
	nodes    map[callout.Handle]*node
	order    []callout.Handle
	root     []callout.Handle
	measurer textsize.Measurer
	padX     float64
	padY     float64
	arrow    geom.Rect

	hoverID int
	hovers  map[int]hoverEntry
}

// New creates an empty host.
func New(opts ...Option) *Host {
	h := &Host{
		nodes:    make(map[callout.Handle]*node),
		measurer: textsize.Basic(),
		padX:     DefaultPaddingX,
		padY:     DefaultPaddingY,
		arrow:    geom.Rect{Width: DefaultArrow, Height: DefaultArrow},
		hovers:   make(map[int]hoverEntry),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// AddElement adds (or replaces) a static element attached to the root.
func (h *Host) AddElement(id callout.Handle, r geom.Rect) error {
	if id == callout.Root {
		return errors.New(errors.ErrCodeInvalidID, "element handle cannot be empty")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if n, ok := h.nodes[id]; ok {
		if n.kind != KindElement {
			return errors.New(errors.ErrCodeInvalidInput, "%q is a %s, not an element", string(id), n.kind)
		}
		n.rect = r
		return nil
	}
	h.nodes[id] = &node{kind: KindElement, rect: r, opacity: 1, positioned: true}
	h.order = append(h.order, id)
	h.link(callout.Root, id)
	return nil
}

// MoveElement replaces the rectangle of an existing element.
func (h *Host) MoveElement(id callout.Handle, r geom.Rect) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	n, ok := h.nodes[id]
	if !ok || n.kind != KindElement {
		return errors.New(errors.ErrCodeNotFound, "element %q not found", string(id))
	}
	n.rect = r
	return nil
}

// Detach unlinks a node from its parent without deleting it, as if it had
// been taken out of the render tree. Measuring it (or its descendants)
// fails until Attach is called.
func (h *Host) Detach(id callout.Handle) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	n, ok := h.nodes[id]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "node %q not found", string(id))
	}
	h.unlink(id, n)
	return nil
}

// Attach links a detached node back to its last parent.
func (h *Host) Attach(id callout.Handle) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	n, ok := h.nodes[id]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "node %q not found", string(id))
	}
	if !n.attached {
		h.link(n.parent, id)
	}
	return nil
}

// SetReference moves or resizes the reference frame.
func (h *Host) SetReference(r geom.Rect) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.origin = r
}

// Reference implements callout.Host.
func (h *Host) Reference() (geom.Rect, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.origin, nil
}

// Measure implements callout.Host.
func (h *Host) Measure(id callout.Handle) (geom.Rect, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, err := h.frameRect(id)
	if err != nil {
		return geom.Rect{}, err
	}
	return geom.FromRelative(r, h.origin), nil
}

// frameRect returns the node's rectangle relative to the reference frame.
func (h *Host) frameRect(id callout.Handle) (geom.Rect, error) {
	n, ok := h.nodes[id]
	if !ok {
		return geom.Rect{}, errors.New(errors.ErrCodeUnmeasurable, "node %q does not exist", string(id))
	}
	if !h.isAttached(id) {
		return geom.Rect{}, errors.New(errors.ErrCodeUnmeasurable, "node %q is not attached", string(id))
	}

	r := geom.Rect{X: n.rect.X, Y: n.rect.Y}
	switch n.kind {
	case KindElement:
		r = n.rect
	case KindBox:
		w, hgt := h.measurer.Measure(n.text)
		r.Width, r.Height = w+2*h.padX, hgt+2*h.padY
	case KindArrow:
		r.Width, r.Height = h.arrow.Width, h.arrow.Height
	}

	if n.parent != callout.Root {
		p, err := h.frameRect(n.parent)
		if err != nil {
			return geom.Rect{}, err
		}
		r = r.Translate(p.X, p.Y)
	}
	return r, nil
}

func (h *Host) isAttached(id callout.Handle) bool {
	for id != callout.Root {
		n, ok := h.nodes[id]
		if !ok || !n.attached {
			return false
		}
		id = n.parent
	}
	return true
}

// CreateNode implements callout.Host.
func (h *Host) CreateNode(id callout.Handle, kind callout.NodeKind) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if id == callout.Root {
		return errors.New(errors.ErrCodeInvalidID, "node handle cannot be empty")
	}
	if _, ok := h.nodes[id]; ok {
		return errors.New(errors.ErrCodeInvalidID, "node %q already exists", string(id))
	}
	k := KindBox
	if kind == callout.KindArrow {
		k = KindArrow
	}
	h.nodes[id] = &node{kind: k, opacity: 1}
	h.order = append(h.order, id)
	return nil
}

// AppendChild implements callout.Host.
func (h *Host) AppendChild(parent, child callout.Handle) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if parent != callout.Root {
		if _, ok := h.nodes[parent]; !ok {
			return errors.New(errors.ErrCodeNotFound, "parent %q not found", string(parent))
		}
	}
	n, ok := h.nodes[child]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "node %q not found", string(child))
	}
	h.unlink(child, n)
	h.link(parent, child)
	return nil
}

// Remove implements callout.Host. It deletes the node and its subtree.
func (h *Host) Remove(id callout.Handle) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	n, ok := h.nodes[id]
	if !ok {
		return nil
	}
	h.unlink(id, n)
	h.deleteTree(id)
	return nil
}

func (h *Host) deleteTree(id callout.Handle) {
	n, ok := h.nodes[id]
	if !ok {
		return
	}
	for _, c := range n.children {
		h.deleteTree(c)
	}
	delete(h.nodes, id)
	for i, o := range h.order {
		if o == id {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
	for k, e := range h.hovers {
		if e.target == id {
			delete(h.hovers, k)
		}
	}
}

func (h *Host) link(parent, child callout.Handle) {
	n := h.nodes[child]
	n.parent = parent
	n.attached = true
	if parent == callout.Root {
		h.root = append(h.root, child)
		return
	}
	p := h.nodes[parent]
	p.children = append(p.children, child)
}

func (h *Host) unlink(id callout.Handle, n *node) {
	if !n.attached {
		return
	}
	n.attached = false
	if n.parent == callout.Root {
		h.root = without(h.root, id)
		return
	}
	if p, ok := h.nodes[n.parent]; ok {
		p.children = without(p.children, id)
	}
}

func without(s []callout.Handle, id callout.Handle) []callout.Handle {
	for i, v := range s {
		if v == id {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}

func (h *Host) lookup(id callout.Handle) (*node, error) {
	n, ok := h.nodes[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "node %q not found", string(id))
	}
	return n, nil
}

// SetPosition implements callout.Host.
func (h *Host) SetPosition(id callout.Handle, left, top int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	n, err := h.lookup(id)
	if err != nil {
		return err
	}
	n.rect.X, n.rect.Y = float64(left), float64(top)
	n.positioned = true
	return nil
}

// SetText implements callout.Host.
func (h *Host) SetText(id callout.Handle, text string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	n, err := h.lookup(id)
	if err != nil {
		return err
	}
	n.text = text
	return nil
}

// SetOpacity implements callout.Host.
func (h *Host) SetOpacity(id callout.Handle, opacity float64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	n, err := h.lookup(id)
	if err != nil {
		return err
	}
	n.opacity = opacity
	return nil
}

// SetTransition implements callout.Host.
func (h *Host) SetTransition(id callout.Handle, d time.Duration) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	n, err := h.lookup(id)
	if err != nil {
		return err
	}
	n.transition = d
	return nil
}

// OnHover implements callout.HoverHost.
func (h *Host) OnHover(id callout.Handle, enter, leave func()) (trigger.Registration, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, err := h.lookup(id); err != nil {
		return nil, err
	}
	key := h.hoverID
	h.hoverID++
	h.hovers[key] = hoverEntry{target: id, enter: enter, leave: leave}
	return trigger.Once(func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.hovers, key)
	}), nil
}

// Hover simulates the pointer entering (inside=true) or leaving a node.
func (h *Host) Hover(id callout.Handle, inside bool) {
	h.mu.Lock()
	var fns []func()
	for k := 0; k < h.hoverID; k++ {
		e, ok := h.hovers[k]
		if !ok || e.target != id {
			continue
		}
		if inside {
			fns = append(fns, e.enter)
		} else {
			fns = append(fns, e.leave)
		}
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// HoverCount returns the number of live hover registrations.
func (h *Host) HoverCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.hovers)
}

// NodeInfo is a snapshot of one node.
type NodeInfo struct {
	Handle     callout.Handle
	Kind       Kind
	Parent     callout.Handle
	Attached   bool
	Positioned bool
	Rect       geom.Rect // relative to the reference frame; zero if detached
	Text       string
	Opacity    float64
	Transition time.Duration
}

// Info returns a snapshot of one node.
func (h *Host) Info(id callout.Handle) (NodeInfo, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	n, ok := h.nodes[id]
	if !ok {
		return NodeInfo{}, false
	}
	return h.info(id, n), true
}

// Snapshot returns every node in creation order.
func (h *Host) Snapshot() []NodeInfo {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]NodeInfo, 0, len(h.order))
	for _, id := range h.order {
		out = append(out, h.info(id, h.nodes[id]))
	}
	return out
}

func (h *Host) info(id callout.Handle, n *node) NodeInfo {
	ni := NodeInfo{
		Handle:     id,
		Kind:       n.kind,
		Parent:     n.parent,
		Positioned: n.positioned,
		Text:       n.text,
		Opacity:    n.opacity,
		Transition: n.transition,
	}
	if r, err := h.frameRect(id); err == nil {
		ni.Attached = true
		ni.Rect = r
	}
	return ni
}

var _ callout.HoverHost = (*Host)(nil)
