// Package chromehost drives a real browser page as a callout host.
//
// Page elements are addressed by handles that are CSS selectors. Nodes the
// callout creates are absolutely positioned divs registered under their
// handle in a page-global map, so later calls find them without a
// selector. The root handle is document.body.
package chromehost

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/matzehuels/callout/pkg/callout"
	"github.com/matzehuels/callout/pkg/errors"
	"github.com/matzehuels/callout/pkg/geom"
)

// DefaultTimeout bounds every browser round trip.
const DefaultTimeout = 5 * time.Second

// registry is the page-global map of created nodes.
const registry = "window.__callouts"

const boxStyle = `position:absolute;box-sizing:border-box;padding:6px 8px;` +
	`background:#fffbe6;border:1px solid #333;border-radius:3px;` +
	`font:12px sans-serif;white-space:pre;z-index:2147483647;`

const arrowStyle = `position:absolute;width:10px;height:10px;` +
	`background:#333;transform:rotate(45deg);`

// Option configures a Host.
type Option func(*Host)

// WithTimeout bounds each browser call.
func WithTimeout(d time.Duration) Option { return func(h *Host) { h.timeout = d } }

// WithExecPath selects the browser binary for New.
func WithExecPath(path string) Option {
	return func(h *Host) { h.alloc = append(h.alloc, chromedp.ExecPath(path)) }
}

// WithHeadful shows the browser window.
func WithHeadful() Option {
	return func(h *Host) { h.alloc = append(h.alloc, chromedp.Flag("headless", false)) }
}

// Host is a callout.Host backed by a chromedp browser tab.
type Host struct {
	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration
	alloc   []chromedp.ExecAllocatorOption
}

// New starts a headless browser and opens a blank tab.
func New(ctx context.Context, opts ...Option) (*Host, error) {
	h := &Host{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(h)
	}

	alloc := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.Headless)
	alloc = append(alloc, h.alloc...)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, alloc...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	h.ctx = tabCtx
	h.cancel = func() {
		cancelTab()
		cancelAlloc()
	}
	if err := chromedp.Run(tabCtx); err != nil {
		h.cancel()
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "start browser")
	}
	return h, nil
}

// NewFromContext wraps an existing chromedp tab context. Close does not
// cancel it.
func NewFromContext(ctx context.Context, opts ...Option) *Host {
	h := &Host{ctx: ctx, cancel: func() {}, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Navigate loads url and waits for the body to be ready.
func (h *Host) Navigate(url string) error {
	if err := errors.ValidateURL(url); err != nil {
		return err
	}
	return h.run(chromedp.Navigate(url), chromedp.WaitReady("body", chromedp.ByQuery))
}

// WaitVisible blocks until the element matching selector is visible.
func (h *Host) WaitVisible(selector string) error {
	return h.run(chromedp.WaitVisible(selector, chromedp.ByQuery))
}

// Close shuts the browser down.
func (h *Host) Close() error {
	h.cancel()
	return nil
}

// ViewportSize returns the window's inner width and height.
func (h *Host) ViewportSize() (width, height float64, err error) {
	var out [2]float64
	if err := h.eval(`[window.innerWidth, window.innerHeight]`, &out); err != nil {
		return 0, 0, errors.Wrap(errors.ErrCodeInternal, err, "read viewport size")
	}
	return out[0], out[1], nil
}

// Reference implements callout.Host.
func (h *Host) Reference() (geom.Rect, error) {
	return h.Measure(callout.Root)
}

// Measure implements callout.Host.
func (h *Host) Measure(handle callout.Handle) (geom.Rect, error) {
	var out struct {
		Found  bool    `json:"found"`
		X      float64 `json:"x"`
		Y      float64 `json:"y"`
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	}
	if err := h.eval(measureJS(handle), &out); err != nil {
		return geom.Rect{}, errors.Wrap(errors.ErrCodeUnmeasurable, err, "measure %q", handle)
	}
	if !out.Found {
		return geom.Rect{}, errors.New(errors.ErrCodeUnmeasurable, "no element for %q", handle)
	}
	return geom.Rect{X: out.X, Y: out.Y, Width: out.Width, Height: out.Height}, nil
}

// CreateNode implements callout.Host.
func (h *Host) CreateNode(handle callout.Handle, kind callout.NodeKind) error {
	var style string
	switch kind {
	case callout.KindBox:
		style = boxStyle
	case callout.KindArrow:
		style = arrowStyle
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown node kind %d", int(kind))
	}
	return h.exec(createJS(handle, kind, style))
}

// AppendChild implements callout.Host.
func (h *Host) AppendChild(parent, child callout.Handle) error {
	return h.exec(fmt.Sprintf(`(() => {
  const p = %s, c = %s;
  if (!p || !c) return false;
  if (p === document.body && getComputedStyle(p).position === "static") p.style.position = "relative";
  p.appendChild(c);
  return true;
})()`, elementJS(parent), elementJS(child)))
}

// Remove implements callout.Host.
func (h *Host) Remove(handle callout.Handle) error {
	return h.exec(fmt.Sprintf(`(() => {
  const el = %s;
  if (!el) return false;
  el.remove();
  delete %s[%s];
  return true;
})()`, elementJS(handle), registry, jsString(string(handle))))
}

// SetPosition implements callout.Host.
func (h *Host) SetPosition(handle callout.Handle, left, top int) error {
	return h.exec(styleJS(handle, map[string]string{
		"left": fmt.Sprintf("%dpx", left),
		"top":  fmt.Sprintf("%dpx", top),
	}))
}

// SetText implements callout.Host.
func (h *Host) SetText(handle callout.Handle, text string) error {
	return h.exec(fmt.Sprintf(`(() => {
  const el = %s;
  if (!el) return false;
  const arrows = Array.from(el.children);
  el.textContent = %s;
  arrows.forEach(a => el.appendChild(a));
  return true;
})()`, elementJS(handle), jsString(text)))
}

// SetOpacity implements callout.Host.
func (h *Host) SetOpacity(handle callout.Handle, opacity float64) error {
	return h.exec(styleJS(handle, map[string]string{"opacity": fmt.Sprintf("%g", opacity)}))
}

// SetTransition implements callout.Host.
func (h *Host) SetTransition(handle callout.Handle, d time.Duration) error {
	value := "none"
	if d > 0 {
		value = fmt.Sprintf("opacity %dms", d.Milliseconds())
	}
	return h.exec(styleJS(handle, map[string]string{"transition": value}))
}

// exec runs a script that evaluates to false when its element is missing.
func (h *Host) exec(script string) error {
	var ok bool
	if err := h.eval(script, &ok); err != nil {
		return err
	}
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "element not found")
	}
	return nil
}

func (h *Host) eval(script string, out any) error {
	return h.run(chromedp.Evaluate(script, out))
}

func (h *Host) run(actions ...chromedp.Action) error {
	ctx, cancel := context.WithTimeout(h.ctx, h.timeout)
	defer cancel()
	if err := chromedp.Run(ctx, actions...); err != nil {
		return fmt.Errorf("chromedp: %w", err)
	}
	return nil
}

// jsString quotes s as a JavaScript string literal.
func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// elementJS is an expression evaluating to the element for handle, or
// null.
func elementJS(handle callout.Handle) string {
	if handle == callout.Root {
		return "document.body"
	}
	h := jsString(string(handle))
	return fmt.Sprintf("((%s || {})[%s] || document.querySelector(%s))", registry, h, h)
}

// nodeID is the DOM id of a created node.
func nodeID(handle callout.Handle, kind callout.NodeKind) string {
	var b strings.Builder
	b.WriteString("callout-")
	b.WriteString(kind.String())
	b.WriteByte('-')
	for _, r := range string(handle) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

func measureJS(handle callout.Handle) string {
	return fmt.Sprintf(`(() => {
  const el = %s;
  if (!el || !el.isConnected) return {found: false};
  const r = el.getBoundingClientRect();
  return {found: true, x: r.left, y: r.top, width: r.width, height: r.height};
})()`, elementJS(handle))
}

func createJS(handle callout.Handle, kind callout.NodeKind, style string) string {
	return fmt.Sprintf(`(() => {
  %s = %s || {};
  const el = document.createElement("div");
  el.id = %s;
  el.className = %s;
  el.style.cssText = %s;
  %s[%s] = el;
  return true;
})()`, registry, registry, jsString(nodeID(handle, kind)), jsString("callout-"+kind.String()),
		jsString(style), registry, jsString(string(handle)))
}

// styleJS sets style properties in a stable order.
func styleJS(handle callout.Handle, props map[string]string) string {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var b strings.Builder
	fmt.Fprintf(&b, "(() => {\n  const el = %s;\n  if (!el) return false;\n", elementJS(handle))
	for _, k := range keys {
		fmt.Fprintf(&b, "  el.style[%s] = %s;\n", jsString(k), jsString(props[k]))
	}
	b.WriteString("  return true;\n})()")
	return b.String()
}

var _ callout.Host = (*Host)(nil)
