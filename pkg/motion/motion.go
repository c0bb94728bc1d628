// Package motion evaluates scripted target motion.
//
// A motion script is a JavaScript expression over the tick counter t that
// evaluates to an object with x and y offsets and, optionally, a width and
// height that replace the target's size:
//
//	({x: 40*Math.sin(t/20), y: 0})
//	({x: t % 200, y: 0, width: 50 + t % 30})
//
// Scripts are compiled once and evaluated per tick. They have no access to
// anything but t and the ECMAScript built-ins.
package motion

import (
	"math"
	"sync"
	"time"

	"github.com/dop251/goja"
	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/parser"

	"github.com/matzehuels/callout/pkg/errors"
	"github.com/matzehuels/callout/pkg/geom"
)

// DefaultTimeout bounds a single evaluation.
const DefaultTimeout = 50 * time.Millisecond

// Offset is the result of one evaluation.
type Offset struct {
	X, Y float64

	// Width and Height replace the base size when positive.
	Width, Height float64
}

// Apply moves (and optionally resizes) base by the offset.
func (o Offset) Apply(base geom.Rect) geom.Rect {
	r := base.Translate(o.X, o.Y)
	if o.Width > 0 {
		r.Width = o.Width
	}
	if o.Height > 0 {
		r.Height = o.Height
	}
	return r
}

// Script is a compiled motion expression. It is safe for concurrent use;
// evaluations are serialised.
type Script struct {
	src     string
	timeout time.Duration

	mu sync.Mutex
	vm *goja.Runtime
	fn goja.Callable
}

// Option configures a Script.
type Option func(*Script)

// WithTimeout bounds a single evaluation. Zero disables the limit.
func WithTimeout(d time.Duration) Option { return func(s *Script) { s.timeout = d } }

// Compile parses src. Sources that are not a single expression, fail to
// parse, or do not finish loading within the timeout are reported as
// INVALID_INPUT.
func Compile(src string, opts ...Option) (*Script, error) {
	s := &Script{src: src, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(s)
	}

	if err := checkExpression(src); err != nil {
		return nil, err
	}
	prog, err := goja.Compile("motion", "(function(t) { return (\n"+src+"\n); })", true)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "compile motion %q", src)
	}

	s.vm = goja.New()
	var v goja.Value
	err = s.guard(func() error {
		var err error
		v, err = s.vm.RunProgram(prog)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "load motion %q", src)
	}
	fn, ok := goja.AssertFunction(v)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidInput, "motion %q did not compile to a function", src)
	}
	s.fn = fn
	return s, nil
}

// checkExpression requires src to parse on its own as exactly one
// expression statement.
func checkExpression(src string) error {
	prog, err := parser.ParseFile(nil, "motion", src, 0)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "parse motion %q", src)
	}
	if len(prog.Body) != 1 {
		return errors.New(errors.ErrCodeInvalidInput, "motion %q must be a single expression", src)
	}
	if _, ok := prog.Body[0].(*ast.ExpressionStatement); !ok {
		return errors.New(errors.ErrCodeInvalidInput, "motion %q must be a single expression", src)
	}
	return nil
}

// guard runs fn with the script's timeout armed on the runtime.
func (s *Script) guard(fn func() error) error {
	if s.timeout > 0 {
		timer := time.AfterFunc(s.timeout, func() { s.vm.Interrupt("timeout") })
		defer func() {
			timer.Stop()
			s.vm.ClearInterrupt()
		}()
	}
	return fn()
}

// Source returns the expression the script was compiled from.
func (s *Script) Source() string { return s.src }

// Eval evaluates the script for tick t.
func (s *Script) Eval(t int) (Offset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var v goja.Value
	err := s.guard(func() error {
		var err error
		v, err = s.fn(goja.Undefined(), s.vm.ToValue(t))
		return err
	})
	if err != nil {
		return Offset{}, errors.Wrap(errors.ErrCodeInternal, err, "evaluate motion at t=%d", t)
	}
	if goja.IsUndefined(v) || goja.IsNull(v) {
		return Offset{}, errors.New(errors.ErrCodeInternal, "motion returned %s at t=%d", v, t)
	}

	obj := v.ToObject(s.vm)
	var o Offset
	fields := []struct {
		name string
		dst  *float64
	}{
		{"x", &o.X}, {"y", &o.Y}, {"width", &o.Width}, {"height", &o.Height},
	}
	for _, f := range fields {
		fv := obj.Get(f.name)
		if fv == nil || goja.IsUndefined(fv) || goja.IsNull(fv) {
			continue
		}
		n := fv.ToFloat()
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return Offset{}, errors.New(errors.ErrCodeInternal, "motion field %s is %v at t=%d", f.name, n, t)
		}
		*f.dst = n
	}
	return o, nil
}
