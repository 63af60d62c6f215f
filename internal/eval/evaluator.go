// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package eval evaluates kodscript syntax trees.
package eval

import (
	"fmt"
	"math/rand/v2"

	"github.com/rs/zerolog"

	"nickandperla.net/kodscript/internal/expr"
)

// Rand is the source of dice draws. IntN returns a value in [0, n).
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

// sharedRand draws from the process-wide math/rand/v2 generator.
type sharedRand struct{}

func (sharedRand) IntN(n int) int { return rand.IntN(n) }

// Evaluator evaluates trees against a global environment.
//
// An Evaluator holds no per-evaluation state, so one tree may be evaluated
// any number of times. Dice are drawn anew on each evaluation.
type Evaluator struct {
	globals Object
	rng     Rand
	logger  zerolog.Logger
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithRand sets the source of dice draws.
func WithRand(r Rand) Option {
	return func(e *Evaluator) { e.rng = r }
}

// WithGlobals sets the object unrooted references resolve against.
func WithGlobals(g Object) Option {
	return func(e *Evaluator) { e.globals = g }
}

// WithLogger sets the logger for debug tracing.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Evaluator) { e.logger = l }
}

// New creates a new Evaluator with the given options. Without options it uses
// an empty global namespace and the shared random generator.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{
		rng:    sharedRand{},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.globals == nil {
		e.globals = NewNamespace(GlobalName)
	}
	return e
}

// Globals returns the global environment.
func (e *Evaluator) Globals() Object {
	return e.globals
}

// Eval evaluates n to a value. References are dereferenced.
func (e *Evaluator) Eval(n expr.Node) (Value, error) {
	switch n := n.(type) {
	case *expr.Number:
		return Int(n.Value), nil

	case *expr.Dice:
		return e.roll(n)

	case *expr.Unary:
		v, err := e.Eval(n.Operand)
		if err != nil {
			return nil, err
		}
		return unary(n.Op, v)

	case *expr.Binary:
		lhs, err := e.Eval(n.LHS)
		if err != nil {
			return nil, err
		}
		rhs, err := e.Eval(n.RHS)
		if err != nil {
			return nil, err
		}
		return binary(n.Op, lhs, rhs)

	case *expr.Assign:
		return e.assign(n)

	case *expr.Reference:
		loc, err := e.Locate(n)
		if err != nil {
			return nil, err
		}
		return e.Deref(loc)

	case *expr.Call:
		return e.call(n)
	}
	panic(fmt.Sprintf("eval: unhandled node %T", n))
}

// Locate resolves a reference chain to a location without reading it.
func (e *Evaluator) Locate(ref *expr.Reference) (Location, error) {
	if ref.Parent == nil {
		return Location{Context: e.globals, Name: ref.Name}, nil
	}

	parentLoc, err := e.Locate(ref.Parent)
	if err != nil {
		return Location{}, err
	}
	v, err := e.Deref(parentLoc)
	if err != nil {
		return Location{}, err
	}
	obj, ok := v.(Object)
	if !ok {
		return Location{}, errorf("cannot reference `%s` inside property `%s` (%s) of %s",
			ref.Name, ref.Parent.Name, v.Type(), parentLoc.Context.Name())
	}
	return Location{Context: obj, Name: ref.Name}, nil
}

// Deref reads the value at loc.
func (e *Evaluator) Deref(loc Location) (Value, error) {
	v, ok := loc.Context.Property(loc.Name)
	if !ok {
		return nil, errorf("reference to non-existent property `%s` of %s", loc.Name, loc.Context.Name())
	}
	return v, nil
}

func (e *Evaluator) roll(d *expr.Dice) (Value, error) {
	if d.Count < 1 || d.Count > expr.MaxDiceCount || d.Sides < 1 || d.Sides > expr.MaxDiceSides {
		return nil, errorf("dice out of range: %s", d)
	}
	var total Int
	for i := 0; i < d.Count; i++ {
		total += Int(e.rng.IntN(d.Sides) + 1)
	}
	e.logger.Debug().
		Int("count", d.Count).
		Int("sides", d.Sides).
		Int64("total", int64(total)).
		Msg("dice rolled")
	return total, nil
}

func (e *Evaluator) assign(n *expr.Assign) (Value, error) {
	ref, ok := n.Target.(*expr.Reference)
	if !ok {
		panic(fmt.Sprintf("eval: unhandled locator %T", n.Target))
	}
	loc, err := e.Locate(ref)
	if err != nil {
		return nil, err
	}
	v, err := e.Eval(n.Value)
	if err != nil {
		return nil, err
	}

	target, ok := loc.Context.(Assignable)
	if !ok {
		return nil, errorf("cannot assign to property `%s` of read-only %s", loc.Name, loc.Context.Name())
	}
	if err := target.SetProperty(loc.Name, v); err != nil {
		return nil, err
	}
	e.logger.Debug().Str("target", loc.String()).Str("value", v.String()).Msg("assigned")
	return v, nil
}

func (e *Evaluator) call(n *expr.Call) (Value, error) {
	callee, err := e.Eval(n.Callee)
	if err != nil {
		return nil, err
	}
	fn, ok := callee.(Callable)
	if !ok {
		return nil, errorf("`%s` (%s) is not callable", n.Callee, callee.Type())
	}

	args := make([]Value, 0, len(n.Args))
	for _, a := range n.Args {
		v, err := e.Eval(a)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return fn.Call(args)
}

func unary(op expr.UnaryOp, v Value) (Value, error) {
	i, ok := v.(Int)
	if !ok {
		name := "plus"
		if op == expr.Neg {
			name = "minus"
		}
		return nil, errorf("object (%s) is not eligible for unary %s", v.Type(), name)
	}
	if op == expr.Neg {
		return -i, nil
	}
	return i, nil
}

func binary(op expr.BinaryOp, lhs, rhs Value) (Value, error) {
	if op == expr.Eq {
		switch l := lhs.(type) {
		case Int:
			if r, ok := rhs.(Int); ok {
				return Bool(l == r), nil
			}
		case Bool:
			if r, ok := rhs.(Bool); ok {
				return Bool(l == r), nil
			}
		}
		return nil, errorf("objects (%s, %s) are not eligible for comparison", lhs.Type(), rhs.Type())
	}

	l, lok := lhs.(Int)
	r, rok := rhs.(Int)
	if !lok || !rok {
		return nil, errorf("objects (%s, %s) are not eligible for %s", lhs.Type(), rhs.Type(), opName(op))
	}

	switch op {
	case expr.Add:
		return l + r, nil
	case expr.Sub:
		return l - r, nil
	case expr.Mul:
		return l * r, nil
	case expr.DivFloor, expr.DivCeil:
		if r == 0 {
			return nil, errorf("division by zero")
		}
		q := l / r
		rem := l % r
		if rem != 0 {
			negative := (rem < 0) != (r < 0)
			if op == expr.DivFloor && negative {
				q--
			}
			if op == expr.DivCeil && !negative {
				q++
			}
		}
		return q, nil
	}
	panic(fmt.Sprintf("eval: unhandled operator %v", op))
}

func opName(op expr.BinaryOp) string {
	switch op {
	case expr.Add:
		return "addition"
	case expr.Sub:
		return "subtraction"
	case expr.Mul:
		return "multiplication"
	default:
		return "division"
	}
}
