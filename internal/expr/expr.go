// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package expr defines the kodscript syntax tree.
//
// The set of node variants is closed: every node is one of the pointer types
// declared here, and Kind reports which. Nodes are built once by the parser
// and never mutated afterwards.
package expr

import (
	"fmt"
	"strings"
)

// Kind tags a node variant.
type Kind int

const (
	NumberKind Kind = iota
	DiceKind
	UnaryKind
	BinaryKind
	AssignKind
	ReferenceKind
	CallKind
)

func (k Kind) String() string {
	switch k {
	case NumberKind:
		return "Number"
	case DiceKind:
		return "Dice"
	case UnaryKind:
		return "Unary"
	case BinaryKind:
		return "Binary"
	case AssignKind:
		return "Assign"
	case ReferenceKind:
		return "Reference"
	case CallKind:
		return "Call"
	}
	return "Unknown"
}

// Node is implemented by every syntax tree node. Every node produces a value.
type Node interface {
	// Kind returns the variant tag.
	Kind() Kind
	// String returns a fully parenthesized source form of the node.
	String() string
	node()
}

// Locator is implemented by nodes that also denote an assignable,
// dereferenceable location. Only reference chains are locators.
type Locator interface {
	Node
	locator()
}

// UnaryOp is a prefix operator.
type UnaryOp int

const (
	Pos UnaryOp = iota
	Neg
)

func (op UnaryOp) String() string {
	if op == Neg {
		return "-"
	}
	return "+"
}

// BinaryOp is an infix operator producing a value from two operands.
type BinaryOp int

const (
	Add BinaryOp = iota
	Sub
	Mul
	DivFloor
	DivCeil
	Eq
)

func (op BinaryOp) String() string {
	switch op {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case DivFloor:
		return "/d"
	case DivCeil:
		return "/u"
	case Eq:
		return "=="
	}
	return "?"
}

// Number is an integer literal.
type Number struct {
	Value int64
}

// Dice literal bounds. Count*Sides stays well inside int64 and a roll
// never draws more than MaxDiceCount times.
const (
	MaxDiceCount = 1000
	MaxDiceSides = 1_000_000
)

// Dice is a dice-roll literal: Count draws uniform over [1, Sides], summed.
type Dice struct {
	Count int
	Sides int
}

// Unary applies a prefix operator to one operand.
type Unary struct {
	Op      UnaryOp
	Operand Node
}

// Binary applies an infix operator to two operands.
type Binary struct {
	Op  BinaryOp
	LHS Node
	RHS Node
}

// Assign stores the value of Value into the location denoted by Target.
type Assign struct {
	Target Locator
	Value  Node
}

// Reference names a property. With no Parent it is resolved against the
// global environment, otherwise against the object Parent dereferences to.
type Reference struct {
	Parent *Reference
	Name   string
}

// Call invokes the value Callee dereferences to.
type Call struct {
	Callee *Reference
	Args   []Node
}

func (*Number) Kind() Kind    { return NumberKind }
func (*Dice) Kind() Kind      { return DiceKind }
func (*Unary) Kind() Kind     { return UnaryKind }
func (*Binary) Kind() Kind    { return BinaryKind }
func (*Assign) Kind() Kind    { return AssignKind }
func (*Reference) Kind() Kind { return ReferenceKind }
func (*Call) Kind() Kind      { return CallKind }

func (*Number) node()    {}
func (*Dice) node()      {}
func (*Unary) node()     {}
func (*Binary) node()    {}
func (*Assign) node()    {}
func (*Reference) node() {}
func (*Call) node()      {}

func (*Reference) locator() {}

func (n *Number) String() string { return fmt.Sprint(n.Value) }
func (d *Dice) String() string   { return fmt.Sprintf("%dd%d", d.Count, d.Sides) }
func (u *Unary) String() string  { return "(" + u.Op.String() + u.Operand.String() + ")" }

func (b *Binary) String() string {
	return "(" + b.LHS.String() + " " + b.Op.String() + " " + b.RHS.String() + ")"
}

func (a *Assign) String() string {
	return "(" + a.Target.String() + " = " + a.Value.String() + ")"
}

func (r *Reference) String() string {
	return strings.Join(r.Path(), ".")
}

func (c *Call) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	return c.Callee.String() + "(" + strings.Join(args, " ") + ")"
}

// Path returns the property names of the chain from the root.
func (r *Reference) Path() []string {
	if r.Parent == nil {
		return []string{r.Name}
	}
	return append(r.Parent.Path(), r.Name)
}

// NewReference builds a reference chain from dotted path segments.
// It returns nil for an empty path.
func NewReference(path ...string) *Reference {
	var ref *Reference
	for _, name := range path {
		ref = &Reference{Parent: ref, Name: name}
	}
	return ref
}
