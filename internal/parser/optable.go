package parser

import (
	"nickandperla.net/kodscript/internal/expr"
	"nickandperla.net/kodscript/internal/token"
)

// Assoc is the associativity of an infix operator.
type Assoc int

const (
	Left Assoc = iota
	Right
)

// Ctor selects the node an infix operator reduces to.
type Ctor int

const (
	CtorAdd Ctor = iota
	CtorSub
	CtorMul
	CtorDivFloor
	CtorDivCeil
	CtorEquals
	CtorAssign
)

// OpInfo is one operator table entry.
type OpInfo struct {
	Ctor  Ctor
	Prec  int
	Assoc Assoc
}

// Operators is the infix operator table. It is read-only.
var Operators = map[token.Kind]OpInfo{
	token.ASSIGN:      {CtorAssign, 1, Right},
	token.EQUALS:      {CtorEquals, 2, Left},
	token.PLUS:        {CtorAdd, 3, Left},
	token.MINUS:       {CtorSub, 3, Left},
	token.MULTIPLY:    {CtorMul, 4, Left},
	token.DIVIDE_DOWN: {CtorDivFloor, 4, Left},
	token.DIVIDE_UP:   {CtorDivCeil, 4, Left},
}

// build constructs the node for ctor. tok is the operator token, used to
// report a non-assignable left-hand side.
func build(ctor Ctor, tok token.Token, lhs, rhs expr.Node) (expr.Node, error) {
	switch ctor {
	case CtorAdd:
		return &expr.Binary{Op: expr.Add, LHS: lhs, RHS: rhs}, nil
	case CtorSub:
		return &expr.Binary{Op: expr.Sub, LHS: lhs, RHS: rhs}, nil
	case CtorMul:
		return &expr.Binary{Op: expr.Mul, LHS: lhs, RHS: rhs}, nil
	case CtorDivFloor:
		return &expr.Binary{Op: expr.DivFloor, LHS: lhs, RHS: rhs}, nil
	case CtorDivCeil:
		return &expr.Binary{Op: expr.DivCeil, LHS: lhs, RHS: rhs}, nil
	case CtorEquals:
		return &expr.Binary{Op: expr.Eq, LHS: lhs, RHS: rhs}, nil
	case CtorAssign:
		target, ok := lhs.(expr.Locator)
		if !ok {
			return nil, &Error{
				Token:  tok,
				Reason: "cannot assign to " + lhs.String(),
			}
		}
		return &expr.Assign{Target: target, Value: rhs}, nil
	}
	panic("parser: unknown operator constructor")
}
