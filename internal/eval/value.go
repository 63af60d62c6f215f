package eval

import (
	"fmt"
	"strconv"
)

// Value is a runtime value.
type Value interface {
	// Type returns a short description of the value's type.
	Type() string
	String() string
}

// Int is an integer value.
type Int int64

func (Int) Type() string     { return "int" }
func (i Int) String() string { return strconv.FormatInt(int64(i), 10) }

// Bool is the result of a comparison.
type Bool bool

func (Bool) Type() string     { return "bool" }
func (b Bool) String() string { return strconv.FormatBool(bool(b)) }

// Object exposes named properties. Property lookups are by exact name.
type Object interface {
	Value
	Name() string
	Property(name string) (Value, bool)
}

// Assignable is an Object whose properties can be set by assignment.
type Assignable interface {
	Object
	SetProperty(name string, v Value) error
}

// Callable is a value that can be invoked with the call form `f(...)`.
type Callable interface {
	Value
	Call(args []Value) (Value, error)
}

// Func adapts a Go function to Callable.
type Func struct {
	Name string
	Fn   func(args []Value) (Value, error)
}

func (Func) Type() string     { return "function" }
func (f Func) String() string { return fmt.Sprintf("<function %s>", f.Name) }

// Call invokes the wrapped function.
func (f Func) Call(args []Value) (Value, error) {
	return f.Fn(args)
}

// Location is what a reference resolves to: a context object and the name of
// a property within it.
type Location struct {
	Context Object
	Name    string
}

func (l Location) String() string {
	return l.Context.Name() + "." + l.Name
}
