package eval

import "fmt"

// Error is an evaluation failure: an operator applied to ineligible values,
// or a reference that does not resolve. It is fatal to the evaluation.
type Error struct {
	Msg string
}

func (e *Error) Error() string {
	return e.Msg
}

func errorf(format string, args ...any) error {
	return &Error{Msg: fmt.Sprintf(format, args...)}
}
