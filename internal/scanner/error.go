package scanner

import (
	"fmt"

	"nickandperla.net/kodscript/internal/diag"
)

// Error is a lexical error. It is fatal to the Scan call that produced it.
type Error struct {
	Char     rune   // Offending character (unset when AtEnd)
	AtEnd    bool   // Input ended in the middle of a token
	Line     int    // 1-based
	Column   int    // 1-based
	Expected string // What would have been accepted, if known
}

func (e *Error) Error() string {
	what := fmt.Sprintf("unexpected character `%c`", e.Char)
	if e.AtEnd {
		what = "unexpected end of input"
	}
	msg := fmt.Sprintf("%s at line %d, column %d", what, e.Line, e.Column)
	if e.Expected != "" {
		msg += ", expected " + e.Expected
	}
	return msg + "."
}

// Diagnostic returns the error's source position.
func (e *Error) Diagnostic() diag.Diagnostic {
	return diag.Diagnostic{
		Message: "lexical error: " + e.Error(),
		Line:    e.Line,
		Column:  e.Column,
		Length:  1,
	}
}
