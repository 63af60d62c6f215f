package parser

import (
	"fmt"

	"nickandperla.net/kodscript/internal/diag"
	"nickandperla.net/kodscript/internal/token"
)

// Error is a syntax error. It is fatal to the Parse call that produced it.
type Error struct {
	Token    token.Token // The offending token
	Expected string      // What would have been accepted, if known
	Reason   string      // Replaces the "unexpected token" wording when set
}

func (e *Error) Error() string {
	what := e.Reason
	if what == "" {
		what = "unexpected " + describe(e.Token)
	}
	msg := fmt.Sprintf("%s at line %d, column %d", what, e.Token.Line, e.Token.Column)
	if e.Expected != "" {
		msg += ", expected " + e.Expected
	}
	return msg + "."
}

// Diagnostic returns the error's source position.
func (e *Error) Diagnostic() diag.Diagnostic {
	length := len(e.Token.Text)
	if length == 0 {
		length = 1
	}
	return diag.Diagnostic{
		Message: "syntax error: " + e.Error(),
		Line:    e.Token.Line,
		Column:  e.Token.Column,
		Length:  length,
	}
}

func describe(tok token.Token) string {
	if tok.Kind == token.EOF {
		return "end of input"
	}
	return fmt.Sprintf("`%s` (%s)", tok.Text, tok.Kind)
}
