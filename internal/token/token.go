// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package token defines kodscript token kinds and the Token value.
package token

import "fmt"

// Kind identifies the lexical category of a token.
type Kind int

const (
	EOF Kind = iota

	// Literals
	DIE_ROLL // 3d6
	NUMBER   // 42

	// Operators
	PLUS        // +
	MINUS       // -
	MULTIPLY    // *
	DIVIDE_DOWN // /d
	DIVIDE_UP   // /u
	DOT         // .
	ASSIGN      // =
	EQUALS      // ==

	// Grouping
	OPEN_PAREN  // (
	CLOSE_PAREN // )

	IDENTIFIER

	// Reserved words
	FUNCTION
)

// reserved maps reserved words to their keyword kind.
var reserved = map[string]Kind{
	"function": FUNCTION,
}

// Lookup returns the keyword kind for ident, or IDENTIFIER if ident is not reserved.
func Lookup(ident string) Kind {
	if k, ok := reserved[ident]; ok {
		return k
	}
	return IDENTIFIER
}

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case DIE_ROLL:
		return "DIE_ROLL"
	case NUMBER:
		return "NUMBER"
	case PLUS:
		return "PLUS"
	case MINUS:
		return "MINUS"
	case MULTIPLY:
		return "MULTIPLY"
	case DIVIDE_DOWN:
		return "DIVIDE_DOWN"
	case DIVIDE_UP:
		return "DIVIDE_UP"
	case DOT:
		return "DOT"
	case ASSIGN:
		return "ASSIGN"
	case EQUALS:
		return "EQUALS"
	case OPEN_PAREN:
		return "OPEN_PAREN"
	case CLOSE_PAREN:
		return "CLOSE_PAREN"
	case IDENTIFIER:
		return "IDENTIFIER"
	case FUNCTION:
		return "FUNCTION"
	}
	return "UNKNOWN"
}

// IsKeyword returns true if the kind is a reserved word.
func (k Kind) IsKeyword() bool {
	return k == FUNCTION
}

// Token is a single lexical unit. Line and Column locate the first
// character of Text (both 1-based).
type Token struct {
	Kind   Kind
	Text   string
	Line   int
	Column int
}

// String returns a debug representation such as DIE_ROLL("3d6")@1:1.
func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%d:%d", t.Kind, t.Text, t.Line, t.Column)
}
