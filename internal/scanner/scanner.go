// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package scanner provides the kodscript lexer. It is an explicit state
// machine reading one rune at a time, with a single rune of pushback.
package scanner

import (
	"bufio"
	"io"
	"strings"

	"nickandperla.net/kodscript/internal/token"
)

type state int

const (
	stateBase state = iota

	stateNumber     // digits, possibly the count of a dice literal
	stateDiceSides  // saw `d` after a count, a digit must follow
	stateDiceRead   // die size digits
	stateCheckIdent // saw a leading `d`: identifier or dice shorthand
	stateIdent
	stateDivide // saw `/`
	stateEqual  // saw `=`
)

// Scanner tokenizes kodscript source.
type Scanner struct {
	reader *bufio.Reader
	buf    strings.Builder
	state  state
	line   int // Current line number (1-based)
	column int // Column of the last consumed rune (1-based, 0 at line start)
	tokens []token.Token
}

// New creates a new Scanner from an io.Reader.
func New(r io.Reader) *Scanner {
	return &Scanner{
		reader: bufio.NewReader(r),
		line:   1,
	}
}

// Tokenize scans src and returns its tokens.
func Tokenize(src string) ([]token.Token, error) {
	return New(strings.NewReader(src)).Scan()
}

// Scan consumes the whole input and returns the token sequence terminated by
// an EOF token. On failure no tokens are returned.
func (s *Scanner) Scan() ([]token.Token, error) {
	for {
		r, _, err := s.reader.ReadRune()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		s.column++
		if err := s.step(r); err != nil {
			return nil, err
		}
	}

	if err := s.finish(); err != nil {
		return nil, err
	}

	tokens := append(s.tokens, token.Token{Kind: token.EOF, Line: s.line, Column: s.column + 1})
	s.tokens = nil
	return tokens, nil
}

// step feeds one rune to the state machine.
func (s *Scanner) step(r rune) error {
	switch s.state {
	case stateBase:
		switch {
		case isDigit(r):
			s.accept(r, stateNumber)
		case r == 'd' || r == 'D':
			s.accept(r, stateCheckIdent)
		case isLetter(r):
			s.accept(r, stateIdent)
		case r == '(':
			s.emitWith(r, token.OPEN_PAREN)
		case r == ')':
			s.emitWith(r, token.CLOSE_PAREN)
		case r == '.':
			s.emitWith(r, token.DOT)
		case r == '+':
			s.emitWith(r, token.PLUS)
		case r == '-':
			s.emitWith(r, token.MINUS)
		case r == '*':
			s.emitWith(r, token.MULTIPLY)
		case r == '/':
			s.accept(r, stateDivide)
		case r == '=':
			s.accept(r, stateEqual)
		case r == ' ' || r == '\t' || r == '\r':
		case r == '\n':
			s.line++
			s.column = 0
		default:
			return s.unexpected(r, "")
		}

	case stateEqual:
		if r == '=' {
			s.emitWith(r, token.EQUALS)
		} else {
			s.emitBefore(r, token.ASSIGN)
		}

	case stateNumber:
		switch {
		case isDigit(r):
			s.buf.WriteRune(r)
		case r == 'd' || r == 'D':
			s.accept(r, stateDiceSides)
		default:
			s.emitBefore(r, token.NUMBER)
		}

	case stateDiceSides:
		if !isDigit(r) {
			return s.unexpected(r, "number")
		}
		s.accept(r, stateDiceRead)

	case stateDiceRead:
		if isDigit(r) {
			s.buf.WriteRune(r)
		} else {
			s.emitBefore(r, token.DIE_ROLL)
		}

	case stateCheckIdent:
		switch {
		case isDigit(r):
			s.accept(r, stateDiceRead)
		case isLetter(r):
			s.accept(r, stateIdent)
		default:
			s.emitBefore(r, token.IDENTIFIER)
		}

	case stateIdent:
		if isLetter(r) || isDigit(r) {
			s.buf.WriteRune(r)
		} else {
			s.emitBefore(r, token.Lookup(s.buf.String()))
		}

	case stateDivide:
		switch r {
		case 'd':
			s.emitWith(r, token.DIVIDE_DOWN)
		case 'u':
			s.emitWith(r, token.DIVIDE_UP)
		default:
			return s.unexpected(r, "`d` or `u`")
		}
	}
	return nil
}

// finish closes whatever token is pending when the input runs out, as if a
// delimiter had followed it.
func (s *Scanner) finish() error {
	switch s.state {
	case stateNumber:
		s.emit(token.NUMBER)
	case stateDiceRead:
		s.emit(token.DIE_ROLL)
	case stateCheckIdent, stateIdent:
		s.emit(token.Lookup(s.buf.String()))
	case stateEqual:
		s.emit(token.ASSIGN)
	case stateDiceSides:
		return s.unexpectedEnd("number")
	case stateDivide:
		return s.unexpectedEnd("`d` or `u`")
	}
	return nil
}

func (s *Scanner) accept(r rune, next state) {
	s.buf.WriteRune(r)
	s.state = next
}

// emitWith completes the pending token including r.
func (s *Scanner) emitWith(r rune, kind token.Kind) {
	s.buf.WriteRune(r)
	s.emit(kind)
}

// emitBefore completes the pending token without r, which is returned to the
// input for the next token.
func (s *Scanner) emitBefore(r rune, kind token.Kind) {
	s.reader.UnreadRune()
	s.column--
	s.emit(kind)
}

func (s *Scanner) emit(kind token.Kind) {
	text := s.buf.String()
	s.tokens = append(s.tokens, token.Token{
		Kind:   kind,
		Text:   text,
		Line:   s.line,
		Column: s.column - len(text) + 1,
	})
	s.buf.Reset()
	s.state = stateBase
}

func (s *Scanner) unexpected(r rune, expected string) error {
	return &Error{Char: r, Line: s.line, Column: s.column, Expected: expected}
}

func (s *Scanner) unexpectedEnd(expected string) error {
	return &Error{AtEnd: true, Line: s.line, Column: s.column + 1, Expected: expected}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// isLetter reports identifier characters other than digits.
func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
}
