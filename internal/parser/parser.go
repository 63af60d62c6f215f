// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package parser builds kodscript syntax trees from token sequences.
//
// Infix expressions are parsed with explicit term and operator stacks
// (shunting-yard) driven by the Operators table. Terms, parenthesized groups,
// unary prefixes and reference chains are parsed by recursive descent.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"nickandperla.net/kodscript/internal/expr"
	"nickandperla.net/kodscript/internal/token"
)

// Parser consumes a token sequence.
type Parser struct {
	tokens []token.Token
	pos    int
}

// pending is an operator waiting on the operator stack.
type pending struct {
	info OpInfo
	tok  token.Token
}

// New creates a Parser over tokens, normally the output of scanner.Scan.
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse parses tokens into a single tree covering the whole input.
func Parse(tokens []token.Token) (expr.Node, error) {
	return New(tokens).Parse()
}

// Parse parses the whole input into a single tree.
func (p *Parser) Parse() (expr.Node, error) {
	root, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	switch tok := p.peek(); tok.Kind {
	case token.EOF:
		return root, nil
	case token.CLOSE_PAREN:
		return nil, &Error{Token: tok, Reason: "unmatched `)`"}
	default:
		return nil, &Error{Token: tok, Expected: "operator"}
	}
}

// peek returns the current token. Past the end it returns a synthetic EOF
// positioned after the last token.
func (p *Parser) peek() token.Token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	if len(p.tokens) == 0 {
		return token.Token{Kind: token.EOF, Line: 1, Column: 1}
	}
	last := p.tokens[len(p.tokens)-1]
	return token.Token{Kind: token.EOF, Line: last.Line, Column: last.Column + len(last.Text)}
}

func (p *Parser) next() token.Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

// parseExpression parses one expression level. It stops, without consuming,
// at end of input, at a `)`, or at a token that cannot follow a complete term.
func (p *Parser) parseExpression() (expr.Node, error) {
	var (
		terms []expr.Node
		ops   []pending
	)

	reduce := func() error {
		op := ops[len(ops)-1]
		ops = ops[:len(ops)-1]
		lhs, rhs := terms[len(terms)-2], terms[len(terms)-1]
		terms = terms[:len(terms)-2]
		n, err := build(op.info.Ctor, op.tok, lhs, rhs)
		if err != nil {
			return err
		}
		terms = append(terms, n)
		return nil
	}

	expectTerm := true
loop:
	for {
		tok := p.peek()
		info, isOp := Operators[tok.Kind]

		switch {
		case tok.Kind == token.EOF || tok.Kind == token.CLOSE_PAREN:
			if expectTerm {
				return nil, &Error{Token: tok, Expected: "term"}
			}
			break loop

		case isOp && !expectTerm:
			for len(ops) > 0 {
				top := ops[len(ops)-1].info
				if top.Prec > info.Prec || (top.Prec == info.Prec && info.Assoc == Left) {
					if err := reduce(); err != nil {
						return nil, err
					}
					continue
				}
				break
			}
			ops = append(ops, pending{info: info, tok: p.next()})
			expectTerm = true

		case expectTerm:
			term, err := p.parseTerm()
			if err != nil {
				return nil, err
			}
			terms = append(terms, term)
			expectTerm = false

		default:
			// A term directly after a term ends this level.
			break loop
		}
	}

	for len(ops) > 0 {
		if err := reduce(); err != nil {
			return nil, err
		}
	}
	if len(terms) != 1 {
		panic(fmt.Sprintf("parser: %d terms left after reduction", len(terms)))
	}
	return terms[0], nil
}

// parseTerm parses an optionally prefixed primary term.
func (p *Parser) parseTerm() (expr.Node, error) {
	tok := p.peek()
	switch tok.Kind {
	case token.PLUS, token.MINUS:
		p.next()
		operand, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		op := expr.Pos
		if tok.Kind == token.MINUS {
			op = expr.Neg
		}
		return &expr.Unary{Op: op, Operand: operand}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (expr.Node, error) {
	tok := p.peek()
	switch tok.Kind {
	case token.OPEN_PAREN:
		return p.parseGroup()

	case token.NUMBER:
		p.next()
		v, err := strconv.ParseInt(tok.Text, 10, 64)
		if err != nil {
			return nil, &Error{Token: tok, Reason: "number out of range"}
		}
		return &expr.Number{Value: v}, nil

	case token.DIE_ROLL:
		p.next()
		return parseDice(tok)

	case token.IDENTIFIER:
		return p.parseReference()
	}
	return nil, &Error{Token: tok, Expected: "term"}
}

// parseGroup parses `( expression )`.
func (p *Parser) parseGroup() (expr.Node, error) {
	p.next()
	inner, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Kind != token.CLOSE_PAREN {
		return nil, &Error{Token: tok, Expected: "`)`"}
	}
	p.next()
	return inner, nil
}

// parseReference parses a dotted identifier chain and an optional call suffix.
func (p *Parser) parseReference() (expr.Node, error) {
	ref := &expr.Reference{Name: p.next().Text}

	for p.peek().Kind == token.DOT {
		p.next()
		tok := p.peek()
		if tok.Kind != token.IDENTIFIER {
			return nil, &Error{Token: tok, Expected: "identifier"}
		}
		p.next()
		ref = &expr.Reference{Parent: ref, Name: tok.Text}
	}

	if p.peek().Kind == token.OPEN_PAREN {
		return p.parseCall(ref)
	}
	return ref, nil
}

// parseCall parses `callee()` or `callee(expression)`.
func (p *Parser) parseCall(callee *expr.Reference) (expr.Node, error) {
	p.next()
	call := &expr.Call{Callee: callee}
	if p.peek().Kind != token.CLOSE_PAREN {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)
	}
	if tok := p.peek(); tok.Kind != token.CLOSE_PAREN {
		return nil, &Error{Token: tok, Expected: "`)`"}
	}
	p.next()
	return call, nil
}

// parseDice splits a die-roll literal such as 3d6 or d20 into count and sides.
// A missing count means one die.
func parseDice(tok token.Token) (expr.Node, error) {
	i := strings.IndexAny(tok.Text, "dD")
	count := 1
	if i > 0 {
		n, err := strconv.Atoi(tok.Text[:i])
		if err != nil {
			return nil, &Error{Token: tok, Reason: "dice out of range"}
		}
		count = n
	}
	sides, err := strconv.Atoi(tok.Text[i+1:])
	if err != nil {
		return nil, &Error{Token: tok, Reason: "dice out of range"}
	}
	if count < 1 {
		return nil, &Error{Token: tok, Reason: "dice count must be positive"}
	}
	if sides < 1 {
		return nil, &Error{Token: tok, Reason: "dice size must be positive"}
	}
	if count > expr.MaxDiceCount || sides > expr.MaxDiceSides {
		return nil, &Error{Token: tok, Reason: "dice out of range"}
	}
	return &expr.Dice{Count: count, Sides: sides}, nil
}
