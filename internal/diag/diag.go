// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package diag carries source positions for lexical and syntax errors and
// renders them as caret-annotated snippets.
//
//	syntax error at 1:9: unexpected `)` (CLOSE_PAREN)
//
//	   1 | (2 + 3))
//	     |        ^
package diag

import (
	"errors"
	"fmt"
	"strings"
)

// Diagnostic locates a failure in the source text. Line and Column are 1-based.
type Diagnostic struct {
	Message string
	Line    int
	Column  int
	Length  int
}

// Diagnoser is implemented by errors that carry a source position.
type Diagnoser interface {
	error
	Diagnostic() Diagnostic
}

// From extracts the diagnostic carried by err, if any.
func From(err error) (Diagnostic, bool) {
	var d Diagnoser
	if errors.As(err, &d) {
		return d.Diagnostic(), true
	}
	return Diagnostic{}, false
}

// Render formats err against src. Errors without a position are returned as
// their plain message.
func Render(err error, src string) string {
	d, ok := From(err)
	if !ok {
		return err.Error()
	}

	lines := strings.Split(strings.TrimRight(src, "\n"), "\n")
	line := clamp(d.Line, 1, len(lines))
	text := lines[line-1]
	runes := []rune(text)
	col := clamp(d.Column, 1, len(runes)+1)
	length := d.Length
	if length < 1 {
		length = 1
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n\n", d.Message)
	width := len(fmt.Sprint(line + 1))
	if line > 1 {
		fmt.Fprintf(&sb, "  %*d | %s\n", width, line-1, lines[line-2])
	}
	fmt.Fprintf(&sb, "  %*d | %s\n", width, line, text)
	fmt.Fprintf(&sb, "  %*s | %s%s\n", width, "", padding(runes[:col-1]), strings.Repeat("^", length))
	if line < len(lines) {
		fmt.Fprintf(&sb, "  %*d | %s\n", width, line+1, lines[line])
	}
	return sb.String()
}

// padding blanks prefix while keeping its tabs, so the caret lines up under
// the column however the terminal expands them.
func padding(prefix []rune) string {
	var sb strings.Builder
	for _, r := range prefix {
		if r == '\t' {
			sb.WriteRune('\t')
		} else {
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
