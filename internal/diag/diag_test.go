package diag

import (
	"errors"
	"fmt"
	"testing"
)

type posError struct {
	d Diagnostic
}

func (e *posError) Error() string          { return e.d.Message }
func (e *posError) Diagnostic() Diagnostic { return e.d }

func TestFrom(t *testing.T) {
	inner := &posError{Diagnostic{Message: "boom", Line: 2, Column: 3, Length: 1}}
	wrapped := fmt.Errorf("context: %w", inner)

	d, ok := From(wrapped)
	if !ok {
		t.Fatal("expected diagnostic through wrapped error")
	}
	if d.Line != 2 || d.Column != 3 {
		t.Errorf("unexpected position %d:%d", d.Line, d.Column)
	}

	if _, ok := From(errors.New("plain")); ok {
		t.Error("expected no diagnostic for plain error")
	}
}

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		err  error
		src  string
		want string
	}{
		{
			name: "single line",
			err:  &posError{Diagnostic{Message: "syntax error: bad", Line: 1, Column: 8, Length: 1}},
			src:  "(2 + 3))",
			want: "syntax error: bad\n\n" +
				"  1 | (2 + 3))\n" +
				"    |        ^\n",
		},
		{
			name: "context lines",
			err:  &posError{Diagnostic{Message: "lexical error: bad", Line: 2, Column: 3, Length: 2}},
			src:  "a = 1\nb $ 2\nc\n",
			want: "lexical error: bad\n\n" +
				"  1 | a = 1\n" +
				"  2 | b $ 2\n" +
				"    |   ^^\n" +
				"  3 | c\n",
		},
		{
			name: "end of input",
			err:  &posError{Diagnostic{Message: "unexpected end", Line: 1, Column: 4}},
			src:  "3d",
			want: "unexpected end\n\n" +
				"  1 | 3d\n" +
				"    |   ^\n",
		},
		{
			name: "tabs before the column",
			err:  &posError{Diagnostic{Message: "bad", Line: 1, Column: 5, Length: 1}},
			src:  "\t\tx $",
			want: "bad\n\n" +
				"  1 | \t\tx $\n" +
				"    | \t\t  ^\n",
		},
		{
			name: "plain error",
			err:  errors.New("division by zero"),
			src:  "1 /d 0",
			want: "division by zero",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Render(tt.err, tt.src); got != tt.want {
				t.Errorf("Render() =\n%s\nwant:\n%s", got, tt.want)
			}
		})
	}
}
