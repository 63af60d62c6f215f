package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/kballard/go-shellquote"
	"golang.org/x/term"

	"nickandperla.net/kodscript/internal/diag"
	"nickandperla.net/kodscript/pkg/kod"
)

const (
	prompt         = ">>> "
	continuePrompt = "... "
)

const helpText = `Commands:
  :tokens EXPR      show the tokens of EXPR
  :ast EXPR         show how EXPR parses
  :try EXPR         evaluate EXPR without keeping assignments
  :def NAME EXPR    define NAME() to evaluate EXPR
  :forget NAME...   remove variables or definitions
  :vars             list variables and definitions
  :history [N]      show the last N evaluations
  :help             show this help
  :quit             exit
End a line with \ to continue on the next line.`

// session is an interactive or scripted kodscript session.
type session struct {
	rt           *kod.Runtime
	out          io.Writer
	errOut       io.Writer
	historyLimit int
	pending      strings.Builder // continued lines
}

func newSession(rt *kod.Runtime, out, errOut io.Writer, historyLimit int) *session {
	return &session{rt: rt, out: out, errOut: errOut, historyLimit: historyLimit}
}

// feed handles one line of REPL input. It returns the prompt for the next
// line and whether the session should end.
func (s *session) feed(line string) (string, bool) {
	line = strings.TrimRight(line, "\r\n")
	if strings.HasSuffix(line, "\\") {
		s.pending.WriteString(strings.TrimSuffix(line, "\\"))
		s.pending.WriteString("\n")
		return continuePrompt, false
	}

	input := line
	if s.pending.Len() > 0 {
		s.pending.WriteString(line)
		input = s.pending.String()
		s.pending.Reset()
	}

	trimmed := strings.TrimSpace(input)
	switch {
	case trimmed == "":
	case strings.HasPrefix(trimmed, ":"):
		if quit, _ := s.command(trimmed); quit {
			return prompt, true
		}
	default:
		s.evalLine(input)
	}
	return prompt, false
}

// command runs a meta command. It reports whether the session should end
// and whether the command succeeded.
func (s *session) command(line string) (quit, ok bool) {
	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch name {
	case ":quit", ":q", ":exit":
		return true, true

	case ":help", ":h":
		fmt.Fprintln(s.out, helpText)

	case ":tokens":
		toks, err := s.rt.Tokenize(rest)
		if err != nil {
			s.report(err, rest)
			return false, false
		}
		for _, tok := range toks {
			fmt.Fprintln(s.out, tok)
		}

	case ":ast":
		node, err := s.rt.Parse(rest)
		if err != nil {
			s.report(err, rest)
			return false, false
		}
		fmt.Fprintln(s.out, node)

	case ":try":
		v, err := s.rt.Try(rest)
		if err != nil {
			s.report(err, rest)
			return false, false
		}
		fmt.Fprintln(s.out, v)

	case ":def":
		args, err := shellquote.Split(rest)
		if err != nil || len(args) < 2 {
			fmt.Fprintln(s.errOut, "usage: :def NAME EXPR")
			return false, false
		}
		src := strings.Join(args[1:], " ")
		if err := s.rt.Define(args[0], src); err != nil {
			s.report(err, src)
			return false, false
		}
		fmt.Fprintf(s.out, "defined %s()\n", args[0])

	case ":forget":
		args, err := shellquote.Split(rest)
		if err != nil || len(args) == 0 {
			fmt.Fprintln(s.errOut, "usage: :forget NAME...")
			return false, false
		}
		ok = true
		for _, n := range args {
			if err := s.rt.Forget(n); err != nil {
				fmt.Fprintf(s.errOut, "Error: %v\n", err)
				ok = false
			}
		}
		return false, ok

	case ":vars":
		for _, b := range s.rt.Vars() {
			if m, isMacro := b.Value.(*kod.Macro); isMacro {
				fmt.Fprintf(s.out, "%s() = %s\n", b.Name, m.Source())
				continue
			}
			fmt.Fprintf(s.out, "%s = %s\n", b.Name, b.Value)
		}

	case ":history":
		limit := s.historyLimit
		if rest != "" {
			n, err := strconv.Atoi(rest)
			if err != nil || n < 0 {
				fmt.Fprintln(s.errOut, "usage: :history [N]")
				return false, false
			}
			limit = n
		}
		entries, err := s.rt.History(limit)
		if err != nil {
			fmt.Fprintf(s.errOut, "Error: %v\n", err)
			return false, false
		}
		// Oldest first, so the latest sits next to the prompt
		for i := len(entries) - 1; i >= 0; i-- {
			e := entries[i]
			fmt.Fprintf(s.out, "%-16s %s = %s\n", humanize.Time(e.Ts), e.Source, e.Result)
		}

	default:
		fmt.Fprintf(s.errOut, "unknown command %s (try :help)\n", name)
		return false, false
	}
	return false, true
}

func (s *session) report(err error, src string) {
	fmt.Fprintf(s.errOut, "%s\n", diag.Render(err, src))
}

func printBanner(w io.Writer) {
	fmt.Fprintln(w, "kodscript REPL (Ctrl+D to exit, :help for commands)")
	fmt.Fprintln(w)
}

func runREPL(s *session) {
	// Check if stdin is a terminal
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		// Not a TTY, fall back to basic mode
		printBanner(s.out)
		runBasicREPL(s, os.Stdin)
		return
	}
	runTermREPL(s)
}

// runBasicREPL handles non-TTY input
func runBasicREPL(s *session, in io.Reader) {
	reader := bufio.NewReader(in)
	p := prompt
	for {
		fmt.Fprint(s.out, p)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(s.out)
			return
		}
		var quit bool
		if p, quit = s.feed(line); quit {
			return
		}
	}
}

// runTermREPL handles TTY input with line editing and history
func runTermREPL(s *session) {
	fd := int(os.Stdin.Fd())

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set raw mode: %v\n", err)
		runBasicREPL(s, os.Stdin)
		return
	}
	defer term.Restore(fd, oldState)

	t := term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{os.Stdin, os.Stdout}, prompt)
	if w, h, err := term.GetSize(fd); err == nil {
		t.SetSize(w, h)
	}

	// The terminal translates \n to \r\n in raw mode
	s.out, s.errOut = t, t
	printBanner(t)

	for {
		line, err := t.ReadLine()
		if err != nil {
			// io.EOF on Ctrl+D
			return
		}
		p, quit := s.feed(line)
		if quit {
			return
		}
		t.SetPrompt(p)
	}
}
