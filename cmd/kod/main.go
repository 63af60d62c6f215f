// Command kod is the kodscript dice calculator CLI.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"nickandperla.net/kodscript/internal/config"
	"nickandperla.net/kodscript/internal/diag"
	"nickandperla.net/kodscript/pkg/kod"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		config.Exitf("config: %v", err)
	}

	var (
		evalStr = flag.String("e", "", "Evaluate kodscript expression")
		file    = flag.String("f", "", "Evaluate kodscript file, one expression per line")
		dbPath  = flag.String("db", cfg.DBPath, "SQLite database path")
		memory  = flag.Bool("memory", false, "Keep state in memory only")
		seed    = flag.Int64("seed", cfg.Seed, "Seed the dice generator (0 for random)")
		verbose = flag.Bool("v", cfg.Verbose, "Enable debug logging")
	)
	flag.Parse()

	level := zerolog.WarnLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	// Build options
	opts := []kod.Option{kod.WithLogger(logger)}
	if *memory {
		opts = append(opts, kod.WithMemoryStore())
	} else {
		opts = append(opts, kod.WithSQLiteStore(*dbPath))
	}
	if *seed != 0 {
		opts = append(opts, kod.WithSeed(*seed))
	}

	runtime, err := kod.New(opts...)
	if err != nil {
		config.Exitf("Error: %v", err)
	}
	defer runtime.Close()

	s := newSession(runtime, os.Stdout, os.Stderr, cfg.HistoryLimit)

	switch {
	case *evalStr != "":
		if !s.evalLine(*evalStr) {
			runtime.Close()
			os.Exit(1)
		}

	case *file != "":
		f, err := os.Open(*file)
		if err != nil {
			runtime.Close()
			config.Exitf("Error loading file: %v", err)
		}
		ok := s.evalAll(f)
		f.Close()
		if !ok {
			runtime.Close()
			os.Exit(1)
		}

	case !term.IsTerminal(int(os.Stdin.Fd())):
		// Piped input
		if !s.evalAll(os.Stdin) {
			runtime.Close()
			os.Exit(1)
		}

	default:
		runREPL(s)
	}
}

// evalLine evaluates one expression and prints its value or a rendered error.
func (s *session) evalLine(src string) bool {
	v, err := s.rt.Eval(src)
	if err != nil {
		fmt.Fprintf(s.errOut, "%s\n", diag.Render(err, src))
		return false
	}
	fmt.Fprintln(s.out, v)
	return true
}

// evalAll evaluates r line by line. Blank lines and lines starting with #
// are skipped. It reports whether every line succeeded.
func (s *session) evalAll(r io.Reader) bool {
	ok := true
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, ":") {
			quit, cmdOK := s.command(line)
			if !cmdOK {
				ok = false
			}
			if quit {
				break
			}
			continue
		}
		if !s.evalLine(line) {
			ok = false
		}
	}
	if err := sc.Err(); err != nil {
		fmt.Fprintf(s.errOut, "Error reading input: %v\n", err)
		return false
	}
	return ok
}
