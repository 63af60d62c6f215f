// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package kod

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"nickandperla.net/kodscript/internal/eval"
	"nickandperla.net/kodscript/internal/expr"
	"nickandperla.net/kodscript/internal/parser"
	"nickandperla.net/kodscript/internal/scanner"
	"nickandperla.net/kodscript/internal/store"
	"nickandperla.net/kodscript/internal/token"
)

// DefaultMaxCallDepth bounds nested named-expression calls.
const DefaultMaxCallDepth = 64

// Runtime is the kodscript host runtime. It owns the global environment,
// optional persistence and the dice generator.
//
// A Runtime is not safe for concurrent use.
type Runtime struct {
	store    store.Store
	globals  *globals
	rng      eval.Rand
	logger   zerolog.Logger
	session  string
	maxDepth int
	depth    int
	active   *eval.Evaluator // evaluator of the evaluation in progress
	err      error           // first option error, reported by New
}

// New creates a new runtime with the given options. Variables and named
// expressions held by the store are loaded into the global environment.
func New(opts ...Option) (*Runtime, error) {
	r := &Runtime{
		logger:   zerolog.Nop(),
		session:  uuid.NewString(),
		maxDepth: DefaultMaxCallDepth,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.err != nil {
		r.Close()
		return nil, r.err
	}

	r.globals = &globals{Namespace: eval.NewNamespace(eval.GlobalName), rt: r}
	if err := r.load(); err != nil {
		r.Close()
		return nil, err
	}
	r.logger.Debug().Str("session", r.session).Msg("runtime started")
	return r, nil
}

// load populates the globals from the store.
func (r *Runtime) load() error {
	if r.store == nil {
		return nil
	}
	vars, err := r.store.Vars()
	if err != nil {
		return fmt.Errorf("load variables: %w", err)
	}
	for name, v := range vars {
		r.globals.Set(name, eval.Int(v))
	}

	macros, err := r.store.Macros()
	if err != nil {
		return fmt.Errorf("load named expressions: %w", err)
	}
	for name, src := range macros {
		node, err := r.Parse(src)
		if err != nil {
			r.logger.Warn().Err(err).Str("name", name).Msg("skipping stored expression")
			continue
		}
		r.globals.Set(name, &Macro{name: name, src: src, node: node, rt: r})
	}
	r.logger.Debug().Int("vars", len(vars)).Int("macros", len(macros)).Msg("loaded from store")
	return nil
}

// Session returns the identifier stamped on this runtime's history entries.
func (r *Runtime) Session() string {
	return r.session
}

// Globals returns the global environment. Hosts register objects here.
func (r *Runtime) Globals() *eval.Namespace {
	return r.globals.Namespace
}

// Tokenize lexes src.
func (r *Runtime) Tokenize(src string) ([]token.Token, error) {
	return scanner.Tokenize(src)
}

// Parse lexes and parses src into a tree.
func (r *Runtime) Parse(src string) (expr.Node, error) {
	toks, err := scanner.Tokenize(src)
	if err != nil {
		return nil, err
	}
	r.logger.Debug().Int("tokens", len(toks)).Msg("tokenized")
	return parser.Parse(toks)
}

// Eval evaluates src against the global environment and records it in the
// store's history.
func (r *Runtime) Eval(src string) (eval.Value, error) {
	node, err := r.Parse(src)
	if err != nil {
		return nil, err
	}
	r.logger.Debug().Str("tree", node.String()).Msg("parsed")

	v, err := r.EvalNode(node)
	if err != nil {
		return nil, err
	}

	if r.store != nil {
		err := r.store.AppendHistory(store.HistoryEntry{
			Session: r.session,
			Source:  src,
			Result:  v.String(),
			Ts:      time.Now(),
		})
		if err != nil {
			return v, fmt.Errorf("record history: %w", err)
		}
	}
	return v, nil
}

// EvalNode evaluates a parsed tree against the global environment.
func (r *Runtime) EvalNode(node expr.Node) (eval.Value, error) {
	return r.run(r.evaluator(r.globals), node)
}

// Try evaluates src against a copy-on-write view of the global environment.
// Assignments, including those to properties of host objects, are discarded
// and nothing is persisted or recorded.
func (r *Runtime) Try(src string) (eval.Value, error) {
	node, err := r.Parse(src)
	if err != nil {
		return nil, err
	}
	return r.run(r.evaluator(eval.NewOverlay(r.globals.Namespace)), node)
}

func (r *Runtime) evaluator(g eval.Object) *eval.Evaluator {
	opts := []eval.Option{eval.WithGlobals(g), eval.WithLogger(r.logger)}
	if r.rng != nil {
		opts = append(opts, eval.WithRand(r.rng))
	}
	return eval.New(opts...)
}

func (r *Runtime) run(ev *eval.Evaluator, node expr.Node) (eval.Value, error) {
	prev := r.active
	r.active = ev
	defer func() { r.active = prev }()
	return ev.Eval(node)
}

// Define stores a named expression. Calling it as name() re-evaluates src,
// so dice in it are rolled on every call.
func (r *Runtime) Define(name, src string) error {
	if !isIdentifier(name) {
		return fmt.Errorf("invalid name %q", name)
	}
	node, err := r.Parse(src)
	if err != nil {
		return err
	}
	if r.store != nil {
		if err := r.store.PutMacro(name, src); err != nil {
			return fmt.Errorf("persist %s: %w", name, err)
		}
	}
	r.globals.Set(name, &Macro{name: name, src: src, node: node, rt: r})
	return nil
}

// ErrUndefined is returned by Forget for names that are not defined.
var ErrUndefined = errors.New("not defined")

// Forget removes a variable or named expression.
func (r *Runtime) Forget(name string) error {
	if !r.globals.Has(name) {
		return fmt.Errorf("%s: %w", name, ErrUndefined)
	}
	if r.store != nil {
		if err := r.store.Delete(name); err != nil {
			return fmt.Errorf("forget %s: %w", name, err)
		}
	}
	r.globals.Delete(name)
	return nil
}

// Binding is a named global value.
type Binding struct {
	Name  string
	Value eval.Value
}

// Vars returns the global bindings sorted by name.
func (r *Runtime) Vars() []Binding {
	names := r.globals.Names()
	out := make([]Binding, 0, len(names))
	for _, name := range names {
		if v, ok := r.globals.Property(name); ok {
			out = append(out, Binding{Name: name, Value: v})
		}
	}
	return out
}

// History returns recorded evaluations, newest first. Without a store it
// returns nil.
func (r *Runtime) History(limit int) ([]store.HistoryEntry, error) {
	if r.store == nil {
		return nil, nil
	}
	return r.store.History(limit)
}

// Close releases resources.
func (r *Runtime) Close() error {
	if r.store != nil {
		return r.store.Close()
	}
	return nil
}

// globals is the global namespace. Integer assignments are written through
// to the store.
type globals struct {
	*eval.Namespace
	rt *Runtime
}

// SetProperty stores v and persists it when it is an integer. Any other
// value drops the name from the store so a stale integer is not reloaded.
func (g *globals) SetProperty(name string, v eval.Value) error {
	if s := g.rt.store; s != nil {
		if i, ok := v.(eval.Int); ok {
			if err := s.PutVar(name, int64(i)); err != nil {
				return fmt.Errorf("persist %s: %w", name, err)
			}
			g.rt.logger.Debug().Str("name", name).Int64("value", int64(i)).Msg("persisted")
		} else if err := s.Delete(name); err != nil {
			return fmt.Errorf("persist %s: %w", name, err)
		}
	}
	g.Set(name, v)
	return nil
}

// Macro is a named expression. Each call evaluates it afresh.
type Macro struct {
	name string
	src  string
	node expr.Node
	rt   *Runtime
}

func (m *Macro) Type() string   { return "macro" }
func (m *Macro) String() string { return m.src }

// Source returns the expression text.
func (m *Macro) Source() string { return m.src }

// Call evaluates the expression in the evaluation in progress.
func (m *Macro) Call(args []eval.Value) (eval.Value, error) {
	if len(args) != 0 {
		return nil, fmt.Errorf("%s takes no arguments, got %d", m.name, len(args))
	}
	if m.rt.depth >= m.rt.maxDepth {
		return nil, fmt.Errorf("%s: call depth exceeds %d", m.name, m.rt.maxDepth)
	}
	m.rt.depth++
	defer func() { m.rt.depth-- }()

	ev := m.rt.active
	if ev == nil {
		ev = m.rt.evaluator(m.rt.globals)
	}
	return ev.Eval(m.node)
}

// isIdentifier reports whether name lexes as exactly one identifier.
func isIdentifier(name string) bool {
	toks, err := scanner.Tokenize(name)
	return err == nil && len(toks) == 2 &&
		toks[0].Kind == token.IDENTIFIER && toks[0].Text == name
}
