// Package kod provides the public API for the kodscript runtime.
package kod

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/rs/zerolog"

	"nickandperla.net/kodscript/internal/eval"
	"nickandperla.net/kodscript/internal/store"
)

// Option configures a Runtime.
type Option func(*Runtime)

// WithSQLiteStore configures SQLite persistence at the given path.
func WithSQLiteStore(path string) Option {
	return func(r *Runtime) {
		s, err := store.NewSQLite(path)
		if err != nil {
			r.fail(fmt.Errorf("open %s: %w", path, err))
			return
		}
		r.setStore(s)
	}
}

// WithMemoryStore configures an in-memory store (for testing).
func WithMemoryStore() Option {
	return func(r *Runtime) {
		r.setStore(store.NewMemory())
	}
}

// WithStore configures a custom store. The runtime closes it on Close.
func WithStore(s Store) Option {
	return func(r *Runtime) {
		r.setStore(s)
	}
}

// WithSeed makes dice deterministic: the same seed yields the same rolls.
func WithSeed(seed int64) Option {
	return func(r *Runtime) {
		r.rng = rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
	}
}

// WithRand sets the source of dice draws.
func WithRand(rng Rand) Option {
	return func(r *Runtime) {
		r.rng = rng
	}
}

// WithLogger sets the logger used for debug tracing.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Runtime) {
		r.logger = l
	}
}

// WithMaxCallDepth bounds nested named-expression calls.
func WithMaxCallDepth(n int) Option {
	return func(r *Runtime) {
		if n <= 0 {
			r.fail(fmt.Errorf("max call depth must be positive, got %d", n))
			return
		}
		r.maxDepth = n
	}
}

// setStore installs s. Only one store may be configured; a second one is
// closed and reported by New.
func (r *Runtime) setStore(s Store) {
	if r.store != nil {
		s.Close()
		r.fail(errors.New("more than one store configured"))
		return
	}
	r.store = s
}

func (r *Runtime) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

// Store interface for custom stores.
type Store = store.Store

// Rand is the source of dice draws.
type Rand = eval.Rand

// Value is the result of an evaluation.
type Value = eval.Value

// Value types.
type (
	Int  = eval.Int
	Bool = eval.Bool
	Func = eval.Func
)
