// Package store provides persistence for kodscript hosts: integer variables,
// named expressions, and evaluation history.
package store

import "time"

// Store is the interface for host persistence.
type Store interface {
	// GetVar retrieves a variable. ok is false if it does not exist.
	GetVar(name string) (v int64, ok bool, err error)
	// PutVar stores a variable, overwriting if it exists.
	PutVar(name string, v int64) error
	// Vars returns every stored variable.
	Vars() (map[string]int64, error)

	// GetMacro retrieves the source of a named expression. ok is false if it
	// does not exist.
	GetMacro(name string) (src string, ok bool, err error)
	// PutMacro stores a named expression, overwriting if it exists.
	PutMacro(name, src string) error
	// Macros returns every named expression.
	Macros() (map[string]string, error)

	// Delete removes a variable or named expression.
	Delete(name string) error

	// AppendHistory records one evaluation.
	AppendHistory(entry HistoryEntry) error
	// History returns the most recent entries, newest first. limit <= 0 means all.
	History(limit int) ([]HistoryEntry, error)

	// Close releases resources.
	Close() error
}

// HistoryEntry is one recorded evaluation.
type HistoryEntry struct {
	Session string
	Source  string
	Result  string
	Ts      time.Time
}
