package store

import (
	"sync"
	"time"
)

// Memory is an in-memory store for testing.
type Memory struct {
	mu      sync.RWMutex
	vars    map[string]int64
	macros  map[string]string
	history []HistoryEntry
}

// NewMemory creates a new in-memory store.
func NewMemory() *Memory {
	return &Memory{
		vars:   make(map[string]int64),
		macros: make(map[string]string),
	}
}

// GetVar retrieves a variable by name.
func (m *Memory) GetVar(name string) (int64, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.vars[name]
	return v, ok, nil
}

// PutVar stores a variable by name.
func (m *Memory) PutVar(name string, v int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.macros, name)
	m.vars[name] = v
	return nil
}

// Vars returns a copy of every variable.
func (m *Memory) Vars() (map[string]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]int64, len(m.vars))
	for k, v := range m.vars {
		out[k] = v
	}
	return out, nil
}

// GetMacro retrieves a named expression.
func (m *Memory) GetMacro(name string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	src, ok := m.macros[name]
	return src, ok, nil
}

// PutMacro stores a named expression.
func (m *Memory) PutMacro(name, src string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.vars, name)
	m.macros[name] = src
	return nil
}

// Macros returns a copy of every named expression.
func (m *Memory) Macros() (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.macros))
	for k, v := range m.macros {
		out[k] = v
	}
	return out, nil
}

// Delete removes a variable or named expression.
func (m *Memory) Delete(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.vars, name)
	delete(m.macros, name)
	return nil
}

// AppendHistory records one evaluation.
func (m *Memory) AppendHistory(entry HistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry.Ts.IsZero() {
		entry.Ts = time.Now()
	}
	m.history = append(m.history, entry)
	return nil
}

// History returns the most recent entries, newest first.
func (m *Memory) History(limit int) ([]HistoryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := len(m.history)
	if limit > 0 && limit < n {
		n = limit
	}
	if n == 0 {
		return nil, nil
	}
	out := make([]HistoryEntry, 0, n)
	for i := len(m.history) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, m.history[i])
	}
	return out, nil
}

// Close is a no-op for memory store.
func (m *Memory) Close() error {
	return nil
}
