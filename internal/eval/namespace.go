// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package eval

import (
	"sort"
	"sync"
)

// GlobalName is the name of the default global environment.
const GlobalName = "_G"

// Namespace is a thread-safe object holding named properties. It serves as
// the global environment and as a generic host object.
type Namespace struct {
	mu    sync.RWMutex
	name  string
	store map[string]Value
}

// NewNamespace creates a new empty namespace.
func NewNamespace(name string) *Namespace {
	return &Namespace{
		name:  name,
		store: make(map[string]Value),
	}
}

func (n *Namespace) Type() string   { return "object" }
func (n *Namespace) String() string { return "<object " + n.name + ">" }

// Name returns the namespace's name.
func (n *Namespace) Name() string { return n.name }

// Property retrieves a value by name.
func (n *Namespace) Property(name string) (Value, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	v, ok := n.store[name]
	return v, ok
}

// SetProperty stores a value by name.
func (n *Namespace) SetProperty(name string, v Value) error {
	n.Set(name, v)
	return nil
}

// Set stores a value by name.
func (n *Namespace) Set(name string, v Value) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.store[name] = v
}

// Has returns true if the name exists in the namespace.
func (n *Namespace) Has(name string) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	_, ok := n.store[name]
	return ok
}

// Delete removes a value from the namespace.
func (n *Namespace) Delete(name string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.store, name)
}

// Names returns the property names in sorted order.
func (n *Namespace) Names() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	names := make([]string, 0, len(n.store))
	for k := range n.store {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
