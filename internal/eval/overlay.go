package eval

import "sync"

// Overlay is a copy-on-write view of an object. Assignments land in the
// overlay, including assignments to properties of nested objects, and the
// underlying objects are never written.
//
// Nested objects that are also Callable are returned as is, since wrapping
// them would hide the call capability.
type Overlay struct {
	mu     sync.Mutex
	base   Object
	writes map[string]Value
	nested map[string]*Overlay
}

// NewOverlay creates an overlay over base.
func NewOverlay(base Object) *Overlay {
	return &Overlay{
		base:   base,
		writes: make(map[string]Value),
		nested: make(map[string]*Overlay),
	}
}

func (o *Overlay) Type() string   { return o.base.Type() }
func (o *Overlay) String() string { return o.base.String() }
func (o *Overlay) Name() string   { return o.base.Name() }

// Property returns the overlaid value if one was assigned, else the base
// value. Nested objects come back wrapped in their own overlay.
func (o *Overlay) Property(name string) (Value, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if v, ok := o.writes[name]; ok {
		return v, true
	}
	if ov, ok := o.nested[name]; ok {
		return ov, true
	}
	v, ok := o.base.Property(name)
	if !ok {
		return nil, false
	}
	obj, isObj := v.(Object)
	if _, isCall := v.(Callable); !isObj || isCall {
		return v, true
	}
	ov := NewOverlay(obj)
	o.nested[name] = ov
	return ov, true
}

// SetProperty records v in the overlay. Read-only bases stay read-only.
func (o *Overlay) SetProperty(name string, v Value) error {
	if _, ok := o.base.(Assignable); !ok {
		return errorf("cannot assign to property `%s` of read-only %s", name, o.base.Name())
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.writes[name] = v
	delete(o.nested, name)
	return nil
}
