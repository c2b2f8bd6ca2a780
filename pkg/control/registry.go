package control

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds the named controls composed for one sensor. Registering a
// name that already exists replaces the previous control; the composition
// engine relies on this to wrap base controls in place.
type Registry struct {
	mu       sync.RWMutex
	controls map[string]Control
}

// NewRegistry creates an empty control registry.
func NewRegistry() *Registry {
	return &Registry{controls: make(map[string]Control)}
}

// Register adds or replaces a named control.
func (r *Registry) Register(name string, c Control) {
	if c == nil {
		panic(fmt.Sprintf("control: registering nil control %q", name))
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.controls[name] = c
}

// Get returns a control by name.
func (r *Registry) Get(name string) (Control, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.controls[name]
	return c, ok
}

// MustGet returns a control by name and panics when it was never
// registered. Use only for wiring that is a construction-time invariant.
func (r *Registry) MustGet(name string) Control {
	c, ok := r.Get(name)
	if !ok {
		panic(fmt.Sprintf("control: %q is not registered", name))
	}
	return c
}

// Has reports whether a control name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Names returns the registered control names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.controls))
	for name := range r.controls {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
