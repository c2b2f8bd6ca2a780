// Package metadata extracts per-frame attributes from raw frame metadata
// records.
//
// A record is the byte blob the camera appends to each frame: a fixed UVC
// header followed by firmware-defined payload sections. Each attribute is
// described by a Rule that knows where its bits live; a Registry maps
// attribute names to rules for one stream profile.
package metadata

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnavailable marks an attribute whose bits are not present in the
// record, typically because the firmware predates the section or the
// record is truncated.
var ErrUnavailable = errors.New("metadata: attribute unavailable")

// Rule extracts one attribute value from a raw record.
type Rule interface {
	// Extract returns the attribute value, or an error wrapping
	// ErrUnavailable when the record does not carry it.
	Extract(record []byte) (int64, error)
}

// RuleFunc adapts a plain function to the Rule interface. Derived
// attributes (values computed from other fields) use it directly.
type RuleFunc func(record []byte) (int64, error)

// Extract implements Rule.
func (f RuleFunc) Extract(record []byte) (int64, error) { return f(record) }

// OffsetRule reads a little-endian field at a fixed byte offset, with an
// optional bitmask, right shift, and post-transform.
type OffsetRule struct {
	// Offset is the field's position from the start of the record.
	Offset int
	// Size is the field width in bytes, 1..8.
	Size int
	// Mask selects bits before shifting; zero means all bits.
	Mask uint64
	// Shift is the right shift applied after masking.
	Shift uint
	// Transform, when non-nil, maps the raw field to the reported value.
	Transform func(uint64) int64
}

// Extract implements Rule.
func (r OffsetRule) Extract(record []byte) (int64, error) {
	if r.Size < 1 || r.Size > 8 {
		return 0, fmt.Errorf("metadata: field width %d: %w", r.Size, ErrUnavailable)
	}
	if r.Offset < 0 || r.Offset+r.Size > len(record) {
		return 0, fmt.Errorf("metadata: offset %d+%d beyond %d-byte record: %w",
			r.Offset, r.Size, len(record), ErrUnavailable)
	}
	var raw uint64
	for i := r.Size - 1; i >= 0; i-- {
		raw = raw<<8 | uint64(record[r.Offset+i])
	}
	if r.Mask != 0 {
		raw &= r.Mask
	}
	raw >>= r.Shift
	if r.Transform != nil {
		return r.Transform(raw), nil
	}
	return int64(raw), nil
}

// Registry maps attribute names to extraction rules for one stream
// profile. Registration happens during device bring-up; reads are
// per-frame and concurrent.
type Registry struct {
	mu    sync.RWMutex
	rules map[string]Rule
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{rules: make(map[string]Rule)}
}

// Register binds a rule to an attribute name, replacing any previous
// binding.
func (r *Registry) Register(name string, rule Rule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules[name] = rule
}

// Supports reports whether an attribute has a registered rule.
func (r *Registry) Supports(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rules[name]
	return ok
}

// Names returns the registered attribute names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.rules))
	for name := range r.rules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Extract resolves one attribute from a record. Unregistered attributes
// report ErrUnavailable.
func (r *Registry) Extract(name string, record []byte) (int64, error) {
	r.mu.RLock()
	rule, ok := r.rules[name]
	r.mu.RUnlock()
	if !ok {
		return 0, fmt.Errorf("metadata: %q not registered: %w", name, ErrUnavailable)
	}
	return rule.Extract(record)
}

// readUint32 is a helper for derived rules that need a neighbour field.
func readUint32(record []byte, offset int) (uint32, bool) {
	if offset < 0 || offset+4 > len(record) {
		return 0, false
	}
	return binary.LittleEndian.Uint32(record[offset:]), true
}
