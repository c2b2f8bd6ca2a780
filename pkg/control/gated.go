package control

import "fmt"

// Gate binds a peer control to the reason its being active refuses writes.
// The predicate is "peer's current value is non-zero".
type Gate struct {
	Peer   Control
	Reason string
}

// gated wraps a control whose writes are refused while any gate peer is
// active. The gate predicate never depends on the gated control's own
// value, which keeps the gating graph acyclic.
type gated struct {
	name  string
	inner Control
	gates []Gate
}

// NewGated wraps inner so that writes are refused with the registered
// reason while the corresponding peer control reads non-zero. A nil inner,
// a nil peer or an empty reason is a wiring bug and panics at construction.
func NewGated(name string, inner Control, gates ...Gate) Control {
	if inner == nil {
		panic(fmt.Sprintf("control: gated %q wraps nil control", name))
	}
	for i, g := range gates {
		if g.Peer == nil {
			panic(fmt.Sprintf("control: gated %q has nil peer at %d", name, i))
		}
		if g.Reason == "" {
			panic(fmt.Sprintf("control: gated %q has empty reason at %d", name, i))
		}
	}
	return &gated{name: name, inner: inner, gates: gates}
}

func (g *gated) Query() (float64, error) {
	return g.inner.Query()
}

func (g *gated) Set(value float64) error {
	for _, gate := range g.gates {
		v, err := gate.Peer.Query()
		if err != nil {
			return fmt.Errorf("%s: querying gate peer: %w", g.name, err)
		}
		if v != 0 {
			return &PolicyError{Control: g.name, Reason: gate.Reason}
		}
	}
	return g.inner.Set(value)
}

func (g *gated) Range() Range        { return g.inner.Range() }
func (g *gated) Description() string { return g.inner.Description() }
func (g *gated) ControlKind() string { return "gated" }
