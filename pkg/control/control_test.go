package control

import (
	"errors"
	"testing"
)

// memControl is an in-memory control used to exercise the wrappers.
type memControl struct {
	v    float64
	rng  Range
	desc string
}

func newMem(v float64) *memControl {
	return &memControl{v: v, rng: Range{Min: 0, Max: 100, Step: 1, Default: 0}}
}

func (m *memControl) Query() (float64, error) { return m.v, nil }
func (m *memControl) Set(v float64) error     { m.v = v; return nil }
func (m *memControl) Range() Range            { return m.rng }
func (m *memControl) Description() string     { return m.desc }

func TestGatingLaw(t *testing.T) {
	peer := newMem(1) // gate predicate holds
	inner := newMem(10)
	g := NewGated("emitter-on-off", inner, Gate{Peer: peer, Reason: "Emitter ON/OFF cannot be set while HDR is enabled"})

	err := g.Set(42)
	var pe *PolicyError
	if !errors.As(err, &pe) {
		t.Fatalf("expected PolicyError, got %v", err)
	}
	if pe.Reason != "Emitter ON/OFF cannot be set while HDR is enabled" {
		t.Errorf("unexpected reason %q", pe.Reason)
	}
	if pe.Control != "emitter-on-off" {
		t.Errorf("unexpected control %q", pe.Control)
	}
	if v, _ := g.Query(); v != 10 {
		t.Errorf("rejected write must leave value unchanged, got %v", v)
	}

	// Once the predicate clears, the next write succeeds and is readable.
	peer.v = 0
	if err := g.Set(42); err != nil {
		t.Fatalf("write after gate cleared: %v", err)
	}
	if v, _ := g.Query(); v != 42 {
		t.Errorf("expected 42 after successful write, got %v", v)
	}
}

func TestGatedMultipleGatesFirstHoldingWins(t *testing.T) {
	a, b := newMem(0), newMem(1)
	g := NewGated("x", newMem(0),
		Gate{Peer: a, Reason: "reason A"},
		Gate{Peer: b, Reason: "reason B"},
	)

	err := g.Set(1)
	var pe *PolicyError
	if !errors.As(err, &pe) || pe.Reason != "reason B" {
		t.Errorf("expected rejection with reason B, got %v", err)
	}
}

func TestGatedMissingPeerPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("nil gate peer must panic at construction")
		}
	}()
	NewGated("x", newMem(0), Gate{Peer: nil, Reason: "r"})
}

func TestGatedEmptyReasonPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("empty gate reason must panic at construction")
		}
	}()
	NewGated("x", newMem(0), Gate{Peer: newMem(0), Reason: ""})
}

func TestAutoDisabling(t *testing.T) {
	ae := newMem(1)
	inner := newMem(5)
	c := NewAutoDisabling(Exposure, inner, ae)

	err := c.Set(7)
	if !IsPolicy(err) {
		t.Fatalf("expected policy rejection, got %v", err)
	}
	if v, _ := inner.Query(); v != 5 {
		t.Errorf("value changed despite rejection: %v", v)
	}

	ae.v = 0
	if err := c.Set(7); err != nil {
		t.Fatalf("write with auto exposure off: %v", err)
	}
	if v, _ := c.Query(); v != 7 {
		t.Errorf("expected 7, got %v", v)
	}
}

type boolCondition bool

func (b *boolCondition) Enabled() bool { return bool(*b) }

func TestConditionalRouting(t *testing.T) {
	on := newMem(1)
	off := newMem(2)
	cond := boolCondition(false)
	c := NewConditional(&cond, on, off)

	if v, _ := c.Query(); v != 2 {
		t.Errorf("expected the off branch, got %v", v)
	}

	cond = true
	if v, _ := c.Query(); v != 1 {
		t.Errorf("expected the on branch, got %v", v)
	}
	if err := c.Set(9); err != nil {
		t.Fatal(err)
	}
	if on.v != 9 || off.v != 2 {
		t.Errorf("write routed to wrong branch: on=%v off=%v", on.v, off.v)
	}
}

func TestConstLazyOnce(t *testing.T) {
	calls := 0
	c := NewConst("Distance in mm between the stereo imagers", func() float64 {
		calls++
		return 49.8
	})

	for i := 0; i < 3; i++ {
		v, err := c.Query()
		if err != nil || v != 49.8 {
			t.Fatalf("Query = %v, %v", v, err)
		}
	}
	if calls != 1 {
		t.Errorf("lazy value evaluated %d times, want 1", calls)
	}
	if err := c.Set(1); !errors.Is(err, ErrReadOnly) {
		t.Errorf("expected ErrReadOnly, got %v", err)
	}
	if r := c.Range(); r.Min != 49.8 || r.Max != 49.8 {
		t.Errorf("const range must collapse to the value, got %+v", r)
	}
}

func TestNotifyingObservers(t *testing.T) {
	inner := newMem(0)
	n := NewNotifying(inner)

	var seen []float64
	n.AddObserver(func(v float64) { seen = append(seen, v) })

	if err := n.Set(3); err != nil {
		t.Fatal(err)
	}
	if err := n.Set(4); err != nil {
		t.Fatal(err)
	}
	if len(seen) != 2 || seen[0] != 3 || seen[1] != 4 {
		t.Errorf("observer saw %v", seen)
	}
}

func TestNotifyingNoCallbackOnFailedWrite(t *testing.T) {
	inner := newMem(0)
	inner.rng = Range{Min: 0, Max: 1}
	n := NewNotifying(NewGated("x", inner, Gate{Peer: newMem(1), Reason: "held"}))

	called := false
	n.AddObserver(func(float64) { called = true })

	if err := n.Set(1); !IsPolicy(err) {
		t.Fatalf("expected policy rejection, got %v", err)
	}
	if called {
		t.Error("observer must not fire on a rejected write")
	}
}

func TestRegistryReplaceAndNames(t *testing.T) {
	r := NewRegistry()
	base := newMem(0)
	r.Register(Exposure, base)
	wrapped := NewAutoDisabling(Exposure, base, newMem(0))
	r.Register(Exposure, wrapped)

	got, ok := r.Get(Exposure)
	if !ok || got != wrapped {
		t.Error("re-registration must replace the control")
	}
	r.Register(Gain, newMem(0))
	names := r.Names()
	if len(names) != 2 || names[0] != Exposure || names[1] != Gain {
		t.Errorf("unexpected names %v", names)
	}
}

func TestRegistryMustGetPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustGet on a missing control must panic")
		}
	}()
	NewRegistry().MustGet("nope")
}

func TestKindOf(t *testing.T) {
	cases := []struct {
		c    Control
		want string
	}{
		{NewGated("x", newMem(0), Gate{Peer: newMem(0), Reason: "r"}), "gated"},
		{NewAutoDisabling("x", newMem(0), newMem(0)), "auto-disabling"},
		{NewConstValue("d", 1), "const"},
		{NewNotifying(newMem(0)), "notifying"},
		{newMem(0), "custom"},
	}
	for _, c := range cases {
		if got := KindOf(c.c); got != c.want {
			t.Errorf("KindOf = %q, want %q", got, c.want)
		}
	}
}
