package control

import "fmt"

// Condition selects which branch of a conditional control is live. The
// HDR configuration state implements it.
type Condition interface {
	Enabled() bool
}

// conditional routes reads and writes to one of two controls depending on
// a shared condition. Used to redirect exposure and gain into the HDR
// bracketing sequence while HDR is enabled.
type conditional struct {
	cond    Condition
	whenOn  Control
	whenOff Control
}

// NewConditional builds a control that behaves as whenOn while cond is
// enabled and as whenOff otherwise. Nil arguments panic at construction.
func NewConditional(cond Condition, whenOn, whenOff Control) Control {
	if cond == nil || whenOn == nil || whenOff == nil {
		panic("control: conditional wired with nil branch")
	}
	return &conditional{cond: cond, whenOn: whenOn, whenOff: whenOff}
}

func (c *conditional) active() Control {
	if c.cond.Enabled() {
		return c.whenOn
	}
	return c.whenOff
}

func (c *conditional) Query() (float64, error) {
	return c.active().Query()
}

func (c *conditional) Set(value float64) error {
	return c.active().Set(value)
}

// Range reports the base branch's range; both branches are constructed
// with the same physical range.
func (c *conditional) Range() Range { return c.whenOff.Range() }

func (c *conditional) Description() string {
	return fmt.Sprintf("%s (HDR-aware)", c.whenOff.Description())
}

func (c *conditional) ControlKind() string { return "conditional" }
