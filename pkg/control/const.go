package control

import (
	"fmt"
	"sync"
)

// constControl is a read-only control whose value is computed lazily once.
type constControl struct {
	desc  string
	value func() float64
}

// NewConst builds a read-only control around a lazily evaluated value. The
// value function runs at most once, on first use.
func NewConst(desc string, value func() float64) Control {
	return &constControl{desc: desc, value: sync.OnceValue(value)}
}

// NewConstValue builds a read-only control around a fixed literal.
func NewConstValue(desc string, value float64) Control {
	return &constControl{desc: desc, value: func() float64 { return value }}
}

func (c *constControl) Query() (float64, error) {
	return c.value(), nil
}

func (c *constControl) Set(float64) error {
	return fmt.Errorf("%s: %w", c.desc, ErrReadOnly)
}

func (c *constControl) Range() Range {
	v := c.value()
	return Range{Min: v, Max: v, Step: 0, Default: v}
}

func (c *constControl) Description() string { return c.desc }
func (c *constControl) ControlKind() string { return "const" }
