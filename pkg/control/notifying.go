package control

import "sync"

// Notifying wraps a control and pushes every successfully written value to
// registered observers. The depth sensor uses it to keep its cached depth
// scale in sync with the depth-units control.
type Notifying struct {
	inner Control

	mu        sync.Mutex
	observers []func(float64)
}

// NewNotifying wraps inner with observer notification on successful writes.
func NewNotifying(inner Control) *Notifying {
	if inner == nil {
		panic("control: notifying wraps nil control")
	}
	return &Notifying{inner: inner}
}

// AddObserver registers a callback invoked after every successful Set.
// Callbacks run on the writer's goroutine and must not block.
func (n *Notifying) AddObserver(fn func(value float64)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.observers = append(n.observers, fn)
}

func (n *Notifying) Query() (float64, error) {
	return n.inner.Query()
}

func (n *Notifying) Set(value float64) error {
	if err := n.inner.Set(value); err != nil {
		return err
	}

	n.mu.Lock()
	observers := make([]func(float64), len(n.observers))
	copy(observers, n.observers)
	n.mu.Unlock()

	for _, fn := range observers {
		fn(value)
	}
	return nil
}

func (n *Notifying) Range() Range        { return n.inner.Range() }
func (n *Notifying) Description() string { return n.inner.Description() }
func (n *Notifying) ControlKind() string { return "notifying" }
