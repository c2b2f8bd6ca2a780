package control

import "fmt"

// ReasonAutoExposureActive is the fixed refusal reason of auto-disabling
// controls.
const ReasonAutoExposureActive = "cannot be set while auto exposure is enabled"

// autoDisabling wraps a manual control that cannot be written while the
// auto exposure control reads enabled.
type autoDisabling struct {
	name  string
	inner Control
	auto  Control
}

// NewAutoDisabling wraps inner so that writes are refused while the auto
// exposure control reads non-zero. Nil arguments are a wiring bug and panic
// at construction.
func NewAutoDisabling(name string, inner, autoExposure Control) Control {
	if inner == nil || autoExposure == nil {
		panic(fmt.Sprintf("control: auto-disabling %q wired with nil control", name))
	}
	return &autoDisabling{name: name, inner: inner, auto: autoExposure}
}

func (a *autoDisabling) Query() (float64, error) {
	return a.inner.Query()
}

func (a *autoDisabling) Set(value float64) error {
	v, err := a.auto.Query()
	if err != nil {
		return fmt.Errorf("%s: querying auto exposure: %w", a.name, err)
	}
	if v != 0 {
		return &PolicyError{Control: a.name, Reason: ReasonAutoExposureActive}
	}
	return a.inner.Set(value)
}

func (a *autoDisabling) Range() Range        { return a.inner.Range() }
func (a *autoDisabling) Description() string { return a.inner.Description() }
func (a *autoDisabling) ControlKind() string { return "auto-disabling" }
