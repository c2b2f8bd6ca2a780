// Package control models the composable control objects a depth camera
// sensor exposes.
//
// A control is a named float-valued knob with a range, a read operation and
// a write operation. Controls compose: a base control bound to a physical
// channel can be wrapped by a conditional control (HDR routing), an
// auto-disabling control (rejected while auto exposure runs) and a gated
// control (rejected while a peer control holds). Which wrappers are applied
// is decided once per device connection by the composition engine in
// pkg/device.
package control

import (
	"errors"
	"fmt"
)

// Registered control names.
const (
	Exposure             = "exposure"
	Gain                 = "gain"
	EnableAutoExposure   = "enable-auto-exposure"
	HDREnabled           = "hdr-enabled"
	SequenceID           = "sequence-id"
	SequenceSize         = "sequence-size"
	SequenceName         = "sequence-name"
	EmitterOnOff         = "emitter-on-off"
	EmitterAlwaysOn      = "emitter-always-on"
	InterCamSyncMode     = "inter-cam-sync-mode"
	DepthUnits           = "depth-units"
	StereoBaseline       = "stereo-baseline"
	OutputTriggerEnabled = "output-trigger-enabled"
	ASICTemperature      = "asic-temperature"
)

// Range describes the value domain of a control.
type Range struct {
	Min     float64
	Max     float64
	Step    float64
	Default float64
}

// Contains reports whether v lies within the range bounds.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// ErrReadOnly is returned by Set on controls without a write operation.
var ErrReadOnly = errors.New("control is read-only")

// Control is the uniform surface of every control variant.
type Control interface {
	// Query reads the current value.
	Query() (float64, error)

	// Set writes a new value. A *PolicyError return means the write was
	// refused by a gating rule and the stored value is unchanged; any
	// other error is a transport or validation failure.
	Set(value float64) error

	// Range returns the value domain.
	Range() Range

	// Description returns the human-readable purpose of the control.
	Description() string
}

// PolicyError reports a write refused by a gating rule. It is a policy
// outcome, not a transport failure: the device was never asked to change
// anything.
type PolicyError struct {
	// Control is the name of the control the write targeted.
	Control string
	// Reason is the registered human-readable refusal reason.
	Reason string
}

// Error implements the error interface.
func (e *PolicyError) Error() string {
	return fmt.Sprintf("%s: %s", e.Control, e.Reason)
}

// IsPolicy reports whether err is a gating refusal.
func IsPolicy(err error) bool {
	var pe *PolicyError
	return errors.As(err, &pe)
}

// Kinded is implemented by control variants to name themselves in traces.
type Kinded interface {
	ControlKind() string
}

// KindOf names the behavioral variant of a control ("base", "conditional",
// "gated", ...). Unknown implementations report "custom".
func KindOf(c Control) string {
	if k, ok := c.(Kinded); ok {
		return k.ControlKind()
	}
	return "custom"
}

// RangeError reports a write outside a control's range.
func RangeError(name string, v float64, r Range) error {
	return fmt.Errorf("%s: value %g out of range [%g..%g]", name, v, r.Min, r.Max)
}

// checkRange validates a candidate value against a control's range.
func checkRange(v float64, r Range) error {
	if !r.Contains(v) {
		return fmt.Errorf("value %g out of range [%g..%g]", v, r.Min, r.Max)
	}
	return nil
}
