package control

import (
	"fmt"

	"github.com/dcam-project/dcam-go/pkg/hwmon"
)

// emitterSubPresetID is the sub-preset slot reserved for the alternating
// emitter pattern; slots 4-14 are for internal firmware use.
const emitterSubPresetID = 15

// toggleRange is the domain of every on/off control.
var toggleRange = Range{Min: 0, Max: 1, Step: 1, Default: 0}

// alternatingEmitter toggles the laser pattern that alternates the emitter
// per frame. Firmware since the HDR generation identifies the pattern by
// sub-preset ID; older firmware exposes only the opaque sub-preset blob.
type alternatingEmitter struct {
	t             hwmon.Transport
	useSequenceID bool
}

// NewAlternatingEmitter builds the alternating emitter control.
// useSequenceID selects the sub-preset-ID wire encoding introduced with the
// HDR firmware generation.
func NewAlternatingEmitter(t hwmon.Transport, useSequenceID bool) Control {
	return &alternatingEmitter{t: t, useSequenceID: useSequenceID}
}

func (a *alternatingEmitter) Query() (float64, error) {
	if a.useSequenceID {
		resp, err := a.t.Send(hwmon.NewCommand(hwmon.GETSUBPRESETID))
		if err != nil {
			return 0, fmt.Errorf("querying alternating emitter: %w", err)
		}
		if len(resp) > 0 && resp[0] == emitterSubPresetID {
			return 1, nil
		}
		return 0, nil
	}

	resp, err := a.t.Send(hwmon.NewCommand(hwmon.GETSUBPRESET))
	if err != nil {
		return 0, fmt.Errorf("querying alternating emitter: %w", err)
	}
	if len(resp) > 0 && resp[0] != 0 {
		return 1, nil
	}
	return 0, nil
}

func (a *alternatingEmitter) Set(value float64) error {
	if err := checkRange(value, toggleRange); err != nil {
		return fmt.Errorf("alternating emitter: %w", err)
	}

	cmd := hwmon.NewCommand(hwmon.SETSUBPRESET)
	if value != 0 {
		cmd.Data = alternatingEmitterPreset()
	}
	if _, err := a.t.Send(cmd); err != nil {
		return fmt.Errorf("setting alternating emitter: %w", err)
	}
	return nil
}

// alternatingEmitterPreset builds the two-item sub-preset cycling the laser
// off and on, repeated indefinitely.
func alternatingEmitterPreset() []byte {
	return []byte{
		emitterSubPresetID, // preset slot
		0,                  // iterations, 0 = infinite
		2,                  // item count
		0,                  // item 0: laser off
		1,                  // item 1: laser on
	}
}

func (a *alternatingEmitter) Range() Range { return toggleRange }
func (a *alternatingEmitter) Description() string {
	return "Alternating emitter pattern, toggled on/off per frame"
}
func (a *alternatingEmitter) ControlKind() string { return "alternating-emitter" }

// emitterAlwaysOn holds the projector continuously lit. The LASERONCONST
// command uses Param1 as direction: 0 reads the state, 1 writes it.
type emitterAlwaysOn struct {
	t hwmon.Transport
}

// NewEmitterAlwaysOn builds the emitter-always-on control.
func NewEmitterAlwaysOn(t hwmon.Transport) Control {
	return &emitterAlwaysOn{t: t}
}

func (e *emitterAlwaysOn) Query() (float64, error) {
	resp, err := e.t.Send(hwmon.NewCommand(hwmon.LASERONCONST, 0))
	if err != nil {
		return 0, fmt.Errorf("querying emitter always on: %w", err)
	}
	if len(resp) > 0 && resp[0] != 0 {
		return 1, nil
	}
	return 0, nil
}

func (e *emitterAlwaysOn) Set(value float64) error {
	if err := checkRange(value, toggleRange); err != nil {
		return fmt.Errorf("emitter always on: %w", err)
	}
	if _, err := e.t.Send(hwmon.NewCommand(hwmon.LASERONCONST, 1, uint32(value))); err != nil {
		return fmt.Errorf("setting emitter always on: %w", err)
	}
	return nil
}

func (e *emitterAlwaysOn) Range() Range        { return toggleRange }
func (e *emitterAlwaysOn) Description() string { return "Keep the emitter continuously on" }
func (e *emitterAlwaysOn) ControlKind() string { return "emitter-always-on" }

// basicEmitter is the legacy plain on/off toggle, only reachable on
// experimental firmware builds.
type basicEmitter struct {
	t hwmon.Transport
}

// NewBasicEmitter builds the legacy emitter on/off control. The
// EMITTERTOGGLE command uses Param1 as direction: 0 reads, 1 writes.
func NewBasicEmitter(t hwmon.Transport) Control {
	return &basicEmitter{t: t}
}

func (b *basicEmitter) Query() (float64, error) {
	resp, err := b.t.Send(hwmon.NewCommand(hwmon.EMITTERTOGGLE, 0))
	if err != nil {
		return 0, fmt.Errorf("querying emitter on/off: %w", err)
	}
	if len(resp) > 0 && resp[0] != 0 {
		return 1, nil
	}
	return 0, nil
}

func (b *basicEmitter) Set(value float64) error {
	if err := checkRange(value, toggleRange); err != nil {
		return fmt.Errorf("emitter on/off: %w", err)
	}
	if _, err := b.t.Send(hwmon.NewCommand(hwmon.EMITTERTOGGLE, 1, uint32(value))); err != nil {
		return fmt.Errorf("setting emitter on/off: %w", err)
	}
	return nil
}

func (b *basicEmitter) Range() Range        { return toggleRange }
func (b *basicEmitter) Description() string { return "Emitter on/off" }
func (b *basicEmitter) ControlKind() string { return "basic-emitter" }
