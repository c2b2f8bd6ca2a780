// Package hdr owns the shared state of the hardware exposure-bracketing
// feature.
//
// Several controls (hdr-enabled, sequence id/size/name, exposure, gain)
// are facades over one Config instance; they never duplicate its state.
// The Config flushes the bracketing sequence to the firmware as a
// sub-preset whenever it changes while enabled.
package hdr

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/dcam-project/dcam-go/pkg/control"
	"github.com/dcam-project/dcam-go/pkg/hwmon"
)

// hdrSubPresetID is the sub-preset slot used for the bracketing sequence.
const hdrSubPresetID = 2

// sequenceItems is the fixed bracketing depth of current firmware.
const sequenceItems = 2

// Field selects which part of the shared state a control facade reads and
// writes.
type Field uint8

const (
	// FieldEnabled is the on/off flag of the whole feature.
	FieldEnabled Field = iota
	// FieldSequenceID selects the sequence item being edited; 0 routes
	// edits through the regular UVC path.
	FieldSequenceID
	// FieldSequenceSize is the bracketing depth.
	FieldSequenceSize
	// FieldSequenceName is the sub-preset slot name.
	FieldSequenceName
	// FieldExposure is the exposure of the selected sequence item.
	FieldExposure
	// FieldGain is the gain of the selected sequence item.
	FieldGain
)

// String returns the field name.
func (f Field) String() string {
	switch f {
	case FieldEnabled:
		return "hdr-enabled"
	case FieldSequenceID:
		return "sequence-id"
	case FieldSequenceSize:
		return "sequence-size"
	case FieldSequenceName:
		return "sequence-name"
	case FieldExposure:
		return "hdr-exposure"
	case FieldGain:
		return "hdr-gain"
	default:
		return "unknown"
	}
}

// Config is the shared exposure-bracketing state of one sensor. Create it
// once, when the firmware and capability checks pass, and share it across
// every dependent control. All accessors are synchronized.
type Config struct {
	mu sync.Mutex

	t hwmon.Transport

	enabled    bool
	name       float64
	sequenceID float64

	exposure [sequenceItems]float64
	gain     [sequenceItems]float64

	exposureRange control.Range
	gainRange     control.Range
}

// NewConfig creates the bracketing state for one sensor. The exposure and
// gain ranges are the physical channel ranges; sequence items default to
// the channel defaults.
func NewConfig(t hwmon.Transport, exposureRange, gainRange control.Range) *Config {
	c := &Config{
		t:             t,
		name:          1,
		exposureRange: exposureRange,
		gainRange:     gainRange,
	}
	for i := 0; i < sequenceItems; i++ {
		c.exposure[i] = exposureRange.Default
		c.gain[i] = gainRange.Default
	}
	return c
}

// Enabled reports whether bracketing is currently on. It implements
// control.Condition for the conditional exposure and gain wrappers.
func (c *Config) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

// Get reads one field of the shared state.
func (c *Config) Get(f Field) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch f {
	case FieldEnabled:
		if c.enabled {
			return 1
		}
		return 0
	case FieldSequenceID:
		return c.sequenceID
	case FieldSequenceSize:
		return sequenceItems
	case FieldSequenceName:
		return c.name
	case FieldExposure:
		return c.exposure[c.itemIndex()]
	case FieldGain:
		return c.gain[c.itemIndex()]
	default:
		return 0
	}
}

// Set writes one field of the shared state. Enabling the feature, or
// editing a sequence item while enabled, flushes the sub-preset to the
// firmware.
func (c *Config) Set(f Field, value float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch f {
	case FieldEnabled:
		enable := value != 0
		if err := c.flushLocked(enable); err != nil {
			return err
		}
		c.enabled = enable
		return nil
	case FieldSequenceID:
		c.sequenceID = value
		return nil
	case FieldSequenceSize:
		if value != sequenceItems {
			return fmt.Errorf("hdr: sequence size %g not supported", value)
		}
		return nil
	case FieldSequenceName:
		c.name = value
		return nil
	case FieldExposure:
		c.exposure[c.itemIndex()] = value
		return c.reflushLocked()
	case FieldGain:
		c.gain[c.itemIndex()] = value
		return c.reflushLocked()
	default:
		return fmt.Errorf("hdr: unknown field %d", f)
	}
}

// itemIndex maps the sequence ID to a storage slot. ID 0 (UVC
// passthrough) edits the first item.
func (c *Config) itemIndex() int {
	idx := int(c.sequenceID) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= sequenceItems {
		idx = sequenceItems - 1
	}
	return idx
}

// reflushLocked re-uploads the sub-preset when an item changed while the
// feature is live.
func (c *Config) reflushLocked() error {
	if !c.enabled {
		return nil
	}
	return c.flushLocked(true)
}

// flushLocked uploads the bracketing sub-preset, or cancels it when
// enable is false.
func (c *Config) flushLocked(enable bool) error {
	cmd := hwmon.NewCommand(hwmon.SETSUBPRESET)
	if enable {
		cmd.Data = c.subPresetLocked()
	}
	if _, err := c.t.Send(cmd); err != nil {
		return fmt.Errorf("hdr: flushing sub-preset: %w", err)
	}
	return nil
}

// subPresetLocked serializes the sequence: a 3-byte header (slot,
// iterations, item count) followed by exposure/gain pairs as
// little-endian u32.
func (c *Config) subPresetLocked() []byte {
	buf := make([]byte, 3+sequenceItems*8)
	buf[0] = hdrSubPresetID
	buf[1] = 0 // iterations, 0 = infinite
	buf[2] = sequenceItems
	for i := 0; i < sequenceItems; i++ {
		binary.LittleEndian.PutUint32(buf[3+i*8:], uint32(c.exposure[i]))
		binary.LittleEndian.PutUint32(buf[7+i*8:], uint32(c.gain[i]))
	}
	return buf
}

// ExposureRange returns the physical exposure range shared with the base
// control.
func (c *Config) ExposureRange() control.Range { return c.exposureRange }

// GainRange returns the physical gain range shared with the base control.
func (c *Config) GainRange() control.Range { return c.gainRange }
