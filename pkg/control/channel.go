package control

import "fmt"

// ControlID identifies a physical control on the sensor's control channel
// (a UVC extension/processing unit selector in practice).
type ControlID uint8

// Physical control selectors.
const (
	IDExposure        ControlID = 1
	IDGain            ControlID = 2
	IDAutoExposure    ControlID = 3
	IDLaserPower      ControlID = 4
	IDExternalTrigger ControlID = 5
	IDASICTemperature ControlID = 6
)

// Channel is the physical control surface of the sensor. It is implemented
// by the platform layer; this core only issues typed get/set/range calls
// against it.
type Channel interface {
	Get(id ControlID) (float64, error)
	Set(id ControlID, value float64) error
	Range(id ControlID) (Range, error)
}

// channelControl is a base control bound to one physical channel selector.
type channelControl struct {
	ch       Channel
	id       ControlID
	rng      Range
	desc     string
	readOnly bool
}

// NewChannel builds a base control bound to a physical channel selector.
// The range is read from the channel once, at construction.
func NewChannel(ch Channel, id ControlID, desc string) (Control, error) {
	rng, err := ch.Range(id)
	if err != nil {
		return nil, fmt.Errorf("control: reading range of channel control %d: %w", id, err)
	}
	return &channelControl{ch: ch, id: id, rng: rng, desc: desc}, nil
}

// NewReadOnlyChannel builds a read-only base control (e.g. a temperature
// readout) bound to a physical channel selector.
func NewReadOnlyChannel(ch Channel, id ControlID, desc string) (Control, error) {
	c, err := NewChannel(ch, id, desc)
	if err != nil {
		return nil, err
	}
	c.(*channelControl).readOnly = true
	return c, nil
}

func (c *channelControl) Query() (float64, error) {
	return c.ch.Get(c.id)
}

func (c *channelControl) Set(value float64) error {
	if c.readOnly {
		return fmt.Errorf("%s: %w", c.desc, ErrReadOnly)
	}
	if err := checkRange(value, c.rng); err != nil {
		return fmt.Errorf("%s: %w", c.desc, err)
	}
	return c.ch.Set(c.id, value)
}

func (c *channelControl) Range() Range        { return c.rng }
func (c *channelControl) Description() string { return c.desc }
func (c *channelControl) ControlKind() string { return "base" }
