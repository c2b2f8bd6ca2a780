package hdr

import (
	"github.com/dcam-project/dcam-go/pkg/control"
)

// Option is a control facade over one field of a shared Config. Distinct
// options on the same Config observe each other's writes immediately.
type Option struct {
	cfg        *Config
	field      Field
	rng        control.Range
	desc       string
	valueNames map[int]string
}

var _ control.Control = (*Option)(nil)

// NewOption creates the facade for one field. valueNames may be nil; when
// present it decorates Description with the name of discrete values.
func NewOption(cfg *Config, field Field, rng control.Range, desc string, valueNames map[int]string) *Option {
	return &Option{cfg: cfg, field: field, rng: rng, desc: desc, valueNames: valueNames}
}

// NewEnabledOption is the on/off switch of the bracketing feature.
func NewEnabledOption(cfg *Config) *Option {
	return NewOption(cfg, FieldEnabled,
		control.Range{Min: 0, Max: 1, Step: 1, Default: 0},
		"Enable or disable hardware exposure bracketing", nil)
}

// NewSequenceNameOption names the sub-preset slot of the sequence.
func NewSequenceNameOption(cfg *Config) *Option {
	return NewOption(cfg, FieldSequenceName,
		control.Range{Min: 0, Max: 3, Step: 1, Default: 1},
		"Name of the bracketing sequence", nil)
}

// NewSequenceSizeOption reports the bracketing depth.
func NewSequenceSizeOption(cfg *Config) *Option {
	return NewOption(cfg, FieldSequenceSize,
		control.Range{Min: 2, Max: 2, Step: 1, Default: 2},
		"Number of items in the bracketing sequence", nil)
}

// NewSequenceIDOption selects the sequence item being edited. 0 routes
// edits through the regular UVC path.
func NewSequenceIDOption(cfg *Config) *Option {
	return NewOption(cfg, FieldSequenceID,
		control.Range{Min: 0, Max: 2, Step: 1, Default: 0},
		"Sequence item selected for editing", map[int]string{
			0: "UVC",
			1: "1",
			2: "2",
		})
}

// NewExposureOption edits the exposure of the selected sequence item.
func NewExposureOption(cfg *Config) *Option {
	return NewOption(cfg, FieldExposure, cfg.ExposureRange(),
		"Exposure of the selected bracketing item", nil)
}

// NewGainOption edits the gain of the selected sequence item.
func NewGainOption(cfg *Config) *Option {
	return NewOption(cfg, FieldGain, cfg.GainRange(),
		"Gain of the selected bracketing item", nil)
}

// Query reads the field from the shared state.
func (o *Option) Query() (float64, error) {
	return o.cfg.Get(o.field), nil
}

// Set validates against the range and writes through to the shared state.
func (o *Option) Set(value float64) error {
	if !o.rng.Contains(value) {
		return control.RangeError(o.field.String(), value, o.rng)
	}
	return o.cfg.Set(o.field, value)
}

// Range returns the static range of this field.
func (o *Option) Range() control.Range {
	return o.rng
}

// Description returns the human-readable description, decorated with the
// current value name for discrete fields.
func (o *Option) Description() string {
	if o.valueNames == nil {
		return o.desc
	}
	v := o.cfg.Get(o.field)
	if name, ok := o.valueNames[int(v)]; ok {
		return o.desc + " (" + name + ")"
	}
	return o.desc
}

// ControlKind names the variant for traces.
func (o *Option) ControlKind() string { return "hdr" }
