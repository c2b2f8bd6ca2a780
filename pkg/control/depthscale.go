package control

import (
	"fmt"

	"github.com/dcam-project/dcam-go/pkg/hwmon"
)

// depthScaleRange is the writable depth unit domain in meters per unit.
var depthScaleRange = Range{Min: 0.0001, Max: 0.01, Step: 0.000001, Default: 0.001}

// depthScale rewrites the meters-per-unit factor of the depth stream on
// advanced-mode devices. The wire value is micrometers per unit.
type depthScale struct {
	t hwmon.Transport
}

// NewDepthScale builds the writable depth-units control.
func NewDepthScale(t hwmon.Transport) Control {
	return &depthScale{t: t}
}

func (d *depthScale) Query() (float64, error) {
	resp, err := d.t.Send(hwmon.NewCommand(hwmon.DUNITSGET))
	if err != nil {
		return 0, fmt.Errorf("querying depth units: %w", err)
	}
	um, err := hwmon.ReadUint32(resp, 0)
	if err != nil {
		return 0, fmt.Errorf("querying depth units: %w", err)
	}
	return float64(um) * 1e-6, nil
}

func (d *depthScale) Set(value float64) error {
	if err := checkRange(value, depthScaleRange); err != nil {
		return fmt.Errorf("depth units: %w", err)
	}
	um := uint32(value*1e6 + 0.5)
	if _, err := d.t.Send(hwmon.NewCommand(hwmon.DUNITSSET, um)); err != nil {
		return fmt.Errorf("setting depth units: %w", err)
	}
	return nil
}

func (d *depthScale) Range() Range        { return depthScaleRange }
func (d *depthScale) Description() string { return "Number of meters represented by a single depth unit" }
func (d *depthScale) ControlKind() string { return "depth-scale" }
