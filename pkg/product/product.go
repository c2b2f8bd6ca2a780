// Package product identifies depth camera SKUs and their static traits.
//
// Traits that vary per SKU but not per firmware (marketing name, default
// depth unit, IMU population) live in an embedded manifest rather than in
// code, so adding a SKU is a data change.
package product

import "fmt"

// ID is the USB product identifier of a camera SKU.
type ID uint16

// Known SKU product IDs.
const (
	D400    ID = 0x0AD1
	D410    ID = 0x0AD2
	D415    ID = 0x0AD3
	D430    ID = 0x0AD4
	D435    ID = 0x0B07
	D435i   ID = 0x0B3A
	D416    ID = 0x0B49
	D416RGB ID = 0x0B52
	D465    ID = 0x0B4D
	D405    ID = 0x0B5B
	D455    ID = 0x0B5C
	D585    ID = 0x0B6A
	S585    ID = 0x0B6B
)

// Line is the product line reported for every SKU in this family.
const Line = "D400"

// String returns the ID in the conventional 4-digit hex form.
func (id ID) String() string {
	return fmt.Sprintf("0x%04X", uint16(id))
}

// IMUVariant names the IMU chip populated on a SKU.
type IMUVariant uint8

const (
	// IMUNone means the manifest does not pin an IMU variant for the SKU.
	IMUNone IMUVariant = iota
	// IMUBMI055 is the BMI055 accelerometer/gyro combo.
	IMUBMI055
	// IMUBMI085 is the BMI085 accelerometer/gyro combo.
	IMUBMI085
)

// String returns the variant name.
func (v IMUVariant) String() string {
	switch v {
	case IMUBMI055:
		return "BMI055"
	case IMUBMI085:
		return "BMI085"
	default:
		return "NONE"
	}
}

// Name returns the marketing name of a SKU, or a generic family name for
// product IDs missing from the manifest.
func Name(id ID) string {
	if sku, ok := lookup(id); ok {
		return sku.Name
	}
	return "D4xx"
}

// DefaultDepthUnits returns the SKU's depth unit in meters, used when the
// depth scale is not runtime-adjustable.
func DefaultDepthUnits(id ID) float64 {
	if sku, ok := lookup(id); ok && sku.DepthUnits > 0 {
		return sku.DepthUnits
	}
	return 0.001
}

// IMUFallback returns the IMU variant the manifest pins for a SKU. Used
// when the status blob reports an IMU but an unrecognized chip ID.
func IMUFallback(id ID) IMUVariant {
	sku, ok := lookup(id)
	if !ok {
		return IMUNone
	}
	switch sku.IMU {
	case "bmi055":
		return IMUBMI055
	case "bmi085":
		return IMUBMI085
	default:
		return IMUNone
	}
}
