// Package caps derives the hardware capability mask of a connected depth
// camera from its firmware status blob.
//
// The mask describes what the physical unit actually has (projector, RGB
// sensor, IMU variant, shutter type), independently of what the firmware
// version allows the host to do with it.
package caps

import (
	"log/slog"
	"strings"

	"github.com/dcam-project/dcam-go/pkg/product"
)

// Mask is a bitset over the closed capability enumeration. The zero value
// is Undefined: nothing is known about the unit.
type Mask uint32

// Capability bits.
const (
	ActiveProjector Mask = 1 << iota
	RGBSensor
	IMUSensor
	IMUBMI055
	IMUBMI085
	FisheyeSensor
	RollingShutter
	GlobalShutter
	InterCamHWSync
)

// Undefined is the empty mask.
const Undefined Mask = 0

// Has reports whether every bit of c is set in m.
func (m Mask) Has(c Mask) bool {
	return m&c == c
}

// String returns a "|"-joined list of set capability names.
func (m Mask) String() string {
	if m == Undefined {
		return "UNDEFINED"
	}
	names := []struct {
		bit  Mask
		name string
	}{
		{ActiveProjector, "ACTIVE_PROJECTOR"},
		{RGBSensor, "RGB_SENSOR"},
		{IMUSensor, "IMU_SENSOR"},
		{IMUBMI055, "IMU_BMI055"},
		{IMUBMI085, "IMU_BMI085"},
		{FisheyeSensor, "FISHEYE_SENSOR"},
		{RollingShutter, "ROLLING_SHUTTER"},
		{GlobalShutter, "GLOBAL_SHUTTER"},
		{InterCamHWSync, "INTERCAM_HW_SYNC"},
	}
	var set []string
	for _, n := range names {
		if m.Has(n.bit) {
			set = append(set, n.name)
		}
	}
	return strings.Join(set, "|")
}

// Firmware status blob byte positions. These are fixed offsets of the GVD
// response and belong to the firmware's wire contract.
const (
	VersionOffset      = 12  // 4 bytes, components reversed
	LockedOffset       = 25  // non-zero when the flash is locked
	ModuleSerialOffset = 48  // 6 bytes
	ModuleSerialSize   = 6
	ASICSerialOffset   = 64 // 8 bytes
	ASICSerialSize     = 8
	FisheyeLoOffset    = 112
	FisheyeHiOffset    = 113
	IMUChipIDOffset    = 124
	SensorTypeOffset   = 166 // 1=rolling shutter, 2=global shutter
	ProjectorOffset    = 170
	RGBSensorOffset    = 174
	IMUSensorOffset    = 178
)

// IMU accelerometer chip IDs as reported at IMUChipIDOffset.
const (
	ChipIDBMI055 = 0xFA
	ChipIDBMI085 = 0x1F
)

// Decode derives the capability mask from a firmware status blob. The
// function is total: unrecognized byte patterns leave the corresponding
// bits unset, an unresolvable IMU variant is reported as a warning only,
// and a short blob yields whatever could be read before the end.
func Decode(blob []byte, pid product.ID) Mask {
	mask := Undefined

	if byteAt(blob, ProjectorOffset) != 0 {
		mask |= ActiveProjector
	}
	if byteAt(blob, RGBSensorOffset) != 0 {
		mask |= RGBSensor
	}
	if byteAt(blob, IMUSensorOffset) != 0 {
		mask |= IMUSensor
		mask |= imuVariant(byteAt(blob, IMUChipIDOffset), pid)
	}
	if len(blob) > FisheyeHiOffset && blob[FisheyeLoOffset]&blob[FisheyeHiOffset] != 0xFF {
		mask |= FisheyeSensor
	}
	switch byteAt(blob, SensorTypeOffset) {
	case 1:
		mask |= RollingShutter
	case 2:
		mask |= GlobalShutter
	}
	// The sync-out option never made it into the D405 hardware.
	if pid != product.D405 {
		mask |= InterCamHWSync
	}

	return mask
}

// imuVariant classifies the IMU chip by its chip ID byte, falling back to
// the SKU manifest when the byte is not recognized.
func imuVariant(chipID byte, pid product.ID) Mask {
	switch chipID {
	case ChipIDBMI055:
		return IMUBMI055
	case ChipIDBMI085:
		return IMUBMI085
	}
	switch product.IMUFallback(pid) {
	case product.IMUBMI055:
		return IMUBMI055
	case product.IMUBMI085:
		return IMUBMI085
	}
	slog.Warn("IMU sensor variant is undefined",
		"pid", pid.String(),
		"imu_chip_id", chipID)
	return Undefined
}

func byteAt(blob []byte, offset int) byte {
	if offset >= len(blob) {
		return 0
	}
	return blob[offset]
}
