package caps

import (
	"testing"

	"github.com/dcam-project/dcam-go/pkg/product"
)

// statusBlob builds a BufferSize-like blob with no capabilities reported.
func statusBlob() []byte {
	blob := make([]byte, 1024)
	// Both fisheye presence bytes 0xFF means "no fisheye".
	blob[FisheyeLoOffset] = 0xFF
	blob[FisheyeHiOffset] = 0xFF
	return blob
}

func TestDecodeBasicFlags(t *testing.T) {
	blob := statusBlob()
	blob[ProjectorOffset] = 1
	blob[RGBSensorOffset] = 1
	blob[SensorTypeOffset] = 2

	mask := Decode(blob, product.D455)

	for _, want := range []Mask{ActiveProjector, RGBSensor, GlobalShutter, InterCamHWSync} {
		if !mask.Has(want) {
			t.Errorf("mask %s missing %s", mask, want)
		}
	}
	if mask.Has(RollingShutter) {
		t.Error("rolling shutter must not be set for sensor type 2")
	}
	if mask.Has(IMUSensor) {
		t.Error("IMU must not be set without the IMU byte")
	}
}

func TestDecodeShutterUnknownValue(t *testing.T) {
	blob := statusBlob()
	blob[SensorTypeOffset] = 7

	mask := Decode(blob, product.D435)
	if mask.Has(RollingShutter) || mask.Has(GlobalShutter) {
		t.Errorf("unknown shutter byte must leave both shutter bits unset, got %s", mask)
	}
}

func TestDecodeIMUChipID(t *testing.T) {
	cases := []struct {
		name    string
		chipID  byte
		pid     product.ID
		want    Mask
		notWant Mask
	}{
		{"bmi055 by chip id", 0xFA, product.D415, IMUBMI055, IMUBMI085},
		{"bmi085 by chip id", 0x1F, product.D415, IMUBMI085, IMUBMI055},
		{"bmi055 by pid fallback", 0x00, product.D435i, IMUBMI055, IMUBMI085},
		{"bmi085 by pid fallback", 0x00, product.D455, IMUBMI085, IMUBMI055},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			blob := statusBlob()
			blob[IMUSensorOffset] = 1
			blob[IMUChipIDOffset] = c.chipID

			mask := Decode(blob, c.pid)
			if !mask.Has(IMUSensor) {
				t.Fatal("IMU bit must be set")
			}
			if !mask.Has(c.want) {
				t.Errorf("mask %s missing %s", mask, c.want)
			}
			if mask.Has(c.notWant) {
				t.Errorf("mask %s must not contain %s", mask, c.notWant)
			}
		})
	}
}

func TestDecodeIMUUnresolved(t *testing.T) {
	blob := statusBlob()
	blob[IMUSensorOffset] = 1
	blob[IMUChipIDOffset] = 0x42 // unknown chip, D415 has no manifest fallback

	mask := Decode(blob, product.D415)
	if !mask.Has(IMUSensor) {
		t.Error("IMU presence bit must still be set")
	}
	if mask.Has(IMUBMI055) || mask.Has(IMUBMI085) {
		t.Errorf("no variant bit may be set for an unresolved chip, got %s", mask)
	}
}

func TestDecodeFisheye(t *testing.T) {
	blob := statusBlob()
	blob[FisheyeLoOffset] = 0x01
	blob[FisheyeHiOffset] = 0xFF

	if mask := Decode(blob, product.D435); !mask.Has(FisheyeSensor) {
		t.Error("fisheye must be set when the AND of presence bytes differs from 0xFF")
	}
	if mask := Decode(statusBlob(), product.D435); mask.Has(FisheyeSensor) {
		t.Error("fisheye must not be set when both presence bytes are 0xFF")
	}
}

func TestDecodeInterCamSyncExclusion(t *testing.T) {
	blob := statusBlob()
	for _, pid := range product.All() {
		mask := Decode(blob, pid)
		if pid == product.D405 {
			if mask.Has(InterCamHWSync) {
				t.Errorf("%s: sync capability must be unset", pid)
			}
		} else if !mask.Has(InterCamHWSync) {
			t.Errorf("%s: sync capability must be set", pid)
		}
	}
}

func TestDecodeShortBlob(t *testing.T) {
	// A truncated blob must decode without panicking and without setting
	// flags it could not read.
	mask := Decode([]byte{0x01, 0x02}, product.D435)
	if mask.Has(ActiveProjector) || mask.Has(FisheyeSensor) || mask.Has(IMUSensor) {
		t.Errorf("short blob set spurious capability bits: %s", mask)
	}
}

func TestMaskString(t *testing.T) {
	if got := Undefined.String(); got != "UNDEFINED" {
		t.Errorf("expected UNDEFINED, got %q", got)
	}
	m := GlobalShutter | ActiveProjector
	if got := m.String(); got != "ACTIVE_PROJECTOR|GLOBAL_SHUTTER" {
		t.Errorf("unexpected rendering %q", got)
	}
}
