// Package calib fetches and decodes on-device calibration tables.
//
// Tables are immutable for the lifetime of a device session, so every
// fetch and every derived value is memoized: at most one firmware
// round-trip per table regardless of how many callers race for it.
package calib

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/dcam-project/dcam-go/pkg/firmware"
	"github.com/dcam-project/dcam-go/pkg/hwmon"
)

// TableID identifies an on-device calibration table.
type TableID uint32

// Calibration tables used by the depth module.
const (
	// CoefficientsTable is the legacy stereo calibration schema.
	CoefficientsTable TableID = 25
	// DepthCalibTable is the per-module depth calibration.
	DepthCalibTable TableID = 31
	// RGBCalibTable is the color sensor calibration.
	RGBCalibTable TableID = 32
)

// Coefficients table layout: a 16-byte header (version, type, size,
// param, crc), then left/right/rotation 3x3 float matrices, then the
// baseline field.
const (
	tableHeaderSize = 16
	baselineOffset  = tableHeaderSize + 3*36
	minCoefficients = baselineOffset + 4
)

// Extrinsics is a rigid transform between two sensors. Rotation is
// row-major, translation is in meters.
type Extrinsics struct {
	Rotation    [9]float32
	Translation [3]float32
}

// Resolver memoizes calibration tables and derived values for one device
// session. A reconnect means a new Resolver.
type Resolver struct {
	t  hwmon.Transport
	fw firmware.Version

	mu     sync.Mutex
	tables map[TableID]*tableFetch

	newTableOnce sync.Once
	newTable     []byte
	newTableErr  error

	extrOnce sync.Once
	extr     Extrinsics
	extrErr  error
}

type tableFetch struct {
	once sync.Once
	blob []byte
	err  error
}

// NewResolver creates a resolver bound to one transport session.
func NewResolver(t hwmon.Transport, fw firmware.Version) *Resolver {
	return &Resolver{t: t, fw: fw, tables: make(map[TableID]*tableFetch)}
}

// Table fetches one calibration table, at most once per session. All
// concurrent callers share the single round-trip and its outcome.
func (r *Resolver) Table(id TableID) ([]byte, error) {
	r.mu.Lock()
	f, ok := r.tables[id]
	if !ok {
		f = &tableFetch{}
		r.tables[id] = f
	}
	r.mu.Unlock()

	f.once.Do(func() {
		f.blob, f.err = r.t.Send(hwmon.NewCommand(hwmon.GETINTCAL, uint32(id)))
		if f.err != nil {
			f.err = fmt.Errorf("calib: fetching table %d: %w", id, f.err)
		}
	})
	return f.blob, f.err
}

// NewTable fetches the resolution-indexed calibration table. Firmware
// older than the table's introduction reports an empty table, not an
// error.
func (r *Resolver) NewTable() ([]byte, error) {
	r.newTableOnce.Do(func() {
		if !r.fw.AtLeast(firmware.NewCalibTable) {
			return
		}
		r.newTable, r.newTableErr = r.t.Send(hwmon.NewCommand(hwmon.RECPARAMSGET))
		if r.newTableErr != nil {
			r.newTableErr = fmt.Errorf("calib: fetching resolution-indexed table: %w", r.newTableErr)
		}
	})
	return r.newTable, r.newTableErr
}

// StereoBaselineMM returns the absolute stereo baseline in millimeters,
// from the coefficients table.
func (r *Resolver) StereoBaselineMM() (float64, error) {
	blob, err := r.Table(CoefficientsTable)
	if err != nil {
		return 0, err
	}
	if len(blob) < minCoefficients {
		return 0, fmt.Errorf("calib: coefficients table truncated at %d bytes", len(blob))
	}
	raw := binary.LittleEndian.Uint32(blob[baselineOffset:])
	baseline := float64(math.Float32frombits(raw))
	return math.Abs(baseline), nil
}

// LeftRightExtrinsics returns the transform from the left to the right
// imager: identity rotation, translation along X by the baseline.
// Computed once per session.
func (r *Resolver) LeftRightExtrinsics() (Extrinsics, error) {
	r.extrOnce.Do(func() {
		baseline, err := r.StereoBaselineMM()
		if err != nil {
			r.extrErr = err
			return
		}
		r.extr = Extrinsics{
			Rotation:    [9]float32{1, 0, 0, 0, 1, 0, 0, 0, 1},
			Translation: [3]float32{float32(baseline / 1000), 0, 0},
		}
	})
	return r.extr, r.extrErr
}
