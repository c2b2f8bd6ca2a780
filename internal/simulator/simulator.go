// Package simulator provides an in-memory camera for tests and demo
// tools: a hardware monitor transport and a control channel that answer
// from a configurable device model instead of real hardware.
package simulator

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/dcam-project/dcam-go/pkg/caps"
	"github.com/dcam-project/dcam-go/pkg/control"
	"github.com/dcam-project/dcam-go/pkg/firmware"
	"github.com/dcam-project/dcam-go/pkg/hwmon"
	"github.com/dcam-project/dcam-go/pkg/product"
)

// Model describes the device the simulator pretends to be.
type Model struct {
	// Firmware is the version string reported in the status blob.
	// Components must fit a byte.
	Firmware string

	// PID is the simulated product ID.
	PID product.ID

	Projector     bool
	RGB           bool
	IMU           bool
	IMUChipID     byte
	Fisheye       bool
	GlobalShutter bool
	Locked        bool

	// BaselineMM is the stereo baseline written into the coefficients
	// calibration table. Zero defaults to 50.
	BaselineMM float32

	// DepthUnitsMicro is the initial depth unit in micrometers. Zero
	// defaults to 1000 (1 mm).
	DepthUnitsMicro uint32
}

// D455 returns a model of a current global-shutter SKU with projector,
// RGB and IMU, on HDR-capable firmware.
func D455() Model {
	return Model{
		Firmware:      "5.12.8.100",
		PID:           product.D455,
		Projector:     true,
		RGB:           true,
		IMU:           true,
		IMUChipID:     caps.ChipIDBMI085,
		GlobalShutter: true,
		BaselineMM:    95,
	}
}

// moduleSerial and asicSerial are the raw serial bytes every simulated
// device reports.
var (
	moduleSerial = [6]byte{0x01, 0x23, 0x45, 0x67, 0x89, 0xAB}
	asicSerial   = [8]byte{0xDE, 0xAD, 0xBE, 0xEF, 0x00, 0x11, 0x22, 0x33}
)

// Simulator answers hardware monitor commands and control channel calls
// from a Model. It implements hwmon.Transport and control.Channel.
type Simulator struct {
	mu    sync.Mutex
	model Model
	calls map[hwmon.Opcode]int

	subPreset       []byte
	emitterAlwaysOn uint32
	basicEmitter    uint32
	syncMode        uint32
	depthUnitsMicro uint32

	values map[control.ControlID]float64
	ranges map[control.ControlID]control.Range
	sets   map[control.ControlID]int
}

var (
	_ hwmon.Transport = (*Simulator)(nil)
	_ control.Channel = (*Simulator)(nil)
)

// New creates a simulator for a model. It panics on an unparseable
// firmware string; the model is test input, not runtime data.
func New(model Model) *Simulator {
	firmware.MustParse(model.Firmware)
	if model.DepthUnitsMicro == 0 {
		model.DepthUnitsMicro = 1000
	}
	if model.BaselineMM == 0 {
		model.BaselineMM = 50
	}
	s := &Simulator{
		model:           model,
		calls:           make(map[hwmon.Opcode]int),
		depthUnitsMicro: model.DepthUnitsMicro,
		values:          make(map[control.ControlID]float64),
		sets:            make(map[control.ControlID]int),
		ranges: map[control.ControlID]control.Range{
			control.IDExposure:        {Min: 1, Max: 165000, Step: 1, Default: 8500},
			control.IDGain:            {Min: 16, Max: 248, Step: 1, Default: 16},
			control.IDAutoExposure:    {Min: 0, Max: 1, Step: 1, Default: 1},
			control.IDLaserPower:      {Min: 0, Max: 360, Step: 30, Default: 150},
			control.IDExternalTrigger: {Min: 0, Max: 1, Step: 1, Default: 0},
			control.IDASICTemperature: {Min: -40, Max: 125, Step: 1, Default: 35},
		},
	}
	for id, rng := range s.ranges {
		s.values[id] = rng.Default
	}
	return s
}

// SetCount reports how many writes the control channel received for a
// control.
func (s *Simulator) SetCount(id control.ControlID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sets[id]
}

// CallCount reports how many commands with the given opcode were
// received.
func (s *Simulator) CallCount(op hwmon.Opcode) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// Send implements hwmon.Transport.
func (s *Simulator) Send(cmd hwmon.Command) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[cmd.Opcode]++

	switch cmd.Opcode {
	case hwmon.GVD:
		return s.statusBlob(), nil

	case hwmon.GETINTCAL:
		return s.calibTable(cmd.Param1)

	case hwmon.RECPARAMSGET:
		// Resolution-indexed table; content is opaque to the engine.
		return make([]byte, 512), nil

	case hwmon.SETSUBPRESET:
		s.subPreset = append([]byte(nil), cmd.Data...)
		return []byte{0}, nil

	case hwmon.GETSUBPRESET:
		return append([]byte(nil), s.subPreset...), nil

	case hwmon.GETSUBPRESETID:
		if len(s.subPreset) == 0 {
			return []byte{0}, nil
		}
		return []byte{s.subPreset[0]}, nil

	case hwmon.LASERONCONST:
		if cmd.Param1 == 1 {
			s.emitterAlwaysOn = cmd.Param2
		}
		return []byte{byte(s.emitterAlwaysOn), 0, 0, 0}, nil

	case hwmon.EMITTERTOGGLE:
		if cmd.Param1 == 1 {
			s.basicEmitter = cmd.Param2
		}
		return []byte{byte(s.basicEmitter), 0, 0, 0}, nil

	case hwmon.CAMSYNCGET:
		resp := make([]byte, 4)
		binary.LittleEndian.PutUint32(resp, s.syncMode)
		return resp, nil

	case hwmon.CAMSYNCSET:
		s.syncMode = cmd.Param1
		return []byte{0}, nil

	case hwmon.DUNITSGET:
		resp := make([]byte, 4)
		binary.LittleEndian.PutUint32(resp, s.depthUnitsMicro)
		return resp, nil

	case hwmon.DUNITSSET:
		s.depthUnitsMicro = cmd.Param1
		return []byte{0}, nil

	case hwmon.HWRST:
		s.subPreset = nil
		s.emitterAlwaysOn = 0
		s.basicEmitter = 0
		s.syncMode = 0
		return []byte{0}, nil

	default:
		return nil, fmt.Errorf("simulator: unsupported opcode %v", cmd.Opcode)
	}
}

// statusBlob renders the model as a firmware status blob.
func (s *Simulator) statusBlob() []byte {
	blob := make([]byte, hwmon.BufferSize)

	fw := firmware.MustParse(s.model.Firmware)
	blob[caps.VersionOffset] = byte(fw.Build)
	blob[caps.VersionOffset+1] = byte(fw.Patch)
	blob[caps.VersionOffset+2] = byte(fw.Minor)
	blob[caps.VersionOffset+3] = byte(fw.Major)

	if s.model.Locked {
		blob[caps.LockedOffset] = 1
	}
	copy(blob[caps.ModuleSerialOffset:], moduleSerial[:])
	copy(blob[caps.ASICSerialOffset:], asicSerial[:])

	// Fisheye absent is encoded as both bytes 0xFF.
	blob[caps.FisheyeLoOffset] = 0xFF
	blob[caps.FisheyeHiOffset] = 0xFF
	if s.model.Fisheye {
		blob[caps.FisheyeLoOffset] = 0x01
		blob[caps.FisheyeHiOffset] = 0x01
	}

	if s.model.GlobalShutter {
		blob[caps.SensorTypeOffset] = 2
	} else {
		blob[caps.SensorTypeOffset] = 1
	}
	if s.model.Projector {
		blob[caps.ProjectorOffset] = 1
	}
	if s.model.RGB {
		blob[caps.RGBSensorOffset] = 1
	}
	if s.model.IMU {
		blob[caps.IMUSensorOffset] = 1
		blob[caps.IMUChipIDOffset] = s.model.IMUChipID
	}
	return blob
}

// calibBaselineOffset is where the baseline float sits in the
// coefficients table: a 16-byte header plus three 3x3 float matrices.
const calibBaselineOffset = 16 + 3*36

// calibTable renders a calibration table. Only the coefficients table
// carries meaningful content.
func (s *Simulator) calibTable(id uint32) ([]byte, error) {
	blob := make([]byte, 256)
	if id == 25 {
		// The firmware reports the baseline negated.
		binary.LittleEndian.PutUint32(blob[calibBaselineOffset:],
			math.Float32bits(-s.model.BaselineMM))
	}
	return blob, nil
}

// Get implements control.Channel.
func (s *Simulator) Get(id control.ControlID) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[id]
	if !ok {
		return 0, fmt.Errorf("simulator: unknown control %d", id)
	}
	return v, nil
}

// Set implements control.Channel.
func (s *Simulator) Set(id control.ControlID, value float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rng, ok := s.ranges[id]
	if !ok {
		return fmt.Errorf("simulator: unknown control %d", id)
	}
	if !rng.Contains(value) {
		return fmt.Errorf("simulator: control %d value %g out of range", id, value)
	}
	s.values[id] = value
	s.sets[id]++
	return nil
}

// Range implements control.Channel.
func (s *Simulator) Range(id control.ControlID) (control.Range, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rng, ok := s.ranges[id]
	if !ok {
		return control.Range{}, fmt.Errorf("simulator: unknown control %d", id)
	}
	return rng, nil
}
