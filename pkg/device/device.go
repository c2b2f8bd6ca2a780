// Package device brings up a depth camera: it fetches the firmware status
// blob, derives the capability mask, and composes the control graph and
// metadata registry that match what this firmware on this hardware can
// actually do.
package device

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dcam-project/dcam-go/pkg/calib"
	"github.com/dcam-project/dcam-go/pkg/caps"
	"github.com/dcam-project/dcam-go/pkg/control"
	"github.com/dcam-project/dcam-go/pkg/firmware"
	"github.com/dcam-project/dcam-go/pkg/hdr"
	"github.com/dcam-project/dcam-go/pkg/hwmon"
	"github.com/dcam-project/dcam-go/pkg/log"
	"github.com/dcam-project/dcam-go/pkg/metadata"
	"github.com/dcam-project/dcam-go/pkg/product"
)

// Info keys exposed by Device.Info.
const (
	InfoName                = "name"
	InfoFirmwareVersion     = "firmware-version"
	InfoRecommendedFirmware = "recommended-firmware"
	InfoModuleSerial        = "module-serial"
	InfoASICSerial          = "asic-serial"
	InfoProductID           = "product-id"
	InfoProductLine         = "product-line"
	InfoAdvancedMode        = "advanced-mode"
	InfoCameraLocked        = "camera-locked"
	InfoUSBType             = "usb-type"
	InfoSessionID           = "session-id"
)

// Config carries the collaborators a Device is built from. Transport and
// Channel are the two hardware surfaces; everything else is derived.
type Config struct {
	// Transport carries hardware monitor commands.
	Transport hwmon.Transport

	// Channel is the sensor's physical control surface.
	Channel control.Channel

	// PID is the USB product ID of the connected SKU.
	PID product.ID

	// Advanced reports whether the device is in the advanced unlock mode.
	Advanced bool

	// USBSpec is the negotiated USB specification string ("3.2"), empty
	// when the platform layer does not report one.
	USBSpec string

	// EventLogger receives session trace events. Nil means no tracing.
	EventLogger log.Logger
}

// Device is one initialized camera session.
type Device struct {
	sessionID string
	logger    log.Logger

	transport hwmon.Transport
	channel   control.Channel

	pid          product.ID
	fw           firmware.Version
	caps         caps.Mask
	locked       bool
	moduleSerial string
	asicSerial   string
	advanced     bool

	controls      *control.Registry
	metadata      *metadata.Registry
	colorMetadata *metadata.Registry
	calib         *calib.Resolver
	hdrState      *hdr.Config

	depthUnits atomic.Uint64

	info map[string]string
}

// New initializes a device session: one status round-trip, then pure
// derivation of the capability mask, control graph, metadata registry and
// info map. A transport failure here fails the whole bring-up.
func New(cfg Config) (*Device, error) {
	if cfg.Transport == nil {
		panic("device: Config.Transport is nil")
	}
	if cfg.Channel == nil {
		panic("device: Config.Channel is nil")
	}
	logger := cfg.EventLogger
	if logger == nil {
		logger = log.NoopLogger{}
	}

	d := &Device{
		sessionID: uuid.NewString(),
		logger:    logger,
		channel:   cfg.Channel,
		pid:       cfg.PID,
		advanced:  cfg.Advanced,
		controls:  control.NewRegistry(),
		metadata:  metadata.NewRegistry(),
		info:      make(map[string]string),
	}
	d.transport = &loggedTransport{inner: cfg.Transport, dev: d}

	blob, err := hwmon.FetchStatusBlob(d.transport)
	if err != nil {
		d.logError(err, "fetching status blob")
		return nil, fmt.Errorf("device: fetching status blob: %w", err)
	}

	fwString, err := hwmon.VersionString(blob, caps.VersionOffset)
	if err != nil {
		return nil, fmt.Errorf("device: reading firmware version: %w", err)
	}
	d.fw, err = firmware.Parse(fwString)
	if err != nil {
		return nil, fmt.Errorf("device: parsing firmware version %q: %w", fwString, err)
	}

	if d.moduleSerial, err = hwmon.SerialString(blob, caps.ModuleSerialOffset, caps.ModuleSerialSize); err != nil {
		return nil, fmt.Errorf("device: reading module serial: %w", err)
	}
	if d.asicSerial, err = hwmon.SerialString(blob, caps.ASICSerialOffset, caps.ASICSerialSize); err != nil {
		return nil, fmt.Errorf("device: reading asic serial: %w", err)
	}

	if d.fw.AtLeast(firmware.CapsSupported) {
		d.caps = caps.Decode(blob, d.pid)
	}
	if d.fw.AtLeast(firmware.CameraLock) && caps.LockedOffset < len(blob) {
		d.locked = blob[caps.LockedOffset] != 0
	}
	d.logCapabilities()

	d.calib = calib.NewResolver(d.transport, d.fw)
	d.setDepthUnits(product.DefaultDepthUnits(d.pid))

	if err := d.compose(); err != nil {
		d.logError(err, "composing control graph")
		return nil, err
	}
	d.registerMetadata()
	d.buildInfo(cfg)

	return d, nil
}

// SessionID returns the UUID stamped into this session's trace events.
func (d *Device) SessionID() string { return d.sessionID }

// Firmware returns the parsed firmware version.
func (d *Device) Firmware() firmware.Version { return d.fw }

// Capabilities returns the decoded capability mask.
func (d *Device) Capabilities() caps.Mask { return d.caps }

// Locked reports whether the camera flash is locked.
func (d *Device) Locked() bool { return d.locked }

// Controls returns the composed control registry.
func (d *Device) Controls() *control.Registry { return d.controls }

// Metadata returns the depth stream's frame metadata attribute registry.
func (d *Device) Metadata() *metadata.Registry { return d.metadata }

// ColorMetadata returns the color stream's attribute registry, nil when
// the hardware has no color sensor.
func (d *Device) ColorMetadata() *metadata.Registry { return d.colorMetadata }

// Calibration returns the session's calibration resolver.
func (d *Device) Calibration() *calib.Resolver { return d.calib }

// DepthUnits returns the cached depth scale in meters per unit. Updated
// by writes to the depth-units control.
func (d *Device) DepthUnits() float64 {
	return math.Float64frombits(d.depthUnits.Load())
}

func (d *Device) setDepthUnits(v float64) {
	d.depthUnits.Store(math.Float64bits(v))
}

// Info returns one device descriptor field. ok is false for fields this
// firmware does not report.
func (d *Device) Info(key string) (string, bool) {
	v, ok := d.info[key]
	return v, ok
}

// InfoKeys returns the populated descriptor fields.
func (d *Device) InfoKeys() []string {
	keys := make([]string, 0, len(d.info))
	for k := range d.info {
		keys = append(keys, k)
	}
	return keys
}

func (d *Device) buildInfo(cfg Config) {
	d.info[InfoName] = product.Name(d.pid)
	d.info[InfoFirmwareVersion] = d.fw.String()
	d.info[InfoRecommendedFirmware] = firmware.Recommended.String()
	d.info[InfoModuleSerial] = d.moduleSerial
	d.info[InfoASICSerial] = d.asicSerial
	d.info[InfoProductID] = d.pid.String()
	d.info[InfoProductLine] = product.Line
	d.info[InfoSessionID] = d.sessionID
	d.info[InfoAdvancedMode] = boolInfo(d.advanced)
	if d.fw.AtLeast(firmware.CameraLock) {
		d.info[InfoCameraLocked] = boolInfo(d.locked)
	}
	if d.fw.AtLeast(firmware.UsbTypeReport) && cfg.USBSpec != "" {
		d.info[InfoUSBType] = cfg.USBSpec
	}
}

func boolInfo(b bool) string {
	if b {
		return "YES"
	}
	return "NO"
}

func (d *Device) logCapabilities() {
	d.logger.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: d.sessionID,
		Category:  log.CategoryCapability,
		Serial:    d.moduleSerial,
		Capability: &log.CapabilityEvent{
			FirmwareVersion: d.fw.String(),
			Mask:            uint32(d.caps),
			MaskText:        d.caps.String(),
		},
	})
}

func (d *Device) logControl(name string, c control.Control) {
	d.logger.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: d.sessionID,
		Category:  log.CategoryControl,
		Serial:    d.moduleSerial,
		Control:   &log.ControlEvent{Name: name, Kind: control.KindOf(c)},
	})
}

func (d *Device) logPolicy(pe *control.PolicyError) {
	d.logger.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: d.sessionID,
		Category:  log.CategoryPolicy,
		Serial:    d.moduleSerial,
		Policy:    &log.PolicyEvent{Control: pe.Control, Reason: pe.Reason},
	})
}

func (d *Device) logError(err error, context string) {
	d.logger.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: d.sessionID,
		Category:  log.CategoryError,
		Serial:    d.moduleSerial,
		Error:     &log.ErrorEvent{Message: err.Error(), Context: context},
	})
}

// loggedControl traces gating refusals on a registered control.
type loggedControl struct {
	control.Control
	dev *Device
}

func (c *loggedControl) Set(value float64) error {
	err := c.Control.Set(value)
	var pe *control.PolicyError
	if errors.As(err, &pe) {
		c.dev.logPolicy(pe)
	}
	return err
}

// ControlKind forwards the wrapped control's variant name.
func (c *loggedControl) ControlKind() string { return control.KindOf(c.Control) }

// loggedTransport traces every hardware monitor round-trip of the
// session.
type loggedTransport struct {
	inner hwmon.Transport
	dev   *Device
}

func (t *loggedTransport) Send(cmd hwmon.Command) ([]byte, error) {
	resp, err := t.inner.Send(cmd)
	t.dev.logger.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: t.dev.sessionID,
		Category:  log.CategoryTransport,
		Serial:    t.dev.moduleSerial,
		Command: &log.CommandEvent{
			Opcode:      uint32(cmd.Opcode),
			Mnemonic:    cmd.Opcode.String(),
			RequestLen:  len(cmd.Data),
			ResponseLen: len(resp),
			Failed:      err != nil,
		},
	})
	return resp, err
}
