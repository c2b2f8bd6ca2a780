package device

import (
	"errors"
	"sync"
	"testing"

	"github.com/dcam-project/dcam-go/internal/simulator"
	"github.com/dcam-project/dcam-go/pkg/caps"
	"github.com/dcam-project/dcam-go/pkg/control"
	"github.com/dcam-project/dcam-go/pkg/log"
	"github.com/dcam-project/dcam-go/pkg/metadata"
	"github.com/dcam-project/dcam-go/pkg/product"
)

// captureLogger collects session events for assertions.
type captureLogger struct {
	mu     sync.Mutex
	events []log.Event
}

func (c *captureLogger) Log(event log.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *captureLogger) byCategory(cat log.Category) []log.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []log.Event
	for _, e := range c.events {
		if e.Category == cat {
			out = append(out, e)
		}
	}
	return out
}

func newDevice(t *testing.T, model simulator.Model, mutate func(*Config)) *Device {
	t.Helper()
	sim := simulator.New(model)
	cfg := Config{Transport: sim, Channel: sim, PID: model.PID}
	if mutate != nil {
		mutate(&cfg)
	}
	d, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d
}

func TestInitModernGlobalShutter(t *testing.T) {
	d := newDevice(t, simulator.D455(), nil)

	if d.Firmware().String() != "5.12.8.100" {
		t.Errorf("firmware = %s", d.Firmware())
	}
	for _, c := range []caps.Mask{caps.ActiveProjector, caps.RGBSensor, caps.IMUSensor,
		caps.IMUBMI085, caps.GlobalShutter, caps.InterCamHWSync} {
		if !d.Capabilities().Has(c) {
			t.Errorf("capability %v missing from %v", c, d.Capabilities())
		}
	}

	want := []string{
		control.Exposure, control.Gain, control.EnableAutoExposure,
		control.HDREnabled, control.SequenceID, control.SequenceSize, control.SequenceName,
		control.EmitterOnOff, control.EmitterAlwaysOn,
		control.InterCamSyncMode, control.DepthUnits, control.StereoBaseline,
		control.OutputTriggerEnabled, control.ASICTemperature,
	}
	for _, name := range want {
		if !d.Controls().Has(name) {
			t.Errorf("control %q missing", name)
		}
	}

	// 5.12.8.100 predates the gen3 sync firmware: top mode is 258.
	sync := d.Controls().MustGet(control.InterCamSyncMode)
	if got := sync.Range().Max; got != 258 {
		t.Errorf("sync max mode = %g, want 258", got)
	}
}

func TestExposureRejectedWhileAutoExposure(t *testing.T) {
	d := newDevice(t, simulator.D455(), nil)

	// The channel default has auto exposure on.
	err := d.Controls().MustGet(control.Exposure).Set(10000)
	var policy *control.PolicyError
	if !errors.As(err, &policy) {
		t.Fatalf("exposure write error = %v, want PolicyError", err)
	}
	if policy.Reason != control.ReasonAutoExposureActive {
		t.Errorf("reason = %q", policy.Reason)
	}

	if err := d.Controls().MustGet(control.EnableAutoExposure).Set(0); err != nil {
		t.Fatalf("disabling auto exposure: %v", err)
	}
	if err := d.Controls().MustGet(control.Exposure).Set(10000); err != nil {
		t.Fatalf("exposure write after disabling auto exposure: %v", err)
	}
}

func TestHDRGatesAutoExposureAndEmitter(t *testing.T) {
	d := newDevice(t, simulator.D455(), nil)

	if err := d.Controls().MustGet(control.HDREnabled).Set(1); err != nil {
		t.Fatalf("enabling hdr: %v", err)
	}

	err := d.Controls().MustGet(control.EnableAutoExposure).Set(0)
	var policy *control.PolicyError
	if !errors.As(err, &policy) {
		t.Fatalf("auto exposure write error = %v, want PolicyError", err)
	}
	if policy.Reason != reasonAEWhileHDR {
		t.Errorf("reason = %q, want %q", policy.Reason, reasonAEWhileHDR)
	}

	err = d.Controls().MustGet(control.EmitterOnOff).Set(1)
	if !errors.As(err, &policy) {
		t.Fatalf("emitter write error = %v, want PolicyError", err)
	}
	if policy.Reason != reasonAltWhileHDR {
		t.Errorf("reason = %q, want %q", policy.Reason, reasonAltWhileHDR)
	}

	if err := d.Controls().MustGet(control.HDREnabled).Set(0); err != nil {
		t.Fatalf("disabling hdr: %v", err)
	}
	if err := d.Controls().MustGet(control.EmitterOnOff).Set(1); err != nil {
		t.Fatalf("emitter write after disabling hdr: %v", err)
	}
}

func TestEmitterMutualExclusion(t *testing.T) {
	d := newDevice(t, simulator.D455(), nil)

	if err := d.Controls().MustGet(control.EmitterAlwaysOn).Set(1); err != nil {
		t.Fatalf("enabling always-on: %v", err)
	}

	err := d.Controls().MustGet(control.EmitterOnOff).Set(1)
	var policy *control.PolicyError
	if !errors.As(err, &policy) {
		t.Fatalf("alternating write error = %v, want PolicyError", err)
	}
	if policy.Reason != reasonAltWhileAlwaysOn {
		t.Errorf("reason = %q, want %q", policy.Reason, reasonAltWhileAlwaysOn)
	}

	if err := d.Controls().MustGet(control.EmitterAlwaysOn).Set(0); err != nil {
		t.Fatalf("disabling always-on: %v", err)
	}
	if err := d.Controls().MustGet(control.EmitterOnOff).Set(1); err != nil {
		t.Fatalf("alternating write: %v", err)
	}

	err = d.Controls().MustGet(control.EmitterAlwaysOn).Set(1)
	if !errors.As(err, &policy) {
		t.Fatalf("always-on write error = %v, want PolicyError", err)
	}
	if policy.Reason != reasonAlwaysOnWhileAlt {
		t.Errorf("reason = %q, want %q", policy.Reason, reasonAlwaysOnWhileAlt)
	}
}

func TestOldFirmwareSkipsHDR(t *testing.T) {
	model := simulator.D455()
	model.Firmware = "5.11.6.250"
	d := newDevice(t, model, nil)

	for _, name := range []string{control.HDREnabled, control.SequenceID,
		control.SequenceSize, control.SequenceName} {
		if d.Controls().Has(name) {
			t.Errorf("control %q present on pre-bracketing firmware", name)
		}
	}
	// The alternating emitter exists but always-on stays hidden below its
	// exposure threshold (5.12.1.0).
	if !d.Controls().Has(control.EmitterOnOff) {
		t.Error("alternating emitter missing")
	}
	if d.Controls().Has(control.EmitterAlwaysOn) {
		t.Error("always-on exposed below its firmware threshold")
	}
}

func TestBasicEmitterExperimentalOnly(t *testing.T) {
	model := simulator.D455()
	model.GlobalShutter = false // rules the alternating path out

	model.Firmware = "5.10.9.99"
	d := newDevice(t, model, nil)
	if !d.Controls().Has(control.EmitterOnOff) {
		t.Error("basic emitter missing on experimental build")
	}
	if got := control.KindOf(d.Controls().MustGet(control.EmitterOnOff)); got != "basic-emitter" {
		t.Errorf("emitter kind = %q, want basic-emitter", got)
	}

	model.Firmware = "5.10.9.50"
	d = newDevice(t, model, nil)
	if d.Controls().Has(control.EmitterOnOff) {
		t.Error("basic emitter exposed on a production build")
	}
}

func TestCapabilityGateOldFirmware(t *testing.T) {
	model := simulator.D455()
	model.Firmware = "5.10.3.0"
	d := newDevice(t, model, nil)

	if d.Capabilities() != caps.Undefined {
		t.Errorf("capabilities = %v, want undefined below the parse gate", d.Capabilities())
	}
	if d.Controls().Has(control.InterCamSyncMode) {
		t.Error("sync mode exposed without the sync capability")
	}
	if d.Controls().Has(control.EmitterOnOff) {
		t.Error("emitter exposed without decoded capabilities")
	}
}

func TestDepthScaleAdvancedThreshold(t *testing.T) {
	model := simulator.D455()
	model.Firmware = "5.6.3.0"

	d := newDevice(t, model, func(cfg *Config) { cfg.Advanced = true })
	units := d.Controls().MustGet(control.DepthUnits)
	if got := control.KindOf(units); got != "notifying" {
		t.Fatalf("depth units kind = %q, want notifying at 5.6.3.0 advanced", got)
	}
	if err := units.Set(0.0005); err != nil {
		t.Fatalf("writing depth units: %v", err)
	}
	if got := d.DepthUnits(); got != 0.0005 {
		t.Errorf("cached depth units = %g, want 0.0005", got)
	}

	model.Firmware = "5.6.2.9"
	d = newDevice(t, model, func(cfg *Config) { cfg.Advanced = true })
	units = d.Controls().MustGet(control.DepthUnits)
	if got := control.KindOf(units); got != "const" {
		t.Fatalf("depth units kind = %q, want const below 5.6.3.0", got)
	}
	if err := units.Set(0.0005); !errors.Is(err, control.ErrReadOnly) {
		t.Errorf("const depth units write error = %v, want ErrReadOnly", err)
	}
}

func TestDepthScaleProductDefault(t *testing.T) {
	model := simulator.D455()
	model.PID = product.D405
	d := newDevice(t, model, nil) // not advanced

	if got := d.DepthUnits(); got != 0.0001 {
		t.Errorf("D405 depth units = %g, want 0.0001", got)
	}
	v, err := d.Controls().MustGet(control.DepthUnits).Query()
	if err != nil || v != 0.0001 {
		t.Errorf("depth units query = %g, %v, want 0.0001", v, err)
	}

	if d.Controls().Has(control.InterCamSyncMode) {
		t.Error("sync mode exposed on the sync-excluded SKU")
	}
}

func TestStereoBaselineLazy(t *testing.T) {
	model := simulator.D455()
	sim := simulator.New(model)
	d, err := New(Config{Transport: sim, Channel: sim, PID: model.PID})
	if err != nil {
		t.Fatal(err)
	}

	baseline := d.Controls().MustGet(control.StereoBaseline)
	for i := 0; i < 3; i++ {
		v, err := baseline.Query()
		if err != nil {
			t.Fatal(err)
		}
		if v != 95 {
			t.Errorf("baseline = %g mm, want 95", v)
		}
	}
}

func TestMetadataVersionGates(t *testing.T) {
	d := newDevice(t, simulator.D455(), nil)
	for _, attr := range []string{metadata.AttrGPIOInputData, metadata.AttrSequenceID,
		metadata.AttrFrameCounter, metadata.AttrActualFPS} {
		if !d.Metadata().Supports(attr) {
			t.Errorf("attribute %q missing on modern firmware", attr)
		}
	}
	if d.ColorMetadata() == nil {
		t.Fatal("no color registry despite the RGB capability")
	}
	if !d.ColorMetadata().Supports(metadata.AttrWhiteBalance) {
		t.Error("white balance missing from the color registry")
	}

	model := simulator.D455()
	model.Firmware = "5.12.4.0"
	old := newDevice(t, model, nil)
	if old.Metadata().Supports(metadata.AttrGPIOInputData) {
		t.Error("GPIO attribute registered below 5.12.7.0")
	}
	if old.Metadata().Supports(metadata.AttrSequenceID) {
		t.Error("bracketing attribute registered below the bracketing firmware")
	}
}

func TestInfoFields(t *testing.T) {
	d := newDevice(t, simulator.D455(), func(cfg *Config) { cfg.USBSpec = "3.2" })

	for key, want := range map[string]string{
		InfoName:            "D455",
		InfoFirmwareVersion: "5.12.8.100",
		InfoProductLine:     product.Line,
		InfoProductID:       "0x0B5C",
		InfoAdvancedMode:    "NO",
		InfoCameraLocked:    "NO",
		InfoUSBType:         "3.2",
	} {
		got, ok := d.Info(key)
		if !ok {
			t.Errorf("info %q missing", key)
			continue
		}
		if got != want {
			t.Errorf("info %q = %q, want %q", key, got, want)
		}
	}
	if serial, ok := d.Info(InfoModuleSerial); !ok || serial == "" {
		t.Error("module serial missing")
	}
	if sid, ok := d.Info(InfoSessionID); !ok || sid != d.SessionID() {
		t.Error("session id info does not match SessionID()")
	}

	model := simulator.D455()
	model.Firmware = "5.9.7.0"
	old := newDevice(t, model, func(cfg *Config) { cfg.USBSpec = "3.2" })
	if _, ok := old.Info(InfoUSBType); ok {
		t.Error("usb type reported below its firmware threshold")
	}
}

func TestLockedFlag(t *testing.T) {
	model := simulator.D455()
	model.Locked = true
	d := newDevice(t, model, nil)
	if !d.Locked() {
		t.Error("locked flag not read")
	}
	if got, _ := d.Info(InfoCameraLocked); got != "YES" {
		t.Errorf("camera-locked info = %q, want YES", got)
	}
}

func TestSessionTraceEvents(t *testing.T) {
	capture := &captureLogger{}
	d := newDevice(t, simulator.D455(), func(cfg *Config) { cfg.EventLogger = capture })

	capEvents := capture.byCategory(log.CategoryCapability)
	if len(capEvents) != 1 {
		t.Fatalf("%d capability events, want 1", len(capEvents))
	}
	if capEvents[0].Capability.FirmwareVersion != "5.12.8.100" {
		t.Errorf("capability event firmware = %q", capEvents[0].Capability.FirmwareVersion)
	}
	if capEvents[0].SessionID != d.SessionID() {
		t.Error("capability event carries a foreign session id")
	}

	if len(capture.byCategory(log.CategoryTransport)) == 0 {
		t.Error("no transport round-trips traced")
	}

	controls := capture.byCategory(log.CategoryControl)
	names := make(map[string]bool)
	for _, e := range controls {
		names[e.Control.Name] = true
	}
	for _, want := range []string{control.Exposure, control.HDREnabled, control.DepthUnits} {
		if !names[want] {
			t.Errorf("no composition event for %q", want)
		}
	}
}
