package device

import (
	"fmt"

	"github.com/dcam-project/dcam-go/pkg/caps"
	"github.com/dcam-project/dcam-go/pkg/control"
	"github.com/dcam-project/dcam-go/pkg/firmware"
	"github.com/dcam-project/dcam-go/pkg/hdr"
	"github.com/dcam-project/dcam-go/pkg/metadata"
	"github.com/dcam-project/dcam-go/pkg/product"
)

// Rejection reasons surfaced through PolicyError. The exact wording is
// part of the control surface contract.
const (
	reasonAEWhileHDR       = "Auto Exposure cannot be set while HDR is enabled"
	reasonAlwaysOnWhileAlt = "Emitter always ON cannot be set while Emitter ON/OFF is enabled"
	reasonAltWhileHDR      = "Emitter ON/OFF cannot be set while HDR is enabled"
	reasonAltWhileAlwaysOn = "Emitter ON/OFF cannot be set while Emitter always ON is enabled"
)

// compositionRule is one entry of the control graph build table. Rules
// run in declaration order; earlier rules establish controls that later
// rules wrap or gate. A rule whose predicate fails is skipped entirely.
type compositionRule struct {
	name  string
	when  func(d *Device) bool
	build func(d *Device, s *composeState) error
}

// composeState carries the intermediate products that flow between
// rules during one composition run.
type composeState struct {
	exposure     control.Control
	gain         control.Control
	autoExposure control.Control
	hdrEnabled   control.Control
}

var always = func(*Device) bool { return true }

// compositionRules is the fixed-precedence build table. Later rules
// wrap or gate the controls established by earlier ones.
var compositionRules = []compositionRule{
	{
		name:  "base exposure and gain",
		when:  always,
		build: buildBaseControls,
	},
	{
		name: "hdr bracketing",
		when: func(d *Device) bool {
			return d.fw.AtLeast(firmware.HDRSupport)
		},
		build: buildHDR,
	},
	{
		name:  "auto exposure wrapping",
		when:  always,
		build: buildAutoExposure,
	},
	{
		name: "alternating emitter",
		when: func(d *Device) bool {
			return d.fw.AtLeast(firmware.AlternatingEmitter) &&
				d.caps.Has(caps.GlobalShutter) &&
				d.caps.Has(caps.ActiveProjector)
		},
		build: buildAlternatingEmitter,
	},
	{
		name: "basic emitter",
		when: func(d *Device) bool {
			if d.controls.Has(control.EmitterOnOff) {
				return false
			}
			return d.fw.AtLeast(firmware.BasicEmitter) &&
				d.caps.Has(caps.ActiveProjector) &&
				d.fw.Experimental()
		},
		build: buildBasicEmitter,
	},
	{
		name: "inter-camera sync",
		when: func(d *Device) bool {
			return d.caps.Has(caps.InterCamHWSync)
		},
		build: buildSyncMode,
	},
	{
		name:  "depth scale",
		when:  always,
		build: buildDepthScale,
	},
	{
		name: "trigger and temperature",
		when: func(d *Device) bool {
			return d.fw.AtLeast(firmware.TriggerAndTemp)
		},
		build: buildTriggerAndTemp,
	},
	{
		name:  "stereo baseline",
		when:  always,
		build: buildStereoBaseline,
	},
}

// compose runs the build table and registers the resulting graph.
func (d *Device) compose() error {
	s := &composeState{}
	for _, rule := range compositionRules {
		if !rule.when(d) {
			continue
		}
		if err := rule.build(d, s); err != nil {
			return fmt.Errorf("device: building %s: %w", rule.name, err)
		}
	}
	return nil
}

// register records a control under its name and traces the composition.
// Registered controls report gating refusals to the session trace.
func (d *Device) register(name string, c control.Control) {
	d.controls.Register(name, &loggedControl{Control: c, dev: d})
	d.logControl(name, c)
}

func buildBaseControls(d *Device, s *composeState) error {
	exposure, err := control.NewChannel(d.channel, control.IDExposure, "Controls exposure time of the sensor")
	if err != nil {
		return err
	}
	gain, err := control.NewChannel(d.channel, control.IDGain, "Image gain")
	if err != nil {
		return err
	}
	s.exposure = exposure
	s.gain = gain
	return nil
}

func buildHDR(d *Device, s *composeState) error {
	exposureRange := s.exposure.Range()
	gainRange := s.gain.Range()
	d.hdrState = hdr.NewConfig(d.transport, exposureRange, gainRange)

	enabled := hdr.NewEnabledOption(d.hdrState)
	s.hdrEnabled = enabled
	d.register(control.HDREnabled, enabled)
	d.register(control.SequenceName, hdr.NewSequenceNameOption(d.hdrState))
	d.register(control.SequenceSize, hdr.NewSequenceSizeOption(d.hdrState))
	d.register(control.SequenceID, hdr.NewSequenceIDOption(d.hdrState))

	// Exposure and gain route to the bracketing item while HDR runs.
	s.exposure = control.NewConditional(d.hdrState, hdr.NewExposureOption(d.hdrState), s.exposure)
	s.gain = control.NewConditional(d.hdrState, hdr.NewGainOption(d.hdrState), s.gain)
	return nil
}

func buildAutoExposure(d *Device, s *composeState) error {
	autoExposure, err := control.NewChannel(d.channel, control.IDAutoExposure, "Enable or disable auto exposure")
	if err != nil {
		return err
	}
	s.autoExposure = autoExposure

	s.exposure = control.NewAutoDisabling(control.Exposure, s.exposure, autoExposure)
	s.gain = control.NewAutoDisabling(control.Gain, s.gain, autoExposure)
	d.register(control.Exposure, s.exposure)
	d.register(control.Gain, s.gain)

	if s.hdrEnabled != nil {
		s.autoExposure = control.NewGated(control.EnableAutoExposure, autoExposure,
			control.Gate{Peer: s.hdrEnabled, Reason: reasonAEWhileHDR})
	}
	d.register(control.EnableAutoExposure, s.autoExposure)
	return nil
}

func buildAlternatingEmitter(d *Device, s *composeState) error {
	alternating := control.NewAlternatingEmitter(d.transport, d.fw.AtLeast(firmware.HDRSupport))
	alwaysOn := control.NewEmitterAlwaysOn(d.transport)

	switch {
	case s.hdrEnabled != nil:
		d.register(control.EmitterOnOff, control.NewGated(control.EmitterOnOff, alternating,
			control.Gate{Peer: s.hdrEnabled, Reason: reasonAltWhileHDR},
			control.Gate{Peer: alwaysOn, Reason: reasonAltWhileAlwaysOn}))
		d.register(control.EmitterAlwaysOn, control.NewGated(control.EmitterAlwaysOn, alwaysOn,
			control.Gate{Peer: alternating, Reason: reasonAlwaysOnWhileAlt}))
	case d.fw.AtLeast(firmware.EmitterAlwaysOnGate):
		d.register(control.EmitterOnOff, control.NewGated(control.EmitterOnOff, alternating,
			control.Gate{Peer: alwaysOn, Reason: reasonAltWhileAlwaysOn}))
		d.register(control.EmitterAlwaysOn, control.NewGated(control.EmitterAlwaysOn, alwaysOn,
			control.Gate{Peer: alternating, Reason: reasonAlwaysOnWhileAlt}))
	default:
		// Old firmware exposes the alternating toggle alone.
		d.register(control.EmitterOnOff, alternating)
	}
	return nil
}

func buildBasicEmitter(d *Device, s *composeState) error {
	d.register(control.EmitterOnOff, control.NewBasicEmitter(d.transport))
	return nil
}

func buildSyncMode(d *Device, s *composeState) error {
	gs := d.caps.Has(caps.GlobalShutter)
	var gen control.SyncGeneration
	switch {
	case d.fw.AtLeast(firmware.SyncGen3) && gs:
		gen = control.SyncGen3
	case d.fw.AtLeast(firmware.SyncGen2) && gs:
		gen = control.SyncGen2
	case d.fw.AtLeast(firmware.SyncGen1):
		gen = control.SyncGen1
	default:
		return nil
	}
	d.register(control.InterCamSyncMode, control.NewSyncMode(d.transport, gen))
	return nil
}

func buildDepthScale(d *Device, s *composeState) error {
	if d.advanced && d.fw.AtLeast(firmware.DepthScaleControl) {
		notifying := control.NewNotifying(control.NewDepthScale(d.transport))
		notifying.AddObserver(d.setDepthUnits)
		if v, err := notifying.Query(); err == nil {
			d.setDepthUnits(v)
		}
		d.register(control.DepthUnits, notifying)
		return nil
	}
	units := product.DefaultDepthUnits(d.pid)
	d.setDepthUnits(units)
	d.register(control.DepthUnits,
		control.NewConstValue("Number of meters represented by a single depth unit", units))
	return nil
}

func buildTriggerAndTemp(d *Device, s *composeState) error {
	trigger, err := control.NewChannel(d.channel, control.IDExternalTrigger, "Route the external hardware trigger")
	if err != nil {
		return err
	}
	d.register(control.OutputTriggerEnabled, trigger)

	temp, err := control.NewReadOnlyChannel(d.channel, control.IDASICTemperature, "Current ASIC temperature")
	if err != nil {
		return err
	}
	d.register(control.ASICTemperature, temp)
	return nil
}

func buildStereoBaseline(d *Device, s *composeState) error {
	resolver := d.calib
	d.register(control.StereoBaseline, control.NewConst("Distance in mm between the stereo imagers",
		func() float64 {
			mm, err := resolver.StereoBaselineMM()
			if err != nil {
				d.logError(err, "resolving stereo baseline")
				return 0
			}
			return mm
		}))
	return nil
}

// registerMetadata binds the frame metadata rules matching this firmware
// and hardware.
func (d *Device) registerMetadata() {
	metadata.RegisterDepthRules(d.metadata, metadata.DepthRuleOptions{
		GPIO:           d.fw.AtLeast(firmware.GpioMetadata),
		SequenceFrames: d.fw.AtLeast(firmware.HDRSupport),
	})
	if d.caps.Has(caps.RGBSensor) {
		d.colorMetadata = metadata.NewRegistry()
		metadata.RegisterColorRules(d.colorMetadata)
	}
}
