package metadata

// Attribute names. The set mirrors what the firmware reports in the
// frame metadata payload sections; availability of each attribute depends
// on the section actually being present.
const (
	AttrFrameCounter      = "frame-counter"
	AttrFrameTimestamp    = "frame-timestamp"
	AttrSensorTimestamp   = "sensor-timestamp"
	AttrActualExposure    = "actual-exposure"
	AttrActualFPS         = "actual-fps"
	AttrWhiteBalance      = "white-balance"
	AttrGainLevel         = "gain-level"
	AttrManualExposure    = "manual-exposure"
	AttrAutoExposure      = "auto-exposure"
	AttrExposurePriority  = "exposure-priority"
	AttrExposureROILeft   = "exposure-roi-left"
	AttrExposureROIRight  = "exposure-roi-right"
	AttrExposureROITop    = "exposure-roi-top"
	AttrExposureROIBottom = "exposure-roi-bottom"
	AttrLaserPower        = "laser-power"
	AttrLaserPowerMode    = "laser-power-mode"
	AttrLEDPower          = "led-power"
	AttrGPIOInputData     = "gpio-input-data"
	AttrSubPresetInfo     = "sub-preset-info"
	AttrSequenceName      = "sequence-name"
	AttrSequenceSize      = "sequence-size"
	AttrSequenceID        = "sequence-id"
	AttrHWType            = "hw-type"
	AttrSKUID             = "sku-id"
	AttrFormat            = "format"
	AttrWidth             = "width"
	AttrHeight            = "height"
	AttrFPS               = "fps"
)

// Record layout. The UVC header is followed by payload sections at fixed
// offsets; all multi-byte fields are little-endian.
const (
	uvcHeaderSize      = 12
	uvcTimestampOffset = 2

	captureTimingOffset   = uvcHeaderSize
	frameCounterOffset    = captureTimingOffset + 16
	sensorTimestampOffset = captureTimingOffset + 20
	exposureTimeOffset    = captureTimingOffset + 28
	frameIntervalOffset   = captureTimingOffset + 32

	captureStatsOffset = 52
	whiteBalanceOffset = captureStatsOffset + 24

	depthControlOffset     = 80
	manualGainOffset       = depthControlOffset + 16
	manualExposureOffset   = depthControlOffset + 20
	laserPowerOffset       = depthControlOffset + 24
	autoExposureOffset     = depthControlOffset + 28
	exposurePriorityOffset = depthControlOffset + 32
	roiLeftOffset          = depthControlOffset + 36
	roiRightOffset         = depthControlOffset + 40
	roiTopOffset           = depthControlOffset + 44
	roiBottomOffset        = depthControlOffset + 48
	emitterModeOffset      = depthControlOffset + 56
	ledPowerOffset         = depthControlOffset + 58

	configurationOffset = 144
	hwTypeOffset        = configurationOffset + 16
	skuIDOffset         = configurationOffset + 17
	formatOffset        = configurationOffset + 18
	widthOffset         = configurationOffset + 20
	heightOffset        = configurationOffset + 22
	fpsOffset           = configurationOffset + 24
	gpioInputDataOffset = configurationOffset + 28
	subPresetInfoOffset = configurationOffset + 29
)

// Sub-preset info bitfield.
const (
	subPresetNameMask  = 0x03
	subPresetSizeMask  = 0x1C
	subPresetSizeShift = 2
	subPresetIDMask    = 0xE0
	subPresetIDShift   = 5
)

// DepthRuleOptions selects the firmware-dependent attribute groups.
type DepthRuleOptions struct {
	// GPIO enables the GPIO input field, populated since fw 5.12.7.0.
	GPIO bool
	// SequenceFrames enables the per-frame bracketing fields the newer
	// record layout carries; without it the emitter mode byte is a
	// legacy on/off flag.
	SequenceFrames bool
}

// RegisterDepthRules binds the depth stream's attribute set.
func RegisterDepthRules(reg *Registry, opts DepthRuleOptions) {
	registerTimingRules(reg)

	reg.Register(AttrGainLevel, OffsetRule{Offset: manualGainOffset, Size: 4})
	reg.Register(AttrManualExposure, OffsetRule{Offset: manualExposureOffset, Size: 4})
	reg.Register(AttrLaserPower, OffsetRule{Offset: laserPowerOffset, Size: 4})
	reg.Register(AttrAutoExposure, OffsetRule{Offset: autoExposureOffset, Size: 4})
	reg.Register(AttrExposurePriority, OffsetRule{Offset: exposurePriorityOffset, Size: 4})
	reg.Register(AttrExposureROILeft, OffsetRule{Offset: roiLeftOffset, Size: 4})
	reg.Register(AttrExposureROIRight, OffsetRule{Offset: roiRightOffset, Size: 4})
	reg.Register(AttrExposureROITop, OffsetRule{Offset: roiTopOffset, Size: 4})
	reg.Register(AttrExposureROIBottom, OffsetRule{Offset: roiBottomOffset, Size: 4})
	reg.Register(AttrLEDPower, OffsetRule{Offset: ledPowerOffset, Size: 2})

	if opts.SequenceFrames {
		reg.Register(AttrLaserPowerMode, OffsetRule{Offset: emitterModeOffset, Size: 1})
		registerSubPresetRules(reg)
	} else {
		// Legacy firmware overloads the byte: only value 1 means on.
		reg.Register(AttrLaserPowerMode, OffsetRule{
			Offset: emitterModeOffset, Size: 1,
			Transform: func(v uint64) int64 {
				if v == 1 {
					return 1
				}
				return 0
			},
		})
	}

	registerConfigurationRules(reg, opts.GPIO)
}

// RegisterColorRules binds the color stream's attribute set.
func RegisterColorRules(reg *Registry) {
	registerTimingRules(reg)
	reg.Register(AttrWhiteBalance, OffsetRule{Offset: whiteBalanceOffset, Size: 4})
	registerConfigurationRules(reg, false)
}

func registerTimingRules(reg *Registry) {
	reg.Register(AttrFrameCounter, OffsetRule{Offset: frameCounterOffset, Size: 4})
	reg.Register(AttrFrameTimestamp, OffsetRule{Offset: uvcTimestampOffset, Size: 4})
	reg.Register(AttrActualExposure, OffsetRule{Offset: exposureTimeOffset, Size: 4})

	// The payload carries the sensor-to-host latency; the sensor
	// timestamp is the UVC timestamp minus that latency.
	reg.Register(AttrSensorTimestamp, RuleFunc(func(record []byte) (int64, error) {
		uvcTS, ok := readUint32(record, uvcTimestampOffset)
		if !ok {
			return 0, ErrUnavailable
		}
		latency, ok := readUint32(record, sensorTimestampOffset)
		if !ok {
			return 0, ErrUnavailable
		}
		return int64(uvcTS) - int64(latency), nil
	}))

	reg.Register(AttrActualFPS, RuleFunc(func(record []byte) (int64, error) {
		interval, ok := readUint32(record, frameIntervalOffset)
		if !ok || interval == 0 {
			return 0, ErrUnavailable
		}
		return int64(1_000_000 / interval), nil
	}))
}

func registerConfigurationRules(reg *Registry, hasGPIO bool) {
	reg.Register(AttrHWType, OffsetRule{Offset: hwTypeOffset, Size: 1})
	reg.Register(AttrSKUID, OffsetRule{Offset: skuIDOffset, Size: 1})
	reg.Register(AttrFormat, OffsetRule{Offset: formatOffset, Size: 2})
	reg.Register(AttrWidth, OffsetRule{Offset: widthOffset, Size: 2})
	reg.Register(AttrHeight, OffsetRule{Offset: heightOffset, Size: 2})
	reg.Register(AttrFPS, OffsetRule{Offset: fpsOffset, Size: 2})
	if hasGPIO {
		reg.Register(AttrGPIOInputData, OffsetRule{Offset: gpioInputDataOffset, Size: 1})
	}
}

func registerSubPresetRules(reg *Registry) {
	reg.Register(AttrSubPresetInfo, OffsetRule{Offset: subPresetInfoOffset, Size: 1})
	reg.Register(AttrSequenceName, OffsetRule{
		Offset: subPresetInfoOffset, Size: 1, Mask: subPresetNameMask,
	})
	reg.Register(AttrSequenceSize, OffsetRule{
		Offset: subPresetInfoOffset, Size: 1, Mask: subPresetSizeMask, Shift: subPresetSizeShift,
	})
	reg.Register(AttrSequenceID, OffsetRule{
		Offset: subPresetInfoOffset, Size: 1, Mask: subPresetIDMask, Shift: subPresetIDShift,
	})
}
