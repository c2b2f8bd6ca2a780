package firmware

// Feature gate thresholds. Each names the first firmware version in which
// the corresponding device behavior is available. The composition engine
// evaluates these once per device connection.
var (
	// CapsSupported is the first version whose status blob carries a
	// decodable capability section.
	CapsSupported = MustParse("5.10.4.0")

	// HDRSupport is the first version with hardware exposure bracketing.
	HDRSupport = MustParse("5.12.8.100")

	// AlternatingEmitter is the first version with the alternating laser
	// pattern sub-preset.
	AlternatingEmitter = MustParse("5.11.3.0")

	// EmitterAlwaysOnGate is the first version exposing the
	// emitter-always-on control on global shutter SKUs.
	EmitterAlwaysOnGate = MustParse("5.12.1.0")

	// BasicEmitter is the first version with the plain emitter on/off
	// toggle. Still experimental-train only.
	BasicEmitter = MustParse("5.10.9.0")

	// SyncGen1, SyncGen2 and SyncGen3 select the inter-camera sync mode
	// encoding, newest first.
	SyncGen1 = MustParse("5.9.15.1")
	SyncGen2 = MustParse("5.12.4.0")
	SyncGen3 = MustParse("5.12.12.100")

	// DepthScaleControl is the first version allowing the depth unit to be
	// rewritten on advanced-mode devices.
	DepthScaleControl = MustParse("5.6.3.0")

	// CameraLock is the first version reporting the flash lock state in
	// the status blob.
	CameraLock = MustParse("5.6.3.0")

	// TriggerAndTemp is the first version with the external trigger output
	// and the ASIC temperature readout.
	TriggerAndTemp = MustParse("5.5.8.0")

	// NewCalibTable is the first version answering the resolution-indexed
	// calibration table request.
	NewCalibTable = MustParse("5.11.9.5")

	// GpioMetadata is the first version reporting GPIO input state in the
	// per-frame metadata record.
	GpioMetadata = MustParse("5.12.7.0")

	// UsbTypeReport is the first version able to report the negotiated USB
	// specification.
	UsbTypeReport = MustParse("5.9.8.0")

	// Recommended is the validated firmware version for this library
	// generation.
	Recommended = MustParse("5.12.7.100")
)
