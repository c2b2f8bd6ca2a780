package log

import "time"

// Event is one captured record in a device session trace.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID uniquely identifies the device session (UUID).
	SessionID string `cbor:"2,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"3,keyasint"`

	// Serial is the device module serial, when known.
	Serial string `cbor:"4,keyasint,omitempty"`

	// Type-specific payload (exactly one is set).
	Command    *CommandEvent    `cbor:"10,keyasint,omitempty"`
	Capability *CapabilityEvent `cbor:"11,keyasint,omitempty"`
	Control    *ControlEvent    `cbor:"12,keyasint,omitempty"`
	Policy     *PolicyEvent     `cbor:"13,keyasint,omitempty"`
	Error      *ErrorEvent      `cbor:"14,keyasint,omitempty"`
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryTransport covers hardware monitor round-trips.
	CategoryTransport Category = 0
	// CategoryCapability covers capability mask derivation.
	CategoryCapability Category = 1
	// CategoryControl covers control graph composition.
	CategoryControl Category = 2
	// CategoryPolicy covers gated-control write rejections.
	CategoryPolicy Category = 3
	// CategoryMetadata covers metadata rule registration.
	CategoryMetadata Category = 4
	// CategoryError covers failures at any layer.
	CategoryError Category = 5
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryTransport:
		return "TRANSPORT"
	case CategoryCapability:
		return "CAPABILITY"
	case CategoryControl:
		return "CONTROL"
	case CategoryPolicy:
		return "POLICY"
	case CategoryMetadata:
		return "METADATA"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// CommandEvent records one hardware monitor round-trip.
type CommandEvent struct {
	// Opcode is the raw command opcode.
	Opcode uint32 `cbor:"1,keyasint"`

	// Mnemonic is the conventional opcode name.
	Mnemonic string `cbor:"2,keyasint,omitempty"`

	// RequestLen is the data payload size sent with the command.
	RequestLen int `cbor:"3,keyasint,omitempty"`

	// ResponseLen is the payload size returned; 0 on failure.
	ResponseLen int `cbor:"4,keyasint,omitempty"`

	// Failed reports whether the round-trip returned an error.
	Failed bool `cbor:"5,keyasint,omitempty"`
}

// CapabilityEvent records the derived capability mask for a session.
type CapabilityEvent struct {
	// FirmwareVersion is the version string parsed from the status blob.
	FirmwareVersion string `cbor:"1,keyasint"`

	// Mask is the raw capability bitset.
	Mask uint32 `cbor:"2,keyasint"`

	// MaskText is the human-readable rendering of the mask.
	MaskText string `cbor:"3,keyasint,omitempty"`
}

// ControlEvent records one composed control.
type ControlEvent struct {
	// Name is the registered control name.
	Name string `cbor:"1,keyasint"`

	// Kind names the behavioral variant (base, conditional, gated, ...).
	Kind string `cbor:"2,keyasint,omitempty"`
}

// PolicyEvent records a rejected write on a gated control.
type PolicyEvent struct {
	// Control is the name of the control the write targeted.
	Control string `cbor:"1,keyasint"`

	// Reason is the registered human-readable rejection reason.
	Reason string `cbor:"2,keyasint"`
}

// ErrorEvent captures failures at any layer.
type ErrorEvent struct {
	// Message is the error text.
	Message string `cbor:"1,keyasint"`

	// Context describes what operation was being performed.
	Context string `cbor:"2,keyasint,omitempty"`
}
