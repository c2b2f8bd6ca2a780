// Package hwmon models the hardware monitor command surface of the depth
// camera firmware.
//
// The package owns the command vocabulary and the helpers that pick fields
// out of the firmware status blob (GVD). The actual round-trip is performed
// by a Transport implementation supplied by the platform layer; this core
// never talks to USB directly.
package hwmon

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Opcode is a hardware monitor command opcode.
type Opcode uint32

// Hardware monitor opcodes. The numeric values are part of the firmware's
// wire contract.
const (
	MRD            Opcode = 0x01 // register read
	FRB            Opcode = 0x09 // flash read
	GLD            Opcode = 0x0F // firmware log dump
	GVD            Opcode = 0x10 // firmware status blob
	GETINTCAL      Opcode = 0x15 // calibration table read
	HWRST          Opcode = 0x20 // hardware reset
	DUNITSGET      Opcode = 0x62 // depth unit read
	DUNITSSET      Opcode = 0x63 // depth unit write
	LASERONCONST   Opcode = 0x51 // emitter always-on state
	CAMSYNCGET     Opcode = 0x58 // inter-camera sync mode read
	CAMSYNCSET     Opcode = 0x59 // inter-camera sync mode write
	EMITTERTOGGLE  Opcode = 0x5A // legacy emitter on/off toggle
	RECPARAMSGET   Opcode = 0x74 // resolution-indexed calibration table
	SETSUBPRESET   Opcode = 0x7B // upload a sub-preset
	GETSUBPRESET   Opcode = 0x7C // download the active sub-preset
	GETSUBPRESETID Opcode = 0x7D // active sub-preset identifier
)

// String returns the conventional opcode mnemonic.
func (op Opcode) String() string {
	switch op {
	case MRD:
		return "MRD"
	case FRB:
		return "FRB"
	case GLD:
		return "GLD"
	case GVD:
		return "GVD"
	case GETINTCAL:
		return "GETINTCAL"
	case HWRST:
		return "HWRST"
	case DUNITSGET:
		return "DUNITSGET"
	case DUNITSSET:
		return "DUNITSSET"
	case LASERONCONST:
		return "LASERONCONST"
	case CAMSYNCGET:
		return "CAMSYNCGET"
	case CAMSYNCSET:
		return "CAMSYNCSET"
	case EMITTERTOGGLE:
		return "EMITTERTOGGLE"
	case RECPARAMSGET:
		return "RECPARAMSGET"
	case SETSUBPRESET:
		return "SETSUBPRESET"
	case GETSUBPRESET:
		return "GETSUBPRESET"
	case GETSUBPRESETID:
		return "GETSUBPRESETID"
	default:
		return fmt.Sprintf("Opcode(0x%02X)", uint32(op))
	}
}

// Command is a single hardware monitor round-trip request.
type Command struct {
	Opcode Opcode
	Param1 uint32
	Param2 uint32
	Param3 uint32
	Param4 uint32
	Data   []byte
}

// NewCommand builds a command with up to four positional parameters.
func NewCommand(op Opcode, params ...uint32) Command {
	cmd := Command{Opcode: op}
	p := []*uint32{&cmd.Param1, &cmd.Param2, &cmd.Param3, &cmd.Param4}
	if len(params) > len(p) {
		panic(fmt.Sprintf("hwmon: command %s built with %d parameters", op, len(params)))
	}
	for i, v := range params {
		*p[i] = v
	}
	return cmd
}

// Transport performs one hardware monitor round-trip. Implementations own
// retry and timeout policy; from this core's perspective a call either
// returns the response payload or fails.
type Transport interface {
	Send(cmd Command) ([]byte, error)
}

// BufferSize is the fixed size of the firmware status blob.
const BufferSize = 1024

// ErrShortResponse indicates a response payload smaller than the field
// being extracted from it.
var ErrShortResponse = errors.New("hwmon: response shorter than expected")

// FetchStatusBlob retrieves the firmware status blob. The returned slice is
// always BufferSize long; shorter transport responses are rejected.
func FetchStatusBlob(t Transport) ([]byte, error) {
	resp, err := t.Send(NewCommand(GVD))
	if err != nil {
		return nil, fmt.Errorf("hwmon: GVD round-trip: %w", err)
	}
	if len(resp) < BufferSize {
		return nil, fmt.Errorf("%w: GVD returned %d bytes", ErrShortResponse, len(resp))
	}
	return resp[:BufferSize], nil
}

// VersionString extracts a 4-byte firmware version field at offset. The
// blob stores components in reverse order (build first).
func VersionString(blob []byte, offset int) (string, error) {
	if len(blob) < offset+4 {
		return "", fmt.Errorf("%w: version field at %d", ErrShortResponse, offset)
	}
	return fmt.Sprintf("%d.%d.%d.%d", blob[offset+3], blob[offset+2], blob[offset+1], blob[offset]), nil
}

// SerialString extracts a serial number field of size bytes at offset,
// rendered as uppercase hex.
func SerialString(blob []byte, offset, size int) (string, error) {
	if len(blob) < offset+size {
		return "", fmt.Errorf("%w: serial field at %d", ErrShortResponse, offset)
	}
	return fmt.Sprintf("%X", blob[offset:offset+size]), nil
}

// ReadUint32 reads a little-endian uint32 from a response payload.
func ReadUint32(resp []byte, offset int) (uint32, error) {
	if len(resp) < offset+4 {
		return 0, fmt.Errorf("%w: u32 at %d", ErrShortResponse, offset)
	}
	return binary.LittleEndian.Uint32(resp[offset:]), nil
}
