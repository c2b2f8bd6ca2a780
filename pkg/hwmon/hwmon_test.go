package hwmon

import (
	"errors"
	"testing"
)

type fakeTransport struct {
	resp  []byte
	err   error
	calls int
	last  Command
}

func (f *fakeTransport) Send(cmd Command) ([]byte, error) {
	f.calls++
	f.last = cmd
	return f.resp, f.err
}

func TestNewCommand(t *testing.T) {
	cmd := NewCommand(GETINTCAL, 25, 7)
	if cmd.Opcode != GETINTCAL || cmd.Param1 != 25 || cmd.Param2 != 7 || cmd.Param3 != 0 {
		t.Errorf("unexpected command: %+v", cmd)
	}
}

func TestNewCommandTooManyParams(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for 5 parameters")
		}
	}()
	NewCommand(GVD, 1, 2, 3, 4, 5)
}

func TestFetchStatusBlob(t *testing.T) {
	blob := make([]byte, BufferSize+4)
	ft := &fakeTransport{resp: blob}

	got, err := FetchStatusBlob(ft)
	if err != nil {
		t.Fatalf("FetchStatusBlob: %v", err)
	}
	if len(got) != BufferSize {
		t.Errorf("expected %d bytes, got %d", BufferSize, len(got))
	}
	if ft.last.Opcode != GVD {
		t.Errorf("expected GVD command, got %s", ft.last.Opcode)
	}
}

func TestFetchStatusBlobShort(t *testing.T) {
	ft := &fakeTransport{resp: make([]byte, 16)}
	if _, err := FetchStatusBlob(ft); !errors.Is(err, ErrShortResponse) {
		t.Errorf("expected ErrShortResponse, got %v", err)
	}
}

func TestFetchStatusBlobTransportFailure(t *testing.T) {
	sentinel := errors.New("usb gone")
	ft := &fakeTransport{err: sentinel}
	if _, err := FetchStatusBlob(ft); !errors.Is(err, sentinel) {
		t.Errorf("expected wrapped transport error, got %v", err)
	}
}

func TestVersionString(t *testing.T) {
	blob := make([]byte, 32)
	// Components stored in reverse order: build, patch, minor, major.
	blob[12], blob[13], blob[14], blob[15] = 100, 8, 12, 5

	got, err := VersionString(blob, 12)
	if err != nil {
		t.Fatalf("VersionString: %v", err)
	}
	if got != "5.12.8.100" {
		t.Errorf("expected 5.12.8.100, got %q", got)
	}

	if _, err := VersionString(blob, 30); !errors.Is(err, ErrShortResponse) {
		t.Errorf("expected ErrShortResponse, got %v", err)
	}
}

func TestSerialString(t *testing.T) {
	blob := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	got, err := SerialString(blob, 0, 4)
	if err != nil {
		t.Fatalf("SerialString: %v", err)
	}
	if got != "DEADBEEF" {
		t.Errorf("expected DEADBEEF, got %q", got)
	}
}

func TestReadUint32(t *testing.T) {
	resp := []byte{0x01, 0x02, 0x03, 0x04}
	got, err := ReadUint32(resp, 0)
	if err != nil {
		t.Fatalf("ReadUint32: %v", err)
	}
	if got != 0x04030201 {
		t.Errorf("expected little-endian decode, got 0x%08X", got)
	}
	if _, err := ReadUint32(resp, 2); !errors.Is(err, ErrShortResponse) {
		t.Errorf("expected ErrShortResponse, got %v", err)
	}
}
