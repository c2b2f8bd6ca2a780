package log

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func sampleEvent(session string, cat Category) Event {
	e := Event{
		Timestamp: time.Now().UTC(),
		SessionID: session,
		Category:  cat,
		Serial:    "AABBCCDDEEFF",
	}
	switch cat {
	case CategoryTransport:
		e.Command = &CommandEvent{Opcode: 0x10, Mnemonic: "GVD", ResponseLen: 1024}
	case CategoryPolicy:
		e.Policy = &PolicyEvent{Control: "emitter-on-off", Reason: "Emitter ON/OFF cannot be set while HDR is enabled"}
	case CategoryCapability:
		e.Capability = &CapabilityEvent{FirmwareVersion: "5.12.8.100", Mask: 0x81, MaskText: "ACTIVE_PROJECTOR|GLOBAL_SHUTTER"}
	}
	return e
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := sampleEvent("s1", CategoryPolicy)

	data, err := EncodeEvent(in)
	require.NoError(t, err)

	out, err := DecodeEvent(data)
	require.NoError(t, err)
	require.Equal(t, in.SessionID, out.SessionID)
	require.Equal(t, in.Category, out.Category)
	require.NotNil(t, out.Policy)
	require.Equal(t, in.Policy.Reason, out.Policy.Reason)
	require.Nil(t, out.Command)
}

func TestFileLoggerAndReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.dlog")

	fl, err := NewFileLogger(path)
	require.NoError(t, err)

	fl.Log(sampleEvent("s1", CategoryTransport))
	fl.Log(sampleEvent("s2", CategoryCapability))
	fl.Log(sampleEvent("s1", CategoryPolicy))
	require.NoError(t, fl.Close())

	// Log after close is a silent no-op.
	fl.Log(sampleEvent("s1", CategoryError))

	r, err := NewFilteredReader(path, Filter{SessionID: "s1"})
	require.NoError(t, err)
	defer r.Close()

	var got []Event
	for {
		e, err := r.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, e)
	}
	require.Len(t, got, 2)
	require.Equal(t, CategoryTransport, got[0].Category)
	require.Equal(t, CategoryPolicy, got[1].Category)
}

func TestFilterByCategory(t *testing.T) {
	cat := CategoryPolicy
	f := Filter{Category: &cat}
	if !f.matches(sampleEvent("x", CategoryPolicy)) {
		t.Error("filter must match its own category")
	}
	if f.matches(sampleEvent("x", CategoryTransport)) {
		t.Error("filter must reject other categories")
	}
}

func TestMultiLoggerFansOut(t *testing.T) {
	var a, b recorder
	m := NewMultiLogger(&a, &b)
	m.Log(sampleEvent("s1", CategoryTransport))

	if len(a.events) != 1 || len(b.events) != 1 {
		t.Errorf("expected 1 event in each logger, got %d and %d", len(a.events), len(b.events))
	}
}

type recorder struct{ events []Event }

func (r *recorder) Log(e Event) { r.events = append(r.events, e) }

func TestCategoryString(t *testing.T) {
	if CategoryPolicy.String() != "POLICY" || Category(200).String() != "UNKNOWN" {
		t.Error("unexpected category rendering")
	}
}
