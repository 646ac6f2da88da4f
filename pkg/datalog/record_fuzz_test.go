//go:build fuzz
// +build fuzz

package datalog

import (
	"bytes"
	"testing"
)

// FuzzFrameCodec_RoundTrip tests encode/decode round-trip with random inputs
func FuzzFrameCodec_RoundTrip(f *testing.F) {
	codec := NewFrameCodec()

	f.Add(uint32(1), uint64(0), []byte(""))
	f.Add(uint32(42), uint64(1_000_000), []byte("value"))
	f.Add(^uint32(0), ^uint64(0), []byte{0x00, 0x01, 0x02})

	f.Fuzz(func(t *testing.T, id uint32, ts uint64, payload []byte) {
		if len(payload) > 100000 {
			t.Skip("Input too large for fuzz test")
		}

		encoded, err := codec.Encode(Frame{EntryID: id, Timestamp: ts, Payload: payload})
		if err != nil {
			t.Fatalf("Encode failed: %v", err)
		}

		frame, n, err := codec.Decode(encoded)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if n != len(encoded) {
			t.Errorf("consumed %d of %d bytes", n, len(encoded))
		}
		if frame.EntryID != id || frame.Timestamp != ts {
			t.Errorf("header mismatch: got (%d, %d), want (%d, %d)", frame.EntryID, frame.Timestamp, id, ts)
		}
		if !bytes.Equal(frame.Payload, payload) {
			t.Errorf("payload mismatch: got %q, want %q", frame.Payload, payload)
		}
	})
}

// FuzzDecode checks that arbitrary input never panics and that a failed
// decode never returns a log.
func FuzzDecode(f *testing.F) {
	f.Add([]byte("WPILOG\x00\x01\x00\x00\x00\x00"))
	f.Add([]byte("WPILOG\x00\x01\x00\x00\x00\x00\x00\x01\x00\x00"))
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, data []byte) {
		log, err := Decode(bytes.NewReader(data))
		if err != nil && log != nil {
			t.Fatalf("partial log returned with error %v", err)
		}
	})
}
