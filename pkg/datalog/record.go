package datalog

import (
	"encoding/binary"
	"fmt"
	"math/bits"
)

const (
	// Signature opens every container.
	Signature = "WPILOG"
	// Version is the container version written by Writer.
	Version uint16 = 0x0100

	headerFixedSize = len(Signature) + 2 + 4
	controlEntryID  = 0
	reservedBit     = 0x80
)

// Frame is one record as it appears in the container, before its payload is
// interpreted.
type Frame struct {
	EntryID   uint32
	Timestamp uint64
	Payload   []byte
}

// Size returns the encoded size of the frame.
func (f Frame) Size() int {
	return 1 + uintWidth(uint64(f.EntryID)) + uintWidth(uint64(len(f.Payload))) + uintWidth(f.Timestamp) + len(f.Payload)
}

// FrameCodec handles serialization and deserialization of frames
type FrameCodec struct{}

// NewFrameCodec creates a new frame codec instance
func NewFrameCodec() *FrameCodec {
	return &FrameCodec{}
}

// Encode serializes a frame using the narrowest field widths that hold its values.
func (c *FrameCodec) Encode(f Frame) ([]byte, error) {
	if uint64(len(f.Payload)) > uint64(^uint32(0)) {
		return nil, fmt.Errorf("payload too large: %d bytes", len(f.Payload))
	}

	idLen := uintWidth(uint64(f.EntryID))
	sizeLen := uintWidth(uint64(len(f.Payload)))
	tsLen := uintWidth(f.Timestamp)

	buf := make([]byte, 0, f.Size())
	buf = append(buf, byte(idLen-1)|byte(sizeLen-1)<<2|byte(tsLen-1)<<4)
	buf = appendUint(buf, uint64(f.EntryID), idLen)
	buf = appendUint(buf, uint64(len(f.Payload)), sizeLen)
	buf = appendUint(buf, f.Timestamp, tsLen)
	buf = append(buf, f.Payload...)

	return buf, nil
}

// Decode deserializes the frame at the start of data and returns it with
// the number of bytes consumed. The payload aliases data.
func (c *FrameCodec) Decode(data []byte) (Frame, int, error) {
	if len(data) < 1 {
		return Frame{}, 0, ErrTruncated
	}
	idLen, sizeLen, tsLen, err := c.fieldWidths(data[0])
	if err != nil {
		return Frame{}, 0, err
	}

	headerLen := 1 + idLen + sizeLen + tsLen
	if len(data) < headerLen {
		return Frame{}, 0, ErrTruncated
	}

	f, size := c.decodeFields(data[1:headerLen], idLen, sizeLen)
	if uint64(len(data)-headerLen) < size {
		return Frame{}, 0, ErrTruncated
	}
	end := headerLen + int(size)
	f.Payload = data[headerLen:end]

	return f, end, nil
}

// fieldWidths unpacks the lengths byte that opens every frame.
func (c *FrameCodec) fieldWidths(lengths byte) (idLen, sizeLen, tsLen int, err error) {
	if lengths&reservedBit != 0 {
		return 0, 0, 0, ErrMalformedRecord
	}
	idLen = int(lengths&0x03) + 1
	sizeLen = int((lengths>>2)&0x03) + 1
	tsLen = int((lengths>>4)&0x07) + 1
	return idLen, sizeLen, tsLen, nil
}

// decodeFields reads entry ID, payload size and timestamp from fields, which
// holds exactly those three integers.
func (c *FrameCodec) decodeFields(fields []byte, idLen, sizeLen int) (Frame, uint64) {
	id := readUint(fields[:idLen])
	size := readUint(fields[idLen : idLen+sizeLen])
	ts := readUint(fields[idLen+sizeLen:])
	return Frame{EntryID: uint32(id), Timestamp: ts}, size
}

// uintWidth returns the number of bytes needed to hold v, at least one.
func uintWidth(v uint64) int {
	n := (bits.Len64(v) + 7) / 8
	if n == 0 {
		return 1
	}
	return n
}

func appendUint(buf []byte, v uint64, width int) []byte {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	return append(buf, tmp[:width]...)
}

func readUint(b []byte) uint64 {
	var v uint64
	for i := len(b) - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}
