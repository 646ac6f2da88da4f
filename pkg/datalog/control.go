package datalog

import (
	"encoding/binary"
	"fmt"
)

type controlKind byte

const (
	controlStart       controlKind = 0
	controlFinish      controlKind = 1
	controlSetMetadata controlKind = 2
)

// control is a decoded entry-0 record.
type control struct {
	kind     controlKind
	entryID  uint32
	name     string
	typ      string
	metadata string
}

func parseControl(payload []byte) (control, error) {
	if len(payload) < 5 {
		return control{}, fmt.Errorf("%w: %d byte payload", ErrMalformedControl, len(payload))
	}

	c := control{
		kind:    controlKind(payload[0]),
		entryID: binary.LittleEndian.Uint32(payload[1:5]),
	}
	rest := payload[5:]

	var err error
	switch c.kind {
	case controlStart:
		if c.name, rest, err = readString(rest); err != nil {
			return control{}, err
		}
		if c.typ, rest, err = readString(rest); err != nil {
			return control{}, err
		}
		if c.metadata, rest, err = readString(rest); err != nil {
			return control{}, err
		}
	case controlFinish:
	case controlSetMetadata:
		if c.metadata, rest, err = readString(rest); err != nil {
			return control{}, err
		}
	default:
		return control{}, fmt.Errorf("%w: unknown control type %d", ErrMalformedControl, c.kind)
	}

	if len(rest) != 0 {
		return control{}, fmt.Errorf("%w: %d trailing bytes", ErrMalformedControl, len(rest))
	}
	if c.entryID == controlEntryID {
		return control{}, fmt.Errorf("%w: control record targets entry 0", ErrMalformedControl)
	}
	return c, nil
}

func (c control) encode() []byte {
	buf := make([]byte, 0, 17+len(c.name)+len(c.typ)+len(c.metadata))
	buf = append(buf, byte(c.kind))
	buf = binary.LittleEndian.AppendUint32(buf, c.entryID)
	switch c.kind {
	case controlStart:
		buf = appendString(buf, c.name)
		buf = appendString(buf, c.typ)
		buf = appendString(buf, c.metadata)
	case controlSetMetadata:
		buf = appendString(buf, c.metadata)
	}
	return buf
}

// readString reads a uint32 length-prefixed string.
func readString(b []byte) (string, []byte, error) {
	if len(b) < 4 {
		return "", nil, fmt.Errorf("%w: missing string length", ErrMalformedControl)
	}
	n := binary.LittleEndian.Uint32(b)
	b = b[4:]
	if uint64(len(b)) < uint64(n) {
		return "", nil, fmt.Errorf("%w: string length %d exceeds payload", ErrMalformedControl, n)
	}
	return string(b[:n]), b[n:], nil
}

func appendString(buf []byte, s string) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(s)))
	return append(buf, s...)
}
