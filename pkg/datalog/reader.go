package datalog

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ssargent/oxdash/pkg/value"
)

const smallPayload = 64 << 10

// Header is the container preamble.
type Header struct {
	Version uint16
	Extra   string
}

// Entry is one declaration of a named, typed signal.
type Entry struct {
	ID       uint32
	Name     string
	Type     string
	Metadata string
}

// Record is one timestamped value, bound to the declaration that was active
// for its entry ID when it was read.
type Record struct {
	EntryID   uint32
	Timestamp uint64
	Value     value.Variant
	Entry     *Entry
}

// Log is a fully decoded container.
type Log struct {
	Header  Header
	Entries []*Entry // every declaration, in the order it appeared
	Records []Record // data records, in container order
}

// EntryTable maps each entry ID to the name it was last declared with.
func (l *Log) EntryTable() map[uint32]string {
	table := make(map[uint32]string, len(l.Entries))
	for _, e := range l.Entries {
		table[e.ID] = e.Name
	}
	return table
}

// LogReader provides sequential access to the data records of a container.
// Control records are applied to the entry table as they are encountered.
type LogReader struct {
	reader  *bufio.Reader
	codec   *FrameCodec
	offset  int64
	header  Header
	active  map[uint32]*Entry
	entries []*Entry
	scratch [16]byte
}

// NewLogReader reads and validates the container header from r.
func NewLogReader(r io.Reader) (*LogReader, error) {
	lr := &LogReader{
		reader: bufio.NewReader(r),
		codec:  NewFrameCodec(),
		active: make(map[uint32]*Entry),
	}
	if err := lr.readHeader(); err != nil {
		return nil, err
	}
	return lr, nil
}

func (r *LogReader) readHeader() error {
	fixed := make([]byte, headerFixedSize)
	n, err := io.ReadFull(r.reader, fixed)
	r.offset += int64(n)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return formatErr(0, ErrBadSignature, "header is %d bytes", n)
		}
		return err
	}

	if string(fixed[:len(Signature)]) != Signature {
		return formatErr(0, ErrBadSignature, "got %q", fixed[:len(Signature)])
	}
	version := binary.LittleEndian.Uint16(fixed[len(Signature):])
	if version>>8 != Version>>8 {
		return formatErr(int64(len(Signature)), ErrUnsupportedVersion, "0x%04x", version)
	}

	extraLen := binary.LittleEndian.Uint32(fixed[len(Signature)+2:])
	extra := make([]byte, 0, min(int64(extraLen), 1<<16))
	buf := make([]byte, 4096)
	for remaining := int64(extraLen); remaining > 0; {
		chunk := buf[:min(remaining, int64(len(buf)))]
		n, err := io.ReadFull(r.reader, chunk)
		r.offset += int64(n)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return formatErr(int64(headerFixedSize), ErrTruncated, "extra header wants %d bytes", extraLen)
			}
			return err
		}
		extra = append(extra, chunk...)
		remaining -= int64(n)
	}

	r.header = Header{Version: version, Extra: string(extra)}
	return nil
}

// Header returns the container header.
func (r *LogReader) Header() Header {
	return r.header
}

// Entries returns every declaration seen so far.
func (r *LogReader) Entries() []*Entry {
	return r.entries
}

// Offset returns the current read offset
func (r *LogReader) Offset() int64 {
	return r.offset
}

// ReadNext returns the next data record. It returns io.EOF when the
// container ends cleanly on a frame boundary and a *FormatError for any
// framing inconsistency.
func (r *LogReader) ReadNext() (*Record, error) {
	for {
		start := r.offset
		frame, err := r.readFrame()
		if err != nil {
			return nil, err
		}

		if frame.EntryID == controlEntryID {
			if err := r.applyControl(start, frame.Payload); err != nil {
				return nil, err
			}
			continue
		}

		entry, ok := r.active[frame.EntryID]
		if !ok {
			return nil, formatErr(start, ErrUnknownEntry, "entry %d", frame.EntryID)
		}
		v, err := decodePayload(entry.Type, frame.Payload)
		if err != nil {
			return nil, &FormatError{Offset: start, Err: ErrMalformedPayload, Detail: fmt.Sprintf("entry %q: %v", entry.Name, err)}
		}

		return &Record{
			EntryID:   frame.EntryID,
			Timestamp: frame.Timestamp,
			Value:     v,
			Entry:     entry,
		}, nil
	}
}

// readFrame reads one frame. A clean end of input before the lengths byte
// is io.EOF; an end anywhere later is truncation.
func (r *LogReader) readFrame() (Frame, error) {
	start := r.offset
	lengths, err := r.reader.ReadByte()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Frame{}, io.EOF
		}
		return Frame{}, err
	}
	r.offset++

	idLen, sizeLen, tsLen, err := r.codec.fieldWidths(lengths)
	if err != nil {
		return Frame{}, formatErr(start, err, "lengths byte 0x%02x", lengths)
	}

	fields := r.scratch[:idLen+sizeLen+tsLen]
	n, err := io.ReadFull(r.reader, fields)
	r.offset += int64(n)
	if err != nil {
		return Frame{}, r.truncation(start, err, "record header")
	}

	frame, size := r.codec.decodeFields(fields, idLen, sizeLen)
	if frame.Payload, err = r.readPayload(size); err != nil {
		return Frame{}, r.truncation(start, err, "payload wants %d bytes", size)
	}

	return frame, nil
}

// readPayload reads size bytes. Large declared sizes are read incrementally
// so a corrupt size field cannot force a huge allocation up front.
func (r *LogReader) readPayload(size uint64) ([]byte, error) {
	if size <= smallPayload {
		payload := make([]byte, size)
		n, err := io.ReadFull(r.reader, payload)
		r.offset += int64(n)
		return payload, err
	}

	var buf bytes.Buffer
	n, err := io.CopyN(&buf, r.reader, int64(size))
	r.offset += n
	return buf.Bytes(), err
}

func (r *LogReader) truncation(start int64, err error, format string, args ...any) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return formatErr(start, ErrTruncated, format, args...)
	}
	return err
}

func (r *LogReader) applyControl(start int64, payload []byte) error {
	c, err := parseControl(payload)
	if err != nil {
		return &FormatError{Offset: start, Err: ErrMalformedControl, Detail: err.Error()}
	}

	switch c.kind {
	case controlStart:
		if existing, ok := r.active[c.entryID]; ok {
			return formatErr(start, ErrDuplicateEntry, "entry %d (%q)", c.entryID, existing.Name)
		}
		entry := &Entry{ID: c.entryID, Name: c.name, Type: c.typ, Metadata: c.metadata}
		r.active[c.entryID] = entry
		r.entries = append(r.entries, entry)
	case controlFinish:
		if _, ok := r.active[c.entryID]; !ok {
			return formatErr(start, ErrUnknownEntry, "finish for entry %d", c.entryID)
		}
		delete(r.active, c.entryID)
	case controlSetMetadata:
		entry, ok := r.active[c.entryID]
		if !ok {
			return formatErr(start, ErrUnknownEntry, "metadata for entry %d", c.entryID)
		}
		entry.Metadata = c.metadata
	}
	return nil
}

// Iterator returns a streaming iterator for records
func (r *LogReader) Iterator() RecordIterator {
	return &logRecordIterator{reader: r}
}

// RecordIterator provides streaming access to records
type RecordIterator interface {
	Next() bool
	Record() *Record
	Err() error
}

type logRecordIterator struct {
	reader *LogReader
	record *Record
	err    error
}

func (it *logRecordIterator) Next() bool {
	if it.err != nil {
		return false
	}
	it.record, it.err = it.reader.ReadNext()
	return it.err == nil
}

func (it *logRecordIterator) Record() *Record {
	return it.record
}

// Err returns the error that stopped iteration, or nil at a clean end.
func (it *logRecordIterator) Err() error {
	if errors.Is(it.err, io.EOF) {
		return nil
	}
	return it.err
}

// Decode reads an entire container. It either returns the complete log or
// an error; a partially decoded log is never returned.
func Decode(r io.Reader) (*Log, error) {
	lr, err := NewLogReader(r)
	if err != nil {
		return nil, err
	}

	var records []Record
	it := lr.Iterator()
	for it.Next() {
		records = append(records, *it.Record())
	}
	if err := it.Err(); err != nil {
		return nil, err
	}

	return &Log{
		Header:  lr.Header(),
		Entries: lr.Entries(),
		Records: records,
	}, nil
}

// OpenFile decodes the container at path. Gzip and zstd compressed files are
// recognised by their magic bytes and decompressed on the fly.
func OpenFile(path string) (*Log, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	rc, err := NewDecompressingReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer rc.Close()

	return Decode(rc)
}
