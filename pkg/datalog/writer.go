package datalog

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"sync"

	"github.com/ssargent/oxdash/pkg/value"
)

// Writer produces a container. It is safe for concurrent use.
type Writer struct {
	writer *bufio.Writer
	codec  *FrameCodec
	mutex  sync.Mutex
	nextID uint32
	active map[uint32]string // entry ID -> declared type
	offset int64
}

// NewWriter writes the container header to w and returns a writer for records.
func NewWriter(w io.Writer, extraHeader string) (*Writer, error) {
	lw := &Writer{
		writer: bufio.NewWriter(w),
		codec:  NewFrameCodec(),
		nextID: 1,
		active: make(map[uint32]string),
	}

	header := make([]byte, 0, headerFixedSize+len(extraHeader))
	header = append(header, Signature...)
	header = binary.LittleEndian.AppendUint16(header, Version)
	header = appendString(header, extraHeader)
	if err := lw.write(header); err != nil {
		return nil, err
	}

	return lw, nil
}

// Start declares a new entry and returns its ID.
func (w *Writer) Start(name, typ, metadata string, timestamp uint64) (uint32, error) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	id := w.nextID
	w.nextID++
	c := control{kind: controlStart, entryID: id, name: name, typ: typ, metadata: metadata}
	if err := w.writeFrame(Frame{EntryID: controlEntryID, Timestamp: timestamp, Payload: c.encode()}); err != nil {
		return 0, err
	}
	w.active[id] = typ
	return id, nil
}

// Finish retires an entry. Its ID is not reused by this writer.
func (w *Writer) Finish(id uint32, timestamp uint64) error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if _, ok := w.active[id]; !ok {
		return fmt.Errorf("entry %d is not active", id)
	}
	c := control{kind: controlFinish, entryID: id}
	if err := w.writeFrame(Frame{EntryID: controlEntryID, Timestamp: timestamp, Payload: c.encode()}); err != nil {
		return err
	}
	delete(w.active, id)
	return nil
}

// SetMetadata replaces the metadata string of an active entry.
func (w *Writer) SetMetadata(id uint32, metadata string, timestamp uint64) error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if _, ok := w.active[id]; !ok {
		return fmt.Errorf("entry %d is not active", id)
	}
	c := control{kind: controlSetMetadata, entryID: id, metadata: metadata}
	return w.writeFrame(Frame{EntryID: controlEntryID, Timestamp: timestamp, Payload: c.encode()})
}

// Append writes one value for an active entry. The value is encoded as is;
// it is the caller's job to match the entry's declared type.
func (w *Writer) Append(id uint32, timestamp uint64, v value.Variant) error {
	return w.AppendRaw(id, timestamp, encodePayload(v))
}

// AppendRaw writes an already encoded payload for an active entry.
func (w *Writer) AppendRaw(id uint32, timestamp uint64, payload []byte) error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if _, ok := w.active[id]; !ok {
		return fmt.Errorf("entry %d is not active", id)
	}
	return w.writeFrame(Frame{EntryID: id, Timestamp: timestamp, Payload: payload})
}

// Offset returns the number of bytes written so far.
func (w *Writer) Offset() int64 {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.offset
}

// Flush writes any buffered data to the underlying writer.
func (w *Writer) Flush() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.writer.Flush()
}

func (w *Writer) writeFrame(f Frame) error {
	data, err := w.codec.Encode(f)
	if err != nil {
		return err
	}
	return w.write(data)
}

func (w *Writer) write(data []byte) error {
	n, err := w.writer.Write(data)
	w.offset += int64(n)
	return err
}
