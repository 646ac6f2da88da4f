package datalog

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/oxdash/pkg/value"
)

// buildLog runs fn against a fresh writer and returns the encoded container.
func buildLog(t *testing.T, fn func(w *Writer)) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := NewWriter(&buf, "test")
	require.NoError(t, err)
	fn(w)
	require.NoError(t, w.Flush())
	return buf.Bytes()
}

// rawFrame encodes an arbitrary frame, bypassing Writer bookkeeping.
func rawFrame(t *testing.T, f Frame) []byte {
	t.Helper()
	data, err := NewFrameCodec().Encode(f)
	require.NoError(t, err)
	return data
}

func TestDecode(t *testing.T) {
	data := buildLog(t, func(w *Writer) {
		id, err := w.Start("/Robot/Enabled", TypeBoolean, "", 0)
		require.NoError(t, err)
		require.NoError(t, w.Append(id, 1, value.Boolean(true)))
		require.NoError(t, w.Append(id, 2, value.Boolean(false)))
	})

	log, err := Decode(bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, Version, log.Header.Version)
	assert.Equal(t, "test", log.Header.Extra)
	require.Len(t, log.Entries, 1)
	assert.Equal(t, map[uint32]string{1: "/Robot/Enabled"}, log.EntryTable())

	require.Len(t, log.Records, 2)
	assert.Equal(t, uint64(1), log.Records[0].Timestamp)
	assert.Equal(t, value.Boolean(true), log.Records[0].Value)
	assert.Equal(t, uint64(2), log.Records[1].Timestamp)
	assert.Equal(t, value.Boolean(false), log.Records[1].Value)
	assert.Same(t, log.Entries[0], log.Records[0].Entry)
}

func TestDecode_HeaderOnly(t *testing.T) {
	data := buildLog(t, func(w *Writer) {})

	log, err := Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Empty(t, log.Entries)
	assert.Empty(t, log.Records)
}

func TestDecode_AllTypes(t *testing.T) {
	values := []value.Variant{
		value.Raw{1, 2, 3},
		value.Boolean(true),
		value.Int64(-7),
		value.Float(1.5),
		value.Double(2.25),
		value.String("text"),
		value.BooleanArray{true, false, true},
		value.Int64Array{1, -1},
		value.FloatArray{0.5, 1.5},
		value.DoubleArray{3.5},
		value.StringArray{"a", "", "ccc"},
		value.Struct{Schema: "Pose2d", Data: []byte{9, 9}},
		value.StructArray{Schema: "Pose2d", Data: []byte{1, 2, 3, 4}},
	}

	data := buildLog(t, func(w *Writer) {
		for i, v := range values {
			id, err := w.Start(TypeOf(v)+"/entry", TypeOf(v), "", uint64(i))
			require.NoError(t, err)
			require.NoError(t, w.Append(id, uint64(i), v))
		}
	})

	log, err := Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, log.Records, len(values))
	for i, v := range values {
		assert.Equal(t, v, log.Records[i].Value, "record %d (%s)", i, v.Kind())
	}
}

func TestDecode_JSONAndUnknownTypes(t *testing.T) {
	data := buildLog(t, func(w *Writer) {
		jsonID, err := w.Start("/meta", TypeJSON, "", 0)
		require.NoError(t, err)
		require.NoError(t, w.AppendRaw(jsonID, 1, []byte(`{"a":1}`)))

		otherID, err := w.Start("/proto", "proto:Foo", "", 0)
		require.NoError(t, err)
		require.NoError(t, w.AppendRaw(otherID, 2, []byte{0xde, 0xad}))
	})

	log, err := Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, log.Records, 2)
	assert.Equal(t, value.String(`{"a":1}`), log.Records[0].Value)
	assert.Equal(t, value.Raw{0xde, 0xad}, log.Records[1].Value)
}

func TestDecode_EmptyScalarIsVoid(t *testing.T) {
	data := buildLog(t, func(w *Writer) {
		id, err := w.Start("/x", TypeDouble, "", 0)
		require.NoError(t, err)
		require.NoError(t, w.Append(id, 1, value.Void{}))
	})

	log, err := Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, log.Records, 1)
	assert.Equal(t, value.Void{}, log.Records[0].Value)
}

func TestDecode_EntryReuseAfterFinish(t *testing.T) {
	header := buildLog(t, func(w *Writer) {})
	start := func(id uint32, name string) []byte {
		c := control{kind: controlStart, entryID: id, name: name, typ: TypeInt64}
		return rawFrame(t, Frame{EntryID: controlEntryID, Payload: c.encode()})
	}
	finish := rawFrame(t, Frame{EntryID: controlEntryID, Payload: control{kind: controlFinish, entryID: 7}.encode()})
	sample := func(ts uint64, n int64) []byte {
		return rawFrame(t, Frame{EntryID: 7, Timestamp: ts, Payload: binary.LittleEndian.AppendUint64(nil, uint64(n))})
	}

	data := bytes.Join([][]byte{header, start(7, "first"), sample(1, 10), finish, start(7, "second"), sample(2, 20)}, nil)

	log, err := Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, log.Entries, 2)
	require.Len(t, log.Records, 2)
	assert.Equal(t, "first", log.Records[0].Entry.Name)
	assert.Equal(t, "second", log.Records[1].Entry.Name)
	assert.Equal(t, map[uint32]string{7: "second"}, log.EntryTable())
}

func TestDecode_SetMetadata(t *testing.T) {
	data := buildLog(t, func(w *Writer) {
		id, err := w.Start("/x", TypeString, "initial", 0)
		require.NoError(t, err)
		require.NoError(t, w.SetMetadata(id, "updated", 1))
	})

	log, err := Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, log.Entries, 1)
	assert.Equal(t, "updated", log.Entries[0].Metadata)
}

func TestDecode_FormatErrors(t *testing.T) {
	valid := buildLog(t, func(w *Writer) {
		id, err := w.Start("/x", TypeInt64, "", 0)
		require.NoError(t, err)
		require.NoError(t, w.Append(id, 1, value.Int64(1)))
	})
	header := buildLog(t, func(w *Writer) {})
	startX := rawFrame(t, Frame{EntryID: controlEntryID, Payload: control{kind: controlStart, entryID: 1, name: "/x", typ: TypeInt64}.encode()})

	corruptSignature := append([]byte{}, valid...)
	corruptSignature[0] = 'X'

	badVersion := append([]byte{}, valid...)
	binary.LittleEndian.PutUint16(badVersion[len(Signature):], 0x0200)

	tests := []struct {
		name string
		data []byte
		err  error
	}{
		{name: "empty input", data: nil, err: ErrBadSignature},
		{name: "corrupted signature", data: corruptSignature, err: ErrBadSignature},
		{name: "unsupported version", data: badVersion, err: ErrUnsupportedVersion},
		{name: "truncated extra header", data: valid[:headerFixedSize+2], err: ErrTruncated},
		{name: "truncated final record", data: valid[:len(valid)-3], err: ErrTruncated},
		{
			name: "reserved bit",
			data: append(append([]byte{}, header...), 0x80, 0x01, 0x00, 0x00),
			err:  ErrMalformedRecord,
		},
		{
			name: "unknown entry",
			data: append(append([]byte{}, header...), rawFrame(t, Frame{EntryID: 9, Timestamp: 1})...),
			err:  ErrUnknownEntry,
		},
		{
			name: "duplicate start",
			data: bytes.Join([][]byte{header, startX, startX}, nil),
			err:  ErrDuplicateEntry,
		},
		{
			name: "finish unknown entry",
			data: append(append([]byte{}, header...), rawFrame(t, Frame{EntryID: controlEntryID, Payload: control{kind: controlFinish, entryID: 4}.encode()})...),
			err:  ErrUnknownEntry,
		},
		{
			name: "unknown control type",
			data: append(append([]byte{}, header...), rawFrame(t, Frame{EntryID: controlEntryID, Payload: []byte{9, 1, 0, 0, 0}})...),
			err:  ErrMalformedControl,
		},
		{
			name: "payload width mismatch",
			data: bytes.Join([][]byte{header, startX, rawFrame(t, Frame{EntryID: 1, Timestamp: 1, Payload: []byte{1, 2, 3}})}, nil),
			err:  ErrMalformedPayload,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := Decode(bytes.NewReader(tt.data))
			require.Error(t, err)
			assert.Nil(t, log)
			assert.ErrorIs(t, err, tt.err)
			assert.True(t, IsFormatError(err))
		})
	}
}

func TestLogReader_ReadNext_EOF(t *testing.T) {
	data := buildLog(t, func(w *Writer) {})

	reader, err := NewLogReader(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), reader.Offset())

	record, err := reader.ReadNext()
	assert.Nil(t, record)
	assert.Equal(t, io.EOF, err)
}

func TestLogReader_IteratorStopsOnError(t *testing.T) {
	valid := buildLog(t, func(w *Writer) {
		id, err := w.Start("/x", TypeBoolean, "", 0)
		require.NoError(t, err)
		require.NoError(t, w.Append(id, 1, value.Boolean(true)))
		require.NoError(t, w.Append(id, 2, value.Boolean(false)))
	})

	reader, err := NewLogReader(bytes.NewReader(valid[:len(valid)-1]))
	require.NoError(t, err)

	it := reader.Iterator()
	count := 0
	for it.Next() {
		count++
	}
	assert.Equal(t, 1, count)
	assert.ErrorIs(t, it.Err(), ErrTruncated)
	assert.False(t, it.Next())
}

func TestOpenFile_Compressed(t *testing.T) {
	data := buildLog(t, func(w *Writer) {
		id, err := w.Start("/x", TypeDouble, "", 0)
		require.NoError(t, err)
		require.NoError(t, w.Append(id, 10, value.Double(1.25)))
	})

	var gz bytes.Buffer
	gzw := gzip.NewWriter(&gz)
	_, err := gzw.Write(data)
	require.NoError(t, err)
	require.NoError(t, gzw.Close())

	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	zst := enc.EncodeAll(data, nil)
	require.NoError(t, enc.Close())

	tmpDir := t.TempDir()
	files := map[string][]byte{
		"plain.wpilog":   data,
		"log.wpilog.gz":  gz.Bytes(),
		"log.wpilog.zst": zst,
	}

	for name, contents := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(tmpDir, name)
			require.NoError(t, os.WriteFile(path, contents, 0600))

			log, err := OpenFile(path)
			require.NoError(t, err)
			require.Len(t, log.Records, 1)
			assert.Equal(t, value.Double(1.25), log.Records[0].Value)
		})
	}
}

func TestOpenFile_NonExistentFile(t *testing.T) {
	log, err := OpenFile("/non/existent/file.wpilog")
	assert.Error(t, err)
	assert.Nil(t, log)
	assert.False(t, IsFormatError(err))
}

func TestNewEncodingReader_Unsupported(t *testing.T) {
	_, err := NewEncodingReader(bytes.NewReader(nil), "br")
	assert.Error(t, err)
}
