package timeseries

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/oxdash/pkg/datalog"
	"github.com/ssargent/oxdash/pkg/value"
)

type sample struct {
	ts uint64
	v  value.Variant
}

type entrySpec struct {
	name    string
	typ     string
	samples []sample
}

// writeLog encodes entries into a container, one entry after another.
func writeLog(t *testing.T, entries ...entrySpec) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := datalog.NewWriter(&buf, "")
	require.NoError(t, err)
	for _, e := range entries {
		id, err := w.Start(e.name, e.typ, "", 0)
		require.NoError(t, err)
		for _, s := range e.samples {
			require.NoError(t, w.Append(id, s.ts, s.v))
		}
	}
	require.NoError(t, w.Flush())
	return buf.Bytes()
}

func writeFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.wpilog")
	require.NoError(t, os.WriteFile(path, data, 0600))
	return path
}

func TestRemap(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
	}{
		{raw: "NT:/foo/bar", expected: "/foo/bar"},
		{raw: "/foo", expected: "/AdvantageKit/foo"},
		{raw: "NT:", expected: ""},
		{raw: "NT:noslash", expected: "noslash"},
		{raw: "foo", expected: "/AdvantageKitfoo"},
		{raw: "", expected: "/AdvantageKit"},
		{raw: "nt:/lower", expected: "/AdvantageKitnt:/lower"},
		{raw: "/NT:/inner", expected: "/AdvantageKit/NT:/inner"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.expected, Remap(tt.raw))
		})
	}
}

func TestRemap_NonNetworkTablesKeysGetRoot(t *testing.T) {
	for _, raw := range []string{"/a", "b", "N", "NT", "N:/x", " NT:/x", "/RealOutputs/Drive"} {
		assert.True(t, strings.HasPrefix(Remap(raw), AdvantageKitRoot), raw)
	}
}

func TestReadLog_BooleanSeries(t *testing.T) {
	path := writeFile(t, writeLog(t, entrySpec{
		name:    "foo",
		typ:     datalog.TypeBoolean,
		samples: []sample{{1, value.Boolean(true)}, {2, value.Boolean(false)}},
	}))

	series, err := ReadLog(path)
	require.NoError(t, err)
	assert.Equal(t, Series{"/AdvantageKitfoo": {1: true, 2: false}}, series)
}

func TestReadLog_NonFiniteFloats(t *testing.T) {
	path := writeFile(t, writeLog(t,
		entrySpec{
			name: "NT:/Speed",
			typ:  datalog.TypeDouble,
			samples: []sample{
				{1, value.Double(1.5)},
				{2, value.Double(math.NaN())},
				{3, value.Double(math.Inf(1))},
				{4, value.Double(math.Copysign(0, -1))},
			},
		},
		entrySpec{
			name:    "NT:/Pose",
			typ:     datalog.TypeDoubleArray,
			samples: []sample{{1, value.DoubleArray{1, math.NaN(), 3}}},
		},
		entrySpec{
			name:    "NT:/Gyro",
			typ:     datalog.TypeFloat,
			samples: []sample{{1, value.Float(float32(math.Inf(-1)))}},
		},
	))

	series, err := ReadLog(path)
	require.NoError(t, err)
	assert.Nil(t, series["/Speed"][2])
	assert.Nil(t, series["/Speed"][3])
	assert.Equal(t, []any{1.0, nil, 3.0}, series["/Pose"][1])

	data, err := json.Marshal(series)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"/Speed": {"1": 1.5, "2": null, "3": null, "4": -0},
		"/Pose": {"1": [1, null, 3]},
		"/Gyro": {"1": null}
	}`, string(data))
}

func TestReadLog_NetworkTablesKey(t *testing.T) {
	path := writeFile(t, writeLog(t, entrySpec{
		name:    "NT:/x/y",
		typ:     datalog.TypeInt64,
		samples: []sample{{5, value.Int64(42)}},
	}))

	series, err := ReadLog(path)
	require.NoError(t, err)
	assert.Equal(t, Series{"/x/y": {5: int64(42)}}, series)
}

func TestReadLog_SlashKey(t *testing.T) {
	path := writeFile(t, writeLog(t, entrySpec{
		name:    "/foo",
		typ:     datalog.TypeBoolean,
		samples: []sample{{1, value.Boolean(true)}, {2, value.Boolean(false)}},
	}))

	series, err := ReadLog(path)
	require.NoError(t, err)
	assert.Equal(t, Series{"/AdvantageKit/foo": {1: true, 2: false}}, series)
}

func TestAssemble_LastWriteWins(t *testing.T) {
	path := writeFile(t, writeLog(t, entrySpec{
		name:    "NT:/dup",
		typ:     datalog.TypeString,
		samples: []sample{{7, value.String("first")}, {7, value.String("second")}, {8, value.String("third")}},
	}))

	series, err := ReadLog(path)
	require.NoError(t, err)
	assert.Equal(t, Series{"/dup": {7: "second", 8: "third"}}, series)
}

func TestAssemble_SameNameAcrossDeclarationsMerges(t *testing.T) {
	var buf bytes.Buffer
	w, err := datalog.NewWriter(&buf, "")
	require.NoError(t, err)

	first, err := w.Start("/x", datalog.TypeInt64, "", 0)
	require.NoError(t, err)
	require.NoError(t, w.Append(first, 1, value.Int64(1)))
	require.NoError(t, w.Finish(first, 2))

	second, err := w.Start("/x", datalog.TypeInt64, "", 3)
	require.NoError(t, err)
	require.NoError(t, w.Append(second, 1, value.Int64(100)))
	require.NoError(t, w.Append(second, 4, value.Int64(4)))
	require.NoError(t, w.Flush())

	series, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, Series{"/AdvantageKit/x": {1: int64(100), 4: int64(4)}}, series)
}

func TestAssemble_UnusedEntriesOmitted(t *testing.T) {
	path := writeFile(t, writeLog(t,
		entrySpec{name: "/unused", typ: datalog.TypeDouble},
		entrySpec{name: "/used", typ: datalog.TypeDouble, samples: []sample{{3, value.Double(0.5)}}},
	))

	series, err := ReadLog(path)
	require.NoError(t, err)
	assert.Equal(t, Series{"/AdvantageKit/used": {3: 0.5}}, series)
}

func TestAssemble_StructsCoerceToNull(t *testing.T) {
	path := writeFile(t, writeLog(t,
		entrySpec{
			name:    "/pose",
			typ:     "struct:Pose2d",
			samples: []sample{{1, value.Struct{Schema: "Pose2d", Data: make([]byte, 24)}}},
		},
		entrySpec{
			name:    "/poses",
			typ:     "struct:Pose2d[]",
			samples: []sample{{1, value.StructArray{Schema: "Pose2d", Data: make([]byte, 48)}}},
		},
	))

	series, err := ReadLog(path)
	require.NoError(t, err)
	require.Contains(t, series, "/AdvantageKit/pose")
	require.Contains(t, series, "/AdvantageKit/poses")
	assert.Nil(t, series["/AdvantageKit/pose"][1])
	assert.Nil(t, series["/AdvantageKit/poses"][1])
	assert.Contains(t, series["/AdvantageKit/pose"], uint64(1))
}

func TestReadLog_CorruptedHeader(t *testing.T) {
	data := writeLog(t, entrySpec{
		name:    "foo",
		typ:     datalog.TypeBoolean,
		samples: []sample{{1, value.Boolean(true)}},
	})
	data[2] ^= 0xff

	series, err := ReadLog(writeFile(t, data))
	require.Error(t, err)
	assert.Nil(t, series)
	assert.True(t, datalog.IsFormatError(err))
}

func TestReadLog_TruncatedTailFailsWhole(t *testing.T) {
	data := writeLog(t, entrySpec{
		name:    "foo",
		typ:     datalog.TypeDouble,
		samples: []sample{{1, value.Double(1)}, {2, value.Double(2)}},
	})

	series, err := ReadLog(writeFile(t, data[:len(data)-1]))
	require.Error(t, err)
	assert.Nil(t, series)
}

func TestSummarize(t *testing.T) {
	series := Series{
		"/b": {5: 1.0, 1: 2.0, 9: 3.0},
		"/a": {3: true},
	}

	assert.Equal(t, []KeySummary{
		{Key: "/a", Samples: 1, First: 3, Last: 3},
		{Key: "/b", Samples: 3, First: 1, Last: 9},
	}, Summarize(series))
	assert.Empty(t, Summarize(Series{}))
}

func TestSeries_Timestamps(t *testing.T) {
	series := Series{"/b": {5: 1.0, 1: 2.0, 9: 3.0}}

	assert.Equal(t, []uint64{1, 5, 9}, series.Timestamps("/b"))
	assert.Nil(t, series.Timestamps("/missing"))
}
