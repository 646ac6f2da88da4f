// Package timeseries folds decoded log records into per-key series of
// generic values.
package timeseries

import (
	"io"
	"sort"

	"github.com/ssargent/oxdash/pkg/datalog"
	"github.com/ssargent/oxdash/pkg/value"
)

// Series maps a remapped key to its samples, keyed by timestamp.
// Values are the generic values produced by value.Coerce.
type Series map[string]map[uint64]any

// Assemble builds a Series from records in decode order. A later record for
// the same key and timestamp overwrites an earlier one. Declared entries
// without records do not appear.
func Assemble(records []datalog.Record) Series {
	series := make(Series)
	for _, r := range records {
		key := Remap(r.Entry.Name)
		samples, ok := series[key]
		if !ok {
			samples = make(map[uint64]any)
			series[key] = samples
		}
		samples[r.Timestamp] = value.Coerce(r.Value)
	}
	return series
}

// Decode reads a container from r and assembles it.
func Decode(r io.Reader) (Series, error) {
	log, err := datalog.Decode(r)
	if err != nil {
		return nil, err
	}
	return Assemble(log.Records), nil
}

// ReadLog decodes the log file at path, compressed or not, and assembles it.
// Any format error fails the whole call and no series is returned.
func ReadLog(path string) (Series, error) {
	log, err := datalog.OpenFile(path)
	if err != nil {
		return nil, err
	}
	return Assemble(log.Records), nil
}

// KeySummary describes one key of a Series.
type KeySummary struct {
	Key     string `json:"key"`
	Samples int    `json:"samples"`
	First   uint64 `json:"first"`
	Last    uint64 `json:"last"`
}

// Summarize lists every key with its sample count and timestamp range,
// sorted by key.
func Summarize(s Series) []KeySummary {
	out := make([]KeySummary, 0, len(s))
	for key, samples := range s {
		sum := KeySummary{Key: key, Samples: len(samples)}
		first := true
		for ts := range samples {
			if first || ts < sum.First {
				sum.First = ts
			}
			if first || ts > sum.Last {
				sum.Last = ts
			}
			first = false
		}
		out = append(out, sum)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key < out[j].Key
	})
	return out
}

// Timestamps returns the sorted timestamps of one key, or nil if the key is absent.
func (s Series) Timestamps(key string) []uint64 {
	samples, ok := s[key]
	if !ok {
		return nil
	}
	ts := make([]uint64, 0, len(samples))
	for t := range samples {
		ts = append(ts, t)
	}
	sort.Slice(ts, func(i, j int) bool { return ts[i] < ts[j] })
	return ts
}
