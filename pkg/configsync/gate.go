// Package configsync guards writes of a shared configuration file on a
// deployed target against stale or duplicate publishers.
package configsync

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

// ConfigFileName is the file the gate updates inside a target directory.
const ConfigFileName = "config.json"

// Outcome is the result of a gated write. Every outcome is a normal return
// value; none of them is an error.
type Outcome string

const (
	// OutcomeNoExist means the target has no config file yet. The gate never creates one.
	OutcomeNoExist Outcome = "no-exist"
	// OutcomeStale means the timestamp was not newer than the last accepted write.
	OutcomeStale Outcome = "time"
	// OutcomeSuccess means the file now holds the payload.
	OutcomeSuccess Outcome = "success"
	// OutcomeFailed means the file could not be written. State is unchanged.
	OutcomeFailed Outcome = "failed"
)

// Outcomes lists every outcome in evaluation order.
var Outcomes = []Outcome{OutcomeNoExist, OutcomeStale, OutcomeSuccess, OutcomeFailed}

func (o Outcome) String() string {
	return string(o)
}

// Gate admits a write only when its timestamp is strictly greater than the
// last accepted one. One Gate is shared by every writer in the process; the
// watermark lives in memory only and starts at zero.
//
// The whole write (existence check, comparison, file write, watermark update)
// runs under one lock, so a slow disk blocks every other caller. The file is
// truncated and rewritten in place, not replaced by rename; a crash mid-write
// can leave it truncated.
type Gate struct {
	mu     sync.Mutex
	last   uint64
	logger zerolog.Logger
}

// NewGate creates a gate with a zero watermark.
func NewGate(logger zerolog.Logger) *Gate {
	return &Gate{logger: logger}
}

// Write replaces dir/config.json with payload if the file already exists and
// timestamp is newer than any previously accepted write.
func (g *Gate) Write(dir string, payload []byte, timestamp uint64) Outcome {
	g.mu.Lock()
	defer g.mu.Unlock()

	outcome := g.write(dir, payload, timestamp)
	g.logger.Debug().
		Str("dir", dir).
		Uint64("timestamp", timestamp).
		Uint64("last_accepted", g.last).
		Str("outcome", string(outcome)).
		Msg("config write")
	return outcome
}

func (g *Gate) write(dir string, payload []byte, timestamp uint64) Outcome {
	path := filepath.Join(dir, ConfigFileName)
	// a target whose config cannot even be stat'ed is treated as not deployed
	if _, err := os.Stat(path); err != nil {
		return OutcomeNoExist
	}

	if timestamp <= g.last {
		return OutcomeStale
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return OutcomeFailed
	}
	if _, err := file.Write(payload); err != nil {
		file.Close()
		return OutcomeFailed
	}
	if err := file.Close(); err != nil {
		return OutcomeFailed
	}

	g.last = timestamp
	return OutcomeSuccess
}

// Last returns the timestamp of the most recent successful write, or zero.
func (g *Gate) Last() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last
}
