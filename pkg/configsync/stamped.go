package configsync

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseStamped splits the publisher wire form "<timestamp>,<payload>" into
// its parts. Only the first comma separates; the payload may contain more.
// A message without a comma carries an empty payload.
func ParseStamped(raw string) (uint64, []byte, error) {
	head, payload, _ := strings.Cut(raw, ",")
	ts, err := strconv.ParseUint(strings.TrimSpace(head), 10, 64)
	if err != nil {
		return 0, nil, fmt.Errorf("invalid timestamp %q: %w", head, err)
	}
	return ts, []byte(payload), nil
}

// FormatStamped is the inverse of ParseStamped.
func FormatStamped(timestamp uint64, payload []byte) string {
	return strconv.FormatUint(timestamp, 10) + "," + string(payload)
}
