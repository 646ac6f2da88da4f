package timeseries

import "strings"

const (
	// NetworkTablesPrefix marks keys logged from NetworkTables.
	NetworkTablesPrefix = "NT:"
	// AdvantageKitRoot is prepended to every other key.
	AdvantageKitRoot = "/AdvantageKit"
)

// Remap converts a raw log key into its externally visible path.
// "NT:/foo" becomes "/foo"; "/foo" becomes "/AdvantageKit/foo". Remap is
// meant for raw keys only; applying it to its own output is not meaningful.
func Remap(rawKey string) string {
	if rest, ok := strings.CutPrefix(rawKey, NetworkTablesPrefix); ok {
		return rest
	}
	return AdvantageKitRoot + rawKey
}
