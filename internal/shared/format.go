package shared

import (
	"encoding/json"
	"fmt"
)

// FormatTimestamp renders a millisecond offset as m:ss.
func FormatTimestamp(ms int) string {
	total := ms / 1000
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// MarshalJSON marshals v, optionally indented for human-readable output.
func MarshalJSON(v any, indent bool) ([]byte, error) {
	if indent {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
