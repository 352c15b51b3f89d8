package logstore

import "encoding/json"

// entryFields is the v3 per-entry field set. Anything else in a stored
// entry is a leftover from an earlier schema revision.
var entryFields = map[string]bool{
	"id":      true,
	"amount":  true,
	"time":    true,
	"type":    true,
	"manual":  true,
	"comment": true,
}

// stripLegacyFields reports whether the raw daily blob carries any
// per-entry field outside the v3 schema. Decoding into the typed model
// already drops such fields; a positive answer tells Load to rewrite
// the blob once so the stored copy matches. Best effort: shapes that
// do not decode are left alone rather than discarded.
func stripLegacyFields(raw []byte) bool {
	var days map[string]struct {
		Logs []map[string]json.RawMessage `json:"logs"`
	}
	if err := json.Unmarshal(raw, &days); err != nil {
		return false
	}
	for _, day := range days {
		for _, entry := range day.Logs {
			for field := range entry {
				if !entryFields[field] {
					return true
				}
			}
		}
	}
	return false
}
