package activity

import "encoding/json"

// Snapshot converts an entity into the map form stored in Before/After.
// It returns nil for nil input or values that do not encode as an object.
func Snapshot(v any) map[string]any {
	if v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}
