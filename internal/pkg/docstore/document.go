package docstore

import (
	"bytes"
	"encoding/json"
	"time"
)

// Document is a JSON-shaped record. Numbers read back from a store are
// json.Number; use the typed accessors instead of asserting directly.
// Timestamps are stored as integer unix milliseconds.
type Document map[string]any

// Marshal encodes doc with its id injected.
func Marshal(id string, doc Document) ([]byte, error) {
	out := make(Document, len(doc)+1)
	for k, v := range doc {
		out[k] = v
	}
	out[FieldID] = id
	return json.Marshal(out)
}

// Unmarshal decodes a stored document, keeping numbers as json.Number.
func Unmarshal(data []byte) (Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = Document{}
	}
	return doc, nil
}

// Normalize round-trips a value through JSON so that it compares the same way
// stored values do.
func Normalize(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// ID returns the document id.
func (d Document) ID() string {
	return d.String(FieldID)
}

func (d Document) String(key string) string {
	s, _ := d[key].(string)
	return s
}

func (d Document) Bool(key string) bool {
	b, _ := d[key].(bool)
	return b
}

func (d Document) Int64(key string) int64 {
	switch v := d[key].(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		f, _ := v.Float64()
		return int64(f)
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case int64:
		return v
	case float64:
		return int64(v)
	}
	return 0
}

func (d Document) Int(key string) int {
	return int(d.Int64(key))
}

func (d Document) Float64(key string) float64 {
	switch v := d[key].(type) {
	case json.Number:
		f, _ := v.Float64()
		return f
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case float64:
		return v
	}
	return 0
}

// Time reads a millisecond timestamp. Missing or null values give the zero time.
func (d Document) Time(key string) time.Time {
	if v, ok := d[key]; !ok || v == nil {
		return time.Time{}
	}
	return time.UnixMilli(d.Int64(key)).UTC()
}

// TimePtr is Time for optional fields.
func (d Document) TimePtr(key string) *time.Time {
	if v, ok := d[key]; !ok || v == nil {
		return nil
	}
	t := d.Time(key)
	return &t
}

// Doc returns a nested document, or an empty one.
func (d Document) Doc(key string) Document {
	switch v := d[key].(type) {
	case Document:
		return v
	case map[string]any:
		return Document(v)
	}
	return Document{}
}

func (d Document) Strings(key string) []string {
	switch v := d[key].(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Map returns a nested object as a plain map, or nil.
func (d Document) Map(key string) map[string]any {
	switch v := d[key].(type) {
	case Document:
		return map[string]any(v)
	case map[string]any:
		return v
	}
	return nil
}

// Timestamp encodes t for storage. The zero time is stored as null.
func Timestamp(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UnixMilli()
}

// TimestampPtr encodes an optional time.
func TimestampPtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return Timestamp(*t)
}
