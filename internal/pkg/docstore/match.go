package docstore

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
)

// Matches reports whether doc satisfies every filter.
func Matches(doc Document, filters []Filter) bool {
	for _, f := range filters {
		got := doc[f.Field]
		switch f.Op {
		case OpEqual:
			if !equalValues(got, f.Value) {
				return false
			}
		case OpIn:
			values, _ := f.Value.([]any)
			found := false
			for _, v := range values {
				if equalValues(got, v) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// Apply filters, orders and limits docs in place of a backend query.
func Apply(docs []Document, q Query) []Document {
	out := make([]Document, 0, len(docs))
	for _, d := range docs {
		if Matches(d, q.Filters) {
			out = append(out, d)
		}
	}
	Sort(out, q.OrderBy)
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

// Sort orders docs by the given keys, falling back to id for a stable result.
func Sort(docs []Document, order []OrderBy) {
	sort.SliceStable(docs, func(i, j int) bool {
		for _, o := range order {
			c := compareValues(docs[i][o.Field], docs[j][o.Field])
			if c == 0 {
				continue
			}
			if o.Desc {
				return c > 0
			}
			return c < 0
		}
		return docs[i].ID() < docs[j].ID()
	})
}

func canonical(v any) any {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return n.String()
		}
		return f
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case float32:
		return float64(n)
	case Document:
		return map[string]any(n)
	}
	return v
}

func equalValues(a, b any) bool {
	ca, cb := canonical(a), canonical(b)
	switch x := ca.(type) {
	case nil:
		return cb == nil
	case string:
		y, ok := cb.(string)
		return ok && x == y
	case float64:
		y, ok := cb.(float64)
		return ok && x == y
	case bool:
		y, ok := cb.(bool)
		return ok && x == y
	}
	ra, errA := json.Marshal(ca)
	rb, errB := json.Marshal(cb)
	return errA == nil && errB == nil && bytes.Equal(ra, rb)
}

// compareValues orders nil < bool < number < string. Other types compare equal.
func compareValues(a, b any) int {
	ca, cb := canonical(a), canonical(b)
	ra, rb := rank(ca), rank(cb)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	switch x := ca.(type) {
	case bool:
		y := cb.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		default:
			return 1
		}
	case float64:
		y := cb.(float64)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	case string:
		return strings.Compare(x, cb.(string))
	}
	return 0
}

func rank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case float64:
		return 2
	case string:
		return 3
	}
	return 4
}
