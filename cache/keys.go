package cache

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

const (
	// EntityKeyPrefix namespaces single-entity snapshots (task:<id>).
	EntityKeyPrefix = "task:"

	// ListKeyPrefix namespaces list-query snapshots (tasks:<canonical-query>).
	// Invalidation sweeps every key under this prefix.
	ListKeyPrefix = "tasks:"
)

// ListKeyPattern is the glob passed to Store.ScanKeys when invalidating all
// cached list results.
const ListKeyPattern = ListKeyPrefix + "*"

// EntityKey returns the cache key for a single task snapshot.
func EntityKey(id int64) string {
	return EntityKeyPrefix + strconv.FormatInt(id, 10)
}

// ListKey derives the cache key for a list query. The whole query value is
// rendered canonically so that semantically identical queries map to the same
// key regardless of field ordering at the call site.
func ListKey(query any) (string, error) {
	canonical, err := CanonicalJSON(query)
	if err != nil {
		return "", err
	}
	return ListKeyPrefix + canonical, nil
}

// CanonicalJSON renders v as JSON with object keys sorted lexicographically
// at every nesting level. Arrays keep their element order and numbers keep
// their original literals, so two structurally equal values always produce
// byte-identical output.
func CanonicalJSON(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}

	// Round-trip through a generic tree so map keys can be sorted. UseNumber
	// keeps numeric literals intact instead of forcing float64 formatting.
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return "", err
	}

	var b strings.Builder
	b.Grow(len(raw))
	writeCanonical(&b, tree)
	return b.String(), nil
}

func writeCanonical(b *strings.Builder, v any) {
	switch t := v.(type) {
	case nil:
		b.WriteString("null")
	case bool:
		if t {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case json.Number:
		b.WriteString(t.String())
	case string:
		data, _ := json.Marshal(t)
		b.Write(data)
	case []any:
		b.WriteByte('[')
		for i, elem := range t {
			if i > 0 {
				b.WriteByte(',')
			}
			writeCanonical(b, elem)
		}
		b.WriteByte(']')
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			data, _ := json.Marshal(k)
			b.Write(data)
			b.WriteByte(':')
			writeCanonical(b, t[k])
		}
		b.WriteByte('}')
	}
}
