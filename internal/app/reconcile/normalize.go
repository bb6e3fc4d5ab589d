package reconcile

import (
	"fmt"
	"strconv"
)

// Identity keys. The provider is canonical, so its "_id" wins over a local "id".
const (
	KeyID       = "id"
	KeyRemoteID = "_id"
)

// ResolveID returns the id of a raw reference: a bare string or number, or an object's
// "_id" falling back to "id". Numeric ids are formatted without a fraction.
func ResolveID(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case float64, int, int64:
		return scalarString(v)
	case map[string]any:
		if id := scalarString(v[KeyRemoteID]); id != "" {
			return id
		}
		return scalarString(v[KeyID])
	}
	return ""
}

// NormalizeIdentity turns a raw reference into {id, ...rest}. Bare strings and numbers
// become {id: s}. The "_id" key is folded into "id" and removed. ok is false for any other
// value. The input map is not modified.
func NormalizeIdentity(raw any) (map[string]any, bool) {
	switch v := raw.(type) {
	case string:
		return map[string]any{KeyID: v}, true
	case float64, int, int64:
		return map[string]any{KeyID: scalarString(v)}, true
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			if k == KeyRemoteID {
				continue
			}
			out[k] = val
		}
		if id := ResolveID(v); id != "" {
			out[KeyID] = id
		} else {
			delete(out, KeyID)
		}
		return out, true
	}
	return nil, false
}

// NormalizeList normalizes every reference of a raw list, preserving order and
// dropping entries that are not strings, numbers or objects.
func NormalizeList(raw any) []map[string]any {
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if normalized, ok := NormalizeIdentity(item); ok {
			out = append(out, normalized)
		}
	}
	return out
}

// Unwrap returns the list carried by a collection response: either a bare array or an
// object holding the array under "data".
func Unwrap(body any) []any {
	switch v := body.(type) {
	case []any:
		return v
	case map[string]any:
		if items, ok := v["data"].([]any); ok {
			return items
		}
	}
	return nil
}

// String reads a scalar field as a string ("" when absent or null).
func String(m map[string]any, key string) string {
	return scalarString(m[key])
}

func scalarString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	case fmt.Stringer:
		return val.String()
	}
	return ""
}
