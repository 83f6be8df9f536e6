package pm

import (
	"fmt"
	"math"
	"sort"
)

// Bundle is a metadata bag. Values are restricted to string, int64, bool and
// float64 so that a bag can be persisted and copied by value.
type Bundle map[string]interface{}

// Clone returns an independent copy. A nil bundle clones to nil.
func (b Bundle) Clone() Bundle {
	if b == nil {
		return nil
	}
	out := make(Bundle, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// GetString returns the string stored under key.
func (b Bundle) GetString(key string) (string, bool) {
	s, ok := b[key].(string)
	return s, ok
}

// Keys returns the keys in sorted order.
func (b Bundle) Keys() []string {
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Normalize converts decoder-specific numeric types to the canonical value
// types and rejects anything else.
func (b Bundle) Normalize() (Bundle, error) {
	if b == nil {
		return nil, nil
	}
	out := make(Bundle, len(b))
	for k, v := range b {
		switch val := v.(type) {
		case string, bool, int64, float64:
			out[k] = val
		case int:
			out[k] = int64(val)
		case int32:
			out[k] = int64(val)
		case uint32:
			out[k] = int64(val)
		case uint64:
			if val > math.MaxInt64 {
				return nil, fmt.Errorf("metadata %q: value %d overflows int64", k, val)
			}
			out[k] = int64(val)
		case float32:
			out[k] = float64(val)
		default:
			return nil, fmt.Errorf("metadata %q: unsupported value type %T", k, v)
		}
	}
	return out, nil
}
