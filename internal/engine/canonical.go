package engine

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// CanonicalEncode serializes a JSON-like value (nil, bool, number,
// string, []interface{}, map[string]interface{}) into a deterministic
// textual form: map keys are emitted in lexicographic order regardless
// of insertion order, sequence order is preserved, scalars use their
// standard JSON representation, and no whitespace is emitted. Two
// structurally equal values always encode identically, which is the
// property the cache keys depend on.
func CanonicalEncode(v interface{}) string {
	var b strings.Builder
	encodeCanonical(&b, v)
	return b.String()
}

func encodeCanonical(b *strings.Builder, v interface{}) {
	switch val := v.(type) {
	case nil:
		b.WriteString("null")
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			writeJSONScalar(b, k)
			b.WriteByte(':')
			encodeCanonical(b, val[k])
		}
		b.WriteByte('}')
	case []interface{}:
		b.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				b.WriteByte(',')
			}
			encodeCanonical(b, elem)
		}
		b.WriteByte(']')
	default:
		writeJSONScalar(b, val)
	}
}

// writeJSONScalar emits the standard JSON encoding of a scalar. The
// encoding/json marshaller handles string escaping and the shortest
// round-trippable float form.
func writeJSONScalar(b *strings.Builder, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		// Only non-JSON-representable scalars (NaN, channels) land here;
		// fall back to a stable textual form rather than failing, since
		// the encoder is contractually total.
		data = []byte(fmt.Sprintf("%q", fmt.Sprintf("%v", v)))
	}
	b.Write(data)
}
