package engine

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint derives the cache key for a (algorithm, input, options)
// triple: each part is canonically encoded on its own, the three
// encodings are assembled into a record which is itself canonically
// encoded, and the result is hashed with SHA-256 and rendered as
// lowercase hex. Given already-validated inputs it never fails, and two
// requests that are value-equal after canonicalization always map to
// the same key.
func Fingerprint(algorithmID string, input interface{}, opts Options) string {
	record := map[string]interface{}{
		"algorithmId": algorithmID,
		"input":       CanonicalEncode(input),
		"options":     CanonicalEncode(toPlainMap(opts.Values())),
	}
	sum := sha256.Sum256([]byte(CanonicalEncode(record)))
	return hex.EncodeToString(sum[:])
}

// toPlainMap widens a resolved options map so int values encode the
// same way whether they arrive as int (from defaults) or float64 (from
// decoded JSON). Everything else passes through.
func toPlainMap(values map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(values))
	for k, v := range values {
		if i, ok := v.(int); ok {
			out[k] = float64(i)
			continue
		}
		out[k] = v
	}
	return out
}
