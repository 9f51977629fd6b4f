package engine

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ValidateOptions reconciles a loosely-typed, possibly partial options
// payload against an algorithm's option schema. Every declared option
// ends up present in the result, defaulted when the payload omits it.
// Unknown keys in the payload are silently ignored. A value that cannot
// be coerced to its declared kind fails with a client-class error.
func ValidateOptions(defs []OptionDefinition, raw map[string]interface{}) (Options, error) {
	values := make(map[string]interface{}, len(defs))
	defaulted := make(map[string]bool, len(defs))

	for _, def := range defs {
		supplied, ok := raw[def.Key]
		if !ok || supplied == nil || isEmptyString(supplied) {
			values[def.Key] = def.Default
			defaulted[def.Key] = true
			continue
		}

		coerced, err := coerceOption(def, supplied)
		if err != nil {
			return Options{}, err
		}
		values[def.Key] = coerced
	}

	return NewOptions(values, defaulted), nil
}

func isEmptyString(v interface{}) bool {
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

func coerceOption(def OptionDefinition, supplied interface{}) (interface{}, error) {
	switch def.Kind {
	case KindInteger:
		n, ok := toNumber(supplied)
		if !ok || math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, NewClientError("option %q must be an integer, got %v", def.Key, supplied)
		}
		if n != math.Trunc(n) {
			return nil, NewClientError("option %q must be an integer, got %v", def.Key, supplied)
		}
		if err := checkRange(def, n); err != nil {
			return nil, err
		}
		return int(n), nil

	case KindNumber:
		n, ok := toNumber(supplied)
		if !ok || math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, NewClientError("option %q must be a number, got %v", def.Key, supplied)
		}
		if err := checkRange(def, n); err != nil {
			return nil, err
		}
		return n, nil

	case KindBoolean:
		b, ok := toBool(supplied)
		if !ok {
			return nil, NewClientError("option %q must be a boolean, got %v", def.Key, supplied)
		}
		return b, nil

	case KindString:
		// String coercion never fails.
		if s, ok := supplied.(string); ok {
			return s, nil
		}
		return fmt.Sprintf("%v", supplied), nil
	}

	return nil, NewInternalError("option %q declares unknown kind %q", def.Key, def.Kind)
}

func checkRange(def OptionDefinition, n float64) error {
	if def.Min != nil && n < *def.Min {
		return NewClientError("option %q must be at least %v, got %v", def.Key, *def.Min, n)
	}
	if def.Max != nil && n > *def.Max {
		return NewClientError("option %q must be at most %v, got %v", def.Key, *def.Max, n)
	}
	return nil
}

func toNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

func toBool(v interface{}) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "1":
			return true, true
		case "false", "0":
			return false, true
		}
		return false, false
	default:
		if n, ok := toNumber(v); ok {
			return n != 0, true
		}
	}
	return false, false
}
