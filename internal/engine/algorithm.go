package engine

import (
	"context"
)

// OptionKind enumerates the value types an option can declare.
type OptionKind string

const (
	KindInteger OptionKind = "integer"
	KindNumber  OptionKind = "number"
	KindString  OptionKind = "string"
	KindBoolean OptionKind = "boolean"
)

// OptionDefinition declares a single tunable option of an algorithm.
// Default must carry the runtime type matching Kind (int for integer,
// float64 for number, string, bool).
type OptionDefinition struct {
	Key         string      `json:"key"`
	Label       string      `json:"label"`
	Kind        OptionKind  `json:"kind"`
	Description string      `json:"description"`
	Default     interface{} `json:"default"`

	// Min and Max bound numeric kinds when non-nil; ignored otherwise.
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// Metadata describes a registered algorithm for discovery endpoints.
type Metadata struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Description  string             `json:"description"`
	InputHelp    string             `json:"inputHelp"`
	ExampleInput interface{}        `json:"exampleInput"`
	Options      []OptionDefinition `json:"options"`
}

// Options holds a fully resolved option set: every declared key is
// present, either from the caller's payload or from its default.
type Options struct {
	values    map[string]interface{}
	defaulted map[string]bool
}

// NewOptions builds an Options from resolved values and the set of keys
// that fell back to their defaults. Exposed for tests and algorithms
// constructing option sets directly.
func NewOptions(values map[string]interface{}, defaulted map[string]bool) Options {
	if values == nil {
		values = map[string]interface{}{}
	}
	if defaulted == nil {
		defaulted = map[string]bool{}
	}
	return Options{values: values, defaulted: defaulted}
}

// Values returns the resolved key→value map. Callers must not mutate it.
func (o Options) Values() map[string]interface{} {
	return o.values
}

// WasDefaulted reports whether the key's value came from its declared
// default rather than the caller's payload.
func (o Options) WasDefaulted(key string) bool {
	return o.defaulted[key]
}

// Int returns the option value as an int. Valid only for keys declared
// with KindInteger; returns 0 for anything else.
func (o Options) Int(key string) int {
	if v, ok := o.values[key].(int); ok {
		return v
	}
	return 0
}

// Float returns the option value as a float64, widening integers.
func (o Options) Float(key string) float64 {
	switch v := o.values[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

// Bool returns the option value as a bool.
func (o Options) Bool(key string) bool {
	v, _ := o.values[key].(bool)
	return v
}

// String returns the option value as a string.
func (o Options) String(key string) string {
	v, _ := o.values[key].(string)
	return v
}

// Result is the output of a single algorithm execution.
type Result struct {
	// Output is the algorithm-specific payload.
	Output interface{} `json:"output"`
	// Summary is a one-sentence human-readable description of the outcome.
	Summary string `json:"summary"`
	// Diagnostics carries free-form execution detail. The engine always
	// adds the resolved options under "optionsUsed" before the result is
	// returned or persisted.
	Diagnostics map[string]interface{} `json:"diagnostics,omitempty"`
}

// Algorithm is the capability every registered computation satisfies.
// Implementations must be stateless across calls: the engine may invoke
// Execute concurrently from independent requests.
type Algorithm interface {
	// Metadata returns the algorithm's descriptor, including its option
	// schema. The returned value must be stable for the process lifetime.
	Metadata() Metadata

	// ParseInput validates and normalizes the raw request input into the
	// shape Execute expects. Structural problems return a client-class
	// error (ErrorKindClient).
	ParseInput(raw interface{}) (interface{}, error)

	// Execute runs the algorithm against input previously returned by
	// ParseInput and a fully resolved option set.
	Execute(ctx context.Context, input interface{}, opts Options) (*Result, error)
}
