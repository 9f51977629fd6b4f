package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func intDef(key string, def int, min, max *float64) OptionDefinition {
	return OptionDefinition{Key: key, Kind: KindInteger, Default: def, Min: min, Max: max}
}

func TestValidateOptionsInteger(t *testing.T) {
	defs := []OptionDefinition{intDef("iterations", 40, floatPtr(1), floatPtr(1000))}

	tests := []struct {
		name     string
		supplied interface{}
		want     int
		wantErr  bool
	}{
		{"in range", float64(5), 5, false},
		{"below minimum", float64(0), 0, true},
		{"above maximum", float64(1001), 0, true},
		{"fractional", 2.5, 0, true},
		{"non-numeric", "lots", 0, true},
		{"numeric string", "40", 40, false},
		{"boolean", true, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := ValidateOptions(defs, map[string]interface{}{"iterations": tt.supplied})
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, ErrorKindClient, KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, opts.Int("iterations"))
			assert.False(t, opts.WasDefaulted("iterations"))
		})
	}
}

func TestValidateOptionsIntegerStringWithoutRange(t *testing.T) {
	defs := []OptionDefinition{intDef("count", 1, nil, nil)}
	opts, err := ValidateOptions(defs, map[string]interface{}{"count": "40"})
	require.NoError(t, err)
	assert.Equal(t, 40, opts.Int("count"))
}

func TestValidateOptionsNumber(t *testing.T) {
	defs := []OptionDefinition{{
		Key: "threshold", Kind: KindNumber, Default: 0.5,
		Min: floatPtr(0), Max: floatPtr(1),
	}}

	opts, err := ValidateOptions(defs, map[string]interface{}{"threshold": 0.25})
	require.NoError(t, err)
	assert.Equal(t, 0.25, opts.Float("threshold"))

	_, err = ValidateOptions(defs, map[string]interface{}{"threshold": 1.5})
	assert.Error(t, err)
}

func TestValidateOptionsBoolean(t *testing.T) {
	defs := []OptionDefinition{{Key: "verbose", Kind: KindBoolean, Default: false}}

	tests := []struct {
		name     string
		supplied interface{}
		want     bool
		wantErr  bool
	}{
		{"native true", true, true, false},
		{"string one", "1", true, false},
		{"string false", "false", false, false},
		{"string TRUE mixed case", " TRUE ", true, false},
		{"nonzero number", float64(2), true, false},
		{"zero number", float64(0), false, false},
		{"garbage", "maybe", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := ValidateOptions(defs, map[string]interface{}{"verbose": tt.supplied})
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, opts.Bool("verbose"))
		})
	}
}

func TestValidateOptionsString(t *testing.T) {
	defs := []OptionDefinition{{Key: "mode", Kind: KindString, Default: "fast"}}

	// String coercion never fails, regardless of supplied type.
	opts, err := ValidateOptions(defs, map[string]interface{}{"mode": float64(7)})
	require.NoError(t, err)
	assert.Equal(t, "7", opts.String("mode"))
}

func TestValidateOptionsDefaults(t *testing.T) {
	defs := []OptionDefinition{
		intDef("iterations", 40, floatPtr(1), floatPtr(1000)),
		{Key: "mode", Kind: KindString, Default: "fast"},
	}

	tests := []struct {
		name string
		raw  map[string]interface{}
	}{
		{"missing", map[string]interface{}{}},
		{"nil payload", nil},
		{"explicit null", map[string]interface{}{"iterations": nil}},
		{"empty string", map[string]interface{}{"iterations": "  "}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := ValidateOptions(defs, tt.raw)
			require.NoError(t, err)
			assert.Equal(t, 40, opts.Int("iterations"))
			assert.Equal(t, "fast", opts.String("mode"))
			assert.True(t, opts.WasDefaulted("iterations"))
		})
	}
}

func TestValidateOptionsIgnoresUnknownKeys(t *testing.T) {
	defs := []OptionDefinition{intDef("iterations", 40, nil, nil)}
	opts, err := ValidateOptions(defs, map[string]interface{}{
		"iterations": float64(10),
		"turbo":      true,
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"iterations": 10}, opts.Values())
}
