package flow

import (
	"fmt"
	"maps"
	"math"
	"reflect"

	"github.com/mitchellh/mapstructure"

	errs "github.com/matzehuels/ivrflow/pkg/errors"
)

// MergeConfig returns base with the keys of partial shallow-merged over it.
//
// Keys use the JSON field names of the variant ("timeout", "options", ...).
// A key replaces the whole field: merging {"options": [...]} into a menu
// swaps the option list rather than appending to it. Unknown keys and values
// that cannot be decoded into the field's type are rejected with
// ErrCodeInvalidInput. base is not modified.
func MergeConfig(t NodeType, base Config, partial map[string]any) (Config, error) {
	decode, ok := decoders[t]
	if !ok {
		return nil, errs.New(errs.ErrCodeInvalidNodeType, "unknown node type %q", t)
	}
	if base == nil {
		base = DefaultConfig(t)
	}
	if base.NodeType() != t {
		return nil, errs.New(errs.ErrCodeInvalidInput, "config does not match node type %q", t)
	}

	fields := make(map[string]any)
	if err := mapDecode(base, &fields, false); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "flatten %s config", t)
	}
	maps.Copy(fields, partial)

	merged, err := decode(func(out any) error { return mapDecode(fields, out, true) })
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid %s config", t)
	}
	return merged, nil
}

// ConfigToMap flattens a config into a map keyed by JSON field names.
// Nested structs become nested maps.
func ConfigToMap(c Config) (map[string]any, error) {
	out := make(map[string]any)
	if c == nil {
		return out, nil
	}
	if err := mapDecode(c, &out, false); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "flatten %s config", c.NodeType())
	}
	return out, nil
}

func mapDecode(in, out any, strict bool) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  mapstructure.DecodeHookFuncKind(wholeNumbers),
		TagName:     "json",
		ErrorUnused: strict,
		Result:      out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(in)
}

// wholeNumbers rejects floats with a fractional part bound for integer
// fields. JSON numbers always arrive as float64, so 10.0 still decodes to 10.
func wholeNumbers(from, to reflect.Kind, data any) (any, error) {
	if from != reflect.Float32 && from != reflect.Float64 {
		return data, nil
	}
	switch to {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
	default:
		return data, nil
	}
	f := reflect.ValueOf(data).Float()
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%v is not a whole number", data)
	}
	return data, nil
}
