package store

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/roach88/querymix/internal/ir"
	"github.com/roach88/querymix/internal/schema"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// encodeColumn converts a row value into the driver value stored in the
// field's column. Strings are run through the field transform so rows
// loaded from YAML ("yes", "02.01.2024") land in canonical form.
func encodeColumn(f *schema.Field, v ir.IRValue) (any, error) {
	switch val := v.(type) {
	case nil, ir.IRNull:
		return nil, nil
	case ir.IRString:
		if f.Type == schema.TypeReferenceList || f.Type == schema.TypeReference {
			return string(val), nil
		}
		typed, err := f.Value(string(val))
		if err != nil {
			return nil, err
		}
		if s, ok := typed.(ir.IRString); ok {
			return string(s), nil
		}
		return encodeColumn(f, typed)
	case ir.IRBool:
		if val {
			return int64(1), nil
		}
		return int64(0), nil
	case ir.IRInt:
		return int64(val), nil
	case ir.IRTime:
		if kind, ok := f.TimeKind(); ok {
			return ir.NewIRTime(val.Time, kind).String(), nil
		}
		return val.String(), nil
	case ir.IRArray:
		if f.Type != schema.TypeReferenceList {
			return nil, fmt.Errorf("field %s: arrays are only stored in reference_list fields", f.Name)
		}
		data, err := ir.MarshalCanonical(val)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		return string(data), nil
	default:
		return nil, fmt.Errorf("field %s: unsupported value %T", f.Name, v)
	}
}

// decodeColumn converts a scanned column back into an IR value.
func decodeColumn(f *schema.Field, raw any) (ir.IRValue, error) {
	if b, ok := raw.([]byte); ok {
		raw = string(b)
	}
	if raw == nil {
		return ir.IRNull{}, nil
	}

	switch f.Type {
	case schema.TypeBool:
		if n, ok := raw.(int64); ok {
			return ir.IRBool(n != 0), nil
		}
	case schema.TypeReferenceList:
		s, ok := raw.(string)
		if !ok {
			break
		}
		var keys []any
		if err := json.Unmarshal([]byte(s), &keys); err != nil {
			return nil, fmt.Errorf("field %s: decode key list: %w", f.Name, err)
		}
		return ir.FromNative(keys)
	case schema.TypeDate, schema.TypeDateTime, schema.TypeTime:
		if s, ok := raw.(string); ok {
			return f.Value(s)
		}
	}
	return ir.FromNative(raw)
}
