package ir

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"time"
	"unicode/utf16"
)

// IRValue is a sealed interface representing the typed values a compiled
// constraint compares against.
// Only IRNull, IRString, IRInt, IRBool, IRTime, IRArray and IRObject implement it.
// There is no float type: numeric fields are integral.
type IRValue interface {
	irValue() // Sealed - only these types implement it
}

// IRNull is the explicit absence of a value.
type IRNull struct{}

func (IRNull) irValue() {}

// MarshalJSON implements json.Marshaler for IRNull.
func (IRNull) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// IRString represents a string value.
type IRString string

func (IRString) irValue() {}

// IRInt represents an integer value. Always int64.
type IRInt int64

func (IRInt) irValue() {}

// IRBool represents a boolean value.
type IRBool bool

func (IRBool) irValue() {}

// TimeKind tells which part of an IRTime is significant.
type TimeKind string

const (
	// TimeKindDate keeps the calendar day only.
	TimeKindDate TimeKind = "date"
	// TimeKindDateTime keeps date and time of day.
	TimeKindDateTime TimeKind = "datetime"
	// TimeKindTime keeps the time of day only.
	TimeKindTime TimeKind = "time"
)

// IRTime represents a temporal value. Kind decides how it is truncated
// and rendered; the zero Kind behaves like TimeKindDateTime.
type IRTime struct {
	Time time.Time
	Kind TimeKind
}

func (IRTime) irValue() {}

// NewIRTime creates an IRTime truncated to the given kind.
func NewIRTime(t time.Time, kind TimeKind) IRTime {
	switch kind {
	case TimeKindDate:
		y, m, d := t.Date()
		t = time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	case TimeKindTime:
		t = time.Date(0, 1, 1, t.Hour(), t.Minute(), t.Second(), 0, t.Location())
	default:
		kind = TimeKindDateTime
		t = t.Truncate(time.Second)
	}
	return IRTime{Time: t, Kind: kind}
}

// String renders the value in the layout matching its kind.
func (v IRTime) String() string {
	switch v.Kind {
	case TimeKindDate:
		return v.Time.Format(time.DateOnly)
	case TimeKindTime:
		return v.Time.Format(time.TimeOnly)
	default:
		return v.Time.Format(time.RFC3339)
	}
}

// MarshalJSON renders the value as a JSON string.
func (v IRTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}

// IRArray represents an array of IRValue elements.
type IRArray []IRValue

func (IRArray) irValue() {}

// IRObject represents a map of string keys to IRValue elements.
// Use SortedKeys() for deterministic iteration.
type IRObject map[string]IRValue

func (IRObject) irValue() {}

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
func (obj IRObject) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// compareKeysRFC8785 compares strings by UTF-16 code units.
// Go's default string comparison uses UTF-8 which produces a different order
// for characters outside the BMP.
func compareKeysRFC8785(a, b string) int {
	return slices.Compare(utf16.Encode([]rune(a)), utf16.Encode([]rune(b)))
}

// IsNull reports whether v is absent or IRNull.
func IsNull(v IRValue) bool {
	if v == nil {
		return true
	}
	_, ok := v.(IRNull)
	return ok
}

// Native converts an IRValue to the Go value a database driver expects.
// IRTime becomes time.Time, IRNull becomes nil, containers convert recursively.
func Native(v IRValue) (any, error) {
	switch val := v.(type) {
	case nil, IRNull:
		return nil, nil
	case IRString:
		return string(val), nil
	case IRInt:
		return int64(val), nil
	case IRBool:
		return bool(val), nil
	case IRTime:
		return val.Time, nil
	case IRArray:
		out := make([]any, len(val))
		for i, elem := range val {
			n, err := Native(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			out[i] = n
		}
		return out, nil
	case IRObject:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			n, err := Native(elem)
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			out[k] = n
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported IRValue type: %T", v)
	}
}

// MustNative is Native for values known to be scalar.
func MustNative(v IRValue) any {
	n, err := Native(v)
	if err != nil {
		panic(err)
	}
	return n
}

// FromNative converts a plain Go value (as decoded from YAML or JSON) into an IRValue.
// Floats with an integral value are accepted as IRInt; other floats are rejected.
func FromNative(v any) (IRValue, error) {
	switch val := v.(type) {
	case nil:
		return IRNull{}, nil
	case IRValue:
		return val, nil
	case string:
		return IRString(val), nil
	case int:
		return IRInt(val), nil
	case int64:
		return IRInt(val), nil
	case int32:
		return IRInt(val), nil
	case bool:
		return IRBool(val), nil
	case time.Time:
		return NewIRTime(val, TimeKindDateTime), nil
	case float64:
		if val != float64(int64(val)) {
			return nil, fmt.Errorf("floats are not supported: %v", val)
		}
		return IRInt(int64(val)), nil
	case []any:
		arr := make(IRArray, len(val))
		for i, elem := range val {
			irElem, err := FromNative(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			arr[i] = irElem
		}
		return arr, nil
	case map[string]any:
		obj := make(IRObject, len(val))
		for k, elem := range val {
			irElem, err := FromNative(elem)
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			obj[k] = irElem
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

// Format renders a scalar value for human-readable output.
// Strings are quoted, everything else is printed bare.
func Format(v IRValue) string {
	switch val := v.(type) {
	case nil, IRNull:
		return "null"
	case IRString:
		return strconv.Quote(string(val))
	case IRInt:
		return strconv.FormatInt(int64(val), 10)
	case IRBool:
		return strconv.FormatBool(bool(val))
	case IRTime:
		return val.String()
	default:
		data, err := MarshalCanonical(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	}
}
