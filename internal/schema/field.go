package schema

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/querymix/internal/ir"
)

// FieldType is the declared semantic type of a field.
type FieldType string

const (
	TypeString        FieldType = "string"
	TypeText          FieldType = "text"
	TypeInt           FieldType = "int"
	TypeBool          FieldType = "bool"
	TypeDate          FieldType = "date"
	TypeDateTime      FieldType = "datetime"
	TypeTime          FieldType = "time"
	TypeUUID          FieldType = "uuid"
	TypeEnum          FieldType = "enum"
	TypeReference     FieldType = "reference"
	TypeReferenceList FieldType = "reference_list"
)

// ValidFieldTypes lists the accepted type names.
var ValidFieldTypes = []FieldType{
	TypeString, TypeText, TypeInt, TypeBool, TypeDate, TypeDateTime,
	TypeTime, TypeUUID, TypeEnum, TypeReference, TypeReferenceList,
}

// IsValid reports whether t is one of ValidFieldTypes.
func (t FieldType) IsValid() bool {
	for _, v := range ValidFieldTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Transform converts a raw query value into the field's native value.
type Transform func(raw string) (ir.IRValue, error)

// Field describes a queryable attribute of an entity.
type Field struct {
	Name   string    `yaml:"name" json:"name"`
	Type   FieldType `yaml:"type" json:"type"`
	Ref    string    `yaml:"ref,omitempty" json:"ref,omitempty"`       // target entity for reference types
	Values []string  `yaml:"values,omitempty" json:"values,omitempty"` // members of enum types
	Column string    `yaml:"column,omitempty" json:"column,omitempty"` // storage column, defaults to Name

	// Transform overrides the type's default value transform.
	Transform Transform `yaml:"-" json:"-"`
}

// ColumnName returns the storage column of the field.
func (f *Field) ColumnName() string {
	if f.Column != "" {
		return f.Column
	}
	return f.Name
}

// IsReference reports whether the field points to other entities.
func (f *Field) IsReference() bool {
	return f.Type == TypeReference || f.Type == TypeReferenceList
}

// TimeKind returns the temporal kind of date/time-like fields.
func (f *Field) TimeKind() (ir.TimeKind, bool) {
	switch f.Type {
	case TypeDate:
		return ir.TimeKindDate, true
	case TypeDateTime:
		return ir.TimeKindDateTime, true
	case TypeTime:
		return ir.TimeKindTime, true
	default:
		return "", false
	}
}

// Value runs the field's transform over raw.
// A failing transform returns an error; callers decide whether to fall back.
func (f *Field) Value(raw string) (ir.IRValue, error) {
	if f.Transform != nil {
		return f.Transform(raw)
	}
	return f.defaultTransform(raw)
}

func (f *Field) defaultTransform(raw string) (ir.IRValue, error) {
	switch f.Type {
	case TypeInt:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("field %s: invalid int %q: %w", f.Name, raw, err)
		}
		return ir.IRInt(n), nil
	case TypeBool:
		return parseBool(f.Name, raw)
	case TypeDate, TypeDateTime, TypeTime:
		kind, _ := f.TimeKind()
		return parseTime(f.Name, raw, kind)
	case TypeUUID:
		id, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("field %s: invalid uuid %q: %w", f.Name, raw, err)
		}
		return ir.IRString(id.String()), nil
	case TypeEnum:
		for _, v := range f.Values {
			if strings.EqualFold(v, raw) {
				return ir.IRString(v), nil
			}
		}
		return nil, fmt.Errorf("field %s: %q is not one of %v", f.Name, raw, f.Values)
	default:
		return ir.IRString(raw), nil
	}
}

func parseBool(name, raw string) (ir.IRValue, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes", "on":
		return ir.IRBool(true), nil
	case "false", "0", "no", "off":
		return ir.IRBool(false), nil
	default:
		return nil, fmt.Errorf("field %s: invalid bool %q", name, raw)
	}
}

// timeLayouts lists accepted input layouts per temporal kind, most specific first.
var timeLayouts = map[ir.TimeKind][]string{
	ir.TimeKindDate:     {time.DateOnly, "02.01.2006"},
	ir.TimeKindDateTime: {time.RFC3339, "2006-01-02 15:04:05", "2006-01-02 15:04", time.DateOnly, "02.01.2006"},
	ir.TimeKindTime:     {time.TimeOnly, "15:04"},
}

func parseTime(name, raw string, kind ir.TimeKind) (ir.IRValue, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timeLayouts[kind] {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return ir.NewIRTime(t, kind), nil
		}
	}
	return nil, fmt.Errorf("field %s: cannot parse %q as %s", name, raw, kind)
}
