package schema

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/querymix/internal/ir"
)

func TestFieldDefaultTransforms(t *testing.T) {
	tests := []struct {
		name     string
		field    Field
		raw      string
		expected ir.IRValue
	}{
		{"string passthrough", Field{Name: "title", Type: TypeString}, "Hello", ir.IRString("Hello")},
		{"text passthrough", Field{Name: "body", Type: TypeText}, "a b", ir.IRString("a b")},
		{"int", Field{Name: "prio", Type: TypeInt}, "42", ir.IRInt(42)},
		{"negative int", Field{Name: "prio", Type: TypeInt}, "-3", ir.IRInt(-3)},
		{"bool yes", Field{Name: "done", Type: TypeBool}, "yes", ir.IRBool(true)},
		{"bool 0", Field{Name: "done", Type: TypeBool}, "0", ir.IRBool(false)},
		{"date iso", Field{Name: "due", Type: TypeDate}, "2024-01-31",
			ir.NewIRTime(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), ir.TimeKindDate)},
		{"date german", Field{Name: "due", Type: TypeDate}, "31.01.2024",
			ir.NewIRTime(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), ir.TimeKindDate)},
		{"datetime rfc3339", Field{Name: "created", Type: TypeDateTime}, "2024-01-31T10:15:00Z",
			ir.NewIRTime(time.Date(2024, 1, 31, 10, 15, 0, 0, time.UTC), ir.TimeKindDateTime)},
		{"datetime short", Field{Name: "created", Type: TypeDateTime}, "2024-01-31 10:15",
			ir.NewIRTime(time.Date(2024, 1, 31, 10, 15, 0, 0, time.UTC), ir.TimeKindDateTime)},
		{"time", Field{Name: "at", Type: TypeTime}, "08:30",
			ir.NewIRTime(time.Date(0, 1, 1, 8, 30, 0, 0, time.UTC), ir.TimeKindTime)},
		{"uuid canonicalized", Field{Name: "uid", Type: TypeUUID}, "6BA7B810-9DAD-11D1-80B4-00C04FD430C8",
			ir.IRString("6ba7b810-9dad-11d1-80b4-00c04fd430c8")},
		{"enum case-insensitive", Field{Name: "status", Type: TypeEnum, Values: []string{"open", "closed"}}, "OPEN",
			ir.IRString("open")},
		{"reference raw", Field{Name: "project", Type: TypeReference, Ref: "project"}, "17", ir.IRString("17")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.field.Value(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestFieldTransformFailures(t *testing.T) {
	tests := []struct {
		name  string
		field Field
		raw   string
	}{
		{"int", Field{Name: "prio", Type: TypeInt}, "high"},
		{"bool", Field{Name: "done", Type: TypeBool}, "maybe"},
		{"date", Field{Name: "due", Type: TypeDate}, "tomorrow"},
		{"uuid", Field{Name: "uid", Type: TypeUUID}, "not-a-uuid"},
		{"enum", Field{Name: "status", Type: TypeEnum, Values: []string{"open"}}, "gone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.field.Value(tt.raw)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field.Name)
		})
	}
}

func TestFieldCustomTransform(t *testing.T) {
	f := Field{
		Name: "code",
		Type: TypeString,
		Transform: func(raw string) (ir.IRValue, error) {
			if raw == "" {
				return nil, errors.New("empty")
			}
			return ir.IRString("X-" + raw), nil
		},
	}

	v, err := f.Value("1")
	require.NoError(t, err)
	assert.Equal(t, ir.IRString("X-1"), v)

	_, err = f.Value("")
	require.Error(t, err)
}

func TestFieldTimeKind(t *testing.T) {
	kind, ok := (&Field{Type: TypeDate}).TimeKind()
	assert.True(t, ok)
	assert.Equal(t, ir.TimeKindDate, kind)

	_, ok = (&Field{Type: TypeString}).TimeKind()
	assert.False(t, ok)
}

func TestFieldColumnName(t *testing.T) {
	assert.Equal(t, "title", (&Field{Name: "title"}).ColumnName())
	assert.Equal(t, "task_title", (&Field{Name: "title", Column: "task_title"}).ColumnName())
}
