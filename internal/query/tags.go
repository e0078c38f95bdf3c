package query

import (
	"sort"
	"strings"
	"time"

	"github.com/roach88/querymix/internal/ir"
	"github.com/roach88/querymix/internal/schema"
)

// TagHandler turns the value of a ||type:value|| tag into a constraint.
// Returning false drops the tag.
type TagHandler[C any] func(f Factory[C], entity *schema.Entity, value string) (C, bool)

// TagRegistry maps tag types to handlers.
// Register everything before handing the registry to a compiler; lookups are
// not synchronized with registration.
type TagRegistry[C any] struct {
	handlers map[string]TagHandler[C]
}

// NewTagRegistry creates an empty registry.
func NewTagRegistry[C any]() *TagRegistry[C] {
	return &TagRegistry[C]{handlers: make(map[string]TagHandler[C])}
}

// DefaultTags creates a registry with the built-in id, ref and date handlers.
func DefaultTags[C any]() *TagRegistry[C] {
	return NewTagRegistry[C]().
		Register("id", IDTag[C]).
		Register("ref", RefTag[C]).
		Register("date", DateTag[C])
}

// Register adds or replaces the handler for typ.
func (r *TagRegistry[C]) Register(typ string, h TagHandler[C]) *TagRegistry[C] {
	r.handlers[typ] = h
	return r
}

// Lookup returns the handler for typ, or nil. A nil registry has no handlers.
func (r *TagRegistry[C]) Lookup(typ string) TagHandler[C] {
	if r == nil {
		return nil
	}
	return r.handlers[typ]
}

// Types returns the registered tag types, sorted.
func (r *TagRegistry[C]) Types() []string {
	if r == nil {
		return nil
	}
	types := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// IDTag matches the entity's id field: ||id:42||.
func IDTag[C any](f Factory[C], entity *schema.Entity, value string) (C, bool) {
	var zero C
	field := entity.FindField(schema.IDField)
	if field == nil {
		return zero, false
	}
	v, err := field.Value(value)
	if err != nil {
		v = ir.IRString(value)
	}
	return f.Eq(schema.Named(field.Name), v), true
}

// RefTag matches a reference field against a key: ||ref:project=17||.
func RefTag[C any](f Factory[C], entity *schema.Entity, value string) (C, bool) {
	var zero C
	name, key, ok := strings.Cut(value, "=")
	if !ok || key == "" {
		return zero, false
	}
	field := entity.FindField(name)
	if field == nil || !field.IsReference() {
		return zero, false
	}
	return f.Eq(schema.Named(field.Name), ir.IRString(key)), true
}

// DateTag matches any date or datetime field falling on the given day:
// ||date:2024-01-31||. Datetime fields match the half-open day range.
func DateTag[C any](f Factory[C], entity *schema.Entity, value string) (C, bool) {
	var zero C
	day, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(value), time.UTC)
	if err != nil {
		return zero, false
	}

	var nodes []C
	for _, field := range entity.FieldsOfType(schema.TypeDate, schema.TypeDateTime) {
		m := schema.Named(field.Name)
		if field.Type == schema.TypeDate {
			nodes = append(nodes, f.Eq(m, ir.NewIRTime(day, ir.TimeKindDate)))
			continue
		}
		start := ir.NewIRTime(day, ir.TimeKindDateTime)
		end := ir.NewIRTime(day.AddDate(0, 0, 1), ir.TimeKindDateTime)
		if node, ok := AndAll(f, []C{f.Gte(m, start), f.Lt(m, end)}); ok {
			nodes = append(nodes, node)
		}
	}
	return OrAll(f, nodes)
}
