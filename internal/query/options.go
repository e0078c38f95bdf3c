package query

import (
	"log/slog"
	"maps"

	"github.com/coder/quartz"

	"github.com/roach88/querymix/internal/schema"
)

// NestedResolver expands the remainder of a dotted path after its first
// segment resolved to field. It returns the full mapping and the addressed
// field, or false when the path cannot be followed.
type NestedResolver func(field *schema.Field, mapping schema.Mapping, rest string) (schema.Mapping, *schema.Field, bool)

// CustomField compiles a virtual field that is not part of the entity.
// Compile receives the parsed operator and raw value; returning false yields
// no constraint.
type CustomField[C any] struct {
	Name    string
	Compile func(f Factory[C], op Operator, value Token) (C, bool)
}

// Option configures a Compiler.
type Option func(*settings)

type settings struct {
	clock     quartz.Clock
	logger    *slog.Logger
	search    []SearchField
	searchSet bool
	nested    NestedResolver
}

// WithClock sets the clock temporal deltas are resolved against.
// Defaults to the real clock.
func WithClock(clock quartz.Clock) Option {
	return func(s *settings) {
		s.clock = clock
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithSearchFields replaces the entity's declared search fields.
// Calling it with no fields disables free-text search.
func WithSearchFields(fields ...SearchField) Option {
	return func(s *settings) {
		s.search = fields
		s.searchSet = true
	}
}

// WithNestedResolver enables dotted paths beyond the first segment.
// Without it every nested path is unresolvable.
func WithNestedResolver(r NestedResolver) Option {
	return func(s *settings) {
		s.nested = r
	}
}

// WithTags returns a copy of the compiler that dispatches tags to tags.
func (c *Compiler[C]) WithTags(tags *TagRegistry[C]) *Compiler[C] {
	cp := *c
	cp.tags = tags
	return &cp
}

// WithCustomFields returns a copy of the compiler that also handles the
// given virtual fields.
func (c *Compiler[C]) WithCustomFields(fields ...CustomField[C]) *Compiler[C] {
	cp := *c
	cp.custom = maps.Clone(c.custom)
	if cp.custom == nil {
		cp.custom = make(map[string]CustomField[C], len(fields))
	}
	for _, f := range fields {
		cp.custom[f.Name] = f
	}
	return &cp
}
