package query

import (
	"strings"

	"github.com/roach88/querymix/internal/schema"
)

// resolve maps a dotted path to a field of the entity.
// The first segment must name a field; any remainder goes to the nested resolver.
func (c *Compiler[C]) resolve(path string) (schema.Mapping, *schema.Field, bool) {
	first, rest, _ := strings.Cut(path, ".")
	field := c.entity.FindField(first)
	if field == nil {
		return schema.Mapping{}, nil, false
	}

	mapping := schema.Named(field.Name)
	if rest == "" {
		return mapping, field, true
	}
	if c.nested == nil {
		return schema.Mapping{}, nil, false
	}
	return c.nested(field, mapping, rest)
}

// defaultSearchFields resolves the entity's declared search paths.
// Paths that do not resolve are kept verbatim so backends still see them.
func (c *Compiler[C]) defaultSearchFields() []SearchField {
	fields := make([]SearchField, 0, len(c.entity.Search))
	for _, spec := range c.entity.Search {
		mapping, _, ok := c.resolve(spec.Field)
		if !ok {
			mapping = schema.ParseMapping(spec.Field)
		}
		mode := spec.Mode
		if mode == "" {
			mode = schema.SearchLike
		}
		fields = append(fields, SearchField{Field: mapping, Mode: mode})
	}
	return fields
}
