package querysql

import (
	"strings"

	"github.com/roach88/querymix/internal/query"
	"github.com/roach88/querymix/internal/schema"
)

// NestedResolver follows reference fields through the registry so dotted
// paths like "project.owner.name" resolve to the addressed field.
// Every segment but the last must be a single reference.
func NestedResolver(r *schema.Registry) query.NestedResolver {
	return func(field *schema.Field, mapping schema.Mapping, rest string) (schema.Mapping, *schema.Field, bool) {
		current := field
		for _, seg := range strings.Split(rest, ".") {
			if current.Type != schema.TypeReference {
				return schema.Mapping{}, nil, false
			}
			target := r.Target(current)
			if target == nil {
				return schema.Mapping{}, nil, false
			}
			next := target.FindField(seg)
			if next == nil {
				return schema.Mapping{}, nil, false
			}
			mapping = mapping.Join(schema.Named(next.Name))
			current = next
		}
		return mapping, current, true
	}
}
