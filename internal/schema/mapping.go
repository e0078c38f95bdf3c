package schema

import "strings"

// Mapping addresses a field, possibly through a chain of references.
//
// A single-segment mapping ("title") addresses a field of the queried entity.
// Longer mappings ("project.owner.name") address a field reached by following
// the leading reference fields; backends that support it render these as joins.
type Mapping struct {
	path []string
}

// Named creates a single-segment mapping.
func Named(name string) Mapping {
	return Mapping{path: []string{name}}
}

// ParseMapping splits a dotted path into a mapping.
func ParseMapping(path string) Mapping {
	if path == "" {
		return Mapping{}
	}
	return Mapping{path: strings.Split(path, ".")}
}

// Join returns a new mapping with child appended.
// The receiver is never modified.
func (m Mapping) Join(child Mapping) Mapping {
	path := make([]string, 0, len(m.path)+len(child.path))
	path = append(path, m.path...)
	path = append(path, child.path...)
	return Mapping{path: path}
}

// Name returns the last segment (the addressed field).
func (m Mapping) Name() string {
	if len(m.path) == 0 {
		return ""
	}
	return m.path[len(m.path)-1]
}

// Parent returns the join prefix. Empty for single-segment mappings.
func (m Mapping) Parent() Mapping {
	if len(m.path) <= 1 {
		return Mapping{}
	}
	return Mapping{path: m.path[:len(m.path)-1 : len(m.path)-1]}
}

// Segments returns a copy of the path segments.
func (m Mapping) Segments() []string {
	return append([]string(nil), m.path...)
}

// IsNested reports whether the mapping traverses at least one reference.
func (m Mapping) IsNested() bool {
	return len(m.path) > 1
}

// IsEmpty reports whether the mapping has no segments.
func (m Mapping) IsEmpty() bool {
	return len(m.path) == 0
}

// String renders the dotted path.
func (m Mapping) String() string {
	return strings.Join(m.path, ".")
}

// Equal reports whether both mappings address the same path.
func (m Mapping) Equal(other Mapping) bool {
	if len(m.path) != len(other.path) {
		return false
	}
	for i := range m.path {
		if m.path[i] != other.path[i] {
			return false
		}
	}
	return true
}
