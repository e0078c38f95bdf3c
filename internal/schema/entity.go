package schema

import (
	"fmt"
	"sort"
	"strings"
)

// IDField is the implicit primary key every entity carries.
const IDField = "id"

// SearchMode selects how a free-text word is matched against a search field.
type SearchMode string

const (
	// SearchEqual matches the whole field value.
	SearchEqual SearchMode = "equal"
	// SearchLike matches the word anywhere in the field value.
	SearchLike SearchMode = "like"
	// SearchPrefix matches field values starting with the word.
	SearchPrefix SearchMode = "prefix"
)

// IsValid reports whether m is a known search mode.
func (m SearchMode) IsValid() bool {
	switch m {
	case SearchEqual, SearchLike, SearchPrefix:
		return true
	}
	return false
}

// SearchFieldSpec declares a default search field of an entity.
type SearchFieldSpec struct {
	Field string     `yaml:"field" json:"field"`
	Mode  SearchMode `yaml:"mode,omitempty" json:"mode,omitempty"` // defaults to like
}

// Entity describes a queryable entity type.
type Entity struct {
	Name   string            `yaml:"name" json:"name"`
	Table  string            `yaml:"table,omitempty" json:"table,omitempty"` // defaults to Name
	Fields []*Field          `yaml:"fields" json:"fields"`
	Search []SearchFieldSpec `yaml:"search,omitempty" json:"search,omitempty"`

	index map[string]*Field
}

// NewEntity builds an entity from fields and prepares it for lookups.
func NewEntity(name string, fields ...*Field) *Entity {
	e := &Entity{Name: name, Fields: fields}
	e.normalize()
	return e
}

// normalize fills defaults and builds the lookup index.
// It prepends the implicit id field when the descriptor omits it.
func (e *Entity) normalize() {
	hasID := false
	for _, f := range e.Fields {
		if f.Name == IDField {
			hasID = true
		}
	}
	if !hasID {
		e.Fields = append([]*Field{{Name: IDField, Type: TypeInt}}, e.Fields...)
	}
	for i := range e.Search {
		if e.Search[i].Mode == "" {
			e.Search[i].Mode = SearchLike
		}
	}
	e.index = make(map[string]*Field, len(e.Fields))
	for _, f := range e.Fields {
		if _, dup := e.index[f.Name]; !dup {
			e.index[f.Name] = f
		}
	}
}

// TableName returns the storage table of the entity.
func (e *Entity) TableName() string {
	if e.Table != "" {
		return e.Table
	}
	return e.Name
}

// FindField looks up a field by name. Returns nil when unknown.
func (e *Entity) FindField(name string) *Field {
	if e.index == nil {
		for _, f := range e.Fields {
			if f.Name == name {
				return f
			}
		}
		return nil
	}
	return e.index[name]
}

// FieldsOfType returns the fields whose type is one of types, in declaration order.
func (e *Entity) FieldsOfType(types ...FieldType) []*Field {
	var out []*Field
	for _, f := range e.Fields {
		for _, t := range types {
			if f.Type == t {
				out = append(out, f)
				break
			}
		}
	}
	return out
}

// WithSearch returns the entity after replacing its default search fields.
func (e *Entity) WithSearch(specs ...SearchFieldSpec) *Entity {
	e.Search = specs
	e.normalize()
	return e
}

// Registry holds all entities of a descriptor file, keyed by name.
type Registry struct {
	entities map[string]*Entity
}

// NewRegistry creates a registry from entities.
func NewRegistry(entities ...*Entity) *Registry {
	r := &Registry{entities: make(map[string]*Entity, len(entities))}
	for _, e := range entities {
		r.Add(e)
	}
	return r
}

// Add registers an entity, replacing any previous one with the same name.
func (r *Registry) Add(e *Entity) {
	e.normalize()
	r.entities[e.Name] = e
}

// Entity returns the named entity or nil.
func (r *Registry) Entity(name string) *Entity {
	return r.entities[name]
}

// MustEntity returns the named entity or an error naming the known ones.
func (r *Registry) MustEntity(name string) (*Entity, error) {
	if e := r.entities[name]; e != nil {
		return e, nil
	}
	return nil, fmt.Errorf("unknown entity %q (known: %s)", name, strings.Join(r.Names(), ", "))
}

// Names returns the sorted entity names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entities))
	for name := range r.entities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Target returns the entity a reference field points to.
func (r *Registry) Target(f *Field) *Entity {
	if f == nil || !f.IsReference() {
		return nil
	}
	return r.entities[f.Ref]
}
