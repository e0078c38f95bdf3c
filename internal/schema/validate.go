package schema

import (
	"fmt"
	"strings"
)

// Validation error codes (E100-E199)
const (
	ErrEntityNameEmpty   = "E101" // entity name is required
	ErrDuplicateEntity   = "E102" // duplicate entity name
	ErrInvalidFieldType  = "E103" // unknown field type
	ErrDuplicateField    = "E104" // duplicate field name
	ErrUnknownReference  = "E105" // reference target entity missing
	ErrEnumNoValues      = "E106" // enum without members
	ErrUnknownSearchPath = "E107" // search field does not resolve
	ErrInvalidSearchMode = "E108" // unknown search mode
	ErrFieldNameInvalid  = "E109" // field name empty or contains '.'
)

// ValidationError represents a descriptor validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a registry for consistency.
// Returns all errors found (does not fail-fast).
func Validate(r *Registry) []ValidationError {
	var errs []ValidationError
	for _, name := range r.Names() {
		errs = append(errs, validateEntity(r, r.Entity(name))...)
	}
	return errs
}

func validateEntity(r *Registry, e *Entity) []ValidationError {
	var errs []ValidationError
	add := func(path, code, format string, args ...any) {
		errs = append(errs, ValidationError{
			Field:   path,
			Message: fmt.Sprintf(format, args...),
			Code:    code,
		})
	}

	if strings.TrimSpace(e.Name) == "" {
		add("entities", ErrEntityNameEmpty, "entity name is required")
	}

	seen := make(map[string]bool, len(e.Fields))
	for _, f := range e.Fields {
		path := e.Name + "." + f.Name
		if f.Name == "" || strings.Contains(f.Name, ".") {
			add(path, ErrFieldNameInvalid, "field name must be non-empty and must not contain '.'")
		}
		if seen[f.Name] {
			add(path, ErrDuplicateField, "duplicate field %q", f.Name)
		}
		seen[f.Name] = true

		if !f.Type.IsValid() {
			add(path, ErrInvalidFieldType, "invalid type %q: must be one of %v", f.Type, ValidFieldTypes)
		}
		if f.IsReference() && r.Entity(f.Ref) == nil {
			add(path, ErrUnknownReference, "reference target %q is not a known entity", f.Ref)
		}
		if f.Type == TypeEnum && len(f.Values) == 0 {
			add(path, ErrEnumNoValues, "enum field requires values")
		}
	}

	for i, s := range e.Search {
		path := fmt.Sprintf("%s.search[%d]", e.Name, i)
		if !s.Mode.IsValid() {
			add(path, ErrInvalidSearchMode, "invalid search mode %q", s.Mode)
		}
		if _, ok := ResolvePath(r, e, s.Field); !ok {
			add(path, ErrUnknownSearchPath, "search field %q does not resolve", s.Field)
		}
	}
	return errs
}

// ResolvePath follows a dotted path through reference fields.
// It returns the addressed field and whether every segment resolved.
func ResolvePath(r *Registry, e *Entity, path string) (*Field, bool) {
	segments := strings.Split(path, ".")
	current := e
	for i, seg := range segments {
		if current == nil {
			return nil, false
		}
		f := current.FindField(seg)
		if f == nil {
			return nil, false
		}
		if i == len(segments)-1 {
			return f, true
		}
		if r == nil {
			return nil, false
		}
		current = r.Target(f)
	}
	return nil, false
}
