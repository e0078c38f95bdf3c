package queryir

import (
	"github.com/roach88/querymix/internal/ir"
	"github.com/roach88/querymix/internal/schema"
)

// Node represents a constraint in the neutral tree.
//
// This is a sealed interface - only types in this package implement it.
// The marker method pattern prevents external implementations and enables
// exhaustive type switches in renderers.
type Node interface {
	constraintNode() // Marker method - seals interface to this package
}

// Op is a comparison operator.
type Op string

const (
	OpEq  Op = "="
	OpNe  Op = "<>"
	OpGt  Op = ">"
	OpGte Op = ">="
	OpLt  Op = "<"
	OpLte Op = "<="
)

// Name returns the short lowercase name used by Format ("eq", "gte", ...).
func (o Op) Name() string {
	switch o {
	case OpEq:
		return "eq"
	case OpNe:
		return "ne"
	case OpGt:
		return "gt"
	case OpGte:
		return "gte"
	case OpLt:
		return "lt"
	case OpLte:
		return "lte"
	default:
		return string(o)
	}
}

// IsOrdering reports whether o compares by order rather than equality.
func (o Op) IsOrdering() bool {
	return o == OpGt || o == OpGte || o == OpLt || o == OpLte
}

// Compare represents a field-compared-to-literal constraint.
//
// Semantics:
//
//	<field> <op> <value>
//
// Example:
//
//	Compare{Field: schema.Named("prio"), Op: OpGte, Value: ir.IRInt(3)}
//
// renders in SQL as:
//
//	"prio" >= 3
type Compare struct {
	Field schema.Mapping
	Op    Op
	Value ir.IRValue
}

func (Compare) constraintNode() {}

// Filled matches records where the field holds a value.
type Filled struct {
	Field schema.Mapping
}

func (Filled) constraintNode() {}

// NotFilled matches records where the field is absent or null.
type NotFilled struct {
	Field schema.Mapping
}

func (NotFilled) constraintNode() {}

// Not negates the inner constraint.
type Not struct {
	Inner Node
}

func (Not) constraintNode() {}

// And represents a conjunction (all nodes must match).
// The compiler never produces an empty And.
type And struct {
	Nodes []Node
}

func (And) constraintNode() {}

// Or represents a disjunction (at least one node must match).
// The compiler never produces an empty Or.
type Or struct {
	Nodes []Node
}

func (Or) constraintNode() {}

// Search represents a free-text word matched against a search field.
//
// Semantics by mode:
//   - equal: field value equals word
//   - like: field value contains word (case-insensitive)
//   - prefix: field value starts with word (case-insensitive)
type Search struct {
	Field schema.Mapping
	Mode  schema.SearchMode
	Word  string
}

func (Search) constraintNode() {}
