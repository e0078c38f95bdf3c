package query

import (
	"github.com/roach88/querymix/internal/ir"
	"github.com/roach88/querymix/internal/schema"
)

// Factory materializes constraint nodes of type C.
//
// Implementations must be safe for concurrent use when the compiler using
// them is shared. And and Or receive at least two nodes from the compiler;
// given an empty list they must report no constraint.
type Factory[C any] interface {
	Eq(field schema.Mapping, value ir.IRValue) C
	Ne(field schema.Mapping, value ir.IRValue) C
	Gt(field schema.Mapping, value ir.IRValue) C
	Gte(field schema.Mapping, value ir.IRValue) C
	Lt(field schema.Mapping, value ir.IRValue) C
	Lte(field schema.Mapping, value ir.IRValue) C

	Filled(field schema.Mapping) C
	NotFilled(field schema.Mapping) C

	Not(node C) C
	And(nodes []C) (C, bool)
	Or(nodes []C) (C, bool)

	// Search matches one free-text word against a search field.
	Search(field schema.Mapping, mode schema.SearchMode, word string) C
}

// Operator is a parsed comparison operator.
type Operator int

const (
	OpEq Operator = iota
	OpNe
	OpGt
	OpGte
	OpLt
	OpLte
)

func (o Operator) String() string {
	switch o {
	case OpEq:
		return "="
	case OpNe:
		return "<>"
	case OpGt:
		return ">"
	case OpGte:
		return ">="
	case OpLt:
		return "<"
	case OpLte:
		return "<="
	default:
		return "?"
	}
}

// Apply calls the factory method matching o.
func Apply[C any](f Factory[C], o Operator, field schema.Mapping, value ir.IRValue) C {
	switch o {
	case OpNe:
		return f.Ne(field, value)
	case OpGt:
		return f.Gt(field, value)
	case OpGte:
		return f.Gte(field, value)
	case OpLt:
		return f.Lt(field, value)
	case OpLte:
		return f.Lte(field, value)
	default:
		return f.Eq(field, value)
	}
}

// Token is a lexical unit of the query. Exact tokens were quoted and are
// never split or reinterpreted.
type Token struct {
	Text  string
	Exact bool
}

// SearchField is a default search target with its match mode.
type SearchField struct {
	Field schema.Mapping
	Mode  schema.SearchMode
}

// Result is the outcome of one Compile call.
type Result[C any] struct {
	Constraint    C
	HasConstraint bool
	// Debugging is set when the query started with "??".
	Debugging bool
}

// AndAll combines nodes with AND. No nodes means no constraint and a single
// node is returned as is.
func AndAll[C any](f Factory[C], nodes []C) (C, bool) {
	return collapse(nodes, f.And)
}

// OrAll combines nodes with OR. No nodes means no constraint and a single
// node is returned as is.
func OrAll[C any](f Factory[C], nodes []C) (C, bool) {
	return collapse(nodes, f.Or)
}

func collapse[C any](nodes []C, combine func([]C) (C, bool)) (C, bool) {
	switch len(nodes) {
	case 0:
		var zero C
		return zero, false
	case 1:
		return nodes[0], true
	default:
		return combine(nodes)
	}
}
