package queryir

import (
	"github.com/roach88/querymix/internal/ir"
	"github.com/roach88/querymix/internal/schema"
)

// Factory builds neutral constraint trees. It is stateless and safe for
// concurrent use.
type Factory struct{}

// NewFactory returns a tree factory.
func NewFactory() Factory {
	return Factory{}
}

func (Factory) compare(field schema.Mapping, op Op, value ir.IRValue) Node {
	return Compare{Field: field, Op: op, Value: value}
}

func (f Factory) Eq(field schema.Mapping, value ir.IRValue) Node  { return f.compare(field, OpEq, value) }
func (f Factory) Ne(field schema.Mapping, value ir.IRValue) Node  { return f.compare(field, OpNe, value) }
func (f Factory) Gt(field schema.Mapping, value ir.IRValue) Node  { return f.compare(field, OpGt, value) }
func (f Factory) Gte(field schema.Mapping, value ir.IRValue) Node { return f.compare(field, OpGte, value) }
func (f Factory) Lt(field schema.Mapping, value ir.IRValue) Node  { return f.compare(field, OpLt, value) }
func (f Factory) Lte(field schema.Mapping, value ir.IRValue) Node { return f.compare(field, OpLte, value) }

func (Factory) Filled(field schema.Mapping) Node    { return Filled{Field: field} }
func (Factory) NotFilled(field schema.Mapping) Node { return NotFilled{Field: field} }
func (Factory) Not(node Node) Node                  { return Not{Inner: node} }

// And returns a conjunction; an empty list yields no constraint.
func (Factory) And(nodes []Node) (Node, bool) {
	if len(nodes) == 0 {
		return nil, false
	}
	return And{Nodes: nodes}, true
}

// Or returns a disjunction; an empty list yields no constraint.
func (Factory) Or(nodes []Node) (Node, bool) {
	if len(nodes) == 0 {
		return nil, false
	}
	return Or{Nodes: nodes}, true
}

func (Factory) Search(field schema.Mapping, mode schema.SearchMode, word string) Node {
	return Search{Field: field, Mode: mode, Word: word}
}
