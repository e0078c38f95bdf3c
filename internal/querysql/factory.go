package querysql

import (
	"errors"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/roach88/querymix/internal/ir"
	"github.com/roach88/querymix/internal/query"
	"github.com/roach88/querymix/internal/schema"
)

// Condition is a SQL constraint node.
type Condition struct {
	Expr  exp.Expression
	Joins []Join
	// Err records a field the factory could not map to a column.
	// Statement building fails with it.
	Err error
}

// Join is a LEFT JOIN required to reach a referenced entity.
type Join struct {
	Alias       string // alias of the joined table
	Table       string
	Key         string // primary key column of Table
	ParentAlias string // alias holding the reference column
	Column      string // reference column on the parent
}

// Factory builds SQL conditions for one root entity.
// It is read-only after construction and safe for concurrent use.
type Factory struct {
	registry *schema.Registry
	entity   *schema.Entity
}

var _ query.Factory[Condition] = (*Factory)(nil)

// NewFactory creates a factory for entity. The registry resolves reference
// targets for dotted paths and may be nil when no joins are needed.
func NewFactory(registry *schema.Registry, entity *schema.Entity) *Factory {
	return &Factory{registry: registry, entity: entity}
}

// Entity returns the root entity statements select from.
func (f *Factory) Entity() *schema.Entity {
	return f.entity
}

// column maps a field path to a qualified column and the joins reaching it.
func (f *Factory) column(m schema.Mapping) (exp.IdentifierExpression, *schema.Field, []Join, error) {
	segs := m.Segments()
	if len(segs) == 0 {
		return nil, nil, nil, errors.New("empty field mapping")
	}

	entity := f.entity
	alias := f.entity.TableName()
	var joins []Join
	for i, seg := range segs {
		field := entity.FindField(seg)
		if field == nil {
			return nil, nil, nil, fmt.Errorf("unknown field %q in entity %s", seg, entity.Name)
		}
		if i == len(segs)-1 {
			return goqu.T(alias).Col(field.ColumnName()), field, joins, nil
		}

		if field.Type != schema.TypeReference {
			return nil, nil, nil, fmt.Errorf("field %s.%s is not a reference and cannot be joined", entity.Name, seg)
		}
		if f.registry == nil {
			return nil, nil, nil, fmt.Errorf("cannot join %s: no registry", m)
		}
		target := f.registry.Target(field)
		if target == nil {
			return nil, nil, nil, fmt.Errorf("reference %s.%s points to unknown entity %q", entity.Name, seg, field.Ref)
		}

		joinAlias := "j_" + strings.Join(segs[:i+1], "_")
		joins = append(joins, Join{
			Alias:       joinAlias,
			Table:       target.TableName(),
			Key:         target.FindField(schema.IDField).ColumnName(),
			ParentAlias: alias,
			Column:      field.ColumnName(),
		})
		entity, alias = target, joinAlias
	}
	return nil, nil, nil, errors.New("unreachable")
}

// param converts a value into a driver parameter.
// Temporal values are stored and compared in their canonical text form,
// booleans as 0/1 integers.
func param(v ir.IRValue) (any, error) {
	switch val := v.(type) {
	case ir.IRTime:
		return val.String(), nil
	case ir.IRBool:
		if val {
			return int64(1), nil
		}
		return int64(0), nil
	case ir.IRArray, ir.IRObject:
		return nil, fmt.Errorf("container value %s has no column form", ir.Format(v))
	}
	return ir.Native(v)
}

func (f *Factory) compare(m schema.Mapping, op query.Operator, v ir.IRValue) Condition {
	col, field, joins, err := f.column(m)
	if err != nil {
		return Condition{Err: err}
	}
	val, err := param(v)
	if err != nil {
		return Condition{Err: fmt.Errorf("field %s: %w", m, err)}
	}

	// Reference lists are stored as JSON arrays of keys
	if field.Type == schema.TypeReferenceList && (op == query.OpEq || op == query.OpNe) {
		member := goqu.L("EXISTS (SELECT 1 FROM json_each(?) WHERE CAST(json_each.value AS TEXT) = CAST(? AS TEXT))", col, val)
		if op == query.OpNe {
			return Condition{Expr: goqu.L("NOT ?", member), Joins: joins}
		}
		return Condition{Expr: member, Joins: joins}
	}

	var expr exp.Expression
	switch op {
	case query.OpNe:
		expr = col.Neq(val)
	case query.OpGt:
		expr = col.Gt(val)
	case query.OpGte:
		expr = col.Gte(val)
	case query.OpLt:
		expr = col.Lt(val)
	case query.OpLte:
		expr = col.Lte(val)
	default:
		expr = col.Eq(val)
	}
	return Condition{Expr: expr, Joins: joins}
}

func (f *Factory) Eq(field schema.Mapping, value ir.IRValue) Condition {
	return f.compare(field, query.OpEq, value)
}

func (f *Factory) Ne(field schema.Mapping, value ir.IRValue) Condition {
	return f.compare(field, query.OpNe, value)
}

func (f *Factory) Gt(field schema.Mapping, value ir.IRValue) Condition {
	return f.compare(field, query.OpGt, value)
}

func (f *Factory) Gte(field schema.Mapping, value ir.IRValue) Condition {
	return f.compare(field, query.OpGte, value)
}

func (f *Factory) Lt(field schema.Mapping, value ir.IRValue) Condition {
	return f.compare(field, query.OpLt, value)
}

func (f *Factory) Lte(field schema.Mapping, value ir.IRValue) Condition {
	return f.compare(field, query.OpLte, value)
}

// Filled matches non-NULL columns.
func (f *Factory) Filled(field schema.Mapping) Condition {
	col, _, joins, err := f.column(field)
	if err != nil {
		return Condition{Err: err}
	}
	return Condition{Expr: col.IsNotNull(), Joins: joins}
}

// NotFilled matches NULL columns, including rows whose join found nothing.
func (f *Factory) NotFilled(field schema.Mapping) Condition {
	col, _, joins, err := f.column(field)
	if err != nil {
		return Condition{Err: err}
	}
	return Condition{Expr: col.IsNull(), Joins: joins}
}

func (f *Factory) Not(node Condition) Condition {
	if node.Err != nil {
		return node
	}
	return Condition{Expr: goqu.L("NOT (?)", node.Expr), Joins: node.Joins}
}

func (f *Factory) And(nodes []Condition) (Condition, bool) {
	return combine(nodes, goqu.And)
}

func (f *Factory) Or(nodes []Condition) (Condition, bool) {
	return combine(nodes, goqu.Or)
}

func combine(nodes []Condition, list func(...exp.Expression) exp.ExpressionList) (Condition, bool) {
	if len(nodes) == 0 {
		return Condition{}, false
	}
	exprs := make([]exp.Expression, 0, len(nodes))
	var joins []Join
	seen := make(map[string]bool)
	for _, n := range nodes {
		if n.Err != nil {
			return Condition{Err: n.Err}, true
		}
		exprs = append(exprs, n.Expr)
		for _, j := range n.Joins {
			if !seen[j.Alias] {
				seen[j.Alias] = true
				joins = append(joins, j)
			}
		}
	}
	return Condition{Expr: list(exprs...), Joins: joins}, true
}

// Search renders free-text matching. like and prefix use LIKE with '\' as
// escape so '%' and '_' in the word match literally. SQLite LIKE is
// case-insensitive for ASCII.
func (f *Factory) Search(field schema.Mapping, mode schema.SearchMode, word string) Condition {
	col, _, joins, err := f.column(field)
	if err != nil {
		return Condition{Err: err}
	}
	switch mode {
	case schema.SearchEqual:
		return Condition{Expr: col.Eq(word), Joins: joins}
	case schema.SearchPrefix:
		return Condition{Expr: likeExpr(col, escapeLike(word)+"%"), Joins: joins}
	default:
		return Condition{Expr: likeExpr(col, "%"+escapeLike(word)+"%"), Joins: joins}
	}
}

func likeExpr(col exp.IdentifierExpression, pattern string) exp.Expression {
	return goqu.L(`? LIKE ? ESCAPE '\'`, col, pattern)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
