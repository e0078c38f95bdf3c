package querysql

import (
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3" // registers the sqlite3 dialect
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/roach88/querymix/internal/query"
	"github.com/roach88/querymix/internal/schema"
)

// Dialect is the goqu dialect statements are rendered in.
const Dialect = "sqlite3"

// Columns returns the root entity's columns in the order Compile selects them.
func (f *Factory) Columns() []string {
	cols := make([]string, len(f.entity.Fields))
	for i, field := range f.entity.Fields {
		cols[i] = field.ColumnName()
	}
	return cols
}

// Compile builds the SELECT statement for a compilation result.
// Returns (sql, params, error).
//
// MANDATORY: Every statement includes ORDER BY id with COLLATE BINARY.
// MANDATORY: All values are parameterized (never interpolated).
func (f *Factory) Compile(res query.Result[Condition]) (string, []any, error) {
	table := f.entity.TableName()

	selects := make([]any, 0, len(f.entity.Fields))
	for _, col := range f.Columns() {
		selects = append(selects, goqu.T(table).Col(col))
	}

	ds := goqu.Dialect(Dialect).
		From(goqu.T(table)).
		Select(selects...).
		Prepared(true)

	if res.HasConstraint {
		cond := res.Constraint
		if cond.Err != nil {
			return "", nil, fmt.Errorf("compile condition: %w", cond.Err)
		}
		for _, j := range cond.Joins {
			ds = ds.LeftJoin(
				goqu.T(j.Table).As(j.Alias),
				goqu.On(goqu.T(j.Alias).Col(j.Key).Eq(goqu.T(j.ParentAlias).Col(j.Column))),
			)
		}
		ds = ds.Where(cond.Expr)
	}

	ds = ds.Order(stableOrderKey(table, f.entity))

	sql, params, err := ds.ToSQL()
	if err != nil {
		return "", nil, fmt.Errorf("render SQL: %w", err)
	}
	return sql, params, nil
}

// stableOrderKey orders by the primary key.
// COLLATE BINARY keeps text keys in byte order across SQLite versions.
func stableOrderKey(table string, e *schema.Entity) exp.OrderedExpression {
	id := goqu.T(table).Col(e.FindField(schema.IDField).ColumnName())
	return goqu.L("? COLLATE BINARY", id).Asc()
}
