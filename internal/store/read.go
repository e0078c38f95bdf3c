package store

import (
	"context"
	"fmt"

	"github.com/roach88/querymix/internal/ir"
	"github.com/roach88/querymix/internal/query"
	"github.com/roach88/querymix/internal/querysql"
	"github.com/roach88/querymix/internal/schema"
)

// Query compiles a result into a statement and returns the matching rows.
func (s *Store) Query(ctx context.Context, f *querysql.Factory, res query.Result[querysql.Condition]) ([]ir.IRObject, error) {
	sqlText, params, err := f.Compile(res)
	if err != nil {
		return nil, err
	}
	return s.Find(ctx, f.Entity(), sqlText, params)
}

// Find executes a statement selecting the entity's columns in field order
// and decodes every row into an object keyed by field name.
//
// Returns an empty slice (not nil) if no rows match.
func (s *Store) Find(ctx context.Context, e *schema.Entity, sqlText string, params []any) ([]ir.IRObject, error) {
	rows, err := s.db.QueryContext(ctx, sqlText, params...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", e.Name, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", e.Name, err)
	}
	if len(cols) != len(e.Fields) {
		return nil, fmt.Errorf("query %s: statement selects %d columns, entity has %d fields", e.Name, len(cols), len(e.Fields))
	}

	result := []ir.IRObject{}
	for rows.Next() {
		raw := make([]any, len(cols))
		dest := make([]any, len(cols))
		for i := range raw {
			dest[i] = &raw[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", e.Name, err)
		}

		obj := make(ir.IRObject, len(cols))
		for i, f := range e.Fields {
			v, err := decodeColumn(f, raw[i])
			if err != nil {
				return nil, fmt.Errorf("scan %s: %w", e.Name, err)
			}
			obj[f.Name] = v
		}
		result = append(result, obj)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", e.Name, err)
	}
	return result, nil
}

// IDs returns the id value of every row, in order.
func IDs(rows []ir.IRObject) []ir.IRValue {
	ids := make([]ir.IRValue, len(rows))
	for i, row := range rows {
		ids[i] = row[schema.IDField]
	}
	return ids
}
