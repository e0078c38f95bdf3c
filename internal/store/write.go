package store

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/roach88/querymix/internal/ir"
	"github.com/roach88/querymix/internal/querysql"
	"github.com/roach88/querymix/internal/schema"
)

// Insert writes rows into the entity's table.
// Uses ON CONFLICT DO NOTHING for idempotency - rows with an existing id are
// silently ignored. Keys that are not fields of the entity are an error.
func (s *Store) Insert(ctx context.Context, e *schema.Entity, rows ...ir.IRObject) error {
	for i, row := range rows {
		record := make(goqu.Record, len(row))
		for _, key := range row.SortedKeys() {
			f := e.FindField(key)
			if f == nil {
				return fmt.Errorf("insert %s row %d: unknown field %q", e.Name, i, key)
			}
			v, err := encodeColumn(f, row[key])
			if err != nil {
				return fmt.Errorf("insert %s row %d: %w", e.Name, i, err)
			}
			record[f.ColumnName()] = v
		}

		sqlText, params, err := goqu.Dialect(querysql.Dialect).
			Insert(e.TableName()).
			Rows(record).
			OnConflict(goqu.DoNothing()).
			Prepared(true).
			ToSQL()
		if err != nil {
			return fmt.Errorf("insert %s row %d: %w", e.Name, i, err)
		}
		if _, err := s.db.ExecContext(ctx, sqlText, params...); err != nil {
			return fmt.Errorf("insert %s row %d: %w", e.Name, i, err)
		}
	}
	return nil
}
