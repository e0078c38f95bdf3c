package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/querymix/internal/ir"
	"github.com/roach88/querymix/internal/testutil"
)

func TestInsert_NormalizesValues(t *testing.T) {
	s := seedTestStore(t)

	var done int64
	var status, watchers, due string
	var body any
	err := s.db.QueryRow("SELECT done, status, watchers, due, body FROM tasks WHERE id = 2").
		Scan(&done, &status, &watchers, &due, &body)
	require.NoError(t, err)

	assert.Equal(t, int64(1), done)
	assert.Equal(t, "closed", status, "enum members are stored canonically")
	assert.Equal(t, "[2]", watchers)
	assert.Equal(t, "2024-03-15", due)

	err = s.db.QueryRow("SELECT done, body FROM tasks WHERE id = 3").Scan(&done, &body)
	require.NoError(t, err)
	assert.Equal(t, int64(0), done, "bool strings go through the field transform")
	assert.Nil(t, body)
}

func TestInsert_Idempotent(t *testing.T) {
	s := seedTestStore(t)
	task := testutil.Registry().Entity("task")

	err := s.Insert(context.Background(), task, ir.IRObject{"id": ir.IRInt(1), "title": ir.IRString("changed")})
	require.NoError(t, err)

	var title string
	require.NoError(t, s.db.QueryRow("SELECT title FROM tasks WHERE id = 1").Scan(&title))
	assert.Equal(t, "Fix parser", title)
}

func TestInsert_Errors(t *testing.T) {
	s := createTestStore(t)
	task := testutil.Registry().Entity("task")

	tests := []struct {
		name string
		row  ir.IRObject
		msg  string
	}{
		{"unknown field", ir.IRObject{"ghost": ir.IRInt(1)}, `unknown field "ghost"`},
		{"bad int", ir.IRObject{"prio": ir.IRString("high")}, "invalid int"},
		{"bad enum", ir.IRObject{"status": ir.IRString("wip")}, "is not one of"},
		{"array outside reference list", ir.IRObject{"title": ir.IRArray{ir.IRInt(1)}}, "arrays are only stored"},
		{"object", ir.IRObject{"title": ir.IRObject{}}, "unsupported value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Insert(context.Background(), task, tt.row)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}
