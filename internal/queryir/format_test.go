package queryir

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/querymix/internal/ir"
	"github.com/roach88/querymix/internal/schema"
)

func TestFormat(t *testing.T) {
	f := NewFactory()
	title := schema.Named("title")

	tests := []struct {
		name     string
		node     Node
		expected string
	}{
		{"nil", nil, "<none>"},
		{"eq string", f.Eq(title, ir.IRString("foo")), `eq(title, "foo")`},
		{"gte int", f.Gte(schema.Named("prio"), ir.IRInt(3)), `gte(prio, 3)`},
		{"ne bool", f.Ne(schema.Named("done"), ir.IRBool(true)), `ne(done, true)`},
		{"lt date", f.Lt(schema.Named("due"), ir.NewIRTime(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), ir.TimeKindDate)),
			`lt(due, 2024-01-02)`},
		{"nested mapping", f.Eq(schema.ParseMapping("project.name"), ir.IRString("x")), `eq(project.name, "x")`},
		{"filled", f.Filled(title), `filled(title)`},
		{"notFilled", f.NotFilled(title), `notFilled(title)`},
		{"not", f.Not(f.Eq(title, ir.IRString("a"))), `not(eq(title, "a"))`},
		{"search", f.Search(title, schema.SearchLike, "fo\"o"), `search(title, like, "fo\"o")`},
		{"and/or", And{Nodes: []Node{
			f.Eq(title, ir.IRString("a")),
			Or{Nodes: []Node{f.Filled(title), f.NotFilled(title)}},
		}}, `and(eq(title, "a"), or(filled(title), notFilled(title)))`},
		{"pointer", &Compare{Field: title, Op: OpEq, Value: ir.IRNull{}}, `eq(title, null)`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Format(tt.node))
		})
	}
}

func TestFactoryEmptyCombinators(t *testing.T) {
	f := NewFactory()

	n, ok := f.And(nil)
	assert.False(t, ok)
	assert.Nil(t, n)

	n, ok = f.Or([]Node{})
	assert.False(t, ok)
	assert.Nil(t, n)

	n, ok = f.Or([]Node{f.Filled(schema.Named("a"))})
	assert.True(t, ok)
	assert.Equal(t, Or{Nodes: []Node{Filled{Field: schema.Named("a")}}}, n)
}
