package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/querymix/internal/ir"
	"github.com/roach88/querymix/internal/schema"
)

func TestValidate_PortableTree(t *testing.T) {
	tree := And{Nodes: []Node{
		Compare{Field: schema.Named("status"), Op: OpEq, Value: ir.IRString("open")},
		Not{Inner: Filled{Field: schema.Named("due")}},
		Or{Nodes: []Node{
			Search{Field: schema.Named("title"), Mode: schema.SearchLike, Word: "foo"},
			Search{Field: schema.Named("body"), Mode: schema.SearchPrefix, Word: "foo"},
		}},
	}}

	result := Validate(tree)

	assert.True(t, result.IsPortable)
	assert.Empty(t, result.Warnings)
}

func TestValidate_NilTreeIsPortable(t *testing.T) {
	result := Validate(nil)
	assert.True(t, result.IsPortable)
}

func TestValidate_Warnings(t *testing.T) {
	tests := []struct {
		name     string
		node     Node
		contains string
	}{
		{"null literal", Compare{Field: schema.Named("a"), Op: OpEq, Value: ir.IRNull{}}, "NULL"},
		{"boolean ordering", Compare{Field: schema.Named("done"), Op: OpGt, Value: ir.IRBool(false)}, "boolean"},
		{"container", &Compare{Field: schema.Named("tags"), Op: OpEq, Value: ir.IRArray{ir.IRString("x")}}, "container"},
		{"nested mapping", Filled{Field: schema.ParseMapping("project.name")}, "joins are SQL-only"},
		{"empty and", And{}, "Empty and"},
		{"nil child", Or{Nodes: []Node{nil}}, "nil node"},
		{"bad search mode", Search{Field: schema.Named("t"), Mode: "fuzzy", Word: "x"}, "unknown mode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.node)
			assert.False(t, result.IsPortable)
			require.NotEmpty(t, result.Warnings)
			assert.Contains(t, result.Warnings[0], tt.contains)
		})
	}
}

func TestValidate_BooleanEqualityIsPortable(t *testing.T) {
	result := Validate(Compare{Field: schema.Named("done"), Op: OpEq, Value: ir.IRBool(true)})
	assert.True(t, result.IsPortable)
}

func TestValidate_CollectsAllWarnings(t *testing.T) {
	tree := And{Nodes: []Node{
		Compare{Field: schema.Named("a"), Op: OpEq, Value: ir.IRNull{}},
		NotFilled{Field: schema.ParseMapping("b.c")},
	}}

	result := Validate(tree)
	assert.Len(t, result.Warnings, 2)
}
