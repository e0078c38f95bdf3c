package queryes

import (
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/querymix/internal/ir"
	"github.com/roach88/querymix/internal/query"
	"github.com/roach88/querymix/internal/schema"
)

func taskEntity() *schema.Entity {
	return schema.NewEntity("task",
		&schema.Field{Name: "title", Type: schema.TypeString},
		&schema.Field{Name: "body", Type: schema.TypeText},
		&schema.Field{Name: "prio", Type: schema.TypeInt},
		&schema.Field{Name: "done", Type: schema.TypeBool},
		&schema.Field{Name: "created", Type: schema.TypeDateTime},
	).WithSearch(
		schema.SearchFieldSpec{Field: "title", Mode: schema.SearchLike},
		schema.SearchFieldSpec{Field: "body", Mode: schema.SearchPrefix},
	)
}

func render(t *testing.T, q string) string {
	t.Helper()
	clock := quartz.NewMock(t)
	clock.Set(time.Date(2024, 3, 10, 12, 30, 0, 0, time.UTC))

	c := query.New[Query](NewFactory(), taskEntity(), query.WithClock(clock))
	res, err := c.Compile(q)
	require.NoError(t, err)

	out, err := Render(Body(res))
	require.NoError(t, err)
	return out
}

func TestRender_Body(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"", `{"query":{"match_all":{}}}`},
		{"title:foo", `{"query":{"term":{"title":"foo"}}}`},
		{"prio>=2", `{"query":{"range":{"prio":{"gte":2}}}}`},
		{"prio<>2", `{"query":{"bool":{"must_not":[{"term":{"prio":2}}]}}}`},
		{"done:true", `{"query":{"term":{"done":true}}}`},
		{"title:-", `{"query":{"bool":{"must_not":[{"exists":{"field":"title"}}]}}}`},
		{"!title:-", `{"query":{"exists":{"field":"title"}}}`},
		{"created>-2h", `{"query":{"range":{"created":{"gt":"2024-03-10T10:30:00Z"}}}}`},
		{"created<2024-01-02", `{"query":{"range":{"created":{"lt":"2024-01-02T00:00:00Z"}}}}`},
		{"!done:true", `{"query":{"bool":{"must_not":[{"term":{"done":true}}]}}}`},
		{"title:a prio:1", `{"query":{"bool":{"filter":[{"term":{"title":"a"}},{"term":{"prio":1}}]}}}`},
		{"title:a or title:b", `{"query":{"bool":{"minimum_should_match":1,"should":[{"term":{"title":"a"}},{"term":{"title":"b"}}]}}}`},
		{"we*rd", `{"query":{"bool":{"minimum_should_match":1,"should":[` +
			`{"wildcard":{"title":{"case_insensitive":true,"value":"*we\\*rd*"}}},` +
			`{"prefix":{"body":{"case_insensitive":true,"value":"we*rd"}}}]}}}`},
		{`"a b"`, `{"query":{"bool":{"minimum_should_match":1,"should":[{"term":{"title":"a b"}},{"term":{"body":"a b"}}]}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.JSONEq(t, tt.want, render(t, tt.query))
		})
	}
}

func TestRender_SortedKeys(t *testing.T) {
	out, err := Render(Query{"b": 1, "a": Query{"d": 2, "c": 3}})
	require.NoError(t, err)
	assert.Equal(t, `{"a":{"c":3,"d":2},"b":1}`, out)
}

func TestFactory_NullComparisons(t *testing.T) {
	f := NewFactory()
	field := schema.Named("title")

	assert.Equal(t, f.NotFilled(field), f.Eq(field, ir.IRNull{}))
	assert.Equal(t, f.Filled(field), f.Ne(field, nil))
}

func TestFactory_EmptyCombinators(t *testing.T) {
	f := NewFactory()
	_, ok := f.And(nil)
	assert.False(t, ok)
	_, ok = f.Or(nil)
	assert.False(t, ok)
}

func TestEscapeWildcard(t *testing.T) {
	assert.Equal(t, `a\*b\?c\\d`, escapeWildcard(`a*b?c\d`))
}
