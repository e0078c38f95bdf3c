package querysql

import (
	"database/sql"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/querymix/internal/ir"
	"github.com/roach88/querymix/internal/query"
	"github.com/roach88/querymix/internal/schema"
)

func testRegistry() *schema.Registry {
	user := schema.NewEntity("user",
		&schema.Field{Name: "name", Type: schema.TypeString},
	)
	user.Table = "users"
	project := schema.NewEntity("project",
		&schema.Field{Name: "name", Type: schema.TypeString},
		&schema.Field{Name: "owner", Type: schema.TypeReference, Ref: "user"},
	)
	task := schema.NewEntity("task",
		&schema.Field{Name: "title", Type: schema.TypeString},
		&schema.Field{Name: "body", Type: schema.TypeText},
		&schema.Field{Name: "prio", Type: schema.TypeInt},
		&schema.Field{Name: "done", Type: schema.TypeBool},
		&schema.Field{Name: "due", Type: schema.TypeDate},
		&schema.Field{Name: "project", Type: schema.TypeReference, Ref: "project"},
		&schema.Field{Name: "tags", Type: schema.TypeReferenceList, Ref: "user"},
	).WithSearch(
		schema.SearchFieldSpec{Field: "title", Mode: schema.SearchLike},
		schema.SearchFieldSpec{Field: "body", Mode: schema.SearchPrefix},
	)
	task.Table = "tasks"
	return schema.NewRegistry(user, project, task)
}

func compileSQL(t *testing.T, r *schema.Registry, q string) (string, []any) {
	t.Helper()
	entity := r.Entity("task")
	factory := NewFactory(r, entity)
	c := query.New[Condition](factory, entity, query.WithNestedResolver(NestedResolver(r)))

	res, err := c.Compile(q)
	require.NoError(t, err)
	sqlText, params, err := factory.Compile(res)
	require.NoError(t, err, "query %q", q)
	return sqlText, params
}

func TestCompile_NoConstraint(t *testing.T) {
	sqlText, params := compileSQL(t, testRegistry(), "")

	assert.NotContains(t, sqlText, "WHERE")
	assert.Contains(t, sqlText, "FROM `tasks`")
	assert.Contains(t, sqlText, "ORDER BY `tasks`.`id` COLLATE BINARY ASC")
	assert.Empty(t, params)
}

func TestCompile_ParameterizedEquality(t *testing.T) {
	sqlText, params := compileSQL(t, testRegistry(), "title:foo")

	assert.Contains(t, sqlText, "WHERE (`tasks`.`title` = ?)")
	assert.Equal(t, []any{"foo"}, params)
	assert.NotContains(t, sqlText, "foo", "values must never be interpolated")
}

func TestCompile_SelectsEveryColumn(t *testing.T) {
	sqlText, _ := compileSQL(t, testRegistry(), "")

	for _, col := range []string{"id", "title", "body", "prio", "done", "due", "project", "tags"} {
		assert.Contains(t, sqlText, "`tasks`.`"+col+"`")
	}
}

func TestCompile_JoinsAreDeduplicated(t *testing.T) {
	r := testRegistry()

	sqlText, _ := compileSQL(t, r, "project.name:a or project.name:b")
	assert.Equal(t, 1, strings.Count(sqlText, "LEFT JOIN"))
	assert.Contains(t, sqlText, "`j_project`")

	sqlText, _ = compileSQL(t, r, "project.owner.name:x project.name:y")
	assert.Equal(t, 2, strings.Count(sqlText, "LEFT JOIN"))
	assert.Contains(t, sqlText, "`users` AS `j_project_owner`")
}

func TestCompile_FactoryErrors(t *testing.T) {
	r := testRegistry()
	entity := r.Entity("task")

	tests := []struct {
		name string
		cond Condition
	}{
		{"unknown field", NewFactory(r, entity).Eq(schema.Named("ghost"), ir.IRString("x"))},
		{"join through non-reference", NewFactory(r, entity).Filled(schema.ParseMapping("title.name"))},
		{"join without registry", NewFactory(nil, entity).Eq(schema.ParseMapping("project.name"), ir.IRString("x"))},
		{"empty mapping", NewFactory(r, entity).NotFilled(schema.Mapping{})},
		{"container value", NewFactory(r, entity).Eq(schema.Named("title"), ir.IRObject{"a": ir.IRInt(1)})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, tt.cond.Err)

			f := NewFactory(r, entity)
			combined, ok := f.And([]Condition{f.Filled(schema.Named("title")), f.Not(tt.cond)})
			require.True(t, ok)
			_, _, err := f.Compile(query.Result[Condition]{Constraint: combined, HasConstraint: true})
			require.Error(t, err)
		})
	}
}

func TestCompile_EmptyCombinators(t *testing.T) {
	f := NewFactory(nil, schema.NewEntity("x"))

	_, ok := f.And(nil)
	assert.False(t, ok)
	_, ok = f.Or([]Condition{})
	assert.False(t, ok)
}

func TestNestedResolver(t *testing.T) {
	r := testRegistry()
	task := r.Entity("task")
	resolve := NestedResolver(r)

	m, f, ok := resolve(task.FindField("project"), schema.Named("project"), "owner.name")
	require.True(t, ok)
	assert.Equal(t, "project.owner.name", m.String())
	assert.Equal(t, "name", f.Name)

	_, _, ok = resolve(task.FindField("project"), schema.Named("project"), "missing")
	assert.False(t, ok)

	_, _, ok = resolve(task.FindField("title"), schema.Named("title"), "x")
	assert.False(t, ok)

	_, _, ok = resolve(task.FindField("tags"), schema.Named("tags"), "name")
	assert.False(t, ok, "reference lists are not joined")
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c:\\x`, escapeLike(`c:\x`))
}

const fixtureSQL = `
CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT);
CREATE TABLE project (id INTEGER PRIMARY KEY, name TEXT, owner INTEGER);
CREATE TABLE tasks (
	id INTEGER PRIMARY KEY, title TEXT, body TEXT, prio INTEGER, done INTEGER,
	due TEXT, project INTEGER, tags TEXT
);
INSERT INTO users VALUES (1, 'ann'), (2, 'bob');
INSERT INTO project VALUES (1, 'core', 1), (2, 'web', 2);
INSERT INTO tasks VALUES
	(1, 'Fix parser', 'the lexer breaks', 3, 0, '2024-03-01', 1, '[1,2]'),
	(2, 'Write docs', 'docs for 100% coverage', 1, 1, '2024-03-15', 2, '[2]'),
	(3, 'Parser_v2 notes', NULL, 5, 0, NULL, NULL, NULL);
`

func openFixture(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(fixtureSQL)
	require.NoError(t, err)
	return db
}

func TestCompile_ExecutesAgainstSQLite(t *testing.T) {
	r := testRegistry()
	db := openFixture(t)

	tests := []struct {
		query string
		ids   []int64
	}{
		{"", []int64{1, 2, 3}},
		{"parser", []int64{1, 3}},
		{"docs", []int64{2}},
		{"%", nil},
		{"_v2", []int64{3}},
		{`"Fix parser"`, []int64{1}},
		{"prio>=3", []int64{1, 3}},
		{"prio<>3", []int64{2, 3}},
		{"prio:high", nil},
		{"done:true", []int64{2}},
		{"!done:true", []int64{1, 3}},
		{"due:-", []int64{3}},
		{"!due:-", []int64{1, 2}},
		{"due<2024-03-10", []int64{1}},
		{"project:2", []int64{2}},
		{"project.name:core", []int64{1}},
		{"project.owner.name:bob", []int64{2}},
		{"project.name:core or project.owner.name:bob", []int64{1, 2}},
		{"project.name:-", []int64{3}},
		{"tags:2", []int64{1, 2}},
		{"tags:1", []int64{1}},
		{"tags<>1", []int64{2, 3}},
		{"(parser or docs) prio<5", []int64{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			sqlText, params := compileSQL(t, r, tt.query)

			rows, err := db.Query(sqlText, params...)
			require.NoError(t, err, sqlText)
			defer rows.Close()

			cols, err := rows.Columns()
			require.NoError(t, err)

			var ids []int64
			for rows.Next() {
				dest := make([]any, len(cols))
				var id int64
				dest[0] = &id
				for i := 1; i < len(cols); i++ {
					dest[i] = new(any)
				}
				require.NoError(t, rows.Scan(dest...))
				ids = append(ids, id)
			}
			require.NoError(t, rows.Err())
			assert.Equal(t, tt.ids, ids, sqlText)
		})
	}
}
