package testutil

import (
	"github.com/roach88/querymix/internal/ir"
	"github.com/roach88/querymix/internal/schema"
)

// Registry returns the fixture descriptors: users, projects owned by users,
// and tasks belonging to projects.
//
// Tasks search title (like) and body (prefix) by default.
func Registry() *schema.Registry {
	user := schema.NewEntity("user",
		&schema.Field{Name: "name", Type: schema.TypeString},
	)
	user.Table = "users"

	project := schema.NewEntity("project",
		&schema.Field{Name: "name", Type: schema.TypeString},
		&schema.Field{Name: "owner", Type: schema.TypeReference, Ref: "user"},
	)
	project.Table = "projects"

	task := schema.NewEntity("task",
		&schema.Field{Name: "title", Type: schema.TypeString},
		&schema.Field{Name: "body", Type: schema.TypeText},
		&schema.Field{Name: "prio", Type: schema.TypeInt},
		&schema.Field{Name: "done", Type: schema.TypeBool},
		&schema.Field{Name: "due", Type: schema.TypeDate},
		&schema.Field{Name: "created", Type: schema.TypeDateTime},
		&schema.Field{Name: "status", Type: schema.TypeEnum, Values: []string{"open", "closed"}},
		&schema.Field{Name: "project", Type: schema.TypeReference, Ref: "project"},
		&schema.Field{Name: "watchers", Type: schema.TypeReferenceList, Ref: "user"},
	).WithSearch(
		schema.SearchFieldSpec{Field: "title", Mode: schema.SearchLike},
		schema.SearchFieldSpec{Field: "body", Mode: schema.SearchPrefix},
	)
	task.Table = "tasks"

	return schema.NewRegistry(user, project, task)
}

// Rows returns fixture rows per entity name, matching Registry.
func Rows() map[string][]ir.IRObject {
	return map[string][]ir.IRObject{
		"user": {
			{"id": ir.IRInt(1), "name": ir.IRString("ann")},
			{"id": ir.IRInt(2), "name": ir.IRString("bob")},
		},
		"project": {
			{"id": ir.IRInt(1), "name": ir.IRString("core"), "owner": ir.IRInt(1)},
			{"id": ir.IRInt(2), "name": ir.IRString("web"), "owner": ir.IRInt(2)},
		},
		"task": {
			{
				"id": ir.IRInt(1), "title": ir.IRString("Fix parser"), "body": ir.IRString("the lexer breaks"),
				"prio": ir.IRInt(3), "done": ir.IRBool(false), "due": ir.IRString("2024-03-01"),
				"created": ir.IRString("2024-03-09T08:00:00Z"), "status": ir.IRString("open"),
				"project": ir.IRInt(1), "watchers": ir.IRArray{ir.IRInt(1), ir.IRInt(2)},
			},
			{
				"id": ir.IRInt(2), "title": ir.IRString("Write docs"), "body": ir.IRString("docs for 100% coverage"),
				"prio": ir.IRInt(1), "done": ir.IRBool(true), "due": ir.IRString("2024-03-15"),
				"created": ir.IRString("2024-02-01T10:00:00Z"), "status": ir.IRString("Closed"),
				"project": ir.IRInt(2), "watchers": ir.IRArray{ir.IRInt(2)},
			},
			{
				"id": ir.IRInt(3), "title": ir.IRString("Parser_v2 notes"),
				"prio": ir.IRInt(5), "done": ir.IRString("no"),
			},
		},
	}
}
