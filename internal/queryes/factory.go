package queryes

import (
	"strings"

	"github.com/roach88/querymix/internal/ir"
	"github.com/roach88/querymix/internal/query"
	"github.com/roach88/querymix/internal/schema"
)

// Query is one node of the query DSL.
type Query = map[string]any

// Factory builds query DSL nodes. It is stateless and safe for concurrent use.
type Factory struct{}

var _ query.Factory[Query] = Factory{}

// NewFactory returns a DSL factory.
func NewFactory() Factory {
	return Factory{}
}

// value converts an IR value into its JSON form.
// Temporal values use their canonical text, which date fields accept.
func value(v ir.IRValue) any {
	if t, ok := v.(ir.IRTime); ok {
		return t.String()
	}
	n, err := ir.Native(v)
	if err != nil {
		return nil
	}
	return n
}

func exists(field schema.Mapping) Query {
	return Query{"exists": Query{"field": field.String()}}
}

func mustNot(q Query) Query {
	return Query{"bool": Query{"must_not": []any{q}}}
}

// Eq is a term query. A null value matches documents without the field.
func (Factory) Eq(field schema.Mapping, v ir.IRValue) Query {
	if ir.IsNull(v) {
		return mustNot(exists(field))
	}
	return Query{"term": Query{field.String(): value(v)}}
}

func (f Factory) Ne(field schema.Mapping, v ir.IRValue) Query {
	if ir.IsNull(v) {
		return exists(field)
	}
	return mustNot(f.Eq(field, v))
}

func rangeQuery(field schema.Mapping, op string, v ir.IRValue) Query {
	return Query{"range": Query{field.String(): Query{op: value(v)}}}
}

func (Factory) Gt(field schema.Mapping, v ir.IRValue) Query  { return rangeQuery(field, "gt", v) }
func (Factory) Gte(field schema.Mapping, v ir.IRValue) Query { return rangeQuery(field, "gte", v) }
func (Factory) Lt(field schema.Mapping, v ir.IRValue) Query  { return rangeQuery(field, "lt", v) }
func (Factory) Lte(field schema.Mapping, v ir.IRValue) Query { return rangeQuery(field, "lte", v) }

func (Factory) Filled(field schema.Mapping) Query    { return exists(field) }
func (Factory) NotFilled(field schema.Mapping) Query { return mustNot(exists(field)) }
func (Factory) Not(node Query) Query                 { return mustNot(node) }

func (Factory) And(nodes []Query) (Query, bool) {
	if len(nodes) == 0 {
		return nil, false
	}
	return Query{"bool": Query{"filter": toList(nodes)}}, true
}

func (Factory) Or(nodes []Query) (Query, bool) {
	if len(nodes) == 0 {
		return nil, false
	}
	return Query{"bool": Query{"should": toList(nodes), "minimum_should_match": 1}}, true
}

func toList(nodes []Query) []any {
	list := make([]any, len(nodes))
	for i, n := range nodes {
		list[i] = n
	}
	return list
}

// Search uses case-insensitive wildcard and prefix queries for like and
// prefix words, a term query for exact words.
func (Factory) Search(field schema.Mapping, mode schema.SearchMode, word string) Query {
	name := field.String()
	switch mode {
	case schema.SearchEqual:
		return Query{"term": Query{name: word}}
	case schema.SearchPrefix:
		return Query{"prefix": Query{name: Query{"value": word, "case_insensitive": true}}}
	default:
		return Query{"wildcard": Query{name: Query{"value": "*" + escapeWildcard(word) + "*", "case_insensitive": true}}}
	}
}

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

func escapeWildcard(s string) string {
	return wildcardEscaper.Replace(s)
}
