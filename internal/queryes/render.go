package queryes

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/roach88/querymix/internal/query"
)

// json sorts map keys so rendered queries are stable.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Body returns the search request body of a compilation result.
// A query without constraint matches all documents.
func Body(res query.Result[Query]) Query {
	if !res.HasConstraint || res.Constraint == nil {
		return Query{"query": Query{"match_all": Query{}}}
	}
	return Query{"query": res.Constraint}
}

// Render encodes a DSL node as JSON.
func Render(q Query) (string, error) {
	data, err := json.Marshal(q)
	if err != nil {
		return "", fmt.Errorf("render query: %w", err)
	}
	return string(data), nil
}
