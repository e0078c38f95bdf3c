package querymongo

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/roach88/querymix/internal/query"
)

// Filter returns the filter document of a compilation result.
// A query without constraint matches every document.
func Filter(res query.Result[bson.D]) bson.D {
	if !res.HasConstraint || res.Constraint == nil {
		return bson.D{}
	}
	return res.Constraint
}

// Render encodes a filter as relaxed Extended JSON.
func Render(filter bson.D) (string, error) {
	if filter == nil {
		filter = bson.D{}
	}
	data, err := bson.MarshalExtJSON(filter, false, false)
	if err != nil {
		return "", fmt.Errorf("render filter: %w", err)
	}
	return string(data), nil
}
