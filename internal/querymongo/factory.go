package querymongo

import (
	"github.com/grafana/regexp"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/roach88/querymix/internal/ir"
	"github.com/roach88/querymix/internal/query"
	"github.com/roach88/querymix/internal/schema"
)

// Factory builds bson filter documents. It is stateless and safe for
// concurrent use.
type Factory struct{}

var _ query.Factory[bson.D] = Factory{}

// NewFactory returns a filter factory.
func NewFactory() Factory {
	return Factory{}
}

// value converts an IR value into the bson value stored in documents.
// Dates and datetimes become BSON dates; times of day stay text.
func value(v ir.IRValue) any {
	switch val := v.(type) {
	case nil, ir.IRNull:
		return nil
	case ir.IRTime:
		if val.Kind == ir.TimeKindTime {
			return val.String()
		}
		return val.Time
	}
	n, err := ir.Native(v)
	if err != nil {
		return nil
	}
	return n
}

func operator(field schema.Mapping, op string, v ir.IRValue) bson.D {
	return bson.D{{Key: field.String(), Value: bson.D{{Key: op, Value: value(v)}}}}
}

// Eq matches equal values. On array fields Mongo matches any member.
func (Factory) Eq(field schema.Mapping, v ir.IRValue) bson.D {
	return bson.D{{Key: field.String(), Value: value(v)}}
}

func (Factory) Ne(field schema.Mapping, v ir.IRValue) bson.D  { return operator(field, "$ne", v) }
func (Factory) Gt(field schema.Mapping, v ir.IRValue) bson.D  { return operator(field, "$gt", v) }
func (Factory) Gte(field schema.Mapping, v ir.IRValue) bson.D { return operator(field, "$gte", v) }
func (Factory) Lt(field schema.Mapping, v ir.IRValue) bson.D  { return operator(field, "$lt", v) }
func (Factory) Lte(field schema.Mapping, v ir.IRValue) bson.D { return operator(field, "$lte", v) }

// Filled matches documents where the field exists and is not null.
func (Factory) Filled(field schema.Mapping) bson.D {
	return operator(field, "$ne", ir.IRNull{})
}

// NotFilled matches null or missing fields.
func (Factory) NotFilled(field schema.Mapping) bson.D {
	return bson.D{{Key: field.String(), Value: nil}}
}

func (Factory) Not(node bson.D) bson.D {
	return bson.D{{Key: "$nor", Value: bson.A{node}}}
}

func (Factory) And(nodes []bson.D) (bson.D, bool) {
	return combine("$and", nodes)
}

func (Factory) Or(nodes []bson.D) (bson.D, bool) {
	return combine("$or", nodes)
}

func combine(op string, nodes []bson.D) (bson.D, bool) {
	if len(nodes) == 0 {
		return nil, false
	}
	list := make(bson.A, len(nodes))
	for i, n := range nodes {
		list[i] = n
	}
	return bson.D{{Key: op, Value: list}}, true
}

// Search matches like and prefix words case-insensitively with an escaped
// regular expression.
func (Factory) Search(field schema.Mapping, mode schema.SearchMode, word string) bson.D {
	var pattern string
	switch mode {
	case schema.SearchEqual:
		return bson.D{{Key: field.String(), Value: word}}
	case schema.SearchPrefix:
		pattern = "^" + regexp.QuoteMeta(word)
	default:
		pattern = regexp.QuoteMeta(word)
	}
	return bson.D{{Key: field.String(), Value: bson.D{
		{Key: "$regex", Value: pattern},
		{Key: "$options", Value: "i"},
	}}}
}
