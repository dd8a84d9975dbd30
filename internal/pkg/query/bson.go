package query

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// Fields maps filter field names to MongoDB document paths.
type Fields map[string]string

// BSON builds a filter document. Conditions on the same path are merged into one
// operator document, so range filters like (>= a, < b) work as expected.
func (m Fields) BSON(filters []Filter) (bson.M, error) {
	doc := bson.M{}
	for _, f := range filters {
		if err := f.validate(); err != nil {
			return nil, err
		}
		path, ok := m[f.Field]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownField, f.Field)
		}

		ops, _ := doc[path].(bson.M)
		if ops == nil {
			ops = bson.M{}
		}
		switch f.Op {
		case OpEq:
			ops["$eq"] = f.Value
		case OpNe:
			ops["$ne"] = f.Value
		case OpGt:
			ops["$gt"] = f.Value
		case OpGte:
			ops["$gte"] = f.Value
		case OpLt:
			ops["$lt"] = f.Value
		case OpLte:
			ops["$lte"] = f.Value
		case OpIn:
			ops["$in"] = f.Value
		case OpArrayContains:
			ops["$elemMatch"] = bson.M{"$eq": f.Value}
		}
		doc[path] = ops
	}
	return doc, nil
}

// Sort returns the sort document for order, or nil.
func (m Fields) Sort(order *Order) (bson.D, error) {
	if order == nil {
		return nil, nil
	}
	path, ok := m[order.Field]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, order.Field)
	}
	dir := 1
	if order.Desc {
		dir = -1
	}
	return bson.D{{Key: path, Value: dir}}, nil
}
