package query

import (
	"fmt"

	"github.com/Masterminds/squirrel"
)

// Columns maps filter field names to SQL column expressions.
type Columns map[string]string

// Apply adds one WHERE clause per filter to the select builder.
func (c Columns) Apply(b squirrel.SelectBuilder, filters []Filter) (squirrel.SelectBuilder, error) {
	for _, f := range filters {
		cond, err := c.condition(f)
		if err != nil {
			return b, err
		}
		b = b.Where(cond)
	}
	return b, nil
}

// ApplyDelete is Apply for delete statements.
func (c Columns) ApplyDelete(b squirrel.DeleteBuilder, filters []Filter) (squirrel.DeleteBuilder, error) {
	for _, f := range filters {
		cond, err := c.condition(f)
		if err != nil {
			return b, err
		}
		b = b.Where(cond)
	}
	return b, nil
}

// OrderBy appends the sort key, if any.
func (c Columns) OrderBy(b squirrel.SelectBuilder, order *Order) (squirrel.SelectBuilder, error) {
	if order == nil {
		return b, nil
	}
	col, ok := c[order.Field]
	if !ok {
		return b, fmt.Errorf("%w: %s", ErrUnknownField, order.Field)
	}
	dir := "ASC"
	if order.Desc {
		dir = "DESC"
	}
	return b.OrderBy(col + " " + dir), nil
}

func (c Columns) condition(f Filter) (squirrel.Sqlizer, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}
	col, ok := c[f.Field]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, f.Field)
	}

	switch f.Op {
	case OpEq, OpIn:
		// squirrel renders a list value as IN (...)
		return squirrel.Eq{col: f.Value}, nil
	case OpNe:
		return squirrel.NotEq{col: f.Value}, nil
	case OpGt:
		return squirrel.Gt{col: f.Value}, nil
	case OpGte:
		return squirrel.GtOrEq{col: f.Value}, nil
	case OpLt:
		return squirrel.Lt{col: f.Value}, nil
	case OpLte:
		return squirrel.LtOrEq{col: f.Value}, nil
	case OpArrayContains:
		return squirrel.Expr("? = ANY("+col+")", f.Value), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedOperator, f.Op)
}
