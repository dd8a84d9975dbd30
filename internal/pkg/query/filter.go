// Package query describes store-agnostic document filters and translates them
// into the dialects of the supported backends (SQL through squirrel, MongoDB bson,
// and in-process matching for the memory backend).
package query

import (
	"errors"
	"fmt"
	"reflect"
)

// Op is a comparison operator understood by every backend.
type Op string

const (
	OpEq            Op = "=="
	OpNe            Op = "!="
	OpGt            Op = ">"
	OpGte           Op = ">="
	OpLt            Op = "<"
	OpLte           Op = "<="
	OpIn            Op = "in"
	OpArrayContains Op = "array-contains"
)

var (
	ErrUnsupportedOperator = errors.New("unsupported operator")
	ErrUnknownField        = errors.New("unknown filter field")
	ErrInvalidValue        = errors.New("invalid filter value")
)

// Filter is a single (field, operator, value) condition. Filters in a list are ANDed.
type Filter struct {
	Field string
	Op    Op
	Value any
}

// Where is shorthand for building a Filter.
func Where(field string, op Op, value any) Filter {
	return Filter{Field: field, Op: op, Value: value}
}

// Order describes a single sort key.
type Order struct {
	Field string
	Desc  bool
}

// Asc orders by field ascending.
func Asc(field string) *Order {
	return &Order{Field: field}
}

// Desc orders by field descending.
func Desc(field string) *Order {
	return &Order{Field: field, Desc: true}
}

func (f Filter) validate() error {
	switch f.Op {
	case OpEq, OpNe, OpGt, OpGte, OpLt, OpLte, OpArrayContains:
		return nil
	case OpIn:
		if !isList(f.Value) {
			return fmt.Errorf("%w: %q expects a list for field %s", ErrInvalidValue, f.Op, f.Field)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedOperator, f.Op)
	}
}

func isList(v any) bool {
	if v == nil {
		return false
	}
	k := reflect.TypeOf(v).Kind()
	return k == reflect.Slice || k == reflect.Array
}
