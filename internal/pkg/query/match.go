package query

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

// Getter resolves a field of an in-memory record. known is false when the record
// has no such field at all; absent values are returned as nil with known=true.
type Getter func(field string) (value any, known bool)

// Match reports whether a record satisfies every filter, following the document
// store semantics: comparisons against an absent value never match, except for "!=".
func Match(filters []Filter, get Getter) (bool, error) {
	for _, f := range filters {
		if err := f.validate(); err != nil {
			return false, err
		}
		raw, known := get(f.Field)
		if !known {
			return false, fmt.Errorf("%w: %s", ErrUnknownField, f.Field)
		}
		lhs := normalize(raw)
		rhs := normalize(f.Value)

		var ok bool
		switch f.Op {
		case OpEq:
			ok = equal(lhs, rhs)
		case OpNe:
			ok = !equal(lhs, rhs)
		case OpGt, OpGte, OpLt, OpLte:
			c, comparable := compare(lhs, rhs)
			if comparable {
				switch f.Op {
				case OpGt:
					ok = c > 0
				case OpGte:
					ok = c >= 0
				case OpLt:
					ok = c < 0
				case OpLte:
					ok = c <= 0
				}
			}
		case OpIn:
			ok = containsValue(f.Value, lhs)
		case OpArrayContains:
			ok = lhs != nil && containsValue(raw, rhs)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// Less compares two field values with the same rules as Match, for sorting in-memory
// results. Absent values sort first in ascending order.
func Less(a, b any, desc bool) bool {
	c, ok := compare(normalize(a), normalize(b))
	if !ok {
		// nil sorts before everything else
		switch {
		case normalize(a) == nil && normalize(b) != nil:
			c = -1
		case normalize(a) != nil && normalize(b) == nil:
			c = 1
		default:
			return false
		}
	}
	if desc {
		return c > 0
	}
	return c < 0
}

func containsValue(list any, v any) bool {
	if list == nil {
		return false
	}
	rv := reflect.ValueOf(list)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return false
	}
	for i := 0; i < rv.Len(); i++ {
		if equal(normalize(rv.Index(i).Interface()), v) {
			return true
		}
	}
	return false
}

func normalize(v any) any {
	if v == nil {
		return nil
	}
	switch t := v.(type) {
	case time.Time:
		return t
	case *time.Time:
		if t == nil {
			return nil
		}
		return *t
	case *string:
		if t == nil {
			return nil
		}
		return *t
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Pointer:
		if rv.IsNil() {
			return nil
		}
		return normalize(rv.Elem().Interface())
	}
	return v
}

func equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}
	if reflect.TypeOf(a).Comparable() && reflect.TypeOf(b).Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

func compare(a, b any) (int, bool) {
	switch x := a.(type) {
	case time.Time:
		y, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return x.Compare(y), true
	case string:
		y, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(x, y), true
	case int64:
		switch y := b.(type) {
		case int64:
			return cmpNum(float64(x), float64(y)), true
		case float64:
			return cmpNum(float64(x), y), true
		}
	case float64:
		switch y := b.(type) {
		case int64:
			return cmpNum(x, float64(y)), true
		case float64:
			return cmpNum(x, y), true
		}
	}
	return 0, false
}

func cmpNum(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
