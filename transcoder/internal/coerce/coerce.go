// Package coerce converts loosely typed values (JSON numbers, Go integers of
// any width, named integer types) into the canonical value types carried by
// records: uint64, int64, float32 and bool.
package coerce

import (
	"math"
	"reflect"
)

// Uint64 handles JSON decoded numbers (float64), every Go integer type and
// named integer types such as generated enums.
func Uint64(value any) (uint64, bool) {
	switch v := value.(type) {
	case uint64:
		return v, true
	case uint8:
		return uint64(v), true
	case uint16:
		return uint64(v), true
	case uint32:
		return uint64(v), true
	case uint:
		return uint64(v), true
	case int8:
		if v >= 0 {
			return uint64(v), true
		}
	case int16:
		if v >= 0 {
			return uint64(v), true
		}
	case int32:
		if v >= 0 {
			return uint64(v), true
		}
	case int:
		if v >= 0 {
			return uint64(v), true
		}
	case int64:
		if v >= 0 {
			return uint64(v), true
		}
	case float64:
		if v >= 0 && v < float64(math.MaxUint64) && v == float64(uint64(v)) {
			return uint64(v), true
		}
	case float32:
		// Use float64 for range check to avoid precision loss
		if v >= 0 && float64(v) < float64(math.MaxUint64) && v == float32(uint64(v)) {
			return uint64(v), true
		}
	case nil, bool, string:
	default:
		return namedUint(value)
	}
	return 0, false
}

// Int64 is the signed counterpart of Uint64.
func Int64(value any) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int:
		return int64(v), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint:
		if v <= math.MaxInt64 {
			return int64(v), true
		}
	case uint64:
		if v <= math.MaxInt64 {
			return int64(v), true
		}
	case float64:
		if v >= float64(math.MinInt64) && v < float64(math.MaxInt64) && v == float64(int64(v)) {
			return int64(v), true
		}
	case float32:
		if v >= float32(math.MinInt64) && v < float32(math.MaxInt64) && v == float32(int64(v)) {
			return int64(v), true
		}
	case nil, bool, string:
	default:
		if u, ok := namedUint(value); ok && u <= math.MaxInt64 {
			return int64(u), true
		}
		rv := reflect.ValueOf(value)
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return rv.Int(), true
		}
	}
	return 0, false
}

// Float32 accepts any numeric value. Float64 inputs are rounded to the
// nearest float32.
func Float32(value any) (float32, bool) {
	switch v := value.(type) {
	case float32:
		return v, true
	case float64:
		return float32(v), true
	}
	if i, ok := Int64(value); ok {
		return float32(i), true
	}
	if u, ok := Uint64(value); ok {
		return float32(u), true
	}
	return 0, false
}

// Bool accepts bool and the integers 0 and 1.
func Bool(value any) (bool, bool) {
	if b, ok := value.(bool); ok {
		return b, true
	}
	if u, ok := Uint64(value); ok && u <= 1 {
		return u == 1, true
	}
	return false, false
}

func namedUint(value any) (uint64, bool) {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if rv.Int() >= 0 {
			return uint64(rv.Int()), true
		}
	}
	return 0, false
}
