// Package sanitize converts arbitrary values into trees that are safe
// to serialize and persist: map[string]any, []any, string, bool, int64,
// float64 and nil only. Cycles, excessive depth and unserializable
// values degrade to sentinel strings instead of failing the caller.
package sanitize

import (
	"fmt"
	"reflect"
	"time"
)

const (
	// MaxDepth bounds recursion into nested containers.
	MaxDepth = 10

	SentinelMaxDepth        = "<max_depth_exceeded>"
	SentinelCircular        = "<circular_reference>"
	SentinelNonSerializable = "<non_serializable>"
)

// Sanitize returns a safe copy of v. It never panics and never returns
// an error; problematic subtrees are replaced with sentinels.
func Sanitize(v any) any {
	return sanitize(v, 0, map[uintptr]struct{}{})
}

// SanitizeMap sanitizes every value of m. A nil map yields an empty,
// non-nil map so callers can persist it as a JSON object.
func SanitizeMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = Sanitize(v)
	}
	return out
}

func sanitize(v any, depth int, visiting map[uintptr]struct{}) (result any) {
	defer func() {
		if recover() != nil {
			result = SentinelNonSerializable
		}
	}()

	if depth > MaxDepth {
		return SentinelMaxDepth
	}
	if v == nil {
		return nil
	}

	switch t := v.(type) {
	case string:
		return t
	case bool:
		return t
	case int:
		return int64(t)
	case int8:
		return int64(t)
	case int16:
		return int64(t)
	case int32:
		return int64(t)
	case int64:
		return t
	case uint:
		return int64(t)
	case uint8:
		return int64(t)
	case uint16:
		return int64(t)
	case uint32:
		return int64(t)
	case uint64:
		return int64(t)
	case float32:
		return float64(t)
	case float64:
		return t
	case time.Time:
		return t.Format(time.RFC3339Nano)
	case time.Duration:
		return t.String()
	case error:
		return t.Error()
	case []byte:
		return string(t)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return nil
		}
		ptr := rv.Pointer()
		if _, ok := visiting[ptr]; ok {
			return SentinelCircular
		}
		visiting[ptr] = struct{}{}
		defer delete(visiting, ptr)
		return sanitize(rv.Elem().Interface(), depth, visiting)

	case reflect.Map:
		ptr := rv.Pointer()
		if _, ok := visiting[ptr]; ok {
			return SentinelCircular
		}
		visiting[ptr] = struct{}{}
		defer delete(visiting, ptr)

		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			key := fmt.Sprintf("%v", iter.Key().Interface())
			out[key] = sanitize(iter.Value().Interface(), depth+1, visiting)
		}
		return out

	case reflect.Slice:
		ptr := rv.Pointer()
		if _, ok := visiting[ptr]; ok {
			return SentinelCircular
		}
		visiting[ptr] = struct{}{}
		defer delete(visiting, ptr)
		return sanitizeSequence(rv, depth, visiting)

	case reflect.Array:
		return sanitizeSequence(rv, depth, visiting)

	case reflect.Struct:
		out := make(map[string]any, rv.NumField())
		rt := rv.Type()
		for i := 0; i < rv.NumField(); i++ {
			field := rt.Field(i)
			if !field.IsExported() {
				continue
			}
			out[field.Name] = sanitize(rv.Field(i).Interface(), depth+1, visiting)
		}
		return out

	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return SentinelNonSerializable

	default:
		return fmt.Sprintf("%v", v)
	}
}

func sanitizeSequence(rv reflect.Value, depth int, visiting map[uintptr]struct{}) any {
	out := make([]any, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out = append(out, sanitize(rv.Index(i).Interface(), depth+1, visiting))
	}
	return out
}
