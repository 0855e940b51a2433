package sandbox

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"runtime"
	"strings"
)

const encodeFailure = `{"error":"Could not serialize value"}`

// Encode serializes a value defensively: big integers become decimal
// strings with a trailing marker, functions become placeholder strings,
// and any reference already seen in the current pass becomes a
// "[Circular]" marker. Encoding never panics; failures collapse to a
// fixed error payload.
func Encode(v interface{}) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = encodeFailure
		}
	}()

	seen := make(map[uintptr]bool)
	tree := sanitize(reflect.ValueOf(v), seen)

	raw, err := json.Marshal(tree)
	if err != nil {
		return encodeFailure
	}
	return string(raw)
}

// Clamp truncates an encoded payload longer than cap characters into a
// {truncated, length, preview} envelope.
func Clamp(encoded string, limit int) string {
	if limit <= 0 || len(encoded) <= limit {
		return encoded
	}

	wrapped, err := json.Marshal(map[string]interface{}{
		"truncated": true,
		"length":    len(encoded),
		"preview":   encoded[:limit] + "…",
	})
	if err != nil {
		return encodeFailure
	}
	return string(wrapped)
}

func sanitize(v reflect.Value, seen map[uintptr]bool) interface{} {
	if !v.IsValid() {
		return nil
	}

	// Unwrap interfaces before branching on kind.
	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil
		}
		return sanitize(v.Elem(), seen)
	}

	if bi, ok := asBigInt(v); ok {
		return bi.String() + "n"
	}

	switch v.Kind() {
	case reflect.Bool:
		return v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint()
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Sprint(f)
		}
		return f
	case reflect.String:
		return v.String()

	case reflect.Func:
		if v.IsNil() {
			return nil
		}
		return "[Function " + funcName(v) + "]"

	case reflect.Pointer:
		if v.IsNil() {
			return nil
		}
		if seen[v.Pointer()] {
			return "[Circular]"
		}
		seen[v.Pointer()] = true
		return sanitize(v.Elem(), seen)

	case reflect.Map:
		if v.IsNil() {
			return nil
		}
		if seen[v.Pointer()] {
			return "[Circular]"
		}
		seen[v.Pointer()] = true
		out := make(map[string]interface{}, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out[fmt.Sprint(iter.Key().Interface())] = sanitize(iter.Value(), seen)
		}
		return out

	case reflect.Slice:
		if v.IsNil() {
			return nil
		}
		if v.Len() > 0 && seen[v.Pointer()] {
			return "[Circular]"
		}
		if v.Len() > 0 {
			seen[v.Pointer()] = true
		}
		return sanitizeSeq(v, seen)

	case reflect.Array:
		return sanitizeSeq(v, seen)

	case reflect.Struct:
		t := v.Type()
		out := make(map[string]interface{})
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}
			out[fieldName(field)] = sanitize(v.Field(i), seen)
		}
		return out

	default:
		// Channels and other exotic kinds have no JSON shape.
		return "[" + v.Kind().String() + "]"
	}
}

func sanitizeSeq(v reflect.Value, seen map[uintptr]bool) []interface{} {
	out := make([]interface{}, v.Len())
	for i := 0; i < v.Len(); i++ {
		out[i] = sanitize(v.Index(i), seen)
	}
	return out
}

func asBigInt(v reflect.Value) (*big.Int, bool) {
	if !v.CanInterface() {
		return nil, false
	}
	switch x := v.Interface().(type) {
	case *big.Int:
		if x == nil {
			return nil, false
		}
		return x, true
	case big.Int:
		return &x, true
	}
	return nil, false
}

func funcName(v reflect.Value) string {
	fn := runtime.FuncForPC(v.Pointer())
	if fn == nil {
		return "anonymous"
	}
	name := fn.Name()
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[idx+1:]
	}
	if name == "" {
		return "anonymous"
	}
	return name
}

func fieldName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	if tag == "" || tag == "-" {
		return f.Name
	}
	if idx := strings.Index(tag, ","); idx >= 0 {
		tag = tag[:idx]
	}
	if tag == "" {
		return f.Name
	}
	return tag
}
