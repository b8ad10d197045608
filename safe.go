package errorx

import (
	"encoding"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

const (
	// CircularPlaceholder replaces a value that refers back to one of its ancestors.
	CircularPlaceholder = "[Circular]"
	// UnserializablePlaceholder replaces a value whose JSON encoding failed.
	UnserializablePlaceholder = "[Unserializable]"
)

type omitted struct{}

var (
	errorType       = reflect.TypeFor[error]()
	marshalerType   = reflect.TypeFor[json.Marshaler]()
	textMarshalType = reflect.TypeFor[encoding.TextMarshaler]()
)

// SafeValue returns a copy of v that json.Marshal always accepts.
//
// Cycles are replaced with CircularPlaceholder. Functions, channels, unsafe
// pointers and complex numbers are dropped. NaN and infinite floats become nil.
// Errors become their message, except *Error which becomes its serialized form.
// A nil result is returned for values that are dropped at the top level.
func SafeValue(v any) any {
	out := sanitize(reflect.ValueOf(v), make(map[uintptr]struct{}))
	if _, ok := out.(omitted); ok {
		return nil
	}
	return out
}

// SafeMetadata applies SafeValue to every entry of md.
// Dropped entries are removed. A nil or empty map yields nil.
func SafeMetadata(md map[string]any) map[string]any {
	return sanitizeMetadata(md, make(map[uintptr]struct{}))
}

// SafeString renders v as JSON and never fails.
func SafeString(v any) string {
	b, err := json.Marshal(SafeValue(v))
	if err != nil {
		return UnserializablePlaceholder
	}
	return string(b)
}

func sanitizeMetadata(md map[string]any, visited map[uintptr]struct{}) map[string]any {
	if len(md) == 0 {
		return nil
	}
	out, ok := sanitize(reflect.ValueOf(md), visited).(map[string]any)
	if !ok || len(out) == 0 {
		return nil
	}
	return out
}

func sanitize(v reflect.Value, visited map[uintptr]struct{}) any {
	if !v.IsValid() {
		return nil
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return nil
		}
	}

	if v.CanInterface() {
		switch x := v.Interface().(type) {
		case *Error:
			return sanitizeError(x, visited)
		case *AggregateError:
			if x.base == nil {
				return nil
			}
			return sanitizeError(x.base, visited)
		}
		if v.Type().Implements(marshalerType) {
			return sanitizeMarshaler(v)
		}
		if v.Type().Implements(errorType) {
			return v.Interface().(error).Error()
		}
		if v.Type().Implements(textMarshalType) {
			b, err := v.Interface().(encoding.TextMarshaler).MarshalText()
			if err != nil {
				return UnserializablePlaceholder
			}
			return string(b)
		}
	}

	switch v.Kind() {
	case reflect.Bool:
		return v.Bool()
	case reflect.String:
		return v.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if isBasic(v) && v.CanInterface() {
			return v.Interface()
		}
		return v.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		if isBasic(v) && v.CanInterface() {
			return v.Interface()
		}
		return v.Uint()
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		if isBasic(v) && v.CanInterface() {
			return v.Interface()
		}
		return f
	case reflect.Complex64, reflect.Complex128, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return omitted{}
	case reflect.Interface:
		return sanitize(v.Elem(), visited)
	case reflect.Pointer:
		return withVisit(v.Pointer(), visited, func() any {
			return sanitize(v.Elem(), visited)
		})
	case reflect.Map:
		if v.IsNil() {
			return nil
		}
		return withVisit(v.Pointer(), visited, func() any {
			return sanitizeMap(v, visited)
		})
	case reflect.Slice:
		if v.IsNil() {
			return nil
		}
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return sanitizeMarshaler(v)
		}
		return withVisit(v.Pointer(), visited, func() any {
			return sanitizeList(v, visited)
		})
	case reflect.Array:
		return sanitizeList(v, visited)
	case reflect.Struct:
		return sanitizeStruct(v, visited)
	}
	return UnserializablePlaceholder
}

func withVisit(ptr uintptr, visited map[uintptr]struct{}, fn func() any) any {
	if ptr == 0 {
		return fn()
	}
	if _, ok := visited[ptr]; ok {
		return CircularPlaceholder
	}
	visited[ptr] = struct{}{}
	defer delete(visited, ptr) // Only ancestors count, shared siblings are fine.
	return fn()
}

func sanitizeError(e *Error, visited map[uintptr]struct{}) any {
	if _, ok := visited[errorPtr(e)]; ok {
		return CircularPlaceholder
	}
	return sanitizeStruct(reflect.ValueOf(*e.serialize(visited)), visited)
}

func sanitizeMarshaler(v reflect.Value) (out any) {
	if !v.CanInterface() {
		return UnserializablePlaceholder
	}
	defer func() {
		if r := recover(); r != nil {
			out = UnserializablePlaceholder
		}
	}()
	b, err := json.Marshal(v.Interface())
	if err != nil {
		return UnserializablePlaceholder
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return UnserializablePlaceholder
	}
	return out
}

func sanitizeMap(v reflect.Value, visited map[uintptr]struct{}) any {
	out := make(map[string]any, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		key, ok := mapKeyString(iter.Key())
		if !ok {
			continue
		}
		val := sanitize(iter.Value(), visited)
		if _, ok := val.(omitted); ok {
			continue
		}
		out[key] = val
	}
	return out
}

func mapKeyString(k reflect.Value) (string, bool) {
	switch k.Kind() {
	case reflect.String:
		return k.String(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(k.Uint(), 10), true
	}
	if k.CanInterface() {
		if tm, ok := k.Interface().(encoding.TextMarshaler); ok {
			b, err := tm.MarshalText()
			return string(b), err == nil
		}
		return fmt.Sprint(k.Interface()), true
	}
	return "", false
}

func sanitizeList(v reflect.Value, visited map[uintptr]struct{}) any {
	out := make([]any, 0, v.Len())
	for i := range v.Len() {
		val := sanitize(v.Index(i), visited)
		if _, ok := val.(omitted); ok {
			val = nil
		}
		out = append(out, val)
	}
	return out
}

func sanitizeStruct(v reflect.Value, visited map[uintptr]struct{}) any {
	out := make(map[string]any, v.NumField())
	sanitizeFields(v, visited, out)
	return out
}

func sanitizeFields(v reflect.Value, visited map[uintptr]struct{}, out map[string]any) {
	t := v.Type()
	for i := range t.NumField() {
		sf := t.Field(i)
		if !sf.IsExported() && !sf.Anonymous {
			continue
		}
		name, omitEmpty, skip := parseJSONTag(sf)
		if skip {
			continue
		}
		fv := v.Field(i)
		if sf.Anonymous && sf.Tag.Get("json") == "" && fv.Kind() == reflect.Struct {
			sanitizeFields(fv, visited, out)
			continue
		}
		if !sf.IsExported() {
			continue
		}
		if omitEmpty && fv.IsZero() {
			continue
		}
		val := sanitize(fv, visited)
		if _, ok := val.(omitted); ok {
			continue
		}
		out[name] = val
	}
}

func parseJSONTag(sf reflect.StructField) (name string, omitEmpty, skip bool) {
	tag := sf.Tag.Get("json")
	if tag == "-" {
		return "", false, true
	}
	name, opts, _ := strings.Cut(tag, ",")
	if name == "" {
		name = sf.Name
	}
	for opt := range strings.SplitSeq(opts, ",") {
		if opt == "omitempty" || opt == "omitzero" {
			omitEmpty = true
		}
	}
	return name, omitEmpty, false
}

func isBasic(v reflect.Value) bool {
	return v.Type().PkgPath() == ""
}
