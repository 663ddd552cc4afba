package assertion

import (
	"fmt"
	"reflect"
	"strconv"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// normalize converts arbitrary decoded values into the small set of shapes
// the predicates understand: nil, bool, float64, string, []any and
// map[string]any. JSON decodes numbers as float64 while YAML produces ints,
// so both sides of every comparison go through here.
func normalize(v any) any {
	switch t := v.(type) {
	case nil, bool, float64, string:
		return t
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalize(e)
		}

		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = normalize(e)
		}

		return out
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Map:
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[fmt.Sprint(iter.Key().Interface())] = normalize(iter.Value().Interface())
		}

		return out
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = normalize(rv.Index(i).Interface())
		}

		return out
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}

		return normalize(rv.Elem().Interface())
	}

	return v
}

func hasProperty(subject, name any) (ok, valid bool) {
	key, isString := name.(string)
	if !isString {
		return false, false
	}

	switch t := subject.(type) {
	case map[string]any:
		_, ok = t[key]
	case []any:
		if key == "length" {
			return true, true
		}
		idx, err := strconv.Atoi(key)
		ok = err == nil && idx >= 0 && idx < len(t)
	case string:
		ok = key == "length"
	}

	return ok, true
}

func lengthOf(v any) (int, bool) {
	switch t := v.(type) {
	case []any:
		return len(t), true
	case map[string]any:
		return len(t), true
	case string:
		return utf8.RuneCountInString(t), true
	}

	return 0, false
}

func compareLength(kind Kind, subject, expected any) (ok, valid bool) {
	n, hasLength := lengthOf(subject)
	bound, isNumber := expected.(float64)
	if !hasLength || !isNumber {
		return false, false
	}

	size := float64(n)
	switch kind {
	case LengthBelow:
		return size < bound, true
	case LengthAbove:
		return size > bound, true
	case LengthAtMost:
		return size <= bound, true
	case LengthAtLeast:
		return size >= bound, true
	case LengthEquals:
		return size == bound, true
	}

	return false, false
}

// subset reports whether actual satisfies the partial template expected.
// A list template needs every entry matched by some entry of actual; a
// mapping template needs every key present in actual with a matching value.
func subset(expected, actual any) bool {
	switch exp := expected.(type) {
	case []any:
		act, ok := actual.([]any)
		if !ok {
			return false
		}
		for _, want := range exp {
			found := false
			for _, candidate := range act {
				if subset(want, candidate) {
					found = true

					break
				}
			}
			if !found {
				return false
			}
		}

		return true

	case map[string]any:
		act, ok := actual.(map[string]any)
		if !ok {
			return false
		}
		for key, want := range exp {
			got, present := act[key]
			if !present || !subset(want, got) {
				return false
			}
		}

		return true
	}

	return cmp.Equal(expected, actual)
}

func equal(subject, expected any) bool {
	return cmp.Equal(subject, expected, cmpopts.EquateEmpty())
}
