package common

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// maxIDDepth bounds how far NormalizeID descends into nested arrays/objects.
const maxIDDepth = 8

// NormalizeID flattens an id that may arrive as a scalar, an array or an object
// into a digits-only string. The first extractable value wins: array elements
// in order, object values in sorted-key order, struct fields in declaration order.
//
//	NormalizeID(42)                    // "42"
//	NormalizeID([]any{42})             // "42"
//	NormalizeID(map[string]any{"a":42}) // "42"
//	NormalizeID("user-42")             // "42"
func NormalizeID(v any) (string, error) {
	raw, ok := extractScalar(reflect.ValueOf(v), 0)
	if !ok {
		return "", fmt.Errorf("%w: %v", ErrInvalidID, v)
	}
	digits := digitsOnly(raw)
	if digits == "" {
		return "", fmt.Errorf("%w: %v", ErrInvalidID, v)
	}
	return digits, nil
}

// NormalizeInt64 is NormalizeID for callers that need a positive numeric id.
func NormalizeInt64(v any) (int64, error) {
	s, err := NormalizeID(v)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return n, nil
}

func extractScalar(v reflect.Value, depth int) (string, bool) {
	if !v.IsValid() || depth > maxIDDepth {
		return "", false
	}

	switch x := v.Interface().(type) {
	case json.RawMessage:
		return extractRaw(x, depth)
	case json.Number:
		return string(x), hasDigit(string(x))
	}

	switch v.Kind() {
	case reflect.Interface, reflect.Pointer:
		if v.IsNil() {
			return "", false
		}
		return extractScalar(v.Elem(), depth+1)
	case reflect.String:
		s := v.String()
		return s, hasDigit(s)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10), true
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
			return "", false
		}
		return strconv.FormatFloat(f, 'f', 0, 64), true
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if s, ok := extractScalar(v.Index(i), depth+1); ok {
				return s, true
			}
		}
	case reflect.Map:
		keys := v.MapKeys()
		sort.Slice(keys, func(i, j int) bool {
			return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
		})
		for _, k := range keys {
			if s, ok := extractScalar(v.MapIndex(k), depth+1); ok {
				return s, true
			}
		}
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if !v.Type().Field(i).IsExported() {
				continue
			}
			if s, ok := extractScalar(v.Field(i), depth+1); ok {
				return s, true
			}
		}
	}
	return "", false
}

func extractRaw(raw json.RawMessage, depth int) (string, bool) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return "", false
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return "", false
	}
	return extractScalar(reflect.ValueOf(decoded), depth+1)
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func hasDigit(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return r >= '0' && r <= '9' }) >= 0
}
