// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package portal

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Field walks nested objects in a decoded response. Field(m, "data", "type")
// returns m["data"]["type"].
func Field(m map[string]any, path ...string) (any, bool) {
	var cur any = m
	for _, p := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[p]
		if !ok {
			return nil, false
		}
	}
	return cur, cur != nil
}

// FieldString is Field rendered with String. Missing and empty values
// report false.
func FieldString(m map[string]any, path ...string) (string, bool) {
	v, ok := Field(m, path...)
	if !ok {
		return "", false
	}
	s := String(v)
	return s, s != ""
}

// FirstString returns the first non-empty value among the candidate paths,
// checked in order.
func FirstString(m map[string]any, paths ...[]string) string {
	for _, p := range paths {
		if s, ok := FieldString(m, p...); ok {
			return s
		}
	}
	return ""
}

// String renders a scalar JSON value as a string. Objects and arrays yield "".
func String(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}
