package core

import (
	"reflect"
	"strings"
)

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// JSONFields returns the set of JSON keys of the struct `v` (or pointer to struct), embedded structs included.
func JSONFields(v interface{}) map[string]struct{} {
	fields := make(map[string]struct{})
	collectJSONFields(reflect.TypeOf(v), fields)
	return fields
}

func collectJSONFields(t reflect.Type, fields map[string]struct{}) {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	for i := 0; i < t.NumField(); i++ {
		fld := t.Field(i)
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			continue
		}
		if name == "" {
			if fld.Anonymous {
				collectJSONFields(fld.Type, fields)
			}
			continue
		}
		fields[name] = struct{}{}
	}
}
