// Package record provides safe dotted-path access into assessment records.
//
// Assessment records have no guaranteed shape: any field may be absent, and nested
// areas may hold strings, maps, or lists depending on how much of the intake form was
// completed. Every downstream component reads records through this package rather than
// by direct index chains, so a missing field is always represented by the caller's
// default and never by a panic.
package record

import (
	"strings"

	"github.com/spf13/cast"

	"github.com/ot-assessment-server/internal/domain"
)

// Get walks the record along a dot-delimited path and returns the value found there.
// It short-circuits to def the moment any intermediate value is absent or is not a
// nested map. Get never panics.
func Get(rec domain.AssessmentRecord, path string, def any) any {
	if rec == nil || path == "" {
		return def
	}

	current := any(rec)
	for _, key := range strings.Split(path, ".") {
		m, ok := asMap(current)
		if !ok {
			return def
		}
		next, ok := m[key]
		if !ok || next == nil {
			return def
		}
		current = next
	}
	return current
}

// GetString returns the value at path coerced to a string, or def when the field is
// absent or not string-like.
func GetString(rec domain.AssessmentRecord, path, def string) string {
	v := Get(rec, path, nil)
	if v == nil {
		return def
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return def
	}
	return s
}

// GetStringSlice returns the value at path as a []string. Absent fields and values
// that cannot be coerced yield an empty slice, never nil handling burden downstream.
func GetStringSlice(rec domain.AssessmentRecord, path string) []string {
	v := Get(rec, path, nil)
	if v == nil {
		return []string{}
	}
	out, err := cast.ToStringSliceE(v)
	if err != nil || out == nil {
		return []string{}
	}
	return out
}

// GetMap returns the value at path as a nested map, or an empty map when the field is
// absent or holds a non-map value.
func GetMap(rec domain.AssessmentRecord, path string) map[string]any {
	v := Get(rec, path, nil)
	if v == nil {
		return map[string]any{}
	}
	m, ok := asMap(v)
	if !ok {
		return map[string]any{}
	}
	return m
}

// GetBool returns the value at path coerced to bool, or def when absent/uncoercible.
func GetBool(rec domain.AssessmentRecord, path string, def bool) bool {
	v := Get(rec, path, nil)
	if v == nil {
		return def
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return def
	}
	return b
}

// Has reports whether a non-nil value exists at path.
func Has(rec domain.AssessmentRecord, path string) bool {
	return Get(rec, path, nil) != nil
}

// asMap normalizes the map shape produced by JSON decoding and by hand-built fixtures.
func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}
