package models

import (
	json "github.com/goccy/go-json"
)

// Fields is an open set of optional vendor values. Numbers are json.Number.
type Fields map[string]any

// Lookup returns the value under key. JSON null counts as absent.
func (f Fields) Lookup(key string) (any, bool) {
	v, ok := f[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Float returns the value under key as a float64 when it is numeric.
func (f Fields) Float(key string) (float64, bool) {
	v, ok := f.Lookup(key)
	if !ok {
		return 0, false
	}
	return ToFloat(v)
}

func (f Fields) String(key string) string {
	v, ok := f.Lookup(key)
	if !ok {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	}
	return ""
}

// ToFloat converts the numeric representations produced by Decode.
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// IsZero reports whether v is a numeric zero or false.
func IsZero(v any) bool {
	if b, ok := v.(bool); ok {
		return !b
	}
	f, ok := ToFloat(v)
	return ok && f == 0
}
