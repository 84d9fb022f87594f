// Package coerce converts loosely typed configuration values into the
// types settings expect. TOML decoding yields int64 and []any, env
// overrides and hand edits yield strings, and tests set plain Go values,
// so every getter accepts each of these shapes.
package coerce

import (
	"math"
	"strconv"
	"strings"
)

// String returns v if it is a string, or "".
func String(v any) string {
	s, _ := v.(string)
	return s
}

// Int converts integers, whole floats and numeric strings. Anything else is 0.
func Int(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		if n != math.Trunc(n) {
			return 0
		}
		return int(n)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0
		}
		return i
	default:
		return 0
	}
}

// Float converts floats, integers and numeric strings. Anything else is 0.
func Float(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// Bool converts booleans and strconv.ParseBool strings. Anything else is false.
func Bool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		return err == nil && parsed
	default:
		return false
	}
}

// Strings converts []string and []any, dropping non-string items.
// Anything else is nil.
func Strings(v any) []string {
	switch s := v.(type) {
	case []string:
		return s
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return nil
	}
}
