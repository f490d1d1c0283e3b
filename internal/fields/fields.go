// Package fields provides safe access to decoded JSON documents and the
// small text helpers used when rendering API responses.
package fields

import (
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// Lookup walks obj along keys. String keys index maps, int keys index slices.
// It reports false as soon as an intermediate value is missing or is not a
// container of the expected kind.
func Lookup(obj any, keys ...any) (any, bool) {
	cur := obj
	for _, key := range keys {
		switch k := key.(type) {
		case string:
			m, ok := cur.(map[string]any)
			if !ok {
				return nil, false
			}
			v, ok := m[k]
			if !ok {
				return nil, false
			}
			cur = v
		case int:
			s, ok := cur.([]any)
			if !ok || k < 0 || k >= len(s) {
				return nil, false
			}
			cur = s[k]
		default:
			return nil, false
		}
	}
	return cur, true
}

// Has reports whether the path exists, regardless of the value's type.
func Has(obj any, keys ...any) bool {
	_, ok := Lookup(obj, keys...)
	return ok
}

// String returns the string at path, or def when absent or not a string.
func String(obj any, def string, keys ...any) string {
	v, ok := Lookup(obj, keys...)
	if !ok {
		return def
	}
	s, ok := v.(string)
	if !ok {
		return def
	}
	return s
}

// Text renders any present scalar at path the way it appears in reports.
// Numbers keep their integer form when integral.
func Text(obj any, def string, keys ...any) string {
	v, ok := Lookup(obj, keys...)
	if !ok {
		return def
	}
	return render(v)
}

func render(v any) string {
	switch t := v.(type) {
	case nil:
		return "None"
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		if t {
			return "True"
		}
		return "False"
	default:
		return ""
	}
}

// Int returns the integer at path. YouTube encodes statistics as decimal
// strings, so numeric strings are accepted too.
func Int(obj any, def int64, keys ...any) int64 {
	v, ok := Lookup(obj, keys...)
	if !ok {
		return def
	}
	switch t := v.(type) {
	case float64:
		return int64(t)
	case int:
		return int64(t)
	case int64:
		return t
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			f, ferr := strconv.ParseFloat(strings.TrimSpace(t), 64)
			if ferr != nil {
				return def
			}
			return int64(f)
		}
		return n
	default:
		return def
	}
}

// Float returns the number at path as float64. Numeric strings are parsed.
func Float(obj any, def float64, keys ...any) float64 {
	v, ok := Lookup(obj, keys...)
	if !ok {
		return def
	}
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return def
		}
		return f
	default:
		return def
	}
}

// Bool returns the boolean at path.
func Bool(obj any, def bool, keys ...any) bool {
	v, ok := Lookup(obj, keys...)
	if !ok {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		return def
	}
	return b
}

// Map returns the object at path, or an empty map.
func Map(obj any, keys ...any) map[string]any {
	v, ok := Lookup(obj, keys...)
	if !ok {
		return map[string]any{}
	}
	m, ok := v.(map[string]any)
	if !ok {
		return map[string]any{}
	}
	return m
}

// Slice returns the array at path, or nil.
func Slice(obj any, keys ...any) []any {
	v, ok := Lookup(obj, keys...)
	if !ok {
		return nil
	}
	s, _ := v.([]any)
	return s
}

// Strings returns the string elements of the array at path.
func Strings(obj any, keys ...any) []string {
	var out []string
	for _, v := range Slice(obj, keys...) {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Truncate shortens text longer than max runes to max-3 runes plus "...".
func Truncate(text string, max int) string {
	r := []rune(text)
	if len(r) <= max {
		return text
	}
	if max < 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

// Number formats n with comma grouping.
func Number(n int64) string {
	return humanize.Comma(n)
}

// Decimal formats f with comma grouping and exactly digits decimals. A
// negative digits uses the fewest decimals that represent f exactly.
func Decimal(f float64, digits int) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'f', digits, 64)
	}
	s := strconv.FormatFloat(f, 'f', digits, 64)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign = "-"
		s = s[1:]
	}
	whole, frac, hasFrac := strings.Cut(s, ".")
	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return sign + s
	}
	out := sign + humanize.Comma(n)
	if hasFrac {
		out += "." + frac
	}
	return out
}
