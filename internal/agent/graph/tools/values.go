package tools

import (
	"fmt"
	"strconv"
	"strings"
)

func trimString(m map[string]any, key string) {
	v, ok := m[key]
	if !ok {
		return
	}
	switch vv := v.(type) {
	case string:
		m[key] = strings.TrimSpace(vv)
	case nil:
		delete(m, key)
	default:
		// coerce non-string to string
		m[key] = strings.TrimSpace(fmt.Sprint(v))
	}
}

func clampNumber(m map[string]any, key string, lo, hi int) {
	v, ok := m[key]
	if !ok {
		return
	}
	switch vv := v.(type) {
	case float64:
		// JSON numbers decode as float64
		m[key] = clampInt(int(vv), lo, hi)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(vv)); err == nil {
			m[key] = clampInt(n, lo, hi)
		} else {
			delete(m, key)
		}
	default:
		delete(m, key)
	}
}

// clampInt returns v limited to [lo, hi].
func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

func asString(v any) string {
	switch vv := v.(type) {
	case nil:
		return ""
	case string:
		return vv
	default:
		return fmt.Sprint(vv)
	}
}

func asFloat(v any) float64 {
	switch vv := v.(type) {
	case float64:
		return vv
	case float32:
		return float64(vv)
	case int64:
		return float64(vv)
	case int:
		return float64(vv)
	default:
		return 0
	}
}

// asStrings flattens a list column into its non-empty string items.
func asStrings(v any) []string {
	out := []string{}
	switch vv := v.(type) {
	case []any:
		for _, item := range vv {
			if s := asString(item); s != "" {
				out = append(out, s)
			}
		}
	case []string:
		for _, s := range vv {
			if s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
