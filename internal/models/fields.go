package models

import (
	"time"

	"github.com/slacklinehq/slackline/internal/store"
)

func fieldString(f store.Fields, key string) string {
	s, _ := f[key].(string)
	return s
}

func fieldBool(f store.Fields, key string) bool {
	b, _ := f[key].(bool)
	return b
}

func fieldTime(f store.Fields, key string) time.Time {
	t, _ := f[key].(time.Time)
	return t
}

// fieldStringSet tolerates both []string (memory store) and []any (decoded
// from the wire).
func fieldStringSet(v any) []string {
	switch vv := v.(type) {
	case []string:
		return vv
	case []any:
		out := make([]string, 0, len(vv))
		for _, e := range vv {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func fieldStringSetMap(v any) map[string][]string {
	out := map[string][]string{}
	switch vv := v.(type) {
	case map[string][]string:
		for k, set := range vv {
			out[k] = append([]string(nil), set...)
		}
	case map[string]any:
		for k, set := range vv {
			out[k] = fieldStringSet(set)
		}
	}
	return out
}
