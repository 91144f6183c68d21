// Package format renders loosely-stored order fields for display.
package format

import (
	"encoding/json"
	"strings"
)

// ShippingAddress makes a persisted shipping address readable no
// matter which historical shape it was stored in: a JSON object, a
// comma line, a delimiter-separated string, or free text. It is a
// lossy display helper, not a parser; the original string is the
// fallback and no input makes it fail.
func ShippingAddress(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return s
	}

	if out, ok := fromJSON(trimmed); ok {
		return out
	}
	if strings.Contains(trimmed, ",") {
		return joinSegments(strings.Split(trimmed, ","))
	}
	if i := strings.IndexAny(trimmed, "\n|;"); i >= 0 {
		return joinSegments(strings.FieldsFunc(trimmed, func(r rune) bool {
			return r == '\n' || r == '|' || r == ';'
		}))
	}
	if words := strings.Fields(trimmed); len(words) > 4 {
		return joinSegments(pairwise(words))
	}
	return s
}

func fromJSON(s string) (string, bool) {
	if !strings.HasPrefix(s, "{") {
		return "", false
	}
	var obj map[string]any
	if json.Unmarshal([]byte(s), &obj) != nil {
		return "", false
	}
	var parts []string
	for _, k := range []string{"street", "city", "state", "zipCode", "zip", "country"} {
		v, ok := obj[k].(string)
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		if k == "zip" && hasKey(obj, "zipCode") {
			continue
		}
		parts = append(parts, strings.TrimSpace(v))
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, ", "), true
}

func hasKey(obj map[string]any, k string) bool {
	v, ok := obj[k].(string)
	return ok && strings.TrimSpace(v) != ""
}

func joinSegments(segs []string) string {
	out := segs[:0]
	for _, s := range segs {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, ", ")
}

// pairwise groups tokens two at a time, a rough approximation of
// structure for long unpunctuated address lines.
func pairwise(words []string) []string {
	segs := make([]string, 0, (len(words)+1)/2)
	for i := 0; i < len(words); i += 2 {
		if i+1 < len(words) {
			segs = append(segs, words[i]+" "+words[i+1])
		} else {
			segs = append(segs, words[i])
		}
	}
	return segs
}
