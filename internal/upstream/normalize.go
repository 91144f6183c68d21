package upstream

import (
	"bytes"
	"encoding/json"
)

// Normalize reconciles the API's inconsistent list envelopes into one
// canonical slice of raw entities. Accepted shapes, first match wins:
//
//	[...]                     the array itself
//	{"data": [...]}           generic envelope
//	{"<key>": [...]}          domain envelope (e.g. products, items)
//
// Anything else (null, scalars, foreign objects, malformed JSON)
// yields an empty slice. Never returns nil, never panics.
func Normalize(body []byte, keys ...string) []json.RawMessage {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return []json.RawMessage{}
	}

	if body[0] == '[' {
		var arr []json.RawMessage
		if json.Unmarshal(body, &arr) == nil && arr != nil {
			return arr
		}
		return []json.RawMessage{}
	}

	var env map[string]json.RawMessage
	if json.Unmarshal(body, &env) != nil {
		return []json.RawMessage{}
	}
	for _, k := range append([]string{"data"}, keys...) {
		v, ok := env[k]
		if !ok {
			continue
		}
		if arr := Normalize(v, keys...); len(arr) > 0 {
			return arr
		}
		// present but empty array still counts as a match
		if bytes.HasPrefix(bytes.TrimSpace(v), []byte("[")) {
			return []json.RawMessage{}
		}
	}
	return []json.RawMessage{}
}

// decodeList normalizes body and decodes each entity, skipping the
// ones that do not parse rather than failing the whole list.
func decodeList[T any](body []byte, keys ...string) []T {
	raw := Normalize(body, keys...)
	out := make([]T, 0, len(raw))
	for _, r := range raw {
		var v T
		if json.Unmarshal(r, &v) == nil {
			out = append(out, v)
		}
	}
	return out
}

// decodeObject decodes a single entity that may arrive bare or wrapped
// in a "data" envelope.
func decodeObject(body []byte, out any) error {
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err == nil && len(env.Data) > 0 {
		if json.Unmarshal(env.Data, out) == nil {
			return nil
		}
	}
	return json.Unmarshal(body, out)
}
