package store

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cast"
)

// Page is the pagination metadata an envelope response carries.
type Page struct {
	TotalPages  int  `json:"totalPages"`
	CurrentPage int  `json:"currentPage"`
	Total       int  `json:"total"`
	Known       bool `json:"-"`
}

// Collection is a decoded list response.
type Collection[T any] struct {
	Items []T
	Page  Page
}

// Shape names the keys a collection envelope may use.
type Shape struct {
	// Key holds the list, e.g. "doctors".
	Key string
	// TotalKey holds the record count, e.g. "totalDoctors".
	TotalKey string
}

// ShapeError is a 2xx body that is neither a list nor a known envelope.
type ShapeError struct {
	Want string
	Got  string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("unexpected response format: want %s, got %s", e.Want, e.Got)
}

// DecodeCollection accepts a bare JSON array or an object holding the array
// under shape.Key ("items" and "data" are accepted as well).
func DecodeCollection[T any](body []byte, shape Shape) (Collection[T], error) {
	var out Collection[T]
	body = bytes.TrimSpace(body)

	switch {
	case len(body) > 0 && body[0] == '[':
		if err := json.Unmarshal(body, &out.Items); err != nil {
			return out, fmt.Errorf("decode list: %w", err)
		}
	case len(body) > 0 && body[0] == '{':
		var env map[string]json.RawMessage
		if err := json.Unmarshal(body, &env); err != nil {
			return out, fmt.Errorf("decode envelope: %w", err)
		}
		raw, ok := listField(env, shape.Key, "items", "data")
		if !ok {
			return out, &ShapeError{Want: fmt.Sprintf("array or {%s: [...]}", shape.Key), Got: "object without list"}
		}
		if err := json.Unmarshal(raw, &out.Items); err != nil {
			return out, fmt.Errorf("decode %s: %w", shape.Key, err)
		}
		out.Page = pageOf(env, shape.TotalKey)
	default:
		return out, &ShapeError{Want: "array or object", Got: kindOf(body)}
	}

	if out.Items == nil {
		out.Items = []T{}
	}
	return out, nil
}

// Single is a decoded mutation or detail response.
type Single[T any] struct {
	Item    T
	Found   bool
	Message string
}

// DecodeSingle reads {<key>: {...}, message}, {data: {...}} or a bare record.
// Bodies without a record (empty, a plain string, {message}) decode to
// Found=false; mutations such as DELETE commonly answer that way.
func DecodeSingle[T any](body []byte, key string) (Single[T], error) {
	var out Single[T]
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return out, nil
	}

	var env map[string]json.RawMessage
	if err := json.Unmarshal(body, &env); err != nil {
		return out, fmt.Errorf("decode response: %w", err)
	}
	if m, ok := env["message"]; ok {
		_ = json.Unmarshal(m, &out.Message)
	}

	for _, k := range []string{key, "data"} {
		raw, ok := env[k]
		if !ok || !isObject(raw) {
			continue
		}
		if err := json.Unmarshal(raw, &out.Item); err != nil {
			return out, fmt.Errorf("decode %s: %w", k, err)
		}
		out.Found = true
		return out, nil
	}

	if _, ok := env["_id"]; ok {
		if err := json.Unmarshal(body, &out.Item); err != nil {
			return out, fmt.Errorf("decode record: %w", err)
		}
		out.Found = true
	}
	return out, nil
}

func listField(env map[string]json.RawMessage, keys ...string) (json.RawMessage, bool) {
	for _, k := range keys {
		if k == "" {
			continue
		}
		raw, ok := env[k]
		if ok {
			raw = bytes.TrimSpace(raw)
			if len(raw) > 0 && raw[0] == '[' {
				return raw, true
			}
		}
	}
	return nil, false
}

func pageOf(env map[string]json.RawMessage, totalKey string) Page {
	var p Page
	intOf := func(k string) (int, bool) {
		raw, ok := env[k]
		if !ok || k == "" {
			return 0, false
		}
		var v any
		if json.Unmarshal(raw, &v) != nil {
			return 0, false
		}
		n, err := cast.ToIntE(v)
		return n, err == nil
	}

	var ok bool
	if p.TotalPages, ok = intOf("totalPages"); ok {
		p.Known = true
	}
	if p.CurrentPage, ok = intOf("currentPage"); ok {
		p.Known = true
	}
	for _, k := range []string{totalKey, "total"} {
		if n, ok := intOf(k); ok {
			p.Total, p.Known = n, true
			break
		}
	}
	return p
}

func isObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}

func kindOf(body []byte) string {
	if len(body) == 0 {
		return "empty body"
	}
	switch body[0] {
	case '"':
		return "string"
	case 'n':
		return "null"
	case 't', 'f':
		return "boolean"
	default:
		return "scalar"
	}
}
