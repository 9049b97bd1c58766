package store

import (
	"fmt"
	"slices"

	"github.com/jwalitptl/directory-admin/internal/normalize"
)

// Payload is a request body ready for the API client: either a
// *normalize.Multipart or a JSON-encodable map.
type Payload struct {
	Body      any
	Multipart bool
	// Fields holds the normalized values keyed by form field name.
	Fields map[string]any
}

// normalizeDraft converts edit representations into wire values: list text
// into arrays, numeric text into numbers, checkboxes into booleans. Blank
// numbers and non-file values under file fields are dropped. Absent
// checkboxes become false on create only, so partial updates leave flags
// alone.
func (c *Config[T]) normalizeDraft(d Draft, creating bool) (map[string]any, bool, error) {
	fields := make(map[string]any, len(d))
	hasFile := false

	for key, value := range d {
		switch {
		case slices.Contains(c.FileFields, key):
			if f, ok := normalize.AsFile(value); ok {
				fields[key] = f
				hasFile = true
			}
		case slices.Contains(c.ListFields, key):
			fields[key] = normalize.StringToArray(value, c.Delimiter)
		case slices.Contains(c.NumericFields, key):
			n, ok, err := normalize.ToNumber(value)
			if err != nil {
				return nil, false, fmt.Errorf("%s must be a number", key)
			}
			if ok {
				fields[key] = n
			}
		case slices.Contains(c.BoolFields, key):
			fields[key] = normalize.ToBool(value)
		default:
			if value != nil {
				fields[key] = value
			}
		}
	}

	if creating {
		for _, key := range c.BoolFields {
			if _, ok := fields[key]; !ok {
				fields[key] = false
			}
		}
	}
	return fields, hasFile, nil
}

// BuildPayload normalizes a create draft and packs it as multipart when it
// carries a file, JSON otherwise. Field names are translated through the
// config's FieldMap.
func (c *Config[T]) BuildPayload(d Draft) (*Payload, error) {
	return c.buildPayload(d, true)
}

func (c *Config[T]) buildPayload(d Draft, creating bool) (*Payload, error) {
	fields, hasFile, err := c.normalizeDraft(d, creating)
	if err != nil {
		return nil, err
	}

	if hasFile {
		mp, err := normalize.BuildMultipart(fields, c.FieldMap)
		if err != nil {
			return nil, err
		}
		return &Payload{Body: mp, Multipart: true, Fields: fields}, nil
	}

	body := make(map[string]any, len(fields))
	for k, v := range fields {
		body[c.FieldMap.Wire(k)] = v
	}
	return &Payload{Body: body, Fields: fields}, nil
}
