package store

import (
	"maps"

	"github.com/jwalitptl/directory-admin/internal/normalize"
)

// Draft is the in-progress form for one entity, keyed by form field name.
// Structured sub-objects (addresses) are nested maps.
type Draft map[string]any

// Set updates a top-level field.
func (d Draft) Set(field string, value any) {
	d[field] = value
}

// SetNested updates one field of a structured sub-object, creating it when
// absent. The sub-object is copied so earlier clones are unaffected.
func (d Draft) SetNested(group, field string, value any) {
	sub := map[string]any{}
	if cur, ok := d[group].(map[string]any); ok {
		sub = maps.Clone(cur)
	}
	sub[field] = value
	d[group] = sub
}

// SetFile stores a file handle. Type and size are left to the API.
func (d Draft) SetFile(field string, f *normalize.File) {
	d[field] = f
}

// Get returns a top-level field.
func (d Draft) Get(field string) any {
	return d[field]
}

// Nested returns one field of a sub-object.
func (d Draft) Nested(group, field string) any {
	if sub, ok := d[group].(map[string]any); ok {
		return sub[field]
	}
	return nil
}

// Clone copies the draft and its sub-objects. File handles are shared.
func (d Draft) Clone() Draft {
	if d == nil {
		return nil
	}
	out := make(Draft, len(d))
	for k, v := range d {
		if sub, ok := v.(map[string]any); ok {
			v = maps.Clone(sub)
		}
		out[k] = v
	}
	return out
}
