package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"github.com/jwalitptl/directory-admin/internal/normalize"
)

var null = []byte("null")

// Ref is a reference to another record. The API sends either the bare id or
// the populated object.
type Ref struct {
	ID   string `json:"_id"`
	Name string `json:"name,omitempty"`
}

func (r *Ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, null) {
		*r = Ref{}
		return nil
	}
	if data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = Ref{ID: id}
		return nil
	}

	type plain Ref
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("ref: %w", err)
	}
	*r = Ref(p)
	return nil
}

// MarshalJSON writes the bare id unless the name is known.
func (r Ref) MarshalJSON() ([]byte, error) {
	if r.Name == "" {
		return json.Marshal(r.ID)
	}
	type plain Ref
	return json.Marshal(plain(r))
}

// Label is the display name, falling back to the id.
func (r Ref) Label() string {
	if r.Name != "" {
		return r.Name
	}
	return r.ID
}

// Number accepts JSON numbers and numeric strings. Blank strings and null
// decode to zero.
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, null) {
		*n = 0
		return nil
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if s, ok := raw.(string); ok && strings.TrimSpace(s) == "" {
		*n = 0
		return nil
	}
	f, err := cast.ToFloat64E(raw)
	if err != nil {
		return fmt.Errorf("number: %w", err)
	}
	*n = Number(f)
	return nil
}

func (n Number) Float() float64 { return float64(n) }

// Bool accepts JSON booleans and their string forms ("true", "0", ...).
// Blank strings and null decode to false.
type Bool bool

func (b *Bool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, null) {
		*b = false
		return nil
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if s, ok := raw.(string); ok {
		if s = strings.TrimSpace(s); s == "" {
			*b = false
			return nil
		}
		raw = s
	}
	v, err := cast.ToBoolE(raw)
	if err != nil {
		return fmt.Errorf("bool: %w", err)
	}
	*b = Bool(v)
	return nil
}

// StringList accepts a JSON array or comma-delimited text.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, null) {
		*l = nil
		return nil
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*l = normalize.StringToArray(raw, normalize.Comma)
	return nil
}

// Address is a postal address. postal_code is accepted as an alias of
// postalCode on input.
type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postalCode"`
}

func (a *Address) UnmarshalJSON(data []byte) error {
	var aux struct {
		Street     string `json:"street"`
		City       string `json:"city"`
		State      string `json:"state"`
		PostalCode string `json:"postalCode"`
		Snake      string `json:"postal_code"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*a = Address{Street: aux.Street, City: aux.City, State: aux.State, PostalCode: aux.PostalCode}
	if a.PostalCode == "" {
		a.PostalCode = aux.Snake
	}
	return nil
}

// IsZero reports whether every field is blank.
func (a Address) IsZero() bool {
	return a == Address{}
}

// Qualification is one degree entry. Older records store it as plain text.
type Qualification struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution,omitempty"`
	Year        Number `json:"year,omitempty"`
}

func (q *Qualification) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*q = Qualification{Degree: s}
		return nil
	}
	type plain Qualification
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("qualification: %w", err)
	}
	*q = Qualification(p)
	return nil
}
