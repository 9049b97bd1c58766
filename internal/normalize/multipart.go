package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"sort"
	"strings"

	"github.com/spf13/cast"
)

// File is a binary handle held on a draft until submission.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// AsFile reports whether v is a file handle.
func AsFile(v any) (*File, bool) {
	switch f := v.(type) {
	case *File:
		return f, f != nil
	case File:
		return &f, true
	}
	return nil, false
}

// FieldMap maps form field names to the names the API expects.
type FieldMap map[string]string

// Wire returns the API key for a form field.
func (m FieldMap) Wire(field string) string {
	if w, ok := m[field]; ok && w != "" {
		return w
	}
	return field
}

// Part is one entry of a multipart payload.
type Part struct {
	Key   string
	Value string
	File  *File
}

// Multipart is an ordered multipart/form-data payload.
type Multipart struct {
	Parts []Part
}

// Value returns the text value sent under key.
func (m *Multipart) Value(key string) (string, bool) {
	for _, p := range m.Parts {
		if p.Key == key && p.File == nil {
			return p.Value, true
		}
	}
	return "", false
}

// File returns the file sent under key.
func (m *Multipart) File(key string) (*File, bool) {
	for _, p := range m.Parts {
		if p.Key == key && p.File != nil {
			return p.File, true
		}
	}
	return nil, false
}

// BuildMultipart packs fields into a multipart payload. Files go under their
// wire key, maps and slices are JSON encoded, booleans become "true"/"false"
// and other scalars are stringified. Nil values are skipped. Keys are emitted
// in sorted order.
func BuildMultipart(fields map[string]any, fieldMap FieldMap) (*Multipart, error) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	mp := &Multipart{Parts: make([]Part, 0, len(keys))}
	for _, key := range keys {
		value := fields[key]
		if value == nil {
			continue
		}
		wire := fieldMap.Wire(key)

		if f, ok := AsFile(value); ok {
			mp.Parts = append(mp.Parts, Part{Key: wire, File: f})
			continue
		}

		switch v := value.(type) {
		case bool:
			mp.Parts = append(mp.Parts, Part{Key: wire, Value: cast.ToString(v)})
		case map[string]string, map[string]any, []string, []any:
			raw, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("encode %s: %w", key, err)
			}
			mp.Parts = append(mp.Parts, Part{Key: wire, Value: string(raw)})
		default:
			s, err := cast.ToStringE(v)
			if err != nil {
				return nil, fmt.Errorf("encode %s: %w", key, err)
			}
			mp.Parts = append(mp.Parts, Part{Key: wire, Value: s})
		}
	}
	return mp, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Encode writes the payload as multipart/form-data.
func (m *Multipart) Encode() (string, *bytes.Buffer, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	for _, p := range m.Parts {
		if p.File == nil {
			if err := w.WriteField(p.Key, p.Value); err != nil {
				return "", nil, fmt.Errorf("write field %s: %w", p.Key, err)
			}
			continue
		}

		name := p.File.Name
		if name == "" {
			name = p.Key
		}
		contentType := p.File.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(p.Key), quoteEscaper.Replace(name)))
		h.Set("Content-Type", contentType)

		part, err := w.CreatePart(h)
		if err != nil {
			return "", nil, fmt.Errorf("create part %s: %w", p.Key, err)
		}
		if _, err := part.Write(p.File.Data); err != nil {
			return "", nil, fmt.Errorf("write file %s: %w", p.Key, err)
		}
	}

	if err := w.Close(); err != nil {
		return "", nil, fmt.Errorf("close multipart: %w", err)
	}
	return w.FormDataContentType(), body, nil
}
