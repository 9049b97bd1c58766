package main

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/jwalitptl/directory-admin/internal/directory"
	"github.com/jwalitptl/directory-admin/internal/normalize"
	"github.com/jwalitptl/directory-admin/internal/store"
)

// buildDraft turns --set key=value and --file field=path pairs into a draft.
// Nested fields are written as group.field. Unknown keys are rejected so a
// typo never silently drops a value.
func buildDraft(form directory.Form, sets, files []string) (store.Draft, error) {
	d := store.Draft{}

	for _, kv := range sets {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("--set %q: want key=value", kv)
		}
		if group, field, nested := strings.Cut(key, "."); nested {
			if !slices.Contains(form.Nested, group) {
				return nil, fmt.Errorf("unknown field group %q", group)
			}
			d.SetNested(group, field, value)
			continue
		}
		if !slices.Contains(form.Fields, key) {
			return nil, fmt.Errorf("unknown field %q", key)
		}
		d.Set(key, value)
	}

	for _, fp := range files {
		field, path, ok := strings.Cut(fp, "=")
		if !ok || field == "" || path == "" {
			return nil, fmt.Errorf("--file %q: want field=path", fp)
		}
		if !slices.Contains(form.Files, field) {
			return nil, fmt.Errorf("%q is not a file field", field)
		}
		f, err := readFile(path)
		if err != nil {
			return nil, err
		}
		d.SetFile(field, f)
	}
	return d, nil
}

func readFile(path string) (*normalize.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	ct := mime.TypeByExtension(filepath.Ext(path))
	if ct == "" {
		ct = "application/octet-stream"
	}
	return &normalize.File{Name: filepath.Base(path), ContentType: ct, Data: data}, nil
}
