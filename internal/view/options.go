package view

import (
	"cmp"
	"slices"
	"strings"

	"github.com/jwalitptl/directory-admin/internal/model"
)

// Option is one dropdown entry.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

func DiseaseOptions(ds []model.Disease) []Option {
	out := make([]Option, 0, len(ds))
	for _, d := range ds {
		if d.ID == "" {
			continue
		}
		out = append(out, Option{Value: d.ID, Label: orNA(d.Name)})
	}
	return sortOptions(out)
}

// SpecializationOptions uses names as values; doctors store the name.
func SpecializationOptions(ss []model.Specialization) []Option {
	names := make([]string, 0, len(ss))
	for _, s := range ss {
		names = append(names, s.Name)
	}
	return ChoiceOptions(names)
}

// LabNameOptions lists distinct lab names; tests reference labs by name.
func LabNameOptions(ls []model.Lab) []Option {
	names := make([]string, 0, len(ls))
	for _, l := range ls {
		names = append(names, l.LabName)
	}
	return ChoiceOptions(names)
}

// ChoiceOptions turns distinct non-blank values into options, in order.
func ChoiceOptions(values []string) []Option {
	seen := make(map[string]bool, len(values))
	out := make([]Option, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, Option{Value: v, Label: v})
	}
	return out
}

func sortOptions(opts []Option) []Option {
	slices.SortStableFunc(opts, func(a, b Option) int {
		return cmp.Compare(strings.ToLower(a.Label), strings.ToLower(b.Label))
	})
	return opts
}
