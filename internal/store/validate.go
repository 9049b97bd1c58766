package store

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jwalitptl/directory-admin/internal/normalize"
)

var validate = validator.New()

// present reports whether a required form value was supplied. Zero numbers
// count as supplied; blank text does not.
func present(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(x) != ""
	case *normalize.File:
		return x != nil
	case []string:
		return len(normalize.StringToArray(x, "")) > 0
	case map[string]any:
		for _, sub := range x {
			if present(sub) {
				return true
			}
		}
		return false
	default:
		return true
	}
}

// missing lists required fields the draft does not carry, in declared order.
// A required file field needs a file handle; a stored image URL is not one.
func missing(d Draft, required, files []string) []string {
	var out []string
	for _, f := range required {
		if slices.Contains(files, f) {
			if _, ok := normalize.AsFile(d[f]); !ok {
				out = append(out, f)
			}
			continue
		}
		if !present(d[f]) {
			out = append(out, f)
		}
	}
	return out
}

// requiredMessage reads "Parent Disease, Name, and Price are required."
func requiredMessage(miss []string, labels map[string]string) string {
	names := make([]string, len(miss))
	for i, f := range miss {
		names[i] = f
		if l, ok := labels[f]; ok {
			names[i] = l
		}
	}

	switch len(names) {
	case 1:
		return names[0] + " is required."
	case 2:
		return names[0] + " and " + names[1] + " are required."
	default:
		return strings.Join(names[:len(names)-1], ", ") + ", and " + names[len(names)-1] + " are required."
	}
}

// checkRules runs validator tags against normalized field values.
func checkRules(fields map[string]any, rules map[string]string) error {
	keys := make([]string, 0, len(rules))
	for k := range rules {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, field := range keys {
		v, ok := fields[field]
		if !ok || v == nil {
			continue
		}
		if err := validate.Var(v, rules[field]); err != nil {
			var ve validator.ValidationErrors
			if errors.As(err, &ve) && len(ve) > 0 {
				return errors.New(ruleMessage(field, ve[0]))
			}
			return fmt.Errorf("%s is invalid", field)
		}
	}
	return nil
}

func ruleMessage(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "gte", "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte", "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "url", "http_url":
		return fmt.Sprintf("%s must be a valid URL", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// checkChoices rejects values outside an enumerated set. Blank values pass;
// use Required to demand one.
func checkChoices(d Draft, choices map[string][]string) error {
	for field, allowed := range choices {
		s, ok := d[field].(string)
		if !ok || strings.TrimSpace(s) == "" {
			continue
		}
		if !slices.Contains(allowed, s) {
			return fmt.Errorf("%s must be one of: %s", field, strings.Join(allowed, ", "))
		}
	}
	return nil
}
