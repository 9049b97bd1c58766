// Package normalize converts between the text representation edited in forms
// and the list/number representation sent to the directory API.
package normalize

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
)

// Delimiters used by the directory forms.
const (
	Comma = ","
	Pipe  = "|"
)

// StringToArray splits delimited text into trimmed, non-empty elements.
// Slices are accepted as-is minus blank entries; any other input yields an
// empty, non-nil slice. The input is never modified.
func StringToArray(input any, delim string) []string {
	if delim == "" {
		delim = Comma
	}

	out := []string{}
	switch v := input.(type) {
	case string:
		for _, part := range strings.Split(v, delim) {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	case []string:
		for _, s := range v {
			if s != "" {
				out = append(out, s)
			}
		}
	case []any:
		for _, item := range v {
			s, err := cast.ToStringE(item)
			if err != nil || s == "" {
				continue
			}
			out = append(out, s)
		}
	}
	return out
}

// ArrayToString joins list for redisplay in an edit form.
func ArrayToString(list []string, delim string) string {
	if len(list) == 0 {
		return ""
	}
	return strings.Join(list, separator(delim))
}

// Normalize is the canonical edit text for s.
func Normalize(s string, delim string) string {
	return ArrayToString(StringToArray(s, delim), delim)
}

func separator(delim string) string {
	switch delim {
	case "", Comma:
		return ", "
	default:
		return " " + delim + " "
	}
}

// ToNumber converts numeric form text to a float64. Blank text reports ok=false
// so callers can omit the field.
func ToNumber(v any) (n float64, ok bool, err error) {
	if v == nil {
		return 0, false, nil
	}
	if s, isString := v.(string); isString {
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, false, nil
		}
		v = s
	}
	n, err = cast.ToFloat64E(v)
	if err != nil {
		return 0, false, fmt.Errorf("not a number: %v", v)
	}
	return n, true, nil
}

// ToBool reads checkbox values; absent or unrecognised values are false.
func ToBool(v any) bool {
	switch b := v.(type) {
	case nil:
		return false
	case bool:
		return b
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "on", "1", "yes":
			return true
		}
		return false
	default:
		return cast.ToBool(v)
	}
}
