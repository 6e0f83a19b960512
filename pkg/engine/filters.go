package engine

import (
	"strings"
	"unicode"

	"github.com/arthur-debert/stencil/pkg/errors"
)

// applyFilter applies a named derived transform to a value. Filters
// are deterministic functions of the base answer; they never consult
// external state.
func applyFilter(name, value string) (string, error) {
	switch name {
	case "slug":
		return delimit(value, '-'), nil
	case "snake":
		return delimit(value, '_'), nil
	case "upper":
		return strings.ToUpper(value), nil
	case "lower":
		return strings.ToLower(value), nil
	default:
		return "", errors.Newf(errors.ErrUnresolvedPlaceholder,
			"unknown filter %q", name)
	}
}

// delimit lowercases value and replaces every run of non-alphanumeric
// characters with a single separator, trimming leading and trailing
// separators.
func delimit(value string, sep rune) string {
	var out strings.Builder
	out.Grow(len(value))

	pending := false
	for _, r := range strings.ToLower(value) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pending && out.Len() > 0 {
				out.WriteRune(sep)
			}
			pending = false
			out.WriteRune(r)
		} else {
			pending = true
		}
	}

	return out.String()
}
