// Package engine implements placeholder substitution for template
// content and path segments.
//
// The syntax is a deliberately small subset of the familiar
// double-brace style: "{{ identifier }}" substitutes a resolved
// option value, "{{ identifier | filter }}" applies a derived
// transform, and "{% raw %} ... {% endraw %}" marks a span that is
// emitted verbatim, markers stripped. Substitution never recurses
// into substituted values or raw spans.
package engine

import (
	"strings"

	"github.com/arthur-debert/stencil/pkg/errors"
)

// Delimiters of the placeholder syntax
const (
	placeholderOpen  = "{{"
	placeholderClose = "}}"
	tagOpen          = "{%"
	tagClose         = "%}"
	tagRaw           = "raw"
	tagEndRaw        = "endraw"
)

// Vars resolves identifiers to their substituted values. It is
// satisfied by *types.AnswerSet.
type Vars interface {
	Get(name string) (string, bool)
}

// MapVars adapts a plain map to the Vars interface
type MapVars map[string]string

// Get implements Vars
func (m MapVars) Get(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

// Render substitutes every placeholder in input against vars, leaving
// raw spans untouched. An identifier not known to vars, an unknown
// filter, an unsupported tag, or an unterminated construct fails with
// UnresolvedPlaceholder: these are template defects, never user input
// errors.
func Render(input string, vars Vars) (string, error) {
	var out strings.Builder
	out.Grow(len(input))

	i := 0
	for i < len(input) {
		next := nextDelim(input, i)
		if next < 0 {
			out.WriteString(input[i:])
			break
		}

		out.WriteString(input[i:next])
		i = next

		if strings.HasPrefix(input[i:], placeholderOpen) {
			value, advance, err := parsePlaceholder(input, i, vars)
			if err != nil {
				return "", err
			}
			out.WriteString(value)
			i += advance
			continue
		}

		// Tag delimiter
		name, body, advance, err := parseTag(input, i)
		if err != nil {
			return "", err
		}
		switch name {
		case tagRaw:
			out.WriteString(body)
		case tagEndRaw:
			return "", positioned(errors.Newf(errors.ErrUnresolvedPlaceholder,
				"unbalanced {%% endraw %%} without matching {%% raw %%}"), input, i)
		default:
			return "", positioned(errors.Newf(errors.ErrUnresolvedPlaceholder,
				"unsupported directive %q", name), input, i)
		}
		i += advance
	}

	return out.String(), nil
}

// RenderPath substitutes placeholders in a single path segment. Raw
// spans are not supported in paths; their markers are rejected.
func RenderPath(segment string, vars Vars) (string, error) {
	if strings.Contains(segment, tagOpen) {
		return "", errors.Newf(errors.ErrUnresolvedPlaceholder,
			"raw markers are not supported in path segments: %q", segment)
	}
	rendered, err := Render(segment, vars)
	if err != nil {
		return "", err
	}
	if strings.ContainsRune(rendered, '/') || strings.ContainsRune(rendered, '\\') {
		return "", errors.Newf(errors.ErrUnresolvedPlaceholder,
			"substituted path segment %q introduces a separator", segment)
	}
	return rendered, nil
}

// ContainsPlaceholder reports whether s contains a placeholder opening
// delimiter.
func ContainsPlaceholder(s string) bool {
	return strings.Contains(s, placeholderOpen)
}

// nextDelim returns the index of the nearest opening delimiter at or
// after from, or -1.
func nextDelim(input string, from int) int {
	p := strings.Index(input[from:], placeholderOpen)
	t := strings.Index(input[from:], tagOpen)
	switch {
	case p < 0 && t < 0:
		return -1
	case p < 0:
		return from + t
	case t < 0:
		return from + p
	case p < t:
		return from + p
	default:
		return from + t
	}
}

// parsePlaceholder parses "{{ ident [| filter]... }}" starting at
// offset start and returns the substituted value and the number of
// bytes consumed.
func parsePlaceholder(input string, start int, vars Vars) (string, int, error) {
	end := strings.Index(input[start+len(placeholderOpen):], placeholderClose)
	if end < 0 {
		return "", 0, positioned(errors.New(errors.ErrUnresolvedPlaceholder,
			"unterminated placeholder"), input, start)
	}

	inner := input[start+len(placeholderOpen) : start+len(placeholderOpen)+end]
	consumed := len(placeholderOpen) + end + len(placeholderClose)

	parts := strings.Split(inner, "|")
	ident := strings.TrimSpace(parts[0])
	if !isIdentifier(ident) {
		return "", 0, positioned(errors.Newf(errors.ErrUnresolvedPlaceholder,
			"invalid placeholder expression %q", strings.TrimSpace(inner)), input, start)
	}

	value, ok := vars.Get(ident)
	if !ok {
		return "", 0, positioned(errors.Newf(errors.ErrUnresolvedPlaceholder,
			"placeholder references undeclared option %q", ident), input, start)
	}

	for _, part := range parts[1:] {
		filter := strings.TrimSpace(part)
		filtered, err := applyFilter(filter, value)
		if err != nil {
			return "", 0, positioned(err.(*errors.StencilError), input, start)
		}
		value = filtered
	}

	return value, consumed, nil
}

// parseTag parses a "{% name %}" tag at offset start. For a raw tag,
// body holds the verbatim interior and advance covers everything
// through the closing endraw tag.
func parseTag(input string, start int) (name, body string, advance int, err error) {
	end := strings.Index(input[start+len(tagOpen):], tagClose)
	if end < 0 {
		return "", "", 0, positioned(errors.New(errors.ErrUnresolvedPlaceholder,
			"unterminated tag"), input, start)
	}

	name = strings.TrimSpace(input[start+len(tagOpen) : start+len(tagOpen)+end])
	advance = len(tagOpen) + end + len(tagClose)
	if name != tagRaw {
		return name, "", advance, nil
	}

	// Scan forward for the matching endraw tag. Raw spans do not nest.
	bodyStart := start + advance
	i := bodyStart
	for {
		open := strings.Index(input[i:], tagOpen)
		if open < 0 {
			return "", "", 0, positioned(errors.New(errors.ErrUnresolvedPlaceholder,
				"unterminated raw span: missing {% endraw %}"), input, start)
		}
		open += i
		close := strings.Index(input[open+len(tagOpen):], tagClose)
		if close < 0 {
			return "", "", 0, positioned(errors.New(errors.ErrUnresolvedPlaceholder,
				"unterminated raw span: missing {% endraw %}"), input, start)
		}
		inner := strings.TrimSpace(input[open+len(tagOpen) : open+len(tagOpen)+close])
		tagEnd := open + len(tagOpen) + close + len(tagClose)
		if inner == tagEndRaw {
			return tagRaw, input[bodyStart:open], tagEnd - start, nil
		}
		i = tagEnd
	}
}

// isIdentifier reports whether s is a valid option identifier
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_',
			r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// positioned annotates an error with the line containing the offset
func positioned(err *errors.StencilError, input string, offset int) error {
	line := 1 + strings.Count(input[:offset], "\n")
	return err.WithDetail("line", line).WithDetail("offset", offset)
}
