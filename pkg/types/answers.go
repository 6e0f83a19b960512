package types

import (
	"fmt"
	"sort"
	"strings"
)

// AnswerSet is the fully resolved mapping of option name to chosen
// value for one generation run. It is built once by the collector and
// read-only afterwards.
type AnswerSet struct {
	values map[string]string
	order  []string
}

// NewAnswerSet creates an empty answer set
func NewAnswerSet() *AnswerSet {
	return &AnswerSet{values: make(map[string]string)}
}

// Set records a resolved value. Setting an existing key overwrites it
// without changing its position.
func (a *AnswerSet) Set(name, value string) {
	if _, ok := a.values[name]; !ok {
		a.order = append(a.order, name)
	}
	a.values[name] = value
}

// Get returns the resolved value for an option name
func (a *AnswerSet) Get(name string) (string, bool) {
	v, ok := a.values[name]
	return v, ok
}

// Has reports whether the option has a resolved value
func (a *AnswerSet) Has(name string) bool {
	_, ok := a.values[name]
	return ok
}

// Len returns the number of resolved answers
func (a *AnswerSet) Len() int {
	return len(a.values)
}

// Names returns option names in resolution order
func (a *AnswerSet) Names() []string {
	out := make([]string, len(a.order))
	copy(out, a.order)
	return out
}

// Map returns a copy of the underlying values
func (a *AnswerSet) Map() map[string]string {
	out := make(map[string]string, len(a.values))
	for k, v := range a.values {
		out[k] = v
	}
	return out
}

// Environ renders the answer set as environment variable assignments
// of the form STENCIL_<UPPER_NAME>=<value>, sorted by name. This is
// the contract the post-generation hook script sees.
func (a *AnswerSet) Environ() []string {
	out := make([]string, 0, len(a.values))
	for name, value := range a.values {
		out = append(out, fmt.Sprintf("STENCIL_%s=%s", strings.ToUpper(name), value))
	}
	sort.Strings(out)
	return out
}
