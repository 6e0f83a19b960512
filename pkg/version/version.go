// Package version holds the build version, injected at link time.
package version

import (
	"strconv"
	"strings"
)

// Version is the stencil version, overridden via ldflags on release
// builds. Development builds report "dev" and satisfy any minimum
// version a template asks for.
var Version = "dev"

// AtLeast reports whether the running version satisfies the given
// minimum. Non-numeric versions (dev builds) always satisfy.
func AtLeast(minimum string) bool {
	current, ok := parse(Version)
	if !ok {
		return true
	}
	wanted, ok := parse(minimum)
	if !ok {
		return true
	}

	for i := 0; i < len(wanted); i++ {
		c := 0
		if i < len(current) {
			c = current[i]
		}
		if c != wanted[i] {
			return c > wanted[i]
		}
	}
	return true
}

// parse splits a dotted numeric version, tolerating a leading v and a
// pre-release suffix
func parse(v string) ([]int, bool) {
	v = strings.TrimPrefix(v, "v")
	if i := strings.IndexAny(v, "-+"); i >= 0 {
		v = v[:i]
	}
	parts := strings.Split(v, ".")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, false
		}
		out = append(out, n)
	}
	return out, len(out) > 0
}
