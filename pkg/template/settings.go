package template

import (
	"io/fs"
	"path"

	"github.com/arthur-debert/stencil/pkg/errors"
	"github.com/arthur-debert/stencil/pkg/paths"
	"github.com/arthur-debert/stencil/pkg/types"
	"github.com/pelletier/go-toml/v2"
)

// Settings are per-template knobs read from the optional .stencil.toml
// at the template root. All fields default to empty.
type Settings struct {
	// Ignore lists glob patterns of skeleton entries that are never
	// copied into generated projects. Patterns match the base name or
	// the skeleton-relative path.
	Ignore []string `toml:"ignore"`

	// Verbatim lists glob patterns of files copied byte for byte,
	// without placeholder substitution.
	Verbatim []string `toml:"verbatim"`

	// Executable lists glob patterns of files that receive the
	// executable file mode regardless of their mode in the template.
	Executable []string `toml:"executable"`
}

// Entries stencil never copies, independent of template settings
var builtinIgnore = []string{".git", ".DS_Store"}

// loadSettings reads the settings file if present. A missing file
// yields zero settings; a malformed one fails the template.
func loadSettings(templateRoot string, fsys types.FS) (*Settings, error) {
	settingsPath := paths.SettingsPath(templateRoot)

	data, err := fsys.ReadFile(settingsPath)
	if err != nil {
		return &Settings{}, nil
	}

	var s Settings
	if err := toml.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrapf(err, errors.ErrTemplateInvalid,
			"settings file %s is not valid TOML", settingsPath)
	}

	for _, pattern := range append(append(append([]string{}, s.Ignore...), s.Verbatim...), s.Executable...) {
		if _, err := path.Match(pattern, ""); err != nil {
			return nil, errors.Newf(errors.ErrTemplateInvalid,
				"settings file %s has malformed pattern %q", settingsPath, pattern)
		}
	}

	return &s, nil
}

// matches reports whether relPath matches any pattern, testing both the
// full skeleton-relative path and the base name. Patterns were
// validated at load time.
func matches(patterns []string, relPath string) bool {
	base := path.Base(relPath)
	for _, pattern := range patterns {
		if ok, _ := path.Match(pattern, relPath); ok {
			return true
		}
		if ok, _ := path.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

// ignored reports whether a skeleton entry is excluded from copying
func (s *Settings) ignored(relPath string) bool {
	return matches(builtinIgnore, relPath) || matches(s.Ignore, relPath)
}

// verbatim reports whether a file skips placeholder substitution
func (s *Settings) verbatim(relPath string) bool {
	return matches(s.Verbatim, relPath)
}

// executable reports whether a file is forced executable
func (s *Settings) executable(relPath string) bool {
	return matches(s.Executable, relPath)
}

// isExecutableMode reports whether a source file mode carries any
// execute bit
func isExecutableMode(mode fs.FileMode) bool {
	return mode.Perm()&0111 != 0
}
