// Package paths provides centralized path handling for stencil.
// It implements XDG Base Directory specification compliance and
// provides a consistent API for all path operations in the codebase.
package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/stencil/pkg/errors"
)

// Environment variable names
const (
	// EnvStencilDataDir overrides the XDG data directory for stencil
	EnvStencilDataDir = "STENCIL_DATA_DIR"

	// EnvStencilConfigDir overrides the XDG config directory for stencil
	EnvStencilConfigDir = "STENCIL_CONFIG_DIR"
)

// Well-known file and directory names.
// These define stencil's on-disk contract with templates and are not
// user-configurable.
const (
	// StencilDirName is the directory name for stencil-specific files
	StencilDirName = "stencil"

	// ManifestFile is the name of the template manifest
	ManifestFile = "stencil.yaml"

	// SettingsFile is the name of the optional template settings file
	SettingsFile = ".stencil.toml"

	// TemplatesDir is the subdirectory of the data dir holding
	// registered templates
	TemplatesDir = "templates"

	// HooksDir is the template subdirectory holding hook scripts
	HooksDir = "hooks"

	// FeaturesDir is the skeleton subdirectory holding optional
	// feature trees
	FeaturesDir = "_features"

	// ConfigFile is the name of the user configuration file
	ConfigFile = "stencil.toml"
)

// Paths provides centralized path management for stencil
type Paths struct {
	xdgData   string
	xdgConfig string
	xdgState  string
}

// New creates a new Paths instance
func New() *Paths {
	p := &Paths{
		xdgData:   filepath.Join(xdg.DataHome, StencilDirName),
		xdgConfig: filepath.Join(xdg.ConfigHome, StencilDirName),
		xdgState:  filepath.Join(xdg.StateHome, StencilDirName),
	}

	if dir := os.Getenv(EnvStencilDataDir); dir != "" {
		p.xdgData = dir
	}
	if dir := os.Getenv(EnvStencilConfigDir); dir != "" {
		p.xdgConfig = dir
	}

	return p
}

// DataDir returns the stencil data directory
func (p *Paths) DataDir() string {
	return p.xdgData
}

// ConfigDir returns the stencil config directory
func (p *Paths) ConfigDir() string {
	return p.xdgConfig
}

// StateDir returns the stencil state directory
func (p *Paths) StateDir() string {
	return p.xdgState
}

// ConfigFilePath returns the path of the user configuration file
func (p *Paths) ConfigFilePath() string {
	return filepath.Join(p.xdgConfig, ConfigFile)
}

// TemplateStoreDir returns the directory holding registered templates
func (p *Paths) TemplateStoreDir() string {
	return filepath.Join(p.xdgData, TemplatesDir)
}

// ResolveTemplate resolves a template argument to an absolute template
// root. The argument is tried as a filesystem path first; if nothing
// exists there and the argument is a bare name, the registered
// template store is consulted.
func (p *Paths) ResolveTemplate(arg string) (string, error) {
	if arg == "" {
		return "", errors.New(errors.ErrInvalidInput, "template argument is empty")
	}

	candidate := expandHome(arg)
	if info, err := os.Stat(candidate); err == nil && info.IsDir() {
		return filepath.Abs(candidate)
	}

	// Bare names (no separator) may refer to a registered template
	if !strings.ContainsRune(arg, os.PathSeparator) {
		stored := filepath.Join(p.TemplateStoreDir(), arg)
		if info, err := os.Stat(stored); err == nil && info.IsDir() {
			return stored, nil
		}
	}

	return "", errors.Newf(errors.ErrNotFound,
		"template not found: %s (looked for a directory and in %s)", arg, p.TemplateStoreDir())
}

// ManifestPath returns the manifest path inside a template root
func ManifestPath(templateRoot string) string {
	return filepath.Join(templateRoot, ManifestFile)
}

// SettingsPath returns the settings file path inside a template root
func SettingsPath(templateRoot string) string {
	return filepath.Join(templateRoot, SettingsFile)
}

// expandHome expands a leading ~ to the user's home directory
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}

// IsPathWithin checks if a path is within a parent directory
func IsPathWithin(path, parent string) bool {
	path = filepath.Clean(path)
	parent = filepath.Clean(parent)

	rel, err := filepath.Rel(parent, path)
	if err != nil {
		return false
	}

	return rel != ".." && !strings.HasPrefix(rel, "../") && !filepath.IsAbs(rel)
}
