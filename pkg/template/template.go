// Package template loads a template from disk into an in-memory tree.
//
// A template root holds the manifest (stencil.yaml), an optional
// settings file (.stencil.toml), optional hook scripts, and exactly one
// skeleton directory whose name contains a placeholder. The skeleton is
// walked eagerly: generation never reads the template again after
// loading, so a failed run cannot be half-read.
package template

import (
	"bytes"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/stencil/pkg/errors"
	"github.com/arthur-debert/stencil/pkg/logging"
	"github.com/arthur-debert/stencil/pkg/manifest"
	"github.com/arthur-debert/stencil/pkg/paths"
	"github.com/arthur-debert/stencil/pkg/types"
)

// Node is one entry of the loaded skeleton tree
type Node struct {
	// RelPath is the slash-separated path relative to the template
	// root. The first segment is the skeleton directory name.
	RelPath string

	// IsDir marks directory nodes. Directory nodes carry no content.
	IsDir bool

	// Content holds the file bytes for file nodes
	Content []byte

	// Verbatim files are copied without placeholder substitution
	Verbatim bool

	// Executable files receive the executable mode in the output
	Executable bool
}

// Template is a fully loaded, validated template
type Template struct {
	// Root is the absolute template root directory
	Root string

	// Name is the base name of the template root
	Name string

	// Manifest is the parsed option declaration
	Manifest *manifest.Manifest

	// Settings are the per-template knobs
	Settings *Settings

	// SkeletonDir is the name of the skeleton directory. It contains
	// at least one placeholder.
	SkeletonDir string

	// Nodes is the skeleton tree in depth-first walk order, parents
	// before children. The skeleton root itself is the first node.
	Nodes []Node
}

// binarySniffLen bounds how many leading bytes are checked for NUL
const binarySniffLen = 8000

// Load reads, parses and validates the template at root
func Load(root string, fsys types.FS) (*Template, error) {
	logger := logging.GetLogger("template")

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to resolve template root %s", root)
	}

	m, err := manifest.Load(paths.ManifestPath(absRoot), fsys)
	if err != nil {
		return nil, err
	}

	settings, err := loadSettings(absRoot, fsys)
	if err != nil {
		return nil, err
	}

	skeleton, err := findSkeleton(absRoot, fsys)
	if err != nil {
		return nil, err
	}

	t := &Template{
		Root:        absRoot,
		Name:        filepath.Base(absRoot),
		Manifest:    m,
		Settings:    settings,
		SkeletonDir: skeleton,
	}

	if err := t.walk(skeleton, fsys); err != nil {
		return nil, err
	}

	if err := t.validate(fsys); err != nil {
		return nil, err
	}

	logger.Debug().
		Str("root", absRoot).
		Str("skeleton", skeleton).
		Int("nodes", len(t.Nodes)).
		Msg("Template loaded")

	return t, nil
}

// findSkeleton locates the single top-level directory whose name
// contains a placeholder
func findSkeleton(root string, fsys types.FS) (string, error) {
	entries, err := fsys.ReadDir(root)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to read template root %s", root)
	}

	var candidates []string
	for _, e := range entries {
		if e.IsDir() && strings.Contains(e.Name(), "{{") {
			candidates = append(candidates, e.Name())
		}
	}

	switch len(candidates) {
	case 1:
		return candidates[0], nil
	case 0:
		return "", errors.Newf(errors.ErrTemplateInvalid,
			"template %s has no skeleton directory (a directory whose name contains a placeholder)", root)
	default:
		return "", errors.Newf(errors.ErrTemplateInvalid,
			"template %s has multiple skeleton directories: %v", root, candidates)
	}
}

// walk loads the skeleton tree depth first, parents before children
func (t *Template) walk(rel string, fsys types.FS) error {
	abs := filepath.Join(t.Root, filepath.FromSlash(rel))

	info, err := fsys.Lstat(abs)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to stat %s", abs)
	}

	if info.Mode()&fs.ModeSymlink != 0 {
		return errors.Newf(errors.ErrTemplateInvalid,
			"template entry %s is a symlink, which templates may not contain", rel)
	}

	if !info.IsDir() {
		content, err := fsys.ReadFile(abs)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", abs)
		}
		t.Nodes = append(t.Nodes, Node{
			RelPath:    rel,
			Content:    content,
			Verbatim:   t.Settings.verbatim(skeletonRel(rel)) || isBinary(content),
			Executable: isExecutableMode(info.Mode()) || t.Settings.executable(skeletonRel(rel)),
		})
		return nil
	}

	t.Nodes = append(t.Nodes, Node{RelPath: rel, IsDir: true})

	entries, err := fsys.ReadDir(abs)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to read directory %s", abs)
	}
	for _, e := range entries {
		child := path.Join(rel, e.Name())
		if t.Settings.ignored(skeletonRel(child)) {
			continue
		}
		if err := t.walk(child, fsys); err != nil {
			return err
		}
	}
	return nil
}

// skeletonRel strips the skeleton directory segment so settings
// patterns match paths as template authors see them
func skeletonRel(rel string) string {
	if i := strings.IndexByte(rel, '/'); i >= 0 {
		return rel[i+1:]
	}
	return rel
}

// validate checks the cross-references between manifest and tree
func (t *Template) validate(fsys types.FS) error {
	// Every declared feature directory must exist in the skeleton
	nodeSet := make(map[string]bool, len(t.Nodes))
	for _, n := range t.Nodes {
		if n.IsDir {
			nodeSet[n.RelPath] = true
		}
	}
	for _, dir := range t.Manifest.FeatureDirs() {
		want := path.Join(t.SkeletonDir, paths.FeaturesDir, dir)
		if !nodeSet[want] {
			return errors.Newf(errors.ErrTemplateInvalid,
				"manifest references feature directory %q but %s does not exist", dir, want)
		}
	}

	// The hook script must exist and live under the template root
	if t.Manifest.Hook != "" {
		hookPath := filepath.Join(t.Root, filepath.FromSlash(t.Manifest.Hook))
		if !paths.IsPathWithin(hookPath, t.Root) {
			return errors.Newf(errors.ErrTemplateInvalid,
				"hook path %q escapes the template root", t.Manifest.Hook)
		}
		info, err := fsys.Stat(hookPath)
		if err != nil || info.IsDir() {
			return errors.Newf(errors.ErrTemplateInvalid,
				"hook script %q does not exist in the template", t.Manifest.Hook)
		}
	}

	return nil
}

// HookPath returns the absolute hook script path, empty when the
// template declares no hook
func (t *Template) HookPath() string {
	if t.Manifest.Hook == "" {
		return ""
	}
	return filepath.Join(t.Root, filepath.FromSlash(t.Manifest.Hook))
}

// isBinary reports whether content looks like binary data. Files with a
// NUL byte near the start are copied verbatim.
func isBinary(content []byte) bool {
	sniff := content
	if len(sniff) > binarySniffLen {
		sniff = sniff[:binarySniffLen]
	}
	return bytes.IndexByte(sniff, 0) >= 0
}
