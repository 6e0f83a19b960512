// Package testutil provides fixture builders and filesystem assertions
// shared by the test suites.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TemplateBuilder assembles an on-disk template fixture inside a test
// temp directory
type TemplateBuilder struct {
	t    *testing.T
	root string
}

// NewTemplate creates an empty template rooted in a fresh temp dir
func NewTemplate(t *testing.T, name string) *TemplateBuilder {
	t.Helper()
	root := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.MkdirAll(root, 0755))
	return &TemplateBuilder{t: t, root: root}
}

// Root returns the absolute template root
func (b *TemplateBuilder) Root() string {
	return b.root
}

// WithManifest writes stencil.yaml at the template root
func (b *TemplateBuilder) WithManifest(content string) *TemplateBuilder {
	return b.WithFile("stencil.yaml", content)
}

// WithSettings writes .stencil.toml at the template root
func (b *TemplateBuilder) WithSettings(content string) *TemplateBuilder {
	return b.WithFile(".stencil.toml", content)
}

// WithFile writes a file, creating parent directories as needed
func (b *TemplateBuilder) WithFile(rel, content string) *TemplateBuilder {
	b.t.Helper()
	target := filepath.Join(b.root, filepath.FromSlash(rel))
	require.NoError(b.t, os.MkdirAll(filepath.Dir(target), 0755))
	require.NoError(b.t, os.WriteFile(target, []byte(content), 0644))
	return b
}

// WithBinaryFile writes raw bytes, creating parent directories as needed
func (b *TemplateBuilder) WithBinaryFile(rel string, content []byte) *TemplateBuilder {
	b.t.Helper()
	target := filepath.Join(b.root, filepath.FromSlash(rel))
	require.NoError(b.t, os.MkdirAll(filepath.Dir(target), 0755))
	require.NoError(b.t, os.WriteFile(target, content, 0644))
	return b
}

// WithExecutable writes a file with the executable bit set
func (b *TemplateBuilder) WithExecutable(rel, content string) *TemplateBuilder {
	b.t.Helper()
	target := filepath.Join(b.root, filepath.FromSlash(rel))
	require.NoError(b.t, os.MkdirAll(filepath.Dir(target), 0755))
	require.NoError(b.t, os.WriteFile(target, []byte(content), 0755))
	return b
}

// WithDir creates an empty directory
func (b *TemplateBuilder) WithDir(rel string) *TemplateBuilder {
	b.t.Helper()
	require.NoError(b.t, os.MkdirAll(filepath.Join(b.root, filepath.FromSlash(rel)), 0755))
	return b
}

// AssertFileContent asserts a file exists with exactly the given content
func AssertFileContent(t *testing.T, path, want string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err, "expected file %s to exist", path)
	assert.Equal(t, want, string(data), "content of %s", path)
}

// AssertDirExists asserts a directory exists
func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err, "expected directory %s to exist", path)
	assert.True(t, info.IsDir(), "%s is not a directory", path)
}

// AssertNotExists asserts nothing exists at the path
func AssertNotExists(t *testing.T, path string) {
	t.Helper()
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "expected %s to be absent", path)
}

// AssertExecutable asserts a file exists and carries an execute bit
func AssertExecutable(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err, "expected file %s to exist", path)
	assert.NotZero(t, info.Mode().Perm()&0111, "%s is not executable", path)
}
