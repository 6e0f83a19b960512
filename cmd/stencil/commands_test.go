package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/stencil/pkg/errors"
	"github.com/arthur-debert/stencil/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCommand executes the root command with args and captures stdout
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	// Flag variables are package globals; reset between runs
	newOutput, newAnswers = "", ""
	newSet = nil
	newDefaults, newDryRun, newForce, newNoGit = false, false, false, false
	formatFlag = "text"
	verbosity = 0

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func simpleTemplate(t *testing.T) *testutil.TemplateBuilder {
	t.Helper()
	return testutil.NewTemplate(t, "svc").
		WithManifest(`
project_name: demo
cloud_feature: [none, http]
_features:
  cloud_feature:
    http: [ff_http]
`).
		WithFile("{{ project_name }}/README.md", "# {{ project_name }}\n").
		WithFile("{{ project_name }}/_features/ff_http/http.go", "package ff\n")
}

func TestNewCommand_Defaults(t *testing.T) {
	b := simpleTemplate(t)
	out := t.TempDir()

	stdout, err := runCommand(t, "new", b.Root(),
		"--output", out, "--defaults", "--no-git")
	require.NoError(t, err)

	assert.Contains(t, stdout, filepath.Join(out, "demo"))
	testutil.AssertFileContent(t, filepath.Join(out, "demo", "README.md"), "# demo\n")
	testutil.AssertNotExists(t, filepath.Join(out, "demo", "_features"))
}

func TestNewCommand_SetFlags(t *testing.T) {
	b := simpleTemplate(t)
	out := t.TempDir()

	_, err := runCommand(t, "new", b.Root(),
		"--output", out, "--defaults", "--no-git",
		"--set", "project_name=acme",
		"--set", "cloud_feature=http")
	require.NoError(t, err)

	testutil.AssertFileContent(t, filepath.Join(out, "acme", "http.go"), "package ff\n")
}

func TestNewCommand_PositionalOverrides(t *testing.T) {
	b := simpleTemplate(t)
	out := t.TempDir()

	_, err := runCommand(t, "new", b.Root(), "project_name=positional",
		"--output", out, "--defaults", "--no-git")
	require.NoError(t, err)

	testutil.AssertFileContent(t,
		filepath.Join(out, "positional", "README.md"), "# positional\n")
}

func TestNewCommand_InvalidChoice(t *testing.T) {
	b := simpleTemplate(t)
	out := t.TempDir()

	_, err := runCommand(t, "new", b.Root(),
		"--output", out, "--defaults", "--no-git",
		"--set", "cloud_feature=ftp")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidChoice))
	testutil.AssertNotExists(t, filepath.Join(out, "demo"))
}

func TestNewCommand_MalformedSet(t *testing.T) {
	b := simpleTemplate(t)

	_, err := runCommand(t, "new", b.Root(),
		"--output", t.TempDir(), "--defaults", "--no-git",
		"--set", "not-a-pair")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestNewCommand_DryRun(t *testing.T) {
	b := simpleTemplate(t)
	out := t.TempDir()

	stdout, err := runCommand(t, "new", b.Root(),
		"--output", out, "--defaults", "--no-git", "--dry-run")
	require.NoError(t, err)

	assert.Contains(t, stdout, "would create")
	testutil.AssertNotExists(t, filepath.Join(out, "demo"))
}

func TestShowCommand(t *testing.T) {
	b := simpleTemplate(t)

	stdout, err := runCommand(t, "show", b.Root())
	require.NoError(t, err)

	assert.Contains(t, stdout, "project_name")
	assert.Contains(t, stdout, "none, http")
	assert.Contains(t, stdout, "ff_http")
}

func TestListCommand_Empty(t *testing.T) {
	t.Setenv("STENCIL_DATA_DIR", t.TempDir())

	stdout, err := runCommand(t, "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No templates registered.")
}

func TestListCommand_RegisteredTemplates(t *testing.T) {
	data := t.TempDir()
	t.Setenv("STENCIL_DATA_DIR", data)

	require.NoError(t, os.MkdirAll(filepath.Join(data, "templates", "go-service"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(data, "templates", "py-service"), 0755))

	stdout, err := runCommand(t, "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "go-service")
	assert.Contains(t, stdout, "py-service")
}

func TestVersionCommand(t *testing.T) {
	stdout, err := runCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "stencil version")
}

func TestParseSetFlags(t *testing.T) {
	got, err := parseSetFlags([]string{"a=1", "b=x=y"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "b": "x=y"}, got)

	_, err = parseSetFlags([]string{"=v"})
	assert.Error(t, err)
}
