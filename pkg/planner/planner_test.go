package planner

import (
	"path/filepath"
	"testing"

	"github.com/arthur-debert/stencil/pkg/config"
	"github.com/arthur-debert/stencil/pkg/errors"
	"github.com/arthur-debert/stencil/pkg/filesystem"
	"github.com/arthur-debert/stencil/pkg/template"
	"github.com/arthur-debert/stencil/pkg/testutil"
	"github.com/arthur-debert/stencil/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTemplate(t *testing.T, b *testutil.TemplateBuilder) *template.Template {
	t.Helper()
	tpl, err := template.Load(b.Root(), filesystem.NewOS())
	require.NoError(t, err)
	return tpl
}

func answersOf(pairs ...string) *types.AnswerSet {
	set := types.NewAnswerSet()
	for i := 0; i < len(pairs); i += 2 {
		set.Set(pairs[i], pairs[i+1])
	}
	return set
}

func defaultFiles() config.Files {
	return config.Default().Files
}

func TestBuild_RendersPathsAndContent(t *testing.T) {
	b := testutil.NewTemplate(t, "svc").
		WithManifest("project_name: demo\n").
		WithFile("{{ project_name }}/README.md", "# {{ project_name }}\n").
		WithFile("{{ project_name }}/{{ project_name }}.conf", "name={{ project_name }}\n")

	tpl := loadTemplate(t, b)
	out := t.TempDir()

	plan, err := Build(tpl, answersOf("project_name", "acme"), out, defaultFiles())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(out, "acme"), plan.OutputRoot)
	require.Len(t, plan.Operations, 3)

	assert.Equal(t, types.OperationCreateDir, plan.Operations[0].Type)
	assert.Equal(t, filepath.Join(out, "acme"), plan.Operations[0].Target)

	assert.Equal(t, types.OperationWriteFile, plan.Operations[1].Type)
	assert.Equal(t, filepath.Join(out, "acme", "README.md"), plan.Operations[1].Target)
	assert.Equal(t, "# acme\n", string(plan.Operations[1].Content))

	assert.Equal(t, filepath.Join(out, "acme", "acme.conf"), plan.Operations[2].Target)
	assert.Equal(t, "name=acme\n", string(plan.Operations[2].Content))
}

func TestBuild_ParentsBeforeChildren(t *testing.T) {
	b := testutil.NewTemplate(t, "deep").
		WithManifest("project_name: demo\n").
		WithFile("{{ project_name }}/a/b/c.txt", "x")

	tpl := loadTemplate(t, b)
	plan, err := Build(tpl, answersOf("project_name", "acme"), t.TempDir(), defaultFiles())
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, op := range plan.Operations {
		parent := filepath.Dir(op.Target)
		if parent != filepath.Dir(plan.OutputRoot) {
			assert.True(t, seen[parent], "parent of %s not planned first", op.Target)
		}
		seen[op.Target] = true
	}
}

func TestBuild_VerbatimContentUntouched(t *testing.T) {
	b := testutil.NewTemplate(t, "verb").
		WithManifest("project_name: demo\n").
		WithSettings("verbatim = [\"*.tmpl\"]\n").
		WithFile("{{ project_name }}/web.tmpl", "{{ runtime_var }}")

	tpl := loadTemplate(t, b)
	plan, err := Build(tpl, answersOf("project_name", "acme"), t.TempDir(), defaultFiles())
	require.NoError(t, err)

	assert.Equal(t, "{{ runtime_var }}", string(plan.Operations[1].Content))
}

func TestBuild_UndeclaredPlaceholderInContent(t *testing.T) {
	b := testutil.NewTemplate(t, "bad").
		WithManifest("project_name: demo\n").
		WithFile("{{ project_name }}/cfg.ini", "x={{ undeclared_option }}\n")

	tpl := loadTemplate(t, b)
	_, err := Build(tpl, answersOf("project_name", "acme"), t.TempDir(), defaultFiles())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrUnresolvedPlaceholder))

	details := errors.GetErrorDetails(err)
	require.NotNil(t, details)
	assert.Equal(t, "{{ project_name }}/cfg.ini", details["file"])
}

func TestBuild_UndeclaredPlaceholderInPath(t *testing.T) {
	b := testutil.NewTemplate(t, "badpath").
		WithManifest("project_name: demo\n").
		WithFile("{{ project_name }}/{{ undeclared }}.go", "package x\n")

	tpl := loadTemplate(t, b)
	_, err := Build(tpl, answersOf("project_name", "acme"), t.TempDir(), defaultFiles())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrUnresolvedPlaceholder))
}

func TestBuild_PathFilter(t *testing.T) {
	b := testutil.NewTemplate(t, "filtered").
		WithManifest("project_name: demo\n").
		WithFile("{{ project_name | slug }}/src/{{ project_name | snake }}.go", "package x\n")

	tpl := loadTemplate(t, b)
	out := t.TempDir()
	plan, err := Build(tpl, answersOf("project_name", "My App"), out, defaultFiles())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(out, "my-app"), plan.OutputRoot)
	assert.Equal(t, filepath.Join(out, "my-app", "src", "my_app.go"), plan.Operations[2].Target)
}

func TestBuild_EmptyRenderedSegment(t *testing.T) {
	b := testutil.NewTemplate(t, "empty").
		WithManifest("project_name: demo\n").
		WithFile("{{ project_name }}/{{ project_name | slug }}/x.txt", "x")

	tpl := loadTemplate(t, b)
	// slug of "---" collapses to the empty string
	_, err := Build(tpl, answersOf("project_name", "---"), t.TempDir(), defaultFiles())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	assert.Contains(t, err.Error(), "empty name")
}

func TestBuild_SeparatorSmuggledByValue(t *testing.T) {
	b := testutil.NewTemplate(t, "smuggle").
		WithManifest("project_name: demo\n").
		WithDir("{{ project_name }}")

	tpl := loadTemplate(t, b)
	_, err := Build(tpl, answersOf("project_name", "../escape"), t.TempDir(), defaultFiles())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrUnresolvedPlaceholder))
}

func TestBuild_RenderedPathCollision(t *testing.T) {
	b := testutil.NewTemplate(t, "clash").
		WithManifest("a: x\nb: x\n").
		WithFile("{{ a }}/{{ a }}.txt", "1").
		WithFile("{{ a }}/{{ b }}.txt", "2")

	tpl := loadTemplate(t, b)
	_, err := Build(tpl, answersOf("a", "same", "b", "same"), t.TempDir(), defaultFiles())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	assert.Contains(t, err.Error(), "render to")
}

func TestBuild_ExecutableMode(t *testing.T) {
	b := testutil.NewTemplate(t, "exec").
		WithManifest("project_name: demo\n").
		WithExecutable("{{ project_name }}/run.sh", "#!/bin/sh\n")

	tpl := loadTemplate(t, b)
	plan, err := Build(tpl, answersOf("project_name", "acme"), t.TempDir(), defaultFiles())
	require.NoError(t, err)

	files := defaultFiles()
	require.NotNil(t, plan.Operations[1].Mode)
	assert.Equal(t, files.ExecutableMode, *plan.Operations[1].Mode)
}
