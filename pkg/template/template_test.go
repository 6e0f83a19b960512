package template

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/stencil/pkg/errors"
	"github.com/arthur-debert/stencil/pkg/filesystem"
	"github.com/arthur-debert/stencil/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Basic(t *testing.T) {
	b := testutil.NewTemplate(t, "go-service").
		WithManifest("project_name: demo\n").
		WithFile("{{ project_name }}/README.md", "# {{ project_name }}\n").
		WithFile("{{ project_name }}/cmd/main.go", "package main\n")

	tpl, err := Load(b.Root(), filesystem.NewOS())
	require.NoError(t, err)

	assert.Equal(t, "go-service", tpl.Name)
	assert.Equal(t, "{{ project_name }}", tpl.SkeletonDir)

	var paths []string
	for _, n := range tpl.Nodes {
		paths = append(paths, n.RelPath)
	}
	assert.Equal(t, []string{
		"{{ project_name }}",
		"{{ project_name }}/README.md",
		"{{ project_name }}/cmd",
		"{{ project_name }}/cmd/main.go",
	}, paths)

	assert.True(t, tpl.Nodes[0].IsDir)
	assert.Equal(t, "# {{ project_name }}\n", string(tpl.Nodes[1].Content))
}

func TestLoad_NoSkeleton(t *testing.T) {
	b := testutil.NewTemplate(t, "bare").
		WithManifest("project_name: demo\n").
		WithDir("static")

	_, err := Load(b.Root(), filesystem.NewOS())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrTemplateInvalid))
	assert.Contains(t, err.Error(), "no skeleton")
}

func TestLoad_MultipleSkeletons(t *testing.T) {
	b := testutil.NewTemplate(t, "dup").
		WithManifest("project_name: demo\n").
		WithDir("{{ project_name }}").
		WithDir("{{ other }}")

	_, err := Load(b.Root(), filesystem.NewOS())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrTemplateInvalid))
	assert.Contains(t, err.Error(), "multiple skeleton")
}

func TestLoad_MissingManifest(t *testing.T) {
	b := testutil.NewTemplate(t, "nomanifest").
		WithDir("{{ project_name }}")

	_, err := Load(b.Root(), filesystem.NewOS())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileNotFound))
}

func TestLoad_BinaryDetection(t *testing.T) {
	b := testutil.NewTemplate(t, "bin").
		WithManifest("project_name: demo\n").
		WithBinaryFile("{{ project_name }}/logo.png", []byte{0x89, 'P', 'N', 'G', 0x00, 0x01}).
		WithFile("{{ project_name }}/plain.txt", "text {{ project_name }}")

	tpl, err := Load(b.Root(), filesystem.NewOS())
	require.NoError(t, err)

	byPath := make(map[string]Node)
	for _, n := range tpl.Nodes {
		byPath[n.RelPath] = n
	}
	assert.True(t, byPath["{{ project_name }}/logo.png"].Verbatim)
	assert.False(t, byPath["{{ project_name }}/plain.txt"].Verbatim)
}

func TestLoad_SettingsPatterns(t *testing.T) {
	b := testutil.NewTemplate(t, "knobs").
		WithManifest("project_name: demo\n").
		WithSettings("ignore = [\"*.swp\"]\nverbatim = [\"*.tmpl\"]\nexecutable = [\"run.sh\"]\n").
		WithFile("{{ project_name }}/editor.swp", "junk").
		WithFile("{{ project_name }}/page.tmpl", "{{ kept }}").
		WithFile("{{ project_name }}/run.sh", "#!/bin/sh\n")

	tpl, err := Load(b.Root(), filesystem.NewOS())
	require.NoError(t, err)

	byPath := make(map[string]Node)
	for _, n := range tpl.Nodes {
		byPath[n.RelPath] = n
	}

	_, hasSwp := byPath["{{ project_name }}/editor.swp"]
	assert.False(t, hasSwp, "ignored file must not be loaded")
	assert.True(t, byPath["{{ project_name }}/page.tmpl"].Verbatim)
	assert.True(t, byPath["{{ project_name }}/run.sh"].Executable)
}

func TestLoad_BuiltinIgnore(t *testing.T) {
	b := testutil.NewTemplate(t, "gitty").
		WithManifest("project_name: demo\n").
		WithFile("{{ project_name }}/.git/config", "[core]\n").
		WithFile("{{ project_name }}/kept.txt", "ok")

	tpl, err := Load(b.Root(), filesystem.NewOS())
	require.NoError(t, err)

	for _, n := range tpl.Nodes {
		assert.NotContains(t, n.RelPath, ".git/")
	}
}

func TestLoad_MalformedSettings(t *testing.T) {
	b := testutil.NewTemplate(t, "badtoml").
		WithManifest("project_name: demo\n").
		WithSettings("ignore = not toml").
		WithDir("{{ project_name }}")

	_, err := Load(b.Root(), filesystem.NewOS())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrTemplateInvalid))
}

func TestLoad_ExecutableBitPreserved(t *testing.T) {
	b := testutil.NewTemplate(t, "exec").
		WithManifest("project_name: demo\n").
		WithExecutable("{{ project_name }}/tool.sh", "#!/bin/sh\n")

	tpl, err := Load(b.Root(), filesystem.NewOS())
	require.NoError(t, err)

	var node Node
	for _, n := range tpl.Nodes {
		if n.RelPath == "{{ project_name }}/tool.sh" {
			node = n
		}
	}
	assert.True(t, node.Executable)
}

func TestLoad_FeatureDirValidation(t *testing.T) {
	manifest := `
project_name: demo
cloud_feature: [none, http]
_features:
  cloud_feature:
    http: [ff_http]
`

	t.Run("declared feature dir exists", func(t *testing.T) {
		b := testutil.NewTemplate(t, "feat").
			WithManifest(manifest).
			WithFile("{{ project_name }}/_features/ff_http/server.go", "package server\n")

		tpl, err := Load(b.Root(), filesystem.NewOS())
		require.NoError(t, err)
		assert.NotEmpty(t, tpl.Nodes)
	})

	t.Run("declared feature dir missing", func(t *testing.T) {
		b := testutil.NewTemplate(t, "nofeat").
			WithManifest(manifest).
			WithDir("{{ project_name }}/src")

		_, err := Load(b.Root(), filesystem.NewOS())
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrTemplateInvalid))
		assert.Contains(t, err.Error(), "ff_http")
	})
}

func TestLoad_HookValidation(t *testing.T) {
	t.Run("hook exists", func(t *testing.T) {
		b := testutil.NewTemplate(t, "hooked").
			WithManifest("project_name: demo\n_hook: hooks/post_gen.sh\n").
			WithExecutable("hooks/post_gen.sh", "#!/bin/sh\n").
			WithDir("{{ project_name }}")

		tpl, err := Load(b.Root(), filesystem.NewOS())
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(tpl.Root, "hooks", "post_gen.sh"), tpl.HookPath())
	})

	t.Run("hook missing", func(t *testing.T) {
		b := testutil.NewTemplate(t, "unhooked").
			WithManifest("project_name: demo\n_hook: hooks/post_gen.sh\n").
			WithDir("{{ project_name }}")

		_, err := Load(b.Root(), filesystem.NewOS())
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrTemplateInvalid))
	})
}

func TestLoad_SymlinkRejected(t *testing.T) {
	b := testutil.NewTemplate(t, "linked").
		WithManifest("project_name: demo\n").
		WithFile("{{ project_name }}/real.txt", "data")

	link := filepath.Join(b.Root(), "{{ project_name }}", "alias.txt")
	target := filepath.Join(b.Root(), "{{ project_name }}", "real.txt")
	require.NoError(t, os.Symlink(target, link))

	_, err := Load(b.Root(), filesystem.NewOS())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrTemplateInvalid))
	assert.Contains(t, err.Error(), "symlink")
}
