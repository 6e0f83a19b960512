package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/stencil/pkg/errors"
	"github.com/arthur-debert/stencil/pkg/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_BasicOptions(t *testing.T) {
	data := []byte(`
project_name: demo
cloud_feature:
  - none
  - http
  - pubsub
author: ""
`)

	m, err := Parse(data)
	require.NoError(t, err)

	require.Len(t, m.Options, 3)

	assert.Equal(t, "project_name", m.Options[0].Name)
	assert.Equal(t, KindText, m.Options[0].Kind)
	assert.Equal(t, "demo", m.Options[0].Default)

	assert.Equal(t, "cloud_feature", m.Options[1].Name)
	assert.Equal(t, KindChoice, m.Options[1].Kind)
	assert.Equal(t, "none", m.Options[1].Default)
	assert.Equal(t, []string{"none", "http", "pubsub"}, m.Options[1].Choices)

	assert.Equal(t, "author", m.Options[2].Name)
	assert.Equal(t, "", m.Options[2].Default)
}

func TestParse_DeclarationOrderPreserved(t *testing.T) {
	data := []byte(`
zeta: "1"
alpha: "2"
mid: "3"
`)

	m, err := Parse(data)
	require.NoError(t, err)

	var names []string
	for _, o := range m.Options {
		names = append(names, o.Name)
	}
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, names)
}

func TestParse_Directives(t *testing.T) {
	data := []byte(`
project_name: demo
cloud_feature: [none, http, pubsub]
_derived:
  pkg_name: "{{ project_name | snake }}"
_features:
  cloud_feature:
    http: [ff_http]
    pubsub: [ff_pubsub]
_hook: hooks/post_gen.sh
_min_version: "0.3.0"
`)

	m, err := Parse(data)
	require.NoError(t, err)

	require.Len(t, m.Derived, 1)
	assert.Equal(t, "pkg_name", m.Derived[0].Name)
	assert.Equal(t, "{{ project_name | snake }}", m.Derived[0].Expr)

	group, ok := m.Features["cloud_feature"]
	require.True(t, ok)
	assert.Equal(t, []string{"ff_http"}, group["http"])
	assert.Equal(t, []string{"ff_pubsub"}, group["pubsub"])
	assert.Nil(t, group["none"])

	assert.Equal(t, "hooks/post_gen.sh", m.Hook)
	assert.Equal(t, "0.3.0", m.MinVersion)

	// Directives are not options
	_, isOption := m.Option("_features")
	assert.False(t, isOption)
	assert.Len(t, m.Options, 2)
}

func TestParse_FeatureDirs(t *testing.T) {
	data := []byte(`
cloud_feature: [none, http, pubsub]
_features:
  cloud_feature:
    http: [ff_http, ff_shared]
    pubsub: [ff_pubsub, ff_shared]
`)

	m, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"ff_http", "ff_shared", "ff_pubsub"}, m.FeatureDirs())
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not yaml", "\t{not yaml"},
		{"empty document", ""},
		{"not a mapping", "- a\n- b\n"},
		{"duplicate key", "a: \"1\"\na: \"2\"\n"},
		{"empty choice list", "feature: []\n"},
		{"duplicate choice", "feature: [a, a]\n"},
		{"non-scalar choice", "feature:\n  - [nested]\n"},
		{"mapping option value", "feature:\n  nested: map\n"},
		{"invalid identifier", "\"bad-name\": x\n"},
		{"identifier starts with digit", "\"9lives\": x\n"},
		{"unknown directive", "_bogus: x\n"},
		{"hook not scalar", "_hook: [a]\n"},
		{"derived not mapping", "_derived: [a]\n"},
		{"derived collides with option", "a: x\n_derived:\n  a: \"{{ a }}\"\n"},
		{"features undeclared selector", "_features:\n  nope:\n    x: [d]\n"},
		{"features non-enumerated selector", "name: x\n_features:\n  name:\n    x: [d]\n"},
		{"features unknown choice", "f: [a, b]\n_features:\n  f:\n    c: [d]\n"},
		{"feature dir absolute", "f: [a]\n_features:\n  f:\n    a: [/abs]\n"},
		{"feature dir escapes", "f: [a]\n_features:\n  f:\n    a: [\"../up\"]\n"},
		{"feature dir nested", "f: [a]\n_features:\n  f:\n    a: [\"x/y\"]\n"},
		{"hook escapes template", "_hook: \"../outside.sh\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrManifestMalformed),
				"expected MANIFEST_MALFORMED, got %v", err)
		})
	}
}

func TestParse_ScalarKindsBecomeStrings(t *testing.T) {
	data := []byte(`
use_docker: true
port: 8080
`)

	m, err := Parse(data)
	require.NoError(t, err)

	opt, ok := m.Option("use_docker")
	require.True(t, ok)
	assert.Equal(t, "true", opt.Default)

	opt, ok = m.Option("port")
	require.True(t, ok)
	assert.Equal(t, "8080", opt.Default)
}

func TestOption_IsValidChoice(t *testing.T) {
	choice := Option{Name: "f", Kind: KindChoice, Choices: []string{"none", "http"}}
	assert.True(t, choice.IsValidChoice("http"))
	assert.False(t, choice.IsValidChoice("ftp"))

	text := Option{Name: "t", Kind: KindText}
	assert.True(t, text.IsValidChoice("anything"))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	manifestPath := filepath.Join(dir, "stencil.yaml")
	require.NoError(t, os.WriteFile(manifestPath, []byte("project_name: demo\n"), 0644))

	m, err := Load(manifestPath, filesystem.NewOS())
	require.NoError(t, err)
	assert.Len(t, m.Options, 1)

	_, err = Load(filepath.Join(dir, "missing.yaml"), filesystem.NewOS())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileNotFound))
}
