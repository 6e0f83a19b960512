// Package config loads stencil's own configuration. Configuration is
// layered: embedded defaults, then the user config file, then
// STENCIL_* environment variables. The result is an immutable value
// object constructed once at the start of a run.
package config

import (
	"os"
	"strings"

	"github.com/arthur-debert/stencil/pkg/errors"
	"github.com/arthur-debert/stencil/pkg/paths"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Git controls version-control initialization of generated projects
type Git struct {
	Init    bool   `koanf:"init"`
	Commit  bool   `koanf:"commit"`
	Message string `koanf:"message"`
}

// Prompts controls interactive prompt behavior
type Prompts struct {
	Plain bool `koanf:"plain"`
}

// Files holds default permission bits for generated entries
type Files struct {
	DirMode        uint32 `koanf:"dir_mode"`
	FileMode       uint32 `koanf:"file_mode"`
	ExecutableMode uint32 `koanf:"executable_mode"`
}

// Hooks controls post-generation hook execution
type Hooks struct {
	Disabled       bool `koanf:"disabled"`
	TimeoutSeconds int  `koanf:"timeout_seconds"`
}

// Config is the resolved stencil configuration
type Config struct {
	Git     Git     `koanf:"git"`
	Prompts Prompts `koanf:"prompts"`
	Files   Files   `koanf:"files"`
	Hooks   Hooks   `koanf:"hooks"`
}

// envPrefix is the prefix for environment variable overrides
const envPrefix = "STENCIL_"

// Load resolves the configuration from defaults, the user config file
// and the environment.
func Load(p *paths.Paths) (*Config, error) {
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load default config")
	}

	// 2. User config file, when present
	cfgPath := p.ConfigFilePath()
	if _, err := os.Stat(cfgPath); err == nil {
		if err := k.Load(file.Provider(cfgPath), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse,
				"failed to load user config from %s", cfgPath)
		}
	}

	// 3. Environment overrides. The first underscore after the prefix
	// separates the section from the key: STENCIL_GIT_INIT -> git.init.
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		return strings.Replace(key, "_", ".", 1)
	}), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment overrides")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal config")
	}

	return &cfg, nil
}

// Default returns the embedded default configuration
func Default() *Config {
	k := koanf.New(".")
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		// The embedded defaults are compiled in; a parse failure is a
		// build defect.
		panic(err)
	}
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		panic(err)
	}
	return &cfg
}
