// Package answers resolves one value per manifest option, either from
// non-interactive overrides or by prompting the user. The resulting
// AnswerSet is total over the manifest and read-only for the rest of
// the run.
package answers

import (
	"github.com/arthur-debert/stencil/pkg/engine"
	"github.com/arthur-debert/stencil/pkg/errors"
	"github.com/arthur-debert/stencil/pkg/logging"
	"github.com/arthur-debert/stencil/pkg/manifest"
	"github.com/arthur-debert/stencil/pkg/types"
	"gopkg.in/yaml.v3"
)

// Options controls answer collection
type Options struct {
	// Overrides supplies values without prompting. Keys must name
	// declared options.
	Overrides map[string]string

	// UseDefaults accepts every default without prompting
	UseDefaults bool

	// Interactive enables prompting for options not covered by
	// overrides. When false, missing answers take defaults.
	Interactive bool

	// Prompter performs the actual prompting. Defaults to the pterm
	// prompter; tests substitute their own.
	Prompter Prompter
}

// Collect produces a complete answer set covering every option of the
// manifest, plus its derived variables.
func Collect(m *manifest.Manifest, opts Options) (*types.AnswerSet, error) {
	logger := logging.GetLogger("answers")

	if err := validateOverrides(m, opts.Overrides); err != nil {
		return nil, err
	}

	prompter := opts.Prompter
	if prompter == nil {
		prompter = NewTerminalPrompter()
	}

	answers := types.NewAnswerSet()
	for i := range m.Options {
		opt := &m.Options[i]

		// Defaults may reference earlier answers
		def, err := engine.Render(opt.Default, answers)
		if err != nil {
			return nil, err
		}

		value, supplied := opts.Overrides[opt.Name]
		switch {
		case supplied:
			// Validated above
		case opts.UseDefaults || !opts.Interactive:
			value = def
		default:
			value, err = prompt(prompter, opt, def)
			if err != nil {
				return nil, err
			}
		}

		if !opt.IsValidChoice(value) {
			return nil, errors.Newf(errors.ErrInvalidChoice,
				"value %q is not a declared choice for %q (choices: %v)",
				value, opt.Name, opt.Choices)
		}

		answers.Set(opt.Name, value)
	}

	// Derived variables are computed, never prompted
	for _, d := range m.Derived {
		value, err := engine.Render(d.Expr, answers)
		if err != nil {
			return nil, err
		}
		answers.Set(d.Name, value)
	}

	logger.Debug().Int("answers", answers.Len()).Msg("Answer set collected")
	return answers, nil
}

// prompt asks for a single option's value
func prompt(p Prompter, opt *manifest.Option, def string) (string, error) {
	var value string
	var err error

	if opt.Kind == manifest.KindChoice {
		value, err = p.Select(opt.Name, opt.Choices, def)
	} else {
		value, err = p.Input(opt.Name, def)
	}
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrMissingAnswer,
			"collection aborted while answering %q", opt.Name)
	}
	return value, nil
}

// validateOverrides rejects overrides that name undeclared options or
// supply values outside an option's declared choices. Both are caught
// before any prompting or filesystem write.
func validateOverrides(m *manifest.Manifest, overrides map[string]string) error {
	for name, value := range overrides {
		opt, ok := m.Option(name)
		if !ok {
			return errors.Newf(errors.ErrInvalidChoice,
				"override names undeclared option %q", name)
		}
		if !opt.IsValidChoice(value) {
			return errors.Newf(errors.ErrInvalidChoice,
				"value %q is not a declared choice for %q (choices: %v)",
				value, name, opt.Choices)
		}
	}
	return nil
}

// LoadAnswersFile reads a YAML mapping of option name to value for
// scripted use. Scalar values of any YAML type are taken verbatim as
// strings.
func LoadAnswersFile(path string, fsys types.FS) (map[string]string, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileNotFound,
			"failed to read answers file %s", path)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput,
			"answers file %s is not valid YAML", path)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 ||
		doc.Content[0].Kind != yaml.MappingNode {
		return nil, errors.Newf(errors.ErrInvalidInput,
			"answers file %s must be a mapping", path)
	}

	out := make(map[string]string)
	root := doc.Content[0]
	for i := 0; i < len(root.Content); i += 2 {
		k, v := root.Content[i], root.Content[i+1]
		if k.Kind != yaml.ScalarNode || v.Kind != yaml.ScalarNode {
			return nil, errors.Newf(errors.ErrInvalidInput,
				"answers file %s must map option names to scalar values", path)
		}
		out[k.Value] = v.Value
	}
	return out, nil
}
