// Package core orchestrates the generation pipeline: load the
// template, collect answers, plan, write, prune features and run the
// post-generation hook. Each phase either completes or fails before
// the next one starts; the first filesystem write happens only after
// planning has fully succeeded.
package core

import (
	"context"
	"os"

	"github.com/arthur-debert/stencil/pkg/answers"
	"github.com/arthur-debert/stencil/pkg/config"
	"github.com/arthur-debert/stencil/pkg/errors"
	"github.com/arthur-debert/stencil/pkg/filesystem"
	"github.com/arthur-debert/stencil/pkg/hooks"
	"github.com/arthur-debert/stencil/pkg/logging"
	"github.com/arthur-debert/stencil/pkg/paths"
	"github.com/arthur-debert/stencil/pkg/planner"
	"github.com/arthur-debert/stencil/pkg/synthfs"
	"github.com/arthur-debert/stencil/pkg/template"
	"github.com/arthur-debert/stencil/pkg/types"
	"github.com/arthur-debert/stencil/pkg/version"
)

// GenerateOptions configures one generation run
type GenerateOptions struct {
	// TemplateArg is a filesystem path or a registered template name
	TemplateArg string

	// OutputDir is the directory the project root is created under.
	// Defaults to the current directory.
	OutputDir string

	// Overrides supplies answers without prompting
	Overrides map[string]string

	// AnswersFile is an optional YAML file of answers. Overrides win
	// over file entries.
	AnswersFile string

	// UseDefaults accepts every default without prompting
	UseDefaults bool

	// Interactive enables prompting
	Interactive bool

	// DryRun plans and logs but writes nothing
	DryRun bool

	// Force replaces an existing project root
	Force bool

	// NoGit suppresses git initialization for this run
	NoGit bool

	// Prompter overrides the terminal prompter, used by tests
	Prompter answers.Prompter

	// Config overrides the loaded configuration, used by tests
	Config *config.Config

	// Paths overrides path resolution, used by tests
	Paths *paths.Paths

	// FS overrides the filesystem, used by tests
	FS types.FS
}

// GenerateResult describes a completed run
type GenerateResult struct {
	// TemplateRoot is the resolved template directory
	TemplateRoot string

	// OutputRoot is the generated project root
	OutputRoot string

	// Answers is the resolved answer set, derived variables included
	Answers *types.AnswerSet

	// Operations is the number of planned filesystem operations
	Operations int

	// HookRan reports whether the post-generation hook executed
	HookRan bool

	// DryRun reports whether this was a dry run
	DryRun bool
}

// Generate runs the full pipeline
func Generate(ctx context.Context, opts GenerateOptions) (*GenerateResult, error) {
	logger := logging.GetLogger("core")
	defer logging.LogOperationStart(logger, "generate")()
	logger.Info().Str("template", opts.TemplateArg).Msg("Generation started")

	p := opts.Paths
	if p == nil {
		p = paths.New()
	}
	fsys := opts.FS
	if fsys == nil {
		fsys = filesystem.NewOS()
	}
	cfg := opts.Config
	if cfg == nil {
		loaded, err := config.Load(p)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = "."
	}

	// Phase: manifest loaded
	templateRoot, err := p.ResolveTemplate(opts.TemplateArg)
	if err != nil {
		return nil, err
	}
	tpl, err := template.Load(templateRoot, fsys)
	if err != nil {
		return nil, err
	}
	if tpl.Manifest.MinVersion != "" && !version.AtLeast(tpl.Manifest.MinVersion) {
		logger.Warn().
			Str("required", tpl.Manifest.MinVersion).
			Str("current", version.Version).
			Msg("Template asks for a newer stencil version")
	}
	logger.Info().Str("root", tpl.Root).Msg("Manifest loaded")

	// Phase: answers collected
	overrides, err := mergeOverrides(opts, fsys)
	if err != nil {
		return nil, err
	}
	answerSet, err := answers.Collect(tpl.Manifest, answers.Options{
		Overrides:   overrides,
		UseDefaults: opts.UseDefaults,
		Interactive: opts.Interactive,
		Prompter:    opts.Prompter,
	})
	if err != nil {
		return nil, err
	}
	logger.Info().Int("answers", answerSet.Len()).Msg("Answers collected")

	// Phase: substituted (planning renders every path and file)
	plan, err := planner.Build(tpl, answerSet, outputDir, cfg.Files)
	if err != nil {
		return nil, err
	}

	result := &GenerateResult{
		TemplateRoot: tpl.Root,
		OutputRoot:   plan.OutputRoot,
		Answers:      answerSet,
		Operations:   len(plan.Operations),
		DryRun:       opts.DryRun,
	}

	if err := prepareOutputRoot(plan.OutputRoot, opts, fsys); err != nil {
		return nil, err
	}

	executor := synthfs.NewExecutor(plan.OutputRoot, opts.DryRun)
	if err := executor.Execute(ctx, plan.Operations); err != nil {
		// All-or-nothing: a failed write leaves no partial tree behind
		if cleanupErr := fsys.RemoveAll(plan.OutputRoot); cleanupErr != nil {
			return nil, errors.Wrapf(err, errors.ErrCleanupFailed,
				"generation failed and the partial output at %s could not be removed",
				plan.OutputRoot)
		}
		return nil, err
	}
	logger.Info().Str("outputRoot", plan.OutputRoot).Msg("Tree written")

	if opts.DryRun {
		logger.Info().Msg("Dry run complete")
		return result, nil
	}

	// Phase: pruned
	if err := hooks.Apply(tpl.Manifest, answerSet, plan.OutputRoot, fsys); err != nil {
		return nil, err
	}
	logger.Info().Msg("Features pruned")

	// Phase: done (hook and git are part of finishing)
	if tpl.Manifest.Hook != "" {
		if err := hooks.RunScript(ctx, tpl.HookPath(), plan.OutputRoot, answerSet, cfg.Hooks); err != nil {
			return nil, err
		}
		result.HookRan = !cfg.Hooks.Disabled
	}

	if !opts.NoGit {
		hooks.InitGit(ctx, plan.OutputRoot, cfg.Git)
	}

	logger.Info().Str("outputRoot", plan.OutputRoot).Msg("Generation done")
	return result, nil
}

// mergeOverrides layers the answers file under the explicit overrides
func mergeOverrides(opts GenerateOptions, fsys types.FS) (map[string]string, error) {
	if opts.AnswersFile == "" {
		return opts.Overrides, nil
	}
	fromFile, err := answers.LoadAnswersFile(opts.AnswersFile, fsys)
	if err != nil {
		return nil, err
	}
	for k, v := range opts.Overrides {
		fromFile[k] = v
	}
	return fromFile, nil
}

// prepareOutputRoot enforces the existing-output contract before any
// write happens
func prepareOutputRoot(outputRoot string, opts GenerateOptions, fsys types.FS) error {
	info, err := fsys.Lstat(outputRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to inspect %s", outputRoot)
	}

	if !opts.Force {
		return errors.Newf(errors.ErrOutputExists,
			"output %s already exists (use --force to replace it)", outputRoot)
	}
	if opts.DryRun {
		return nil
	}

	if !info.IsDir() {
		if err := fsys.Remove(outputRoot); err != nil {
			return errors.Wrapf(err, errors.ErrCleanupFailed,
				"failed to replace existing %s", outputRoot)
		}
		return nil
	}
	if err := fsys.RemoveAll(outputRoot); err != nil {
		return errors.Wrapf(err, errors.ErrCleanupFailed,
			"failed to replace existing %s", outputRoot)
	}
	return nil
}
