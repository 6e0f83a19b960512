package hooks

import (
	"context"
	"os/exec"

	"github.com/arthur-debert/stencil/pkg/config"
	"github.com/arthur-debert/stencil/pkg/logging"
)

// InitGit initializes a git repository in the generated project and
// optionally creates the first commit. Git is a convenience here:
// failures are logged, never fatal, and a missing git binary is fine.
func InitGit(ctx context.Context, outputRoot string, cfg config.Git) {
	logger := logging.GetLogger("hooks")

	if !cfg.Init {
		return
	}

	if _, err := exec.LookPath("git"); err != nil {
		logger.Warn().Msg("git not found in PATH, skipping repository initialization")
		return
	}

	if err := runGit(ctx, outputRoot, "init"); err != nil {
		logger.Warn().Err(err).Msg("git init failed")
		return
	}
	logger.Info().Str("dir", outputRoot).Msg("Initialized git repository")

	if !cfg.Commit {
		return
	}

	if err := runGit(ctx, outputRoot, "add", "-A"); err != nil {
		logger.Warn().Err(err).Msg("git add failed")
		return
	}
	if err := runGit(ctx, outputRoot, "commit", "-m", cfg.Message); err != nil {
		logger.Warn().Err(err).Msg("git commit failed")
		return
	}
	logger.Info().Str("message", cfg.Message).Msg("Created initial commit")
}

func runGit(ctx context.Context, dir string, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	return cmd.Run()
}
