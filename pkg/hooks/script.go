package hooks

import (
	"context"
	"os"
	"os/exec"
	"time"

	"github.com/arthur-debert/stencil/pkg/config"
	"github.com/arthur-debert/stencil/pkg/errors"
	"github.com/arthur-debert/stencil/pkg/logging"
	"github.com/arthur-debert/stencil/pkg/types"
)

// RunScript executes the post-generation hook script with the project
// root as working directory. Every resolved answer is exported as
// STENCIL_<NAME> in the script's environment. A non-zero exit fails
// the run; the generated tree is left in place for inspection.
func RunScript(ctx context.Context, scriptPath, outputRoot string, answers *types.AnswerSet, cfg config.Hooks) error {
	logger := logging.GetLogger("hooks")

	if cfg.Disabled {
		logger.Info().Str("script", scriptPath).Msg("Hooks disabled, skipping")
		return nil
	}

	if cfg.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, scriptPath)
	cmd.Dir = outputRoot
	cmd.Env = append(os.Environ(), answers.Environ()...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	logger.Info().
		Str("script", scriptPath).
		Str("dir", outputRoot).
		Msg("Running post-generation hook")

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return errors.Wrapf(err, errors.ErrHookFailed,
				"hook %s timed out after %ds", scriptPath, cfg.TimeoutSeconds)
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			return errors.Wrapf(err, errors.ErrHookFailed,
				"hook %s exited with status %d", scriptPath, exitErr.ExitCode()).
				WithDetail("exitCode", exitErr.ExitCode())
		}
		return errors.Wrapf(err, errors.ErrHookFailed,
			"failed to run hook %s", scriptPath)
	}

	logger.Info().Str("script", scriptPath).Msg("Hook completed")
	return nil
}
