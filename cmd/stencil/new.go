package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/arthur-debert/stencil/pkg/core"
	"github.com/arthur-debert/stencil/pkg/errors"
	"github.com/arthur-debert/stencil/pkg/logging"
	"github.com/arthur-debert/stencil/pkg/ui"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var (
	newOutput   string
	newSet      []string
	newAnswers  string
	newDefaults bool
	newDryRun   bool
	newForce    bool
	newNoGit    bool
)

var newCmd = &cobra.Command{
	Use:   "new TEMPLATE [name=value...]",
	Short: MsgNewShort,
	Long:  MsgNewLong,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.GetLogger("cmd.new")

		format, err := outputFormat()
		if err != nil {
			return err
		}

		// Positional overrides and --set flags are equivalent; flags win
		overrides, err := parseSetFlags(append(args[1:], newSet...))
		if err != nil {
			return err
		}

		logger.Info().
			Str("template", args[0]).
			Bool("dryRun", newDryRun).
			Bool("defaults", newDefaults).
			Msg("Starting generation")

		result, err := core.Generate(cmd.Context(), core.GenerateOptions{
			TemplateArg: args[0],
			OutputDir:   newOutput,
			Overrides:   overrides,
			AnswersFile: newAnswers,
			UseDefaults: newDefaults,
			Interactive: promptingPossible(),
			DryRun:      newDryRun,
			Force:       newForce,
			NoGit:       newNoGit,
		})
		if err != nil {
			return err
		}

		return ui.RenderSummary(cmd.OutOrStdout(), &ui.GenerationSummary{
			Template:   args[0],
			OutputRoot: result.OutputRoot,
			Answers:    result.Answers.Map(),
			Operations: result.Operations,
			HookRan:    result.HookRan,
			DryRun:     result.DryRun,
		}, format)
	},
}

// promptingPossible reports whether stdin is an interactive terminal
func promptingPossible() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}

// parseSetFlags parses repeated name=value flags
func parseSetFlags(flags []string) (map[string]string, error) {
	if len(flags) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(flags))
	for _, raw := range flags {
		name, value, ok := strings.Cut(raw, "=")
		if !ok || name == "" {
			return nil, errors.Newf(errors.ErrInvalidInput,
				"--set expects name=value, got %q", raw)
		}
		out[name] = value
	}
	return out, nil
}

func init() {
	newCmd.Flags().StringVarP(&newOutput, "output", "o", "", MsgFlagOutput)
	newCmd.Flags().StringArrayVar(&newSet, "set", nil, MsgFlagSet)
	newCmd.Flags().StringVar(&newAnswers, "answers", "", MsgFlagAnswers)
	newCmd.Flags().BoolVarP(&newDefaults, "defaults", "y", false, MsgFlagDefaults)
	newCmd.Flags().BoolVar(&newDryRun, "dry-run", false, MsgFlagDryRun)
	newCmd.Flags().BoolVar(&newForce, "force", false, MsgFlagForce)
	newCmd.Flags().BoolVar(&newNoGit, "no-git", false, MsgFlagNoGit)
}

// renderRunError prints an error with its code for the terminal
func renderRunError(err error) {
	format := ui.Resolve(ui.FormatAuto, os.Stderr)
	fmt.Fprintln(os.Stderr, ui.RenderError(err, format))
}
