package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/arthur-debert/stencil/pkg/filesystem"
	"github.com/arthur-debert/stencil/pkg/paths"
	"github.com/arthur-debert/stencil/pkg/template"
	"github.com/arthur-debert/stencil/pkg/ui"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show TEMPLATE",
	Short: MsgShowShort,
	Long:  MsgShowLong,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat()
		if err != nil {
			return err
		}

		p := paths.New()
		root, err := p.ResolveTemplate(args[0])
		if err != nil {
			return err
		}

		tpl, err := template.Load(root, filesystem.NewOS())
		if err != nil {
			return err
		}

		overview := ui.TemplateOverview(tpl)

		// A README at the template root documents the template itself,
		// not the generated project
		if readme, err := os.ReadFile(filepath.Join(root, "README.md")); err == nil {
			overview += "\n---\n\n" + string(readme)
		}

		rendered, err := ui.RenderMarkdown(overview, format)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), rendered)
		return nil
	},
}
