package main

import (
	"fmt"
	"os"

	"github.com/arthur-debert/stencil/pkg/paths"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: MsgListShort,
	Long:  MsgListLong,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p := paths.New()
		store := p.TemplateStoreDir()

		entries, err := os.ReadDir(store)
		if err != nil {
			if os.IsNotExist(err) {
				fmt.Fprintln(cmd.OutOrStdout(), MsgNoTemplates)
				return nil
			}
			return err
		}

		var names []string
		for _, e := range entries {
			if e.IsDir() {
				names = append(names, e.Name())
			}
		}
		if len(names) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), MsgNoTemplates)
			return nil
		}
		for _, name := range names {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}
