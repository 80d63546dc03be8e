// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"shmod-cli/internal/resolve"

	"github.com/spf13/cobra"
)

// listCmd shows what is in the module cache.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached modules",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cacheDir, err := cacheDirFromConfig()
		if err != nil {
			return err
		}

		modules, err := resolve.ListCached(cacheDir)
		if err != nil {
			return err
		}
		if len(modules) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), SubtitleStyle.Render("module cache is empty: "+cacheDir))
			return nil
		}

		fmt.Fprintln(cmd.OutOrStdout(), TitleStyle.Render("Cached modules")+SubtitleStyle.Render(" ("+cacheDir+")"))
		for _, mod := range modules {
			line := "  " + RefStyle.Render(mod.Ref)
			if !mod.Meta.FetchedAt.IsZero() {
				line += SubtitleStyle.Render("  fetched " + mod.Meta.FetchedAt.Format("2006-01-02 15:04"))
			}
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
		return nil
	},
}
