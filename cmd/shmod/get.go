// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"shmod-cli/pkg/modref"

	"github.com/spf13/cobra"
)

// getCmd prefetches modules into the local cache without running them.
var getCmd = &cobra.Command{
	Use:   "get <owner/name@version>...",
	Short: "Fetch modules into the local cache",
	Long: `Resolve one or more module references and install them into the
module cache. Already-cached modules are left untouched. Nothing is
executed; use 'shmod run' or 'shmod exports' to load a module.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}

		for _, raw := range args {
			ref, err := modref.Parse(raw)
			if err != nil {
				return reportIssue(err)
			}
			dir, err := app.Resolver.Resolve(cmd.Context(), ref)
			if err != nil {
				return reportIssue(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("✓ ")+RefStyle.Render(ref.String())+SubtitleStyle.Render(" → "+dir))
		}
		return nil
	},
}
