// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"shmod-cli/pkg/modref"

	"github.com/spf13/cobra"
)

// exportsCmd loads a module in a throwaway interpreter and reports what
// it publishes.
var exportsCmd = &cobra.Command{
	Use:   "exports <owner/name@version>",
	Short: "Show the names a module publishes",
	Long: `Import a module into a fresh interpreter and list its published
names with the content hash each one is bound to. The module's source
units run during the import, the same way they would under 'shmod run'.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := modref.Parse(args[0])
		if err != nil {
			return reportIssue(err)
		}

		app, err := newApp()
		if err != nil {
			return err
		}
		if err := app.Resolver.Import(cmd.Context(), ref); err != nil {
			return reportIssue(err)
		}

		reg := app.Host.Registry()
		public := reg.PublicNames()
		if len(public) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), SubtitleStyle.Render(ref.String()+" publishes nothing"))
			return nil
		}

		fmt.Fprintln(cmd.OutOrStdout(), TitleStyle.Render("Exports of ")+RefStyle.Render(ref.String()))
		for _, name := range public {
			sym, err := reg.LookupName(name)
			if err != nil {
				continue
			}
			fmt.Fprintln(cmd.OutOrStdout(), "  "+RefStyle.Render(name)+HashStyle.Render("  "+string(sym.Hash)))
		}
		return nil
	},
}
