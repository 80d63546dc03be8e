// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"shmod-cli/pkg/modref"

	"github.com/spf13/cobra"
)

// defCmd shows the stored definition behind one of a module's names.
var defCmd = &cobra.Command{
	Use:   "def <owner/name@version> <name>",
	Short: "Show the definition bound to a module name",
	Long: `Import a module into a fresh interpreter and print the symbol a
name is bound to: its content hash and the body as stored in the
registry, with internal references already rewritten to hash
identifiers. Works for published and private names alike.`,
	Args: cobra.ExactArgs(2),
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

		sym, err := app.Host.Registry().LookupName(args[1])
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), RefStyle.Render(sym.Name)+HashStyle.Render("  "+sym.Hash.Ident()))
		fmt.Fprintln(cmd.OutOrStdout(), sym.Body)
		return nil
	},
}
