// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"mvdan.cc/sh/v3/interp"
)

// runCmd executes a script with module support. Everything after the
// script path becomes positional parameters for the script.
var runCmd = &cobra.Command{
	Use:   "run <script> [args...]",
	Short: "Run a shell script with module support",
	Long: `Run a shell script in the embedded interpreter.

The script may use module directives at its top level:

  import owner/name@vX.Y.Z   fetch (or reuse from cache) and load a module
  publish name...            make earlier function definitions callable
  module prefix              namespace later definitions as prefix.name

Arguments after the script path are passed through as $1, $2, and so on.
The script's exit status becomes shmod's exit status.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		script := args[0]
		if _, err := os.Stat(script); err != nil {
			return fmt.Errorf("script %s: %w", script, err)
		}

		app, err := newApp()
		if err != nil {
			return err
		}

		if err := app.Host.RunScript(cmd.Context(), script, args[1:]); err != nil {
			var status interp.ExitStatus
			if errors.As(err, &status) {
				return &ExitError{Code: int(status)}
			}
			return &ExitError{Code: 1, Err: reportIssue(err)}
		}
		return nil
	},
}
