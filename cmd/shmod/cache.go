// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the module cache",
}

// cachePathCmd prints the resolved cache root. Scripts use it for
// cleanup and CI cache keys, so the output stays plain.
var cachePathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the module cache directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cacheDir, err := cacheDirFromConfig()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), cacheDir)
		return nil
	},
}

// cacheCleanCmd removes every cached module. The next resolve re-fetches.
var cacheCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove all cached modules",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cacheDir, err := cacheDirFromConfig()
		if err != nil {
			return err
		}
		if err := os.RemoveAll(cacheDir); err != nil {
			return fmt.Errorf("cleaning module cache: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("✓ ")+"removed "+cacheDir)
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cachePathCmd)
	cacheCmd.AddCommand(cacheCleanCmd)
}
