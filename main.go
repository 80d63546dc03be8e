// SPDX-License-Identifier: MPL-2.0

package main

import cmd "shmod-cli/cmd/shmod"

func main() {
	cmd.Execute()
}
