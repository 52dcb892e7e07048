// SPDX-License-Identifier: MPL-2.0

package main

import cmd "containeryard/cmd/yard"

func main() {
	cmd.Execute()
}
