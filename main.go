// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/invowk/runpack/cmd/runpack"

func main() {
	cmd.Execute()
}
