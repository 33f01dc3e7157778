// SPDX-License-Identifier: EPL-2.0

package main

import "github.com/ik5/audflow/cmd"

func main() {
	cmd.Execute()
}
