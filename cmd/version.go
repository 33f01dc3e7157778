// SPDX-License-Identifier: EPL-2.0

package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Set at build time with -ldflags "-X github.com/ik5/audflow/cmd.Version=...".
var (
	Version  = "dev"
	Revision = ""
)

func newVersionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			if short {
				fmt.Fprintln(cmd.OutOrStdout(), Version)
				return
			}

			rev := ""
			if Revision != "" {
				rev = " (" + Revision + ")"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "audflow %s%s %s/%s %s\n", Version, rev, runtime.GOOS, runtime.GOARCH, runtime.Version())
		},
	}
	cmd.Flags().BoolVarP(&short, "short", "s", false, "print only the version")

	return cmd
}
