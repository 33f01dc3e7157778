// SPDX-License-Identifier: EPL-2.0

package cmd

import (
	"fmt"

	"github.com/ik5/audflow/config"
	"github.com/spf13/cobra"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print every effective setting",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, _ []string) {
				out := cmd.OutOrStdout()
				if used := a.v.ConfigFileUsed(); used != "" {
					fmt.Fprintf(out, "# %s\n", used)
				}
				for _, line := range config.Settings(a.v) {
					fmt.Fprintln(out, line)
				}
			},
		},
		&cobra.Command{
			Use:   "validate",
			Short: "Check the configuration for errors",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if _, err := a.config(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "configuration is valid")
				return nil
			},
		},
	)

	return cmd
}
