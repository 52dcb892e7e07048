// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"containeryard/internal/config"
	"containeryard/internal/gitremote"
	"containeryard/internal/pin"
	"containeryard/internal/spec"
)

var updateCmd = &cobra.Command{
	Use:   "update [path]",
	Short: "Refresh remote commit pins to each remote's current HEAD",
	Long: `Update rewrites the 'commit:' field of every remote declared in the
given directory's yard.yaml (default '.') to that remote's current HEAD,
leaving the rest of the file byte for byte untouched.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return reportFailure(err)
		}

		git := gitremote.NewRunner(cfg.GitBinary)
		if err := pin.Update(cmd.Context(), targetDir(args), git); err != nil {
			return reportFailure(err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("Updated ")+spec.FileName)
		return nil
	},
}
