// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"containeryard/internal/issue"
	"containeryard/internal/spec"
)

//go:embed starter_yard.yaml
var starterSpec []byte

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Create a starter yard.yaml",
	Long: `Init writes a commented starter 'yard.yaml' into the given directory
(default '.'). It refuses to overwrite an existing spec.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := filepath.Join(targetDir(args), spec.FileName)

		if _, err := os.Stat(path); err == nil {
			return reportFailure(issue.New(issue.KindNone,
				"'%s' already exists. Refusing to overwrite it.", path))
		}
		if err := os.WriteFile(path, starterSpec, 0o644); err != nil {
			return reportFailure(issue.Wrap(err, issue.KindNone,
				"Could not write '%s'.", path))
		}

		fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("Created ")+path)
		return nil
	},
}
