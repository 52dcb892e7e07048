// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"

	"containeryard/internal/build"
)

var (
	// doNotRefetch skips downloading required files that already exist
	doNotRefetch bool
	// banner prefixes each Containerfile part with its source location
	banner bool

	buildCmd = &cobra.Command{
		Use:   "build [path]",
		Short: "Compose Containerfiles from a yard.yaml spec",
		Long: `Build reads the 'yard.yaml' in the given directory (default '.'),
resolves its local and remote modules, renders every declared output,
and writes the resulting Containerfiles next to the spec.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := build.Options{
				Dir:          targetDir(args),
				DoNotRefetch: doNotRefetch,
				Banner:       banner,
				Stdout:       cmd.OutOrStdout(),
				Stderr:       cmd.ErrOrStderr(),
			}
			if err := build.Run(cmd.Context(), opts); err != nil {
				return reportFailure(err)
			}
			return nil
		},
	}
)

func init() {
	buildCmd.Flags().BoolVar(&doNotRefetch, "do-not-refetch", false,
		"skip downloading required files that already exist at their destination")
	buildCmd.Flags().BoolVar(&banner, "banner", false,
		"prefix each Containerfile part with a comment naming its source")
}
