// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"containeryard/internal/config"
	"containeryard/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables debug tracing and full error chains
	verbose bool

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "yard",
		Short: "A Containerfile composer",
		Long: TitleStyle.Render("yard") + SubtitleStyle.Render(" - A Containerfile composer") + `

yard assembles Containerfiles from reusable, parameterized modules
declared in a 'yard.yaml' spec. Modules live next to the spec or in
pinned git repositories, and each one is a template rendered with the
variables the spec provides.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Run 'yard init' to create a starter yard.yaml
  2. Declare modules under 'inputs' and compose them under 'outputs'
  3. Run 'yard build' to write the Containerfiles

` + SubtitleStyle.Render("Examples:") + `
  yard build                Build outputs from ./yard.yaml
  yard build ./deploy       Build outputs from ./deploy/yard.yaml
  yard init                 Create a starter yard.yaml
  yard update               Refresh remote commit pins to HEAD`,

		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	cobra.OnInitialize(initLogging)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug output")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(updateCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// initLogging raises the log level to Debug when --verbose or YARD_DEBUG is
// set. Config load failures here are warnings; the build command reloads and
// treats them as fatal.
func initLogging() {
	if debugEnabled() {
		log.SetLevel(log.DebugLevel)
	}
}

// debugEnabled reports whether debug output was requested via flag or env.
func debugEnabled() bool {
	if verbose {
		return true
	}
	cfg, err := config.Load()
	if err != nil {
		return false
	}
	return cfg.Debug
}

// reportFailure prints a pipeline failure: the user-facing message chain
// outermost first, actionable guidance when the failure kind has some, and
// the generic footer. The raw error chain only appears in debug mode.
func reportFailure(err error) *ExitError {
	msgs := issue.UserMessages(err)
	for _, msg := range msgs {
		fmt.Fprintln(os.Stderr, msg)
	}

	if help, ok := issue.Guidance(err); ok {
		fmt.Fprintln(os.Stderr, help)
	}

	fmt.Fprintln(os.Stderr, ErrorStyle.Render("Oops, something went wrong."))

	if debugEnabled() {
		fmt.Fprintln(os.Stderr, VerboseStyle.Render(err.Error()))
	} else if len(msgs) == 0 {
		fmt.Fprintln(os.Stderr, SubtitleStyle.Render(
			fmt.Sprintf("Re-run with %s_DEBUG=1 for the full error chain.", config.EnvPrefix)))
	}

	return &ExitError{Code: 1}
}

// targetDir returns the directory argument of a command, defaulting to the
// current directory.
func targetDir(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}
