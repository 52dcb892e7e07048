// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for yard.
//
// This package implements the Cobra command hierarchy: the root command plus
// the build, init, and update subcommands, along with the shared error
// presentation used by all of them.
package cmd
