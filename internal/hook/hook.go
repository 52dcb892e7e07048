// SPDX-License-Identifier: MPL-2.0

// Package hook runs the spec's pre- and post-build shell hooks through the
// embedded shell interpreter (mvdan/sh), so hook behavior does not depend on
// which system shell happens to be installed.
package hook

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"containeryard/internal/issue"
)

// Runner executes build hooks in a fixed working directory.
type Runner struct {
	// Dir is the working directory for hook commands (the spec root).
	Dir string
	// Stdout and Stderr receive the hook's output; nil means the process
	// streams.
	Stdout io.Writer
	Stderr io.Writer
}

// Run executes one hook command. Any parse error or non-zero exit is a fatal
// HookFailure.
func (r *Runner) Run(ctx context.Context, command string) error {
	log.Debug("running build hook", "command", command, "dir", r.Dir)

	file, err := syntax.NewParser().Parse(strings.NewReader(command), "hook")
	if err != nil {
		return issue.Wrap(err, issue.HookFailure, "Could not parse hook command '%s'.", command)
	}

	stdout := r.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := r.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	opts := []interp.RunnerOption{
		interp.StdIO(nil, stdout, stderr),
		interp.Env(expand.ListEnviron(os.Environ()...)),
	}
	if r.Dir != "" {
		opts = append(opts, interp.Dir(r.Dir))
	}
	runner, err := interp.New(opts...)
	if err != nil {
		return issue.Wrap(err, issue.HookFailure, "Could not start shell for hook '%s'.", command)
	}

	if err := runner.Run(ctx, file); err != nil {
		return issue.Wrap(err, issue.HookFailure, "Hook command '%s' failed.", command)
	}

	return nil
}
