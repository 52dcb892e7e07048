// SPDX-License-Identifier: MPL-2.0

package gitremote

import (
	"context"
	"fmt"

	"github.com/input-output-hk/catalyst-forge-libs/executor"
)

// Runner is the external-process boundary for the version-control tool: run
// one command, capture exit code and both streams. Tests substitute a fake;
// production uses the git binary from the configuration.
type Runner interface {
	// Run executes the tool with args in dir (empty dir means the process
	// working directory) and returns captured stdout and stderr. A non-zero
	// exit returns an error alongside whatever output was captured.
	Run(ctx context.Context, dir string, args ...string) (stdout, stderr string, err error)
}

type execRunner struct {
	binary string
}

// NewRunner returns a Runner that shells out to the given git binary.
func NewRunner(binary string) Runner {
	if binary == "" {
		binary = "git"
	}
	return &execRunner{binary: binary}
}

func (r *execRunner) Run(ctx context.Context, dir string, args ...string) (string, string, error) {
	opts := []executor.Option{}
	if dir != "" {
		opts = append(opts, executor.WithWorkingDir(dir))
	}

	result, err := executor.New(r.binary, args...).Execute(ctx, opts...)
	if result == nil {
		return "", "", fmt.Errorf("'%s %v' did not run: %w", r.binary, args, err)
	}
	if err != nil {
		return result.Stdout, result.Stderr,
			fmt.Errorf("'%s' exited with status %d", r.binary, result.ExitCode)
	}
	return result.Stdout, result.Stderr, nil
}
