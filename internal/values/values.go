// SPDX-License-Identifier: MPL-2.0

// Package values resolves raw assignment values from the spec document.
//
// An assignment value takes one of three forms:
//
//	$(command)  run the command through the embedded shell and capture
//	            stdout with trailing whitespace trimmed
//	$NAME       look up the NAME environment variable; absence is fatal
//	anything    returned unchanged
//
// Resolution happens once per assignment at usage-finalization time, so the
// compositor only ever sees fully resolved literal strings.
package values

import (
	"bytes"
	"context"
	"os"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"containeryard/internal/issue"
)

// Resolver resolves a single raw assignment value.
type Resolver struct {
	// Dir is the working directory for command capture.
	Dir string
	// LookupEnv overrides environment lookup; defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// Resolve returns the resolved value of one raw assignment string.
func (r *Resolver) Resolve(ctx context.Context, raw string) (string, error) {
	if strings.HasPrefix(raw, "$(") && strings.HasSuffix(raw, ")") {
		return r.capture(ctx, raw[2:len(raw)-1])
	}
	if strings.HasPrefix(raw, "$") {
		name := raw[1:]
		lookup := r.LookupEnv
		if lookup == nil {
			lookup = os.LookupEnv
		}
		value, ok := lookup(name)
		if !ok {
			return "", issue.New(issue.KindNone,
				"Could not get env var '%s' for template value.", name)
		}
		return value, nil
	}
	return raw, nil
}

// capture runs command through the embedded shell and returns its stdout
// with trailing whitespace trimmed. A non-zero exit is fatal, surfacing the
// command and its captured output.
func (r *Resolver) capture(ctx context.Context, command string) (string, error) {
	file, err := syntax.NewParser().Parse(strings.NewReader(command), "assignment")
	if err != nil {
		return "", issue.Wrap(err, issue.KindNone,
			"Could not parse command '%s' for template value.", command)
	}

	var stdout, stderr bytes.Buffer
	opts := []interp.RunnerOption{
		interp.StdIO(nil, &stdout, &stderr),
		interp.Env(expand.ListEnviron(os.Environ()...)),
	}
	if r.Dir != "" {
		opts = append(opts, interp.Dir(r.Dir))
	}
	runner, err := interp.New(opts...)
	if err != nil {
		return "", issue.Wrap(err, issue.KindNone,
			"Could not start shell for command '%s'.", command)
	}

	if err := runner.Run(ctx, file); err != nil {
		return "", issue.Wrap(err, issue.KindNone,
			"Command '%s' for template value failed.\nstdout:\n%s\nstderr:\n%s",
			command, stdout.String(), stderr.String())
	}

	return strings.TrimRight(stdout.String(), " \t\r\n"), nil
}
