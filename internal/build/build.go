// SPDX-License-Identifier: MPL-2.0

// Package build runs the full pipeline: parse the spec, resolve modules,
// finalize usages into parts, render, and write output artifacts.
package build

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"containeryard/internal/compose"
	"containeryard/internal/config"
	"containeryard/internal/gitremote"
	"containeryard/internal/hook"
	"containeryard/internal/issue"
	"containeryard/internal/module"
	"containeryard/internal/resolve"
	"containeryard/internal/spec"
	"containeryard/internal/values"
)

// Options configures one build invocation.
type Options struct {
	// Dir is the directory containing yard.yaml; outputs are written there.
	Dir string
	// DoNotRefetch skips downloading required files that already exist at
	// their final destination.
	DoNotRefetch bool
	// Banner prefixes each output part with its provenance.
	Banner bool
	// Stdout and Stderr receive progress and hook output; nil means the
	// process streams.
	Stdout io.Writer
	Stderr io.Writer

	// Config overrides the environment-loaded configuration (tests).
	Config *config.Config
	// Git overrides the git runner (tests).
	Git gitremote.Runner
}

// Run executes the whole pipeline for the spec rooted at opts.Dir.
func Run(ctx context.Context, opts Options) error {
	cfg := opts.Config
	if cfg == nil {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
	}
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	hooks := &hook.Runner{Dir: opts.Dir, Stdout: opts.Stdout, Stderr: opts.Stderr}

	parsed, err := spec.Load(ctx, opts.Dir, hooks.Run)
	if err != nil {
		return issue.Wrap(err, issue.KindNone, "Could not parse '%s'.", spec.FileName)
	}

	git := opts.Git
	if git == nil {
		git = gitremote.NewRunner(cfg.GitBinary)
	}
	cache := gitremote.NewCache(cfg.CacheDir)
	resolver := resolve.NewResolver(opts.Dir, cache, git)

	definitions, err := resolver.Resolve(ctx, parsed.Inputs)
	if err != nil {
		return issue.Wrap(err, issue.KindNone,
			"Could not resolve all the fields in the parsed '%s' file.", spec.FileName)
	}

	if err := resolve.CheckRequiredFileConflicts(definitions); err != nil {
		return err
	}
	if err := resolver.FetchRequiredFiles(ctx, definitions, opts.DoNotRefetch, stdout); err != nil {
		return issue.Wrap(err, issue.KindNone, "Could not resolve additional required files.")
	}

	artifacts, err := finalizeOutputs(ctx, parsed, definitions, opts.Dir)
	if err != nil {
		return err
	}

	totalParts := 0
	for _, a := range artifacts {
		totalParts += len(a.Parts)
	}
	if totalParts == 0 {
		return issue.New(issue.NoModulesResolved, "No modules were resolved.")
	}

	compositor := &compose.Compositor{Banner: opts.Banner}
	rendered, err := compositor.Render(artifacts)
	if err != nil {
		return issue.Wrap(err, issue.KindNone, "Could not apply templates.")
	}

	if err := compose.WriteOutputs(opts.Dir, rendered, stdout); err != nil {
		return err
	}

	// Post-hook failure is fatal but does not unwrite artifacts already on
	// disk; the build is not transactional across outputs.
	if post := parsed.Hooks.Build.Post; post != "" {
		log.Debug("running post-build hook", "command", post)
		if err := hooks.Run(ctx, post); err != nil {
			return issue.Wrap(err, issue.HookFailure, "Post-build hook failed.")
		}
	}

	return nil
}

// finalizeOutputs converts every declared usage into a finalized part, in
// declared order. Assignments resolve through the value resolver here, so
// the compositor only ever sees literal strings.
func finalizeOutputs(
	ctx context.Context,
	parsed *spec.Spec,
	definitions map[string]*module.Definition,
	dir string,
) ([]compose.Artifact, error) {
	resolver := &values.Resolver{Dir: dir}

	artifacts := make([]compose.Artifact, 0, len(parsed.Outputs))
	for _, output := range parsed.Outputs {
		artifact := compose.Artifact{Name: output.Name}
		for _, usage := range output.Usages {
			part, err := finalizeUsage(ctx, usage, definitions, resolver)
			if err != nil {
				return nil, err
			}
			artifact.Parts = append(artifact.Parts, part)
		}
		artifacts = append(artifacts, artifact)
	}
	return artifacts, nil
}

func finalizeUsage(
	ctx context.Context,
	usage spec.Usage,
	definitions map[string]*module.Definition,
	resolver *values.Resolver,
) (*module.Part, error) {
	if usage.Inline != nil {
		return module.NewInlineDefinition(usage.Inline.Value).Finalize()
	}

	ref := usage.Ref
	def, ok := definitions[ref.Name]
	if !ok {
		return nil, issue.New(issue.UnknownModuleReference,
			"Module '%s' is not declared as an input in the '%s' file.", ref.Name, spec.FileName)
	}

	staged := def.Clone()
	for _, assignment := range ref.Vars {
		value, err := resolver.Resolve(ctx, assignment.Value)
		if err != nil {
			return nil, err
		}
		staged.Provide(assignment.Name, value)
	}
	return staged.Finalize()
}
