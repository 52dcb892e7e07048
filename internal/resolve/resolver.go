// SPDX-License-Identifier: MPL-2.0

// Package resolve gathers module sources, local paths and pinned remote
// repositories, into name-keyed module definitions.
package resolve

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"containeryard/internal/gitremote"
	"containeryard/internal/issue"
	"containeryard/internal/module"
	"containeryard/internal/spec"
)

// Resolver loads module definitions from the spec's input section.
type Resolver struct {
	// Dir is the spec root; local module paths resolve against it.
	Dir string
	// Cache backs remote content retrieval.
	Cache *gitremote.Cache
	// Git runs the external version-control tool.
	Git gitremote.Runner

	// newProvider is swappable in tests to avoid real git subprocesses.
	newProvider func(url, commit string) (gitremote.Provider, error)
}

// NewResolver creates a resolver for the spec rooted at dir.
func NewResolver(dir string, cache *gitremote.Cache, git gitremote.Runner) *Resolver {
	r := &Resolver{Dir: dir, Cache: cache, Git: git}
	r.newProvider = func(url, commit string) (gitremote.Provider, error) {
		return gitremote.NewProvider(url, commit, cache, git)
	}
	return r
}

// Resolve walks local declarations, then remote groups, producing one
// definition per declared module name. Duplicate names are fatal before any
// I/O is attempted for the offending declaration; remote groups are only
// contacted once their names are known to be unique.
func (r *Resolver) Resolve(ctx context.Context, inputs spec.Inputs) (map[string]*module.Definition, error) {
	definitions := map[string]*module.Definition{}

	for _, local := range inputs.Modules {
		if prior, ok := definitions[local.Name]; ok {
			return nil, duplicateName(local.Name, prior.Provenance,
				module.LocalProvenance(local.Path, local.Name))
		}
		def, err := r.loadLocal(local)
		if err != nil {
			return nil, err
		}
		definitions[local.Name] = def
	}

	// All remote names are checked against the growing set before any
	// network traffic for their group.
	for _, remote := range inputs.Remotes {
		for _, m := range remote.Modules {
			if prior, ok := definitions[m.Name]; ok {
				return nil, duplicateName(m.Name, prior.Provenance,
					module.RemoteProvenance(remote.URL, "", "", remote.Commit, m.Path, m.Name))
			}
		}
	}
	seen := map[string]spec.Remote{}
	for _, remote := range inputs.Remotes {
		for _, m := range remote.Modules {
			if prior, ok := seen[m.Name]; ok {
				return nil, issue.New(issue.DuplicateModuleName,
					"A module named '%s' is declared more than once: remote '%s' and remote '%s'.",
					m.Name, prior.URL, remote.URL)
			}
			seen[m.Name] = remote
		}
	}

	for _, remote := range inputs.Remotes {
		defs, err := r.loadRemoteGroup(ctx, remote)
		if err != nil {
			return nil, err
		}
		for name, def := range defs {
			definitions[name] = def
		}
	}

	return definitions, nil
}

func duplicateName(name string, first, second module.Provenance) error {
	return issue.New(issue.DuplicateModuleName,
		"A module named '%s' is declared more than once: %s and %s.",
		name, first.SourceLocation(), second.SourceLocation())
}

// loadLocal reads one local module: a directory holds the two-file form
// (Containerfile + yard-module.yaml), a file holds the fenced single-file
// form.
func (r *Resolver) loadLocal(local spec.LocalModule) (*module.Definition, error) {
	prov := module.LocalProvenance(local.Path, local.Name)
	path := filepath.Join(r.Dir, local.Path)

	info, err := os.Stat(path)
	if err != nil {
		return nil, issue.Wrap(err, issue.SchemaViolation,
			"Could not read local module at '%s' for:\n%s", local.Path, prov.SourceLocation())
	}

	if !info.IsDir() {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, issue.Wrap(err, issue.SchemaViolation,
				"Could not read '%s'.", local.Path)
		}
		sections, err := module.SplitSections(local.Path, data)
		if err != nil {
			return nil, err
		}
		return module.NewDefinition(sections.Containerfile, []byte(sections.Config), prov)
	}

	templatePath := filepath.Join(path, spec.ContainerfileName)
	template, err := os.ReadFile(templatePath)
	if err != nil {
		return nil, issue.Wrap(err, issue.SchemaViolation,
			"Could not read '%s' for:\n%s", templatePath, prov.SourceLocation())
	}
	moduleFilePath := filepath.Join(path, spec.ModuleFileName)
	moduleFile, err := os.ReadFile(moduleFilePath)
	if err != nil {
		return nil, issue.Wrap(err, issue.SchemaViolation,
			"Could not read '%s' for:\n%s", moduleFilePath, prov.SourceLocation())
	}

	return module.NewDefinition(string(template), moduleFile, prov)
}

// loadRemoteGroup fetches every module of one remote group through the
// content provider.
func (r *Resolver) loadRemoteGroup(ctx context.Context, remote spec.Remote) (map[string]*module.Definition, error) {
	provider, err := r.newProvider(remote.URL, remote.Commit)
	if err != nil {
		return nil, err
	}
	repo := provider.Repo()

	defs := make(map[string]*module.Definition, len(remote.Modules))
	for _, m := range remote.Modules {
		log.Debug("resolving remote module", "name", m.Name, "repo", remote.URL, "path", m.Path)

		prov := module.RemoteProvenance(remote.URL, repo.Owner, repo.Name, remote.Commit, m.Path, m.Name)
		template, err := provider.Fetch(ctx, joinRepoPath(m.Path, spec.ContainerfileName))
		if err != nil {
			return nil, issue.Wrap(err, issue.RemoteFetchFailure,
				"Could not retrieve '%s' for:\n%s", spec.ContainerfileName, prov.SourceLocation())
		}
		moduleFile, err := provider.Fetch(ctx, joinRepoPath(m.Path, spec.ModuleFileName))
		if err != nil {
			return nil, issue.Wrap(err, issue.RemoteFetchFailure,
				"Could not retrieve '%s' for:\n%s", spec.ModuleFileName, prov.SourceLocation())
		}

		def, err := module.NewDefinition(string(template), moduleFile, prov)
		if err != nil {
			return nil, err
		}
		defs[m.Name] = def
	}
	return defs, nil
}

// joinRepoPath joins slash-separated repository paths without touching the
// platform separator.
func joinRepoPath(parts ...string) string {
	joined := ""
	for _, p := range parts {
		if p == "" || p == "." {
			continue
		}
		if joined == "" {
			joined = p
		} else {
			joined = fmt.Sprintf("%s/%s", joined, p)
		}
	}
	return joined
}
