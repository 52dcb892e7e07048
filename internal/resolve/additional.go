// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"containeryard/internal/issue"
	"containeryard/internal/module"
)

// FetchRequiredFiles delivers every module's declared required files to
// their destinations under the spec root.
//
// Local modules must already have their files in place; a missing one is
// fatal. Remote modules have theirs downloaded from the module's repository
// path. When doNotRefetch is set, a file that already exists at its final
// destination is skipped; that is an existence check on the destination, not
// a cache lookup, intended to speed up iterative local testing.
func (r *Resolver) FetchRequiredFiles(
	ctx context.Context,
	definitions map[string]*module.Definition,
	doNotRefetch bool,
	progress io.Writer,
) error {
	names := maps.Keys(definitions)
	slices.Sort(names)

	for _, name := range names {
		def := definitions[name]
		switch def.Provenance.Kind {
		case module.ProvenanceLocal:
			for _, relPath := range def.RequiredFiles {
				dest := filepath.Join(r.Dir, filepath.FromSlash(relPath))
				if _, err := os.Stat(dest); err != nil {
					return issue.Wrap(err, issue.SchemaViolation,
						"Required file '%s' does not exist for:\n%s", relPath, def.Provenance.SourceLocation())
				}
			}

		case module.ProvenanceRemote:
			if err := r.fetchRemoteFiles(ctx, def, doNotRefetch, progress); err != nil {
				return err
			}

		case module.ProvenanceInline:
			// inline parts never declare files
		}
	}
	return nil
}

func (r *Resolver) fetchRemoteFiles(
	ctx context.Context,
	def *module.Definition,
	doNotRefetch bool,
	progress io.Writer,
) error {
	if len(def.RequiredFiles) == 0 {
		return nil
	}

	prov := def.Provenance
	provider, err := r.newProvider(prov.URL, prov.Commit)
	if err != nil {
		return err
	}

	for _, relPath := range def.RequiredFiles {
		dest := filepath.Join(r.Dir, filepath.FromSlash(relPath))

		if doNotRefetch {
			if _, err := os.Stat(dest); err == nil {
				if progress != nil {
					fmt.Fprintf(progress, "Found '%s' locally. Not downloading.\n", dest)
				}
				continue
			}
		}

		if err := module.CheckRelativePath(relPath); err != nil {
			return err
		}

		log.Debug("downloading required file", "module", prov.Name, "path", relPath)
		data, err := provider.Fetch(ctx, joinRepoPath(prov.Path, relPath))
		if err != nil {
			return issue.Wrap(err, issue.RemoteFetchFailure,
				"Could not download '%s' at\n%s", relPath, prov.SourceLocation())
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return fmt.Errorf("failed to create directory for '%s': %w", dest, err)
		}
		if err := os.WriteFile(dest, data, 0o644); err != nil {
			return fmt.Errorf("failed to write '%s': %w", dest, err)
		}
	}
	return nil
}
