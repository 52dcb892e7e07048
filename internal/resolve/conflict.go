// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"containeryard/internal/issue"
	"containeryard/internal/module"
)

// CheckRequiredFileConflicts fails if any two modules declare the same
// required-file relative path: both would be delivered to the same
// destination under the spec root, and the second would silently overwrite
// the first. Runs once after all modules are built and before any required
// file is fetched. Module names are walked in sorted order so the reported
// pair is deterministic regardless of declaration order.
func CheckRequiredFileConflicts(definitions map[string]*module.Definition) error {
	names := maps.Keys(definitions)
	slices.Sort(names)

	claimed := map[string]*module.Definition{} // relative path -> first claimant
	for _, name := range names {
		def := definitions[name]
		for _, path := range def.RequiredFiles {
			if first, ok := claimed[path]; ok {
				return issue.New(issue.RequiredFileConflict,
					"Required file '%s' is declared by two modules and would be overwritten:\n%s\n%s",
					path, first.Provenance.SourceLocation(), def.Provenance.SourceLocation())
			}
			claimed[path] = def
		}
	}
	return nil
}
