// SPDX-License-Identifier: MPL-2.0

package spec

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"containeryard/internal/cueutil"
	"containeryard/internal/issue"
)

//go:embed spec_schema.cue
var specSchema []byte

// HookFunc runs one build hook command; see the hook package for the
// production implementation. Injected to keep spec parsing testable without
// spawning shells.
type HookFunc func(ctx context.Context, command string) error

// Load reads, validates, and decodes the yard.yaml under dir. If the spec
// configures a pre-build hook, the hook runs before parsing continues and,
// because it may rewrite the spec file, the document is re-read and
// re-validated afterwards, exactly once. Hook failure is fatal.
func Load(ctx context.Context, dir string, runHook HookFunc) (*Spec, error) {
	s, err := parseFile(dir)
	if err != nil {
		return nil, err
	}

	if pre := s.Hooks.Build.Pre; pre != "" && runHook != nil {
		log.Debug("running pre-build hook", "command", pre)
		if err := runHook(ctx, pre); err != nil {
			return nil, issue.Wrap(err, issue.HookFailure, "Pre-build hook failed.")
		}
		// The hook may have rewritten yard.yaml; trust only the re-read.
		s, err = parseFile(dir)
		if err != nil {
			return nil, err
		}
	}

	return s, nil
}

// parseFile performs one read-validate-decode pass over the spec document.
func parseFile(dir string) (*Spec, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, issue.Wrap(err, issue.SchemaViolation, "Could not read '%s'.", path)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, issue.Wrap(err, issue.SchemaViolation, "'%s' is not valid yaml.", path)
	}

	// Duplicate module names are diagnosed from the syntax tree before
	// schema validation: CUE unification would otherwise mask a repeated
	// mapping key as a generic conflict.
	if err := checkDuplicateNames(&root); err != nil {
		return nil, err
	}

	if err := cueutil.ValidateYAML(specSchema, "#Spec", path, data); err != nil {
		return nil, err
	}

	s, err := decode(&root)
	if err != nil {
		return nil, fmt.Errorf("could not decode '%s': %w", path, err)
	}
	if len(s.Outputs) == 0 {
		// Unreachable past schema validation; kept as defense in depth.
		return nil, issue.New(issue.SchemaViolation, "'%s' declares no outputs.", path)
	}
	return s, nil
}

// checkDuplicateNames scans every module declaration (local and remote) and
// fails on the first name declared twice, naming both declaration sites.
// The scan is tolerant of shape errors; those are left for schema
// validation to report properly.
func checkDuplicateNames(root *yaml.Node) error {
	doc := root
	if doc.Kind == yaml.DocumentNode && len(doc.Content) == 1 {
		doc = doc.Content[0]
	}

	declared := map[string]string{} // name -> description of first site

	declare := func(name, site string) error {
		if first, ok := declared[name]; ok {
			return issue.New(issue.DuplicateModuleName,
				"A module named '%s' is declared more than once: %s and %s.", name, first, site)
		}
		declared[name] = site
		return nil
	}

	for key, value := range mappingEntries(doc) {
		if key != "inputs" {
			continue
		}
		for section, sectionValue := range mappingEntries(value) {
			switch section {
			case "modules":
				for name, pathNode := range mappingEntries(sectionValue) {
					if err := declare(name, fmt.Sprintf("local path '%s'", pathNode.Value)); err != nil {
						return err
					}
				}
			case "remotes":
				for _, remoteNode := range sequenceEntries(sectionValue) {
					url := "?"
					for field, fieldValue := range mappingEntries(remoteNode) {
						if field == "url" {
							url = fieldValue.Value
						}
					}
					for field, fieldValue := range mappingEntries(remoteNode) {
						if field != "modules" {
							continue
						}
						for name := range mappingEntries(fieldValue) {
							if err := declare(name, fmt.Sprintf("remote '%s'", url)); err != nil {
								return err
							}
						}
					}
				}
			}
		}
	}
	return nil
}
