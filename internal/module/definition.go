// SPDX-License-Identifier: MPL-2.0

package module

import (
	_ "embed"

	"gopkg.in/yaml.v3"

	"containeryard/internal/cueutil"
	"containeryard/internal/issue"
)

//go:embed module_schema.cue
var moduleSchema []byte

// moduleDoc mirrors the yard-module.yaml shape after schema validation.
type moduleDoc struct {
	Description string `yaml:"description"`
	Args        struct {
		Required []string `yaml:"required"`
		Optional []string `yaml:"optional"`
	} `yaml:"args"`
	RequiredFiles []string `yaml:"required_files"`
}

// Definition is the unfinalized form of a module for one usage: the template
// body plus the declared contract, accumulating provided assignments until
// Finalize validates them into an immutable Part.
type Definition struct {
	// Template is the raw Containerfile template body.
	Template string
	// Description is the module's declared description.
	Description string
	// RequiredVars must all be provided by a usage.
	RequiredVars map[string]struct{}
	// OptionalVars may be provided by a usage.
	OptionalVars map[string]struct{}
	// RequiredFiles are relative paths the module expects at the spec root.
	RequiredFiles []string
	// Provenance records where the module content came from.
	Provenance Provenance

	provided map[string]string
}

// NewDefinition validates a declared-argument document against the module
// schema and builds the definition. Every declared variable name is probed
// through the template engine, and every required-file path is checked for
// traversal safety at declaration time.
func NewDefinition(template string, moduleFile []byte, prov Provenance) (*Definition, error) {
	var doc moduleDoc
	if len(moduleFile) > 0 {
		if err := cueutil.ValidateYAML(moduleSchema, "#Module", prov.SourceLocation(), moduleFile); err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(moduleFile, &doc); err != nil {
			return nil, issue.Wrap(err, issue.SchemaViolation,
				"could not decode the module document for %s", prov.SourceLocation())
		}
	}

	def := &Definition{
		Template:      template,
		Description:   doc.Description,
		RequiredVars:  make(map[string]struct{}, len(doc.Args.Required)),
		OptionalVars:  make(map[string]struct{}, len(doc.Args.Optional)),
		RequiredFiles: doc.RequiredFiles,
		Provenance:    prov,
		provided:      map[string]string{},
	}

	for _, name := range doc.Args.Required {
		if err := probeIdentifier(name); err != nil {
			return nil, issue.Wrap(err, issue.SchemaViolation,
				"invalid required variable name '%s' for:\n%s", name, prov.SourceLocation())
		}
		def.RequiredVars[name] = struct{}{}
	}
	for _, name := range doc.Args.Optional {
		if err := probeIdentifier(name); err != nil {
			return nil, issue.Wrap(err, issue.SchemaViolation,
				"invalid optional variable name '%s' for:\n%s", name, prov.SourceLocation())
		}
		def.OptionalVars[name] = struct{}{}
	}

	for _, path := range def.RequiredFiles {
		if err := CheckRelativePath(path); err != nil {
			return nil, issue.Wrap(err, issue.PathTraversalRejected,
				"invalid required file path for:\n%s", prov.SourceLocation())
		}
	}

	return def, nil
}

// NewInlineDefinition wraps a literal output part. Inline parts declare no
// variables and no required files; finalizing one never fails.
func NewInlineDefinition(value string) *Definition {
	return &Definition{
		Template:     value,
		RequiredVars: map[string]struct{}{},
		OptionalVars: map[string]struct{}{},
		Provenance:   InlineProvenance(value),
		provided:     map[string]string{},
	}
}

// Clone returns an independent copy for one usage, so provided assignments
// never leak between usages of the same module.
func (d *Definition) Clone() *Definition {
	clone := *d
	clone.provided = make(map[string]string, len(d.provided))
	for k, v := range d.provided {
		clone.provided[k] = v
	}
	return &clone
}

// Provide stages one resolved assignment for the next Finalize call.
func (d *Definition) Provide(name, value string) {
	d.provided[name] = value
}

// Finalize is the single validating constructor for Part. It enforces the
// variable contract (required ⊆ provided ⊆ required ∪ optional), re-checks
// required-file paths, and freezes the staged assignments.
func (d *Definition) Finalize() (*Part, error) {
	for name := range d.RequiredVars {
		if _, ok := d.provided[name]; !ok {
			return nil, issue.New(issue.MissingRequiredVariable,
				"Required variable '%s' not found for:\n%s", name, d.Provenance.SourceLocation())
		}
	}
	for name := range d.provided {
		_, required := d.RequiredVars[name]
		_, optional := d.OptionalVars[name]
		if !required && !optional {
			return nil, issue.New(issue.UnknownProvidedVariable,
				"Provided template variable '%s' not found in the module for:\n%s",
				name, d.Provenance.SourceLocation())
		}
	}

	// Already checked at declaration time; kept as defense in depth.
	if err := CheckRelativePaths(d.RequiredFiles); err != nil {
		return nil, err
	}

	assignments := make(map[string]string, len(d.provided))
	for k, v := range d.provided {
		assignments[k] = v
	}

	return &Part{
		body:        d.Template,
		assignments: assignments,
		provenance:  d.Provenance,
	}, nil
}

// Part is a finalized, immutable artifact part, ready to render. It can only
// be constructed through Definition.Finalize.
type Part struct {
	body        string
	assignments map[string]string
	provenance  Provenance
}

// Body returns the raw or template body.
func (p *Part) Body() string { return p.body }

// Assignments returns a copy of the resolved assignments.
func (p *Part) Assignments() map[string]string {
	out := make(map[string]string, len(p.assignments))
	for k, v := range p.assignments {
		out[k] = v
	}
	return out
}

// Provenance returns where this part's content originated.
func (p *Part) Provenance() Provenance { return p.provenance }
