// SPDX-License-Identifier: MPL-2.0

// Package spec parses and validates the top-level yard.yaml document.
//
// Parsing preserves the document's declared order everywhere order is
// externally observable: output artifacts generate in spec order, parts
// within an artifact keep their declared sequence, and module declarations
// are walked as written so duplicate-name diagnostics are deterministic.
package spec

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

const (
	// FileName is the spec document's file name under the build root.
	FileName = "yard.yaml"
	// ModuleFileName is the declared-argument document inside a module
	// directory.
	ModuleFileName = "yard-module.yaml"
	// ContainerfileName is the template body inside a module directory.
	ContainerfileName = "Containerfile"
)

// Spec is the structurally validated yard.yaml document.
type Spec struct {
	Inputs  Inputs
	Hooks   Hooks
	Outputs []Output
}

// Inputs declares where modules come from.
type Inputs struct {
	// Modules are local declarations in document order.
	Modules []LocalModule
	// Remotes are remote groups in document order.
	Remotes []Remote
}

// LocalModule is one named local module declaration.
type LocalModule struct {
	Name string
	// Path is a directory (two-file form) or a file (fenced single-file
	// form), relative to the spec root.
	Path string
}

// Remote is a group of modules pinned to one commit of one repository.
type Remote struct {
	URL    string
	Commit string
	// Modules maps module names to paths inside the repository, in document
	// order.
	Modules []RemoteModule
}

// RemoteModule is one named module inside a remote group.
type RemoteModule struct {
	Name string
	Path string
}

// Hooks holds optional shell commands that run around the build.
type Hooks struct {
	Build BuildHooks
}

// BuildHooks are the pre- and post-build commands; empty means unset.
type BuildHooks struct {
	Pre  string
	Post string
}

// Output is one declared artifact: a name and its ordered part sequence.
type Output struct {
	Name   string
	Usages []Usage
}

// Usage is a tagged variant: exactly one of Inline or Ref is set.
type Usage struct {
	Inline *InlineUsage
	Ref    *RefUsage
}

// InlineUsage is a literal block of output text.
type InlineUsage struct {
	Value string
}

// RefUsage references a declared module with provided assignments.
type RefUsage struct {
	Name string
	// Vars are the provided assignments in document order; values are raw
	// and unresolved at this stage.
	Vars []Assignment
}

// Assignment is one raw name/value pair from a usage.
type Assignment struct {
	Name  string
	Value string
}

// decode converts a parsed YAML document into a Spec. The document has
// already passed schema validation, so shape errors here indicate an
// internal inconsistency between the schema and this decoder.
func decode(root *yaml.Node) (*Spec, error) {
	doc := root
	if doc.Kind == yaml.DocumentNode {
		if len(doc.Content) != 1 {
			return nil, fmt.Errorf("internal error: expected a single-document spec")
		}
		doc = doc.Content[0]
	}

	s := &Spec{}
	for name, value := range mappingEntries(doc) {
		switch name {
		case "inputs":
			if err := decodeInputs(value, &s.Inputs); err != nil {
				return nil, err
			}
		case "hooks":
			if err := value.Decode(&hooksDoc{out: &s.Hooks}); err != nil {
				return nil, err
			}
		case "outputs":
			if err := decodeOutputs(value, &s.Outputs); err != nil {
				return nil, err
			}
		}
	}
	return s, nil
}

type hooksDoc struct {
	out *Hooks
}

// UnmarshalYAML decodes the hooks block without losing unset-vs-empty.
func (h *hooksDoc) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Build struct {
			Pre  string `yaml:"pre"`
			Post string `yaml:"post"`
		} `yaml:"build"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	h.out.Build.Pre = raw.Build.Pre
	h.out.Build.Post = raw.Build.Post
	return nil
}

func decodeInputs(node *yaml.Node, out *Inputs) error {
	for name, value := range mappingEntries(node) {
		switch name {
		case "modules":
			for moduleName, pathNode := range mappingEntries(value) {
				out.Modules = append(out.Modules, LocalModule{Name: moduleName, Path: pathNode.Value})
			}
		case "remotes":
			for _, remoteNode := range sequenceEntries(value) {
				var remote Remote
				for field, fieldValue := range mappingEntries(remoteNode) {
					switch field {
					case "url":
						remote.URL = fieldValue.Value
					case "commit":
						remote.Commit = fieldValue.Value
					case "modules":
						for moduleName, pathNode := range mappingEntries(fieldValue) {
							remote.Modules = append(remote.Modules,
								RemoteModule{Name: moduleName, Path: pathNode.Value})
						}
					}
				}
				out.Remotes = append(out.Remotes, remote)
			}
		}
	}
	return nil
}

func decodeOutputs(node *yaml.Node, out *[]Output) error {
	for artifactName, usagesNode := range mappingEntries(node) {
		output := Output{Name: artifactName}
		for _, usageNode := range sequenceEntries(usagesNode) {
			usage, err := decodeUsage(usageNode)
			if err != nil {
				return err
			}
			output.Usages = append(output.Usages, usage)
		}
		*out = append(*out, output)
	}
	return nil
}

// decodeUsage converts one part entry: a bare string is an inline literal, a
// single-key mapping is a module reference. A multi-key mapping can only
// come from a decoder/schema mismatch and is fatal.
func decodeUsage(node *yaml.Node) (Usage, error) {
	if node.Kind == yaml.ScalarNode {
		return Usage{Inline: &InlineUsage{Value: node.Value}}, nil
	}
	if node.Kind != yaml.MappingNode || len(node.Content) != 2 {
		return Usage{}, fmt.Errorf(
			"internal error: a module usage must be '- <module name>: ...', got %d keys", len(node.Content)/2)
	}

	ref := &RefUsage{Name: node.Content[0].Value}
	varsNode := node.Content[1]
	if varsNode.Kind == yaml.MappingNode {
		for varName, valueNode := range mappingEntries(varsNode) {
			ref.Vars = append(ref.Vars, Assignment{Name: varName, Value: valueNode.Value})
		}
	}
	return Usage{Ref: ref}, nil
}

// mappingEntries iterates a mapping node's key/value pairs in document
// order, including repeated keys (the spec layer reports those as duplicate
// module declarations rather than silently last-wins).
func mappingEntries(node *yaml.Node) func(func(string, *yaml.Node) bool) {
	return func(yield func(string, *yaml.Node) bool) {
		if node == nil || node.Kind != yaml.MappingNode {
			return
		}
		for i := 0; i+1 < len(node.Content); i += 2 {
			if !yield(node.Content[i].Value, node.Content[i+1]) {
				return
			}
		}
	}
}

func sequenceEntries(node *yaml.Node) []*yaml.Node {
	if node == nil || node.Kind != yaml.SequenceNode {
		return nil
	}
	return node.Content
}
