// SPDX-License-Identifier: MPL-2.0

package module

import (
	"fmt"
	"text/template"
	"text/template/parse"
)

// probeIdentifier verifies that name is a legal template variable by running
// a no-op probe through the same engine that renders module bodies, so the
// check always matches what the renderer accepts. The accepted grammar is
// [A-Za-z_][A-Za-z0-9_]*.
//
// Parsing alone is not enough: a name like "a.b" parses as a field chain and
// "" parses as the bare dot, so the probe also requires that the parse tree
// is exactly one single-identifier field access.
func probeIdentifier(name string) error {
	invalid := func() error {
		return fmt.Errorf("'%s' is not a legal template variable name", name)
	}

	tmpl, err := template.New("probe").Parse("{{." + name + "}}")
	if err != nil {
		return invalid()
	}

	nodes := tmpl.Tree.Root.Nodes
	if len(nodes) != 1 {
		return invalid()
	}
	action, ok := nodes[0].(*parse.ActionNode)
	if !ok || len(action.Pipe.Cmds) != 1 || len(action.Pipe.Cmds[0].Args) != 1 {
		return invalid()
	}
	field, ok := action.Pipe.Cmds[0].Args[0].(*parse.FieldNode)
	if !ok || len(field.Ident) != 1 || field.Ident[0] != name {
		return invalid()
	}

	return nil
}
