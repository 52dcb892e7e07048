// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueyaml "cuelang.org/go/encoding/yaml"
)

// ValidateYAML checks a YAML document against the schema definition at
// defPath (e.g. "#Spec") inside the embedded schema source. A schema that
// fails to compile is a programming error and is reported as an internal
// error; a document that fails validation is reported as a SchemaViolation
// carrying instance and schema paths.
func ValidateYAML(schema []byte, defPath, filename string, data []byte) error {
	ctx := cuecontext.New()

	schemaValue := ctx.CompileBytes(schema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile schema: %w", schemaValue.Err())
	}

	schemaRoot := schemaValue.LookupPath(cue.ParsePath(defPath))
	if schemaRoot.Err() != nil {
		return fmt.Errorf("internal error: schema definition %s not found: %w", defPath, schemaRoot.Err())
	}

	file, err := cueyaml.Extract(filename, data)
	if err != nil {
		return FormatError(err, defPath, filename)
	}

	docValue := ctx.BuildFile(file)
	if docValue.Err() != nil {
		return FormatError(docValue.Err(), defPath, filename)
	}

	unified := schemaRoot.Unify(docValue)
	if err := unified.Validate(cue.Concrete(true), cue.Final()); err != nil {
		return FormatError(err, defPath, filename)
	}

	return nil
}
