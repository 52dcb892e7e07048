// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"strings"

	cueerrors "cuelang.org/go/cue/errors"

	"containeryard/internal/issue"
)

// FormatError converts a CUE validation error into a SchemaViolation whose
// message lists every violation with its instance path in JSON-path
// notation, plus the schema definition the document was checked against.
//
// Error line format: <instance-path>: <message> (schema <def-path>)
func FormatError(err error, defPath, filename string) error {
	if err == nil {
		return nil
	}

	cueErrs := cueerrors.Errors(err)
	if len(cueErrs) == 0 {
		return issue.Wrap(err, issue.SchemaViolation,
			"'%s' does not follow the %s schema", filename, defPath)
	}

	var lines []string
	for _, e := range cueErrs {
		pathStr := formatPath(cueerrors.Path(e))
		msg := e.Error()

		// CUE sometimes repeats the path inside the message; strip it
		if pathStr != "" && strings.HasPrefix(msg, pathStr) {
			msg = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(msg, pathStr), ":"))
		}

		if pathStr != "" {
			lines = append(lines, pathStr+": "+msg+" (schema "+defPath+")")
		} else {
			lines = append(lines, msg+" (schema "+defPath+")")
		}
	}

	return issue.Wrap(err, issue.SchemaViolation,
		"'%s' does not follow the %s schema:\n  %s", filename, defPath, strings.Join(lines, "\n  "))
}

// formatPath converts a CUE error path such as ["outputs", "0", "tag"] to
// JSON-path notation ("outputs[0].tag").
func formatPath(path []string) string {
	if len(path) == 0 {
		return ""
	}

	var b strings.Builder
	for i, part := range path {
		isIndex := part != ""
		for _, c := range part {
			if c < '0' || c > '9' {
				isIndex = false
				break
			}
		}

		switch {
		case isIndex && i > 0:
			b.WriteString("[")
			b.WriteString(part)
			b.WriteString("]")
		case i > 0:
			b.WriteString(".")
			b.WriteString(part)
		default:
			b.WriteString(part)
		}
	}
	return b.String()
}
