// SPDX-License-Identifier: MPL-2.0

package module

import (
	"strings"

	"containeryard/internal/issue"
)

// Section markers for the single-file module document form. A section opens
// with a fence line naming its kind and closes with a bare fence:
//
//	```config
//	args:
//	  required: [tag]
//	```
//	```containerfile
//	FROM alpine:{{.tag}}
//	```
const (
	fence                = "```"
	sectionConfig        = "config"
	sectionContainerfile = "containerfile"
)

// Sections is the parsed content of a single-file module document.
type Sections struct {
	// Config is the declared-argument document; empty means the module
	// declares no variables and no required files.
	Config string
	// Containerfile is the template body. Always present in a valid document.
	Containerfile    string
	hasConfig        bool
	hasContainerfile bool
}

// HasConfig reports whether the document contained a config section.
func (s Sections) HasConfig() bool { return s.hasConfig }

// SplitSections parses a single-file module document into its fenced
// sections. A containerfile section is mandatory; a config section is
// optional. Opening a section while another is open, or reaching the end of
// the document with a section still open, is fatal. When a section kind
// appears more than once, the first completed section wins.
func SplitSections(name string, data []byte) (Sections, error) {
	var (
		result  Sections
		open    string // kind of the currently open section, "" if none
		capture []string
	)

	malformed := func(format string, args ...any) error {
		return issue.New(issue.SchemaViolation, "'%s': "+format, append([]any{name}, args...)...)
	}

	lines := strings.Split(string(data), "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == fence+sectionConfig || trimmed == fence+sectionContainerfile:
			if open != "" {
				return Sections{}, malformed(
					"section '%s' opened at line %d while section '%s' is still open",
					strings.TrimPrefix(trimmed, fence), i+1, open)
			}
			open = strings.TrimPrefix(trimmed, fence)
			capture = capture[:0]

		case trimmed == fence:
			if open == "" {
				return Sections{}, malformed("closing fence at line %d without an open section", i+1)
			}
			body := strings.Join(capture, "\n")
			switch open {
			case sectionConfig:
				if !result.hasConfig {
					result.Config = body
					result.hasConfig = true
				}
			case sectionContainerfile:
				if !result.hasContainerfile {
					result.Containerfile = body
					result.hasContainerfile = true
				}
			}
			open = ""

		default:
			if open != "" {
				capture = append(capture, line)
			}
			// text outside any section is ignored, so documents can carry
			// prose around the fences
		}
	}

	if open != "" {
		return Sections{}, malformed("section '%s' is never closed", open)
	}
	if !result.hasContainerfile {
		return Sections{}, malformed("no containerfile section found")
	}

	return result, nil
}
