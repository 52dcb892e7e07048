// SPDX-License-Identifier: MPL-2.0

// Package compose renders finalized module parts and concatenates them into
// output artifacts.
//
// Each part renders in isolation: the template context contains only that
// part's own resolved assignments, so one module's variables can never leak
// into another's template. Writing happens only after every part of every
// artifact has rendered successfully, so a render failure never leaves a
// half-written artifact set from this stage (hook-stage non-atomicity is a
// separate, documented property).
package compose

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/charmbracelet/log"

	"containeryard/internal/issue"
	"containeryard/internal/module"
)

// Separator joins rendered parts within one artifact.
const Separator = "\n"

// Artifact is one declared output: a name and its ordered finalized parts.
type Artifact struct {
	Name  string
	Parts []*module.Part
}

// Rendered is one fully rendered artifact, ready to write.
type Rendered struct {
	Name    string
	Content string
}

// Compositor renders artifacts from finalized parts.
type Compositor struct {
	// Banner prefixes each part with a human-readable provenance comment.
	// It only affects output readability, never semantics.
	Banner bool
}

// Render renders every part of every artifact, in declared order, and
// returns one text blob per artifact. Any render failure aborts the whole
// set with a TemplateRenderError carrying the offending part's provenance.
// An empty artifact set is a fatal NoArtifactsProduced.
func (c *Compositor) Render(artifacts []Artifact) ([]Rendered, error) {
	var rendered []Rendered
	for _, artifact := range artifacts {
		parts := make([]string, 0, len(artifact.Parts))
		for _, part := range artifact.Parts {
			text, err := c.renderPart(part)
			if err != nil {
				return nil, err
			}
			parts = append(parts, text)
		}
		rendered = append(rendered, Rendered{
			Name:    artifact.Name,
			Content: strings.Join(parts, Separator),
		})
	}

	if len(rendered) == 0 {
		return nil, issue.New(issue.NoArtifactsProduced, "No Containerfiles were created.")
	}
	return rendered, nil
}

// renderPart renders one part with its own assignments as the entire
// context. Inline parts are passed through raw.
func (c *Compositor) renderPart(part *module.Part) (string, error) {
	prov := part.Provenance()

	body := part.Body()
	if prov.Kind != module.ProvenanceInline {
		tmpl, err := template.New(prov.SourceLocation()).Option("missingkey=error").Parse(body)
		if err != nil {
			return "", issue.Wrap(err, issue.TemplateRenderError,
				"Could not render template for Containerfile part found at:\n%s", prov.SourceLocation())
		}
		var sb strings.Builder
		if err := tmpl.Execute(&sb, part.Assignments()); err != nil {
			return "", issue.Wrap(err, issue.TemplateRenderError,
				"Could not render template for Containerfile part found at:\n%s", prov.SourceLocation())
		}
		body = sb.String()
	}

	if c.Banner {
		return banner(prov) + body, nil
	}
	return body, nil
}

// banner formats the readability prefix for one part.
func banner(prov module.Provenance) string {
	return fmt.Sprintf("# yard: %s\n", prov.SourceLocation())
}

// WriteOutputs writes each rendered artifact under dir, printing one
// success line per file. Partial output on a late write failure is accepted
// behavior: files already written stay on disk.
func WriteOutputs(dir string, rendered []Rendered, progress io.Writer) error {
	for _, artifact := range rendered {
		path := filepath.Join(dir, artifact.Name)
		if err := os.WriteFile(path, []byte(artifact.Content), 0o644); err != nil {
			return issue.Wrap(err, issue.KindNone,
				"Could not write to '%s'.", artifact.Name)
		}
		log.Debug("wrote artifact", "name", artifact.Name, "bytes", len(artifact.Content))

		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		if progress != nil {
			fmt.Fprintf(progress, "Created '%s' at '%s'\n", artifact.Name, abs)
		}
	}
	return nil
}
