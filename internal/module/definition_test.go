// SPDX-License-Identifier: MPL-2.0

package module

import (
	"strings"
	"testing"

	"containeryard/internal/issue"
)

const testModuleFile = `description: base image layer
args:
  required: [tag]
  optional: [mirror]
required_files:
  - versions.txt
`

func newTestDefinition(t *testing.T) *Definition {
	t.Helper()
	def, err := NewDefinition("FROM alpine:{{.tag}}", []byte(testModuleFile), LocalProvenance("./modules/base", "base"))
	if err != nil {
		t.Fatalf("NewDefinition failed: %v", err)
	}
	return def
}

func TestNewDefinitionParsesContract(t *testing.T) {
	def := newTestDefinition(t)

	if def.Description != "base image layer" {
		t.Errorf("unexpected description: %q", def.Description)
	}
	if _, ok := def.RequiredVars["tag"]; !ok {
		t.Error("expected 'tag' to be required")
	}
	if _, ok := def.OptionalVars["mirror"]; !ok {
		t.Error("expected 'mirror' to be optional")
	}
	if len(def.RequiredFiles) != 1 || def.RequiredFiles[0] != "versions.txt" {
		t.Errorf("unexpected required files: %v", def.RequiredFiles)
	}
}

func TestNewDefinitionRejectsBadSchema(t *testing.T) {
	_, err := NewDefinition("FROM x", []byte("args: [not, a, mapping]\n"), LocalProvenance("p", "m"))
	if err == nil {
		t.Fatal("expected a schema violation")
	}
	if !issue.IsKind(err, issue.SchemaViolation) {
		t.Errorf("expected SchemaViolation, got: %v", err)
	}
}

func TestNewDefinitionRejectsBadVariableName(t *testing.T) {
	doc := "description: d\nargs:\n  required: [\"a.b\"]\n"
	_, err := NewDefinition("FROM x", []byte(doc), LocalProvenance("p", "m"))
	if err == nil {
		t.Fatal("expected an invalid variable name error")
	}
	if !issue.IsKind(err, issue.SchemaViolation) {
		t.Errorf("expected SchemaViolation, got: %v", err)
	}
	if !strings.Contains(err.Error(), "a.b") {
		t.Errorf("expected the offending name in the message, got: %v", err)
	}
}

func TestNewDefinitionRejectsTraversalInRequiredFiles(t *testing.T) {
	doc := "description: d\nrequired_files: [\"../outside\"]\n"
	_, err := NewDefinition("FROM x", []byte(doc), LocalProvenance("p", "m"))
	if err == nil {
		t.Fatal("expected a traversal rejection")
	}
	if !issue.IsKind(err, issue.PathTraversalRejected) {
		t.Errorf("expected PathTraversalRejected, got: %v", err)
	}
}

func TestNewDefinitionEmptyModuleFile(t *testing.T) {
	def, err := NewDefinition("FROM alpine", nil, LocalProvenance("p", "m"))
	if err != nil {
		t.Fatalf("NewDefinition failed: %v", err)
	}
	if len(def.RequiredVars) != 0 || len(def.OptionalVars) != 0 {
		t.Error("expected an empty contract")
	}
	if _, err := def.Finalize(); err != nil {
		t.Errorf("finalizing a contract-free module failed: %v", err)
	}
}

func TestFinalizeEnforcesContract(t *testing.T) {
	cases := []struct {
		name     string
		provided map[string]string
		wantKind issue.Kind
	}{
		{"exactly required", map[string]string{"tag": "3.20"}, issue.KindNone},
		{"required plus optional", map[string]string{"tag": "3.20", "mirror": "m"}, issue.KindNone},
		{"missing required", map[string]string{}, issue.MissingRequiredVariable},
		{"only optional", map[string]string{"mirror": "m"}, issue.MissingRequiredVariable},
		{"unknown extra", map[string]string{"tag": "3.20", "bogus": "x"}, issue.UnknownProvidedVariable},
	}

	for _, tc := range cases {
		def := newTestDefinition(t).Clone()
		for name, value := range tc.provided {
			def.Provide(name, value)
		}

		part, err := def.Finalize()
		if tc.wantKind == issue.KindNone {
			if err != nil {
				t.Errorf("%s: expected success, got: %v", tc.name, err)
			}
			continue
		}
		if part != nil || err == nil {
			t.Errorf("%s: expected failure", tc.name)
			continue
		}
		if !issue.IsKind(err, tc.wantKind) {
			t.Errorf("%s: wrong kind: %v", tc.name, err)
		}
		if !strings.Contains(err.Error(), "local module 'base'") {
			t.Errorf("%s: expected the provenance in the message, got: %v", tc.name, err)
		}
	}
}

func TestCloneIsolatesProvidedAssignments(t *testing.T) {
	base := newTestDefinition(t)

	first := base.Clone()
	first.Provide("tag", "3.19")
	second := base.Clone()
	second.Provide("tag", "3.20")

	p1, err := first.Finalize()
	if err != nil {
		t.Fatalf("first finalize failed: %v", err)
	}
	p2, err := second.Finalize()
	if err != nil {
		t.Fatalf("second finalize failed: %v", err)
	}

	if p1.Assignments()["tag"] != "3.19" || p2.Assignments()["tag"] != "3.20" {
		t.Error("assignments leaked between clones")
	}
	if _, err := base.Finalize(); err == nil {
		t.Error("the base definition should still have nothing provided")
	}
}

func TestPartIsImmutable(t *testing.T) {
	def := newTestDefinition(t)
	def.Provide("tag", "3.20")
	part, err := def.Finalize()
	if err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}

	got := part.Assignments()
	got["tag"] = "tampered"
	if part.Assignments()["tag"] != "3.20" {
		t.Error("Assignments must return a copy")
	}
	if part.Body() != "FROM alpine:{{.tag}}" {
		t.Errorf("unexpected body: %q", part.Body())
	}
	if part.Provenance().Name != "base" {
		t.Errorf("unexpected provenance: %+v", part.Provenance())
	}
}

func TestInlineDefinitionFinalizes(t *testing.T) {
	part, err := NewInlineDefinition("RUN true").Finalize()
	if err != nil {
		t.Fatalf("inline finalize failed: %v", err)
	}
	if part.Body() != "RUN true" {
		t.Errorf("unexpected body: %q", part.Body())
	}
	if part.Provenance().Kind != ProvenanceInline {
		t.Errorf("unexpected provenance kind: %v", part.Provenance().Kind)
	}
}

func TestSourceLocationFormats(t *testing.T) {
	local := LocalProvenance("./modules/base", "base").SourceLocation()
	if !strings.Contains(local, "base") || !strings.Contains(local, "./modules/base") {
		t.Errorf("unexpected local location: %q", local)
	}

	remote := RemoteProvenance("git@github.com:o/r.git", "o", "r", "abc123", "modules/rust", "rust").SourceLocation()
	for _, want := range []string{"rust", "git@github.com:o/r.git", "abc123", "modules/rust"} {
		if !strings.Contains(remote, want) {
			t.Errorf("remote location missing %q: %q", want, remote)
		}
	}

	inline := InlineProvenance("RUN true").SourceLocation()
	if !strings.Contains(inline, "RUN true") {
		t.Errorf("unexpected inline location: %q", inline)
	}
}
