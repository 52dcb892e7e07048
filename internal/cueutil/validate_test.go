// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"strings"
	"testing"

	"containeryard/internal/issue"
)

var testSchema = []byte(`
#Doc: {
	name: string
	count?: int
	tags?: [...string]
}
`)

func TestValidateYAMLAccepts(t *testing.T) {
	docs := []string{
		"name: base\n",
		"name: base\ncount: 3\n",
		"name: base\ntags: [a, b]\n",
	}
	for _, doc := range docs {
		if err := ValidateYAML(testSchema, "#Doc", "doc.yaml", []byte(doc)); err != nil {
			t.Errorf("expected %q to validate, got: %v", doc, err)
		}
	}
}

func TestValidateYAMLRejectsWrongType(t *testing.T) {
	err := ValidateYAML(testSchema, "#Doc", "doc.yaml", []byte("name: base\ncount: nope\n"))
	if err == nil {
		t.Fatal("expected a validation error")
	}
	if !issue.IsKind(err, issue.SchemaViolation) {
		t.Errorf("expected SchemaViolation, got: %v", err)
	}
	if !strings.Contains(err.Error(), "count") {
		t.Errorf("expected the instance path in the message, got: %v", err)
	}
	if !strings.Contains(err.Error(), "#Doc") {
		t.Errorf("expected the schema path in the message, got: %v", err)
	}
}

func TestValidateYAMLRejectsMissingRequiredField(t *testing.T) {
	err := ValidateYAML(testSchema, "#Doc", "doc.yaml", []byte("count: 3\n"))
	if err == nil {
		t.Fatal("expected a validation error for a missing required field")
	}
	if !issue.IsKind(err, issue.SchemaViolation) {
		t.Errorf("expected SchemaViolation, got: %v", err)
	}
}

func TestValidateYAMLRejectsMalformedYAML(t *testing.T) {
	err := ValidateYAML(testSchema, "#Doc", "doc.yaml", []byte("name: [unclosed\n"))
	if err == nil {
		t.Fatal("expected an error for malformed yaml")
	}
	if !issue.IsKind(err, issue.SchemaViolation) {
		t.Errorf("expected SchemaViolation, got: %v", err)
	}
}

func TestValidateYAMLMissingDefinitionIsInternal(t *testing.T) {
	err := ValidateYAML(testSchema, "#Nope", "doc.yaml", []byte("name: base\n"))
	if err == nil {
		t.Fatal("expected an error for an unknown schema definition")
	}
	if issue.IsKind(err, issue.SchemaViolation) {
		t.Error("a missing definition is a programming error, not a document problem")
	}
}

func TestFormatPath(t *testing.T) {
	cases := []struct {
		path []string
		want string
	}{
		{nil, ""},
		{[]string{"outputs"}, "outputs"},
		{[]string{"outputs", "Containerfile"}, "outputs.Containerfile"},
		{[]string{"outputs", "0", "tag"}, "outputs[0].tag"},
		{[]string{"inputs", "remotes", "1", "url"}, "inputs.remotes[1].url"},
	}
	for _, tc := range cases {
		if got := formatPath(tc.path); got != tc.want {
			t.Errorf("formatPath(%v): expected %q, got %q", tc.path, tc.want, got)
		}
	}
}
