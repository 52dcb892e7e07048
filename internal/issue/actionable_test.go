// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"strings"
	"testing"
)

// passthroughRender bypasses glamour so guidance content can be asserted
// without terminal detection.
func passthroughRender(t *testing.T) {
	t.Helper()
	prior := render
	render = func(md string) (string, error) { return md, nil }
	t.Cleanup(func() { render = prior })
}

func TestGuidanceForGuidedKind(t *testing.T) {
	passthroughRender(t)

	err := New(UnsupportedRemoteURL, "Unknown url type for 'ftp://x'.")
	help, ok := Guidance(err)
	if !ok {
		t.Fatal("expected guidance for UnsupportedRemoteURL")
	}
	if !strings.Contains(help, "git@github.com:owner/repo.git") {
		t.Errorf("guidance should show the accepted URL forms, got:\n%s", help)
	}
}

func TestGuidanceReachesThroughWrappers(t *testing.T) {
	passthroughRender(t)

	err := Wrap(New(RemoteFetchFailure, "git exited with status 128"), KindNone, "Could not resolve inputs.")
	if _, ok := Guidance(err); !ok {
		t.Error("expected guidance for a wrapped RemoteFetchFailure")
	}
}

func TestGuidanceAbsentForUnguidedKinds(t *testing.T) {
	if _, ok := Guidance(New(DuplicateModuleName, "dup")); ok {
		t.Error("DuplicateModuleName should have no guidance entry")
	}
	if _, ok := Guidance(nil); ok {
		t.Error("nil should have no guidance")
	}
}

func TestGuidanceFallsBackToRawMarkdown(t *testing.T) {
	prior := render
	render = func(md string) (string, error) { return "", errors.New("render broken") }
	t.Cleanup(func() { render = prior })

	help, ok := Guidance(New(HookFailure, "hook failed"))
	if !ok {
		t.Fatal("expected guidance even when rendering fails")
	}
	if !strings.Contains(help, "hooks.build") {
		t.Errorf("expected the raw markdown fallback, got:\n%s", help)
	}
}

func TestGuidedKindsSorted(t *testing.T) {
	kinds := GuidedKinds()
	if len(kinds) == 0 {
		t.Fatal("expected at least one guided kind")
	}
	for i := 1; i < len(kinds); i++ {
		if kinds[i-1] >= kinds[i] {
			t.Errorf("guided kinds not sorted at index %d: %v", i, kinds)
		}
	}
}
