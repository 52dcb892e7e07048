// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"testing"
)

func TestNewCarriesKindAndMessage(t *testing.T) {
	err := New(DuplicateModuleName, "module '%s' declared twice", "rust")

	if err.Kind != DuplicateModuleName {
		t.Errorf("expected DuplicateModuleName, got %v", err.Kind)
	}
	if err.Error() != "module 'rust' declared twice" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestWrapChainsMessages(t *testing.T) {
	inner := New(RemoteFetchFailure, "git exited with status 128")
	outer := Wrap(inner, KindNone, "could not resolve inputs")

	if got := outer.Error(); got != "could not resolve inputs: git exited with status 128" {
		t.Errorf("unexpected chained message: %q", got)
	}
	if !errors.Is(outer, outer) {
		t.Error("expected outer to match itself")
	}
	if errors.Unwrap(outer) != error(inner) {
		t.Error("expected Unwrap to return the inner error")
	}
}

func TestIsKindWalksChain(t *testing.T) {
	err := Wrap(
		Wrap(New(TemplateRenderError, "render failed"), KindNone, "could not apply templates"),
		KindNone, "build failed")

	if !IsKind(err, TemplateRenderError) {
		t.Error("expected TemplateRenderError to be found through wrappers")
	}
	if IsKind(err, HookFailure) {
		t.Error("did not expect HookFailure in the chain")
	}
	if IsKind(errors.New("plain"), TemplateRenderError) {
		t.Error("plain errors carry no kind")
	}
}

func TestKindOfSkipsWrapperMessages(t *testing.T) {
	err := Wrap(New(SchemaViolation, "bad spec"), KindNone, "could not parse 'yard.yaml'")

	kind, ok := KindOf(err)
	if !ok {
		t.Fatal("expected a classified chain")
	}
	if kind != SchemaViolation {
		t.Errorf("expected SchemaViolation, got %v", kind)
	}
}

func TestKindOfOnUnclassifiedChains(t *testing.T) {
	kind, ok := KindOf(New(KindNone, "env var missing"))
	if !ok || kind != KindNone {
		t.Errorf("expected (KindNone, true), got (%v, %v)", kind, ok)
	}

	if _, ok := KindOf(errors.New("plain")); ok {
		t.Error("plain errors should report no kind at all")
	}
	if _, ok := KindOf(nil); ok {
		t.Error("nil should report no kind at all")
	}
}

func TestKindOfThroughForeignWrapper(t *testing.T) {
	err := fmt.Errorf("stage failed: %w", New(RequiredFileConflict, "conflict"))

	kind, ok := KindOf(err)
	if !ok || kind != RequiredFileConflict {
		t.Errorf("expected RequiredFileConflict through fmt wrapper, got (%v, %v)", kind, ok)
	}
}

func TestUserMessagesOutermostFirst(t *testing.T) {
	err := Wrap(
		Wrap(New(MissingRequiredVariable, "Required variable 'tag' not found"), KindNone, "Could not finalize module 'base'."),
		KindNone, "Could not parse 'yard.yaml'.")

	msgs := UserMessages(err)
	want := []string{
		"Could not parse 'yard.yaml'.",
		"Could not finalize module 'base'.",
		"Required variable 'tag' not found",
	}
	if len(msgs) != len(want) {
		t.Fatalf("expected %d messages, got %d: %v", len(want), len(msgs), msgs)
	}
	for i := range want {
		if msgs[i] != want[i] {
			t.Errorf("message %d: expected %q, got %q", i, want[i], msgs[i])
		}
	}
}

func TestUserMessagesOnPlainError(t *testing.T) {
	if msgs := UserMessages(errors.New("plain")); len(msgs) != 0 {
		t.Errorf("expected no messages, got %v", msgs)
	}
}

func TestKindStringsAreStable(t *testing.T) {
	kinds := []Kind{
		SchemaViolation, DuplicateModuleName, UnknownModuleReference,
		MissingRequiredVariable, UnknownProvidedVariable, PathTraversalRejected,
		RequiredFileConflict, RemoteFetchFailure, UnsupportedRemoteURL,
		TemplateRenderError, NoModulesResolved, NoArtifactsProduced, HookFailure,
	}
	seen := map[string]Kind{}
	for _, k := range kinds {
		s := k.String()
		if s == "" || s == "error" {
			t.Errorf("kind %d has no stable name", k)
		}
		if prior, ok := seen[s]; ok {
			t.Errorf("kinds %d and %d share the name %q", prior, k, s)
		}
		seen[s] = k
	}
}
