// SPDX-License-Identifier: MPL-2.0

package gitremote

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"containeryard/internal/issue"
)

// fakeGit records every invocation and simulates clone, fetch, and checkout
// by manipulating the clone directory. Files maps repo-relative paths to the
// content a successful clone produces.
type fakeGit struct {
	calls []string
	files map[string]string
	fail  string // subcommand that should exit non-zero, "" for none
}

func (f *fakeGit) Run(ctx context.Context, dir string, args ...string) (string, string, error) {
	f.calls = append(f.calls, strings.Join(args, " "))

	sub := args[0]
	if sub == f.fail {
		return "", fmt.Sprintf("fatal: simulated %s failure", sub), errors.New("exit status 128")
	}

	switch sub {
	case "clone":
		cloneDir := filepath.Join(dir, args[2])
		if err := os.MkdirAll(filepath.Join(cloneDir, ".git"), 0o755); err != nil {
			return "", "", err
		}
		for rel, content := range f.files {
			path := filepath.Join(cloneDir, filepath.FromSlash(rel))
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return "", "", err
			}
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				return "", "", err
			}
		}
	case "fetch", "checkout":
		// tree state is set up by clone in these tests
	}
	return "", "", nil
}

func newTestProvider(t *testing.T, git *fakeGit) (*GitProvider, *Cache) {
	t.Helper()
	cache := NewCache(t.TempDir())
	p, err := NewProvider("https://github.com/owner/repo.git", "abc123", cache, git)
	if err != nil {
		t.Fatalf("NewProvider failed: %v", err)
	}
	return p, cache
}

func TestNewProviderRejectsBadURL(t *testing.T) {
	_, err := NewProvider("ftp://nope", "abc123", NewCache(t.TempDir()), &fakeGit{})
	if err == nil {
		t.Fatal("expected a rejection")
	}
	if !issue.IsKind(err, issue.UnsupportedRemoteURL) {
		t.Errorf("expected UnsupportedRemoteURL, got: %v", err)
	}
}

func TestFetchClonesOnFirstUse(t *testing.T) {
	git := &fakeGit{files: map[string]string{"modules/rust/Containerfile": "FROM rust"}}
	p, _ := newTestProvider(t, git)

	data, err := p.Fetch(context.Background(), "modules/rust/Containerfile")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if string(data) != "FROM rust" {
		t.Errorf("unexpected content: %q", data)
	}

	want := []string{
		"clone https://github.com/owner/repo.git repo",
		"checkout abc123",
	}
	if len(git.calls) != len(want) {
		t.Fatalf("expected calls %v, got %v", want, git.calls)
	}
	for i := range want {
		if git.calls[i] != want[i] {
			t.Errorf("call %d: expected %q, got %q", i, want[i], git.calls[i])
		}
	}
}

func TestFetchRefreshesExistingClone(t *testing.T) {
	git := &fakeGit{files: map[string]string{"f.txt": "content"}}
	p, cache := newTestProvider(t, git)

	cloneDir := cache.ClonePath(p.Repo())
	if err := os.MkdirAll(filepath.Join(cloneDir, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cloneDir, "f.txt"), []byte("content"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := p.Fetch(context.Background(), "f.txt"); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	want := []string{"fetch --all --prune", "checkout abc123"}
	if len(git.calls) != len(want) || git.calls[0] != want[0] || git.calls[1] != want[1] {
		t.Errorf("expected calls %v, got %v", want, git.calls)
	}
}

func TestFetchCacheHitRunsNoSubprocess(t *testing.T) {
	git := &fakeGit{files: map[string]string{"f.txt": "content"}}
	p, _ := newTestProvider(t, git)

	if _, err := p.Fetch(context.Background(), "f.txt"); err != nil {
		t.Fatalf("first Fetch failed: %v", err)
	}
	callsAfterFirst := len(git.calls)

	data, err := p.Fetch(context.Background(), "f.txt")
	if err != nil {
		t.Fatalf("second Fetch failed: %v", err)
	}
	if string(data) != "content" {
		t.Errorf("unexpected cached content: %q", data)
	}
	if len(git.calls) != callsAfterFirst {
		t.Errorf("a cache hit must not shell out, calls grew from %d to %d", callsAfterFirst, len(git.calls))
	}
}

func TestFetchMissingFileInTree(t *testing.T) {
	git := &fakeGit{files: map[string]string{"present.txt": "x"}}
	p, _ := newTestProvider(t, git)

	_, err := p.Fetch(context.Background(), "absent.txt")
	if err == nil {
		t.Fatal("expected a failure for a file missing from the tree")
	}
	if !issue.IsKind(err, issue.RemoteFetchFailure) {
		t.Errorf("expected RemoteFetchFailure, got: %v", err)
	}
	if !strings.Contains(err.Error(), "absent.txt") {
		t.Errorf("expected the path in the message, got: %v", err)
	}
}

func TestFetchNonGitDirectoryInCacheIsFatal(t *testing.T) {
	git := &fakeGit{}
	p, cache := newTestProvider(t, git)

	if err := os.MkdirAll(cache.ClonePath(p.Repo()), 0o755); err != nil {
		t.Fatal(err)
	}

	_, err := p.Fetch(context.Background(), "f.txt")
	if err == nil {
		t.Fatal("expected a failure for a non-git cache directory")
	}
	if !issue.IsKind(err, issue.RemoteFetchFailure) {
		t.Errorf("expected RemoteFetchFailure, got: %v", err)
	}
	if len(git.calls) != 0 {
		t.Errorf("no subprocess should run for a poisoned cache dir, got %v", git.calls)
	}
}

func TestFetchSurfacesGitOutputOnFailure(t *testing.T) {
	git := &fakeGit{fail: "clone"}
	p, _ := newTestProvider(t, git)

	_, err := p.Fetch(context.Background(), "f.txt")
	if err == nil {
		t.Fatal("expected the clone failure to propagate")
	}
	if !issue.IsKind(err, issue.RemoteFetchFailure) {
		t.Errorf("expected RemoteFetchFailure, got: %v", err)
	}
	if !strings.Contains(err.Error(), "simulated clone failure") {
		t.Errorf("expected captured stderr in the message, got: %v", err)
	}
}
