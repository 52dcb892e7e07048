// SPDX-License-Identifier: MPL-2.0

package gitremote

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"containeryard/internal/issue"
)

// Provider fetches one file at the pinned commit, transparently cached.
type Provider interface {
	// Fetch returns the bytes of relPath inside the repository tree at the
	// pinned commit.
	Fetch(ctx context.Context, relPath string) ([]byte, error)

	// Repo returns the repository coordinates this provider serves.
	Repo() Repo
}

// GitProvider retrieves content by maintaining one working clone per
// repository and shelling out to the external git tool.
type GitProvider struct {
	repo  Repo
	cache *Cache
	git   Runner
}

// NewProvider classifies the URL and builds a git-backed provider on the
// given cache. A URL that is neither SSH nor HTTPS form fails with
// UnsupportedRemoteURL before any subprocess runs.
func NewProvider(url, commit string, cache *Cache, git Runner) (*GitProvider, error) {
	repo, err := ClassifyURL(url, commit)
	if err != nil {
		return nil, err
	}
	return &GitProvider{repo: repo, cache: cache, git: git}, nil
}

// Repo returns the repository coordinates this provider serves.
func (p *GitProvider) Repo() Repo { return p.repo }

// Fetch returns the file content at relPath for the pinned commit. The
// content cache is consulted first; a hit is never re-validated against the
// network because commits are immutable. On a miss the working clone is
// created or refreshed, the commit checked out, and the file read from the
// tree and persisted to the cache.
func (p *GitProvider) Fetch(ctx context.Context, relPath string) ([]byte, error) {
	if data, ok, err := p.cache.ReadContent(p.repo, relPath); err != nil {
		return nil, fmt.Errorf("failed to read content cache: %w", err)
	} else if ok {
		log.Debug("content cache hit", "repo", p.repo.URL, "commit", p.repo.Commit, "path", relPath)
		return data, nil
	}

	unlock := p.cache.LockRepo(p.repo)
	defer unlock()

	if err := p.syncClone(ctx); err != nil {
		return nil, err
	}

	filePath := filepath.Join(p.cache.ClonePath(p.repo), filepath.FromSlash(relPath))
	data, err := os.ReadFile(filePath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, issue.New(issue.RemoteFetchFailure,
			"Could not find file at remote path '%s' in repo '%s' at commit '%s'.",
			relPath, p.repo.URL, p.repo.Commit)
	}
	if err != nil {
		return nil, issue.Wrap(err, issue.RemoteFetchFailure,
			"Could not read '%s' from repo '%s'.", relPath, p.repo.URL)
	}

	if err := p.cache.WriteContent(p.repo, relPath, data); err != nil {
		return nil, fmt.Errorf("failed to persist content cache entry: %w", err)
	}
	log.Debug("content cached", "repo", p.repo.URL, "commit", p.repo.Commit, "path", relPath)

	return data, nil
}

// syncClone ensures the working clone exists, is up to date, and has the
// pinned commit checked out. Callers must hold the repo lock.
func (p *GitProvider) syncClone(ctx context.Context) error {
	cloneDir := p.cache.ClonePath(p.repo)

	gitDir, err := os.Stat(filepath.Join(cloneDir, ".git"))
	switch {
	case err == nil && gitDir.IsDir():
		log.Debug("refreshing working clone", "repo", p.repo.URL, "dir", cloneDir)
		if err := p.run(ctx, cloneDir, "fetch", "--all", "--prune"); err != nil {
			return err
		}

	case errors.Is(err, fs.ErrNotExist):
		if _, statErr := os.Stat(cloneDir); statErr == nil {
			return issue.New(issue.RemoteFetchFailure,
				"Cached directory for repo '%s' exists at '%s', but it is not a git directory.",
				p.repo.URL, cloneDir)
		}
		parent := filepath.Dir(cloneDir)
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return fmt.Errorf("failed to create clone directory: %w", err)
		}
		log.Debug("cloning", "repo", p.repo.URL, "dir", cloneDir)
		if err := p.run(ctx, parent, "clone", p.repo.URL, p.repo.Name); err != nil {
			return err
		}

	default:
		return fmt.Errorf("failed to inspect working clone at '%s': %w", cloneDir, err)
	}

	log.Debug("checking out commit", "repo", p.repo.URL, "commit", p.repo.Commit)
	return p.run(ctx, cloneDir, "checkout", p.repo.Commit)
}

// run invokes the external git tool, surfacing captured output verbatim on a
// non-zero exit so the operator can diagnose network or auth issues.
func (p *GitProvider) run(ctx context.Context, dir string, args ...string) error {
	stdout, stderr, err := p.git.Run(ctx, dir, args...)
	if err != nil {
		return issue.Wrap(err, issue.RemoteFetchFailure,
			"git %v failed for repo '%s'.\nstdout:\n%s\nstderr:\n%s",
			args, p.repo.URL, stdout, stderr)
	}
	return nil
}
