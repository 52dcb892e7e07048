// SPDX-License-Identifier: MPL-2.0

package gitremote

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

const (
	extractedFilesDir = "extracted_files"
	gitReposDir       = "sources/git_repos"
)

// Cache is the process-wide on-disk store for extracted remote content and
// working clones. It is an explicit value passed into providers rather than
// ambient global state, so tests can point it at a temporary root.
type Cache struct {
	root string

	mu        sync.Mutex
	repoLocks map[string]*sync.Mutex
}

// NewCache creates a cache rooted at root.
func NewCache(root string) *Cache {
	return &Cache{
		root:      root,
		repoLocks: map[string]*sync.Mutex{},
	}
}

// Root returns the cache root directory.
func (c *Cache) Root() string { return c.root }

// ContentPath returns the deterministic cache path for a file extracted from
// a repository at a pinned commit.
func (c *Cache) ContentPath(repo Repo, relPath string) string {
	return filepath.Join(c.root, extractedFilesDir,
		repo.Provider, repo.Owner, repo.Name, repo.Commit, filepath.FromSlash(relPath))
}

// ClonePath returns the working clone directory for a repository.
func (c *Cache) ClonePath(repo Repo) string {
	return filepath.Join(c.root, gitReposDir, repo.Provider, repo.Owner, repo.Name)
}

// ReadContent returns cached content for the key, or ok=false on a miss.
func (c *Cache) ReadContent(repo Repo, relPath string) ([]byte, bool, error) {
	data, err := os.ReadFile(c.ContentPath(repo, relPath))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// WriteContent persists content at the key. Commits are immutable, so an
// existing entry is left untouched.
func (c *Cache) WriteContent(repo Repo, relPath string, data []byte) error {
	path := c.ContentPath(repo, relPath)
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LockRepo serializes mutation of one repository's working clone. It returns
// the unlock function. The content store needs no such lock: entries are
// written once and safe for concurrent reads.
func (c *Cache) LockRepo(repo Repo) func() {
	key := c.ClonePath(repo)

	c.mu.Lock()
	lock, ok := c.repoLocks[key]
	if !ok {
		lock = &sync.Mutex{}
		c.repoLocks[key] = lock
	}
	c.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
