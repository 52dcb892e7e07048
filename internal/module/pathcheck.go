// SPDX-License-Identifier: MPL-2.0

package module

import (
	"path/filepath"
	"strings"

	"containeryard/internal/issue"
)

// CheckRelativePath rejects any declared file path that could escape the
// spec root when joined to it: absolute paths, Windows volume prefixes,
// parent-directory components, and '~' components. The check is purely
// lexical; it does not consult the filesystem, so a path is rejected
// regardless of whether it currently exists.
func CheckRelativePath(path string) error {
	reject := func() error {
		return issue.New(issue.PathTraversalRejected,
			"Path '%s' is not valid. Paths must be relative, containing no '~' or '..' components.", path)
	}

	if path == "" {
		return reject()
	}
	if filepath.IsAbs(path) || filepath.VolumeName(path) != "" {
		return reject()
	}

	normalized := filepath.ToSlash(path)
	if strings.HasPrefix(normalized, "/") {
		return reject()
	}
	for _, component := range strings.Split(normalized, "/") {
		if component == ".." || component == "~" {
			return reject()
		}
	}

	return nil
}

// CheckRelativePaths applies CheckRelativePath to each path in order and
// returns the first rejection.
func CheckRelativePaths(paths []string) error {
	for _, p := range paths {
		if err := CheckRelativePath(p); err != nil {
			return err
		}
	}
	return nil
}
