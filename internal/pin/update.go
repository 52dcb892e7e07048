// SPDX-License-Identifier: MPL-2.0

// Package pin refreshes the commit pins in a yard.yaml by textual rewrite:
// it scans for url/commit line pairs and replaces each commit hash with the
// remote's current HEAD, touching nothing else on the line, so indentation
// and trailing comments survive.
package pin

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"

	"containeryard/internal/gitremote"
	"containeryard/internal/issue"
	"containeryard/internal/spec"
)

// The patterns accept an optional sequence dash so both spellings of a
// remote entry ("- url:" and a continued "url:"/"commit:" line) match.
var (
	commitLinePattern = regexp.MustCompile(`^(\s*(?:- )?commit:\s*)([0-9a-f]+)(\s*.*)$`)
	urlLinePattern    = regexp.MustCompile(`^\s*(?:- )?url:\s*(.*?)\s*$`)
)

// Update rewrites the commit: field of each remote in dir's yard.yaml to
// that remote's current HEAD. A url line must pair with exactly one commit
// line; two urls before a commit, or two commits before a url, are fatal.
func Update(ctx context.Context, dir string, git gitremote.Runner) error {
	path := filepath.Join(dir, spec.FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return issue.Wrap(err, issue.KindNone, "Could not read '%s'.", path)
	}

	lines := strings.Split(string(data), "\n")

	latestCommit := ""
	commitLine := -1
	prefix, suffix := "", ""

	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}

		if matches := urlLinePattern.FindStringSubmatch(line); matches != nil {
			if latestCommit != "" {
				return issue.New(issue.KindNone,
					"Found two url's before any commits. At line number '%d'.", i+1)
			}
			url := matches[1]
			latestCommit, err = headCommit(ctx, git, url)
			if err != nil {
				return issue.Wrap(err, issue.KindNone, "Line number '%d'.", i+1)
			}
			log.Debug("resolved remote HEAD", "url", url, "commit", latestCommit)
		}

		if matches := commitLinePattern.FindStringSubmatch(line); matches != nil {
			if commitLine != -1 {
				return issue.New(issue.KindNone,
					"Found two commits before any url's. At line number '%d'.", i+1)
			}
			commitLine = i
			prefix, suffix = matches[1], matches[3]
		}

		if latestCommit != "" && commitLine != -1 {
			lines[commitLine] = prefix + latestCommit + suffix
			latestCommit, prefix, suffix = "", "", ""
			commitLine = -1
		}
	}

	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		return issue.Wrap(err, issue.KindNone, "Could not write '%s'.", path)
	}
	return nil
}

// headCommit asks the remote for its current HEAD sha.
func headCommit(ctx context.Context, git gitremote.Runner, url string) (string, error) {
	stdout, stderr, err := git.Run(ctx, "", "ls-remote", "--symref", url, "HEAD")
	if err != nil {
		return "", issue.Wrap(err, issue.RemoteFetchFailure,
			"Could not retrieve the latest commit for '%s'.\nstdout:\n%s\nstderr:\n%s", url, stdout, stderr)
	}

	for _, line := range strings.Split(stdout, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 2 && fields[1] == "HEAD" && !strings.HasPrefix(fields[0], "ref:") {
			return fields[0], nil
		}
	}
	return "", issue.New(issue.RemoteFetchFailure,
		"Unexpected output while retrieving the latest commit for '%s':\n%s", url, stdout)
}
