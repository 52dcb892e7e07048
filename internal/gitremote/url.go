// SPDX-License-Identifier: MPL-2.0

package gitremote

import (
	"regexp"
	"strings"

	"containeryard/internal/issue"
)

// Repo identifies one remote repository at a pinned commit.
type Repo struct {
	// Provider is derived from the host: "github" for github.com, else
	// "unknown". It only namespaces the cache; it never changes behavior.
	Provider string
	Owner    string
	Name     string
	// URL is the original remote URL as written in the spec.
	URL string
	// Commit is the immutable pin.
	Commit string
}

var (
	sshURLPattern   = regexp.MustCompile(`^[\w-]+@[\w.-]+:([\w-]+)/([\w-]+)(?:\.git)?$`)
	httpsURLPattern = regexp.MustCompile(`^https?://[\w.-]+/([\w-]+)/([\w-]+)(?:\.git)?$`)
)

// ClassifyURL extracts repository coordinates from an SSH
// (user@host:owner/repo[.git]) or HTTPS (https://host/owner/repo[.git])
// remote URL. Anything else is a fatal UnsupportedRemoteURL.
func ClassifyURL(url, commit string) (Repo, error) {
	var matches []string
	switch {
	case strings.HasPrefix(url, "git@") || sshURLPattern.MatchString(url):
		matches = sshURLPattern.FindStringSubmatch(url)
	case strings.HasPrefix(url, "http"):
		matches = httpsURLPattern.FindStringSubmatch(url)
	}
	if len(matches) != 3 {
		return Repo{}, issue.New(issue.UnsupportedRemoteURL,
			"Unknown url type for '%s'. Expected 'user@host:owner/repo' or 'https://host/owner/repo'.", url)
	}

	provider := "unknown"
	if strings.Contains(url, "github.com") {
		provider = "github"
	}

	return Repo{
		Provider: provider,
		Owner:    matches[1],
		Name:     matches[2],
		URL:      url,
		Commit:   commit,
	}, nil
}
