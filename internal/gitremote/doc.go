// SPDX-License-Identifier: MPL-2.0

// Package gitremote fetches files at pinned commits from remote git
// repositories, backed by a process-wide on-disk cache.
//
// The package shells out to the external git binary through the Runner
// interface rather than embedding a VCS library; an embedded implementation
// could be substituted behind the same interface without touching callers.
//
// Cache layout under the configured root:
//
//	extracted_files/<provider>/<owner>/<repo>/<commit>/<path>   file contents
//	sources/git_repos/<provider>/<owner>/<repo>                 working clones
//
// Commit pins are immutable, so a content-cache hit is never re-validated
// against the network. Working clones are shared mutable state: checkout
// mutates them, so all clone/fetch/checkout sequences for one repository
// serialize on a per-repo lock.
package gitremote
