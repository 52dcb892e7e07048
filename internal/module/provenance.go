// SPDX-License-Identifier: MPL-2.0

package module

import "fmt"

// ProvenanceKind discriminates the closed set of module origins.
type ProvenanceKind int

const (
	// ProvenanceLocal is a module loaded from a path under the spec root.
	ProvenanceLocal ProvenanceKind = iota
	// ProvenanceRemote is a module fetched from a pinned commit in a remote
	// repository.
	ProvenanceRemote
	// ProvenanceInline is a literal block of text written directly in an
	// output's part list.
	ProvenanceInline
)

// Provenance records where a module's content originated. It is carried
// through every error and every rendered-part label, and is never used for
// control flow.
type Provenance struct {
	Kind ProvenanceKind

	// Name is the declared module name (local and remote).
	Name string
	// Path is the local directory or the path inside the remote repository.
	Path string

	// Remote coordinates.
	URL    string
	Owner  string
	Repo   string
	Commit string

	// Value is the literal text of an inline usage.
	Value string
}

// LocalProvenance describes a module declared under inputs.modules.
func LocalProvenance(path, name string) Provenance {
	return Provenance{Kind: ProvenanceLocal, Path: path, Name: name}
}

// RemoteProvenance describes a module declared under a remote group.
func RemoteProvenance(url, owner, repo, commit, path, name string) Provenance {
	return Provenance{
		Kind:   ProvenanceRemote,
		URL:    url,
		Owner:  owner,
		Repo:   repo,
		Commit: commit,
		Path:   path,
		Name:   name,
	}
}

// InlineProvenance describes an inline usage.
func InlineProvenance(value string) Provenance {
	return Provenance{Kind: ProvenanceInline, Value: value}
}

// SourceLocation formats the provenance for diagnostics.
func (p Provenance) SourceLocation() string {
	switch p.Kind {
	case ProvenanceLocal:
		return fmt.Sprintf("local module '%s' at path '%s'", p.Name, p.Path)
	case ProvenanceRemote:
		return fmt.Sprintf("remote module '%s' (url: '%s', owner: '%s', repo: '%s', commit: '%s', path: '%s')",
			p.Name, p.URL, p.Owner, p.Repo, p.Commit, p.Path)
	case ProvenanceInline:
		return fmt.Sprintf("inline module value: %s", p.Value)
	default:
		return "unknown source"
	}
}
