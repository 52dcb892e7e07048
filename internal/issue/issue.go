// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
)

// Kind classifies a fatal build failure. The set is closed: every fatal
// condition the pipeline can surface maps to exactly one Kind, so callers
// (and tests) can match on the stage that failed instead of parsing messages.
type Kind int

const (
	// KindNone marks a user-facing error that carries no taxonomy entry,
	// such as a failed environment variable lookup inside a value assignment.
	KindNone Kind = iota

	// SchemaViolation means a yard.yaml or yard-module.yaml document failed
	// structural validation against its embedded schema.
	SchemaViolation

	// DuplicateModuleName means the same module name was declared more than
	// once across local and remote inputs combined.
	DuplicateModuleName

	// UnknownModuleReference means an output references a module name that
	// no input declares.
	UnknownModuleReference

	// MissingRequiredVariable means a usage omitted a variable the module
	// declares as required.
	MissingRequiredVariable

	// UnknownProvidedVariable means a usage supplied a variable the module
	// declares neither as required nor as optional.
	UnknownProvidedVariable

	// PathTraversalRejected means a declared file path contains a parent,
	// home, or absolute component.
	PathTraversalRejected

	// RequiredFileConflict means two modules declare the same required-file
	// destination path.
	RequiredFileConflict

	// RemoteFetchFailure means the external git tool exited non-zero or the
	// fetched tree did not contain the requested file.
	RemoteFetchFailure

	// UnsupportedRemoteURL means a remote URL is neither the SSH nor the
	// HTTPS form this tool understands.
	UnsupportedRemoteURL

	// TemplateRenderError means a module template failed to render with its
	// resolved assignments.
	TemplateRenderError

	// NoModulesResolved means resolution finished without producing a single
	// module part for any output.
	NoModulesResolved

	// NoArtifactsProduced means rendering finished without producing a single
	// output artifact.
	NoArtifactsProduced

	// HookFailure means a configured pre- or post-build hook exited non-zero.
	HookFailure
)

// String returns the stable name of the kind.
func (k Kind) String() string {
	switch k {
	case SchemaViolation:
		return "schema violation"
	case DuplicateModuleName:
		return "duplicate module name"
	case UnknownModuleReference:
		return "unknown module reference"
	case MissingRequiredVariable:
		return "missing required variable"
	case UnknownProvidedVariable:
		return "unknown provided variable"
	case PathTraversalRejected:
		return "path traversal rejected"
	case RequiredFileConflict:
		return "required file conflict"
	case RemoteFetchFailure:
		return "remote fetch failure"
	case UnsupportedRemoteURL:
		return "unsupported remote url"
	case TemplateRenderError:
		return "template render error"
	case NoModulesResolved:
		return "no modules resolved"
	case NoArtifactsProduced:
		return "no artifacts produced"
	case HookFailure:
		return "hook failure"
	default:
		return "error"
	}
}

// Error is a user-facing failure. Message is printed verbatim to the
// operator; the wrapped error (if any) holds the underlying detail such as
// captured subprocess output, shown only in debug mode.
type Error struct {
	Kind    Kind
	Message string
	err     error
}

// New creates a user-facing error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a user-facing message of the given kind on top of err.
func Wrap(err error, kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.err != nil {
		return e.Message + ": " + e.err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error, if any.
func (e *Error) Unwrap() error { return e.err }

// IsKind reports whether any error in the chain carries the given kind.
func IsKind(err error, kind Kind) bool {
	for {
		var ie *Error
		if !errors.As(err, &ie) {
			return false
		}
		if ie.Kind == kind {
			return true
		}
		err = ie.Unwrap()
	}
}

// KindOf returns the first classified kind in the chain, skipping kind-less
// wrapper messages. The second return is false when no *Error is present at
// all.
func KindOf(err error) (Kind, bool) {
	found := false
	for err != nil {
		var ie *Error
		if !errors.As(err, &ie) {
			break
		}
		found = true
		if ie.Kind != KindNone {
			return ie.Kind, true
		}
		err = ie.Unwrap()
	}
	if found {
		return KindNone, true
	}
	return KindNone, false
}

// UserMessages collects the user-facing messages attached along the error
// chain, outermost first. A chain with no *Error yields an empty slice.
func UserMessages(err error) []string {
	var msgs []string
	for err != nil {
		var ie *Error
		if !errors.As(err, &ie) {
			break
		}
		msgs = append(msgs, ie.Message)
		err = ie.Unwrap()
	}
	return msgs
}
