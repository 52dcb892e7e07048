// SPDX-License-Identifier: MPL-2.0

// Package module holds the module definition model: the template body, the
// declared variable contract, required supporting files, and provenance.
//
// A Definition is the mutable staging form: it accumulates provided
// assignments for one usage and is converted into an immutable Part through
// Finalize, the single validating constructor. Parts are what the compositor
// renders; nothing else in the codebase can construct one.
package module
