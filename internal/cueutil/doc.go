// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates YAML documents against embedded CUE schemas.
//
// Validation unifies the parsed document with a schema definition and
// reports violations with the instance path (in JSON-path notation), the
// schema definition path, and the validator's message, so an operator can
// locate the offending field without re-running in debug mode.
package cueutil
