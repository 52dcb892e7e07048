// SPDX-License-Identifier: MPL-2.0

// Package issue defines the user-facing failure taxonomy for yard builds.
//
// Every fatal condition in the build pipeline is classified by a Kind and
// carries a message written for the operator, not the developer. Errors wrap
// freely with %w; UserMessages walks a chain and collects the user-facing
// messages in outer-to-inner order, which is what the CLI prints in quiet
// mode. Debug mode prints the full chain instead.
package issue
