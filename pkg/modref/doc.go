// SPDX-License-Identifier: MPL-2.0

// Package modref defines the module reference grammar.
//
// A module reference names a versioned, named unit of shell source:
//
//	owner/name@vMAJOR.MINOR.PATCH
//
// The version is strict semantic versioning with a mandatory leading "v"
// and no prerelease or build suffixes. Anything else is rejected before
// any I/O is attempted, so a malformed reference can never reach the
// network or touch the module cache.
package modref
