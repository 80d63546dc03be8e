// SPDX-License-Identifier: MPL-2.0

// Package registry implements the content-addressed symbol store.
//
// Every shell function a module defines is converted into an immutable,
// hash-identified unit: the digest is computed over the literal body text,
// references to other tracked symbols are rewritten into hash identifiers,
// and the plain name survives only as a rebindable alias in the name table.
// Identical bodies collapse to one entry regardless of which module defined
// them — addressing is by content, not by meaning.
//
// The store is process-local and monotonic: entries are never removed, and
// nothing is persisted between runs. Visibility is private by construction;
// a symbol becomes reachable under a friendly name only through an explicit
// publish of its module's public set.
package registry
