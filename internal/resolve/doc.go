// SPDX-License-Identifier: MPL-2.0

// Package resolve fetches versioned modules into a local cache and drives
// execution of their source units.
//
// A module reference resolves to one cache directory per owner/name@version.
// The first resolve downloads a release tarball from a templated URL,
// extracts it stripping the top-level container directory, and moves the
// result into its cache slot with an atomic rename — a failed fetch or
// extraction never leaves a partial cache entry, and two processes racing
// on the same first fetch cannot corrupt each other. Later resolves of the
// same reference are pure cache hits with no network access; the only
// invalidation path is a version bump, which is a new cache key.
//
// Importing goes further than resolving: every top-level source unit in
// the cached directory runs through the host in lexical order, which may
// recurse into nested imports depth-first.
package resolve
