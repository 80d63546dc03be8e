// SPDX-License-Identifier: MPL-2.0

package modref

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	// ErrInvalidRef is returned when a reference does not match the
	// owner/name@version shape.
	ErrInvalidRef = errors.New("invalid module reference")

	// ErrInvalidVersion is returned when the version token is not strict
	// vMAJOR.MINOR.PATCH semver.
	ErrInvalidVersion = errors.New("invalid module version")
)

var (
	// versionPattern is deliberately strict: a leading "v" is mandatory,
	// components have no leading zeros, and prerelease/build suffixes are
	// not accepted. "1.0" or "v1.2" never resolve.
	versionPattern = regexp.MustCompile(`^v(0|[1-9]\d*)\.(0|[1-9]\d*)\.(0|[1-9]\d*)$`)

	// segmentPattern constrains owner and name to filesystem- and URL-safe
	// tokens, since both become cache path components and URL segments.
	segmentPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)
)

// Ref identifies a versioned module. It is the identity key for the
// on-disk cache: a version bump is a new key, never an in-place update.
type Ref struct {
	// Owner is the publishing account or organization.
	Owner string

	// Name is the module name within the owner's namespace.
	Name string

	// Version is the exact release tag, e.g. "v1.2.0". Always concrete;
	// constraint ranges are not part of the grammar.
	Version string
}

// Parse parses a reference of the form "owner/name@version" and validates
// every component. The returned Ref is ready for cache and fetch use.
func Parse(raw string) (Ref, error) {
	head, version, ok := strings.Cut(raw, "@")
	if !ok {
		return Ref{}, fmt.Errorf("%w: %q: missing @version", ErrInvalidRef, raw)
	}

	owner, name, ok := strings.Cut(head, "/")
	if !ok || strings.Contains(name, "/") {
		return Ref{}, fmt.Errorf("%w: %q: expected owner/name@version", ErrInvalidRef, raw)
	}

	ref := Ref{Owner: owner, Name: name, Version: version}
	if err := ref.Validate(); err != nil {
		return Ref{}, err
	}
	return ref, nil
}

// Validate checks every component against the reference grammar.
func (r Ref) Validate() error {
	if !segmentPattern.MatchString(r.Owner) {
		return fmt.Errorf("%w: bad owner %q", ErrInvalidRef, r.Owner)
	}
	if !segmentPattern.MatchString(r.Name) {
		return fmt.Errorf("%w: bad name %q", ErrInvalidRef, r.Name)
	}
	if !versionPattern.MatchString(r.Version) {
		return fmt.Errorf("%w: %q (want strict vMAJOR.MINOR.PATCH)", ErrInvalidVersion, r.Version)
	}
	return nil
}

// String returns the canonical "owner/name@version" form.
func (r Ref) String() string {
	return r.Owner + "/" + r.Name + "@" + r.Version
}

// CacheSlot returns the cache-relative directory for this reference,
// one directory per resolved name@version under the owner.
func (r Ref) CacheSlot() string {
	return filepath.Join(r.Owner, r.Name+"@"+r.Version)
}
