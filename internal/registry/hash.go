// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// identPrefix starts every hash-derived shell identifier. The prefix keeps
// rewritten names out of the way of anything a script would plausibly call.
const identPrefix = "_sm_"

// Hash is the durable identity of a symbol: the xxhash64 digest of its
// literal body text, as 16 lowercase hex characters. It is a pure function
// of the body — whitespace and comment changes produce a different Hash,
// and textually identical bodies across modules produce the same one.
type Hash string

// HashBody digests the exact literal body text.
func HashBody(body string) Hash {
	return Hash(fmt.Sprintf("%016x", xxhash.Sum64String(body)))
}

// Ident returns the shell function identifier for this hash. Rewritten
// bodies and export shims dispatch through this name.
func (h Hash) Ident() string {
	return identPrefix + string(h)
}

// String returns the bare hex digest.
func (h Hash) String() string {
	return string(h)
}
