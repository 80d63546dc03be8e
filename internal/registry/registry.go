// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"errors"
	"fmt"
	"sort"

	"github.com/charmbracelet/log"
)

var (
	// ErrPublishUnbound is returned when a publish names a symbol with no
	// current binding in the name table.
	ErrPublishUnbound = errors.New("publish of unbound name")

	// ErrUnknownName is returned by lookups for names that were never bound.
	ErrUnknownName = errors.New("unknown symbol name")
)

type (
	// Symbol is one immutable, hash-identified definition.
	Symbol struct {
		// Name is the qualified name the symbol was first bound to.
		Name string

		// Module is the defining module reference ("" for a top-level script).
		Module string

		// Hash is the digest of Raw.
		Hash Hash

		// Raw is the literal body text exactly as written.
		Raw string

		// Body is the rewritten form: every reference to a tracked symbol
		// replaced by its hash identifier. This is what actually executes,
		// so later rebindings of a name cannot change existing behavior.
		Body string
	}

	// Export is one resolved (public name, hash) pair produced by Publish.
	Export struct {
		// Name is the published public name, qualified with the active
		// module prefix when one is set.
		Name string

		// Hash is the binding captured at publish time. Shims built from an
		// Export keep forwarding to this hash even if the name is rebound.
		Hash Hash
	}

	// Registry is the content-addressed store plus the current name
	// bindings. The hash table is append-only for the process lifetime;
	// the name table is last-writer-wins.
	Registry struct {
		byHash  map[Hash]*Symbol
		byName  map[string]Hash
		defined map[string]bool     // every name ever hashed away
		public  map[string][]string // module → declared public set
		module  string              // active namespace prefix
		logger  *log.Logger
	}
)

// New creates an empty registry.
func New(logger *log.Logger) *Registry {
	if logger == nil {
		logger = log.Default()
	}
	return &Registry{
		byHash:  make(map[Hash]*Symbol),
		byName:  make(map[string]Hash),
		defined: make(map[string]bool),
		public:  make(map[string][]string),
		logger:  logger,
	}
}

// Qualify prepends the module prefix to a name. An empty module leaves the
// name untouched; prefixing is a collision-avoidance convenience and never
// affects hash identity.
func Qualify(module, name string) string {
	if module == "" {
		return name
	}
	return module + "." + name
}

// SetModule establishes the active namespace prefix for subsequent Define
// and Publish calls.
func (r *Registry) SetModule(name string) {
	r.module = name
}

// Module returns the active namespace prefix.
func (r *Registry) Module() string {
	return r.module
}

// Define registers a raw body under name and returns the resulting symbol.
// The name must already be qualified (see Qualify). pending maps the
// source-level names of sibling symbols in the same unit to their
// pre-computed hashes, so intra-unit references — forward ones included —
// rewrite correctly.
//
// Re-registering identical content is a no-op for the hash table: the
// first rewritten form wins and fresh is false. The name binding is
// updated either way, overwriting any prior binding for name.
func (r *Registry) Define(name, raw string, pending map[string]Hash) (sym *Symbol, fresh bool, err error) {
	h := HashBody(raw)

	if existing, ok := r.byHash[h]; ok {
		r.bind(name, h)
		r.logger.Debug("define dedup", "name", name, "hash", h)
		return existing, false, nil
	}

	body, err := r.rewrite(raw, pending)
	if err != nil {
		return nil, false, fmt.Errorf("rewriting body of %s: %w", name, err)
	}

	sym = &Symbol{
		Name:   name,
		Module: r.module,
		Hash:   h,
		Raw:    raw,
		Body:   body,
	}
	r.byHash[h] = sym
	r.bind(name, h)
	r.logger.Debug("define", "name", name, "hash", h)
	return sym, true, nil
}

func (r *Registry) bind(name string, h Hash) {
	r.byName[name] = h
	r.defined[name] = true
}

// Publish resolves names against the current bindings and records them in
// the active module's public set. Each supplied name is qualified with the
// active prefix before lookup, mirroring Define. A name with no binding
// fails the whole publish with ErrPublishUnbound.
func (r *Registry) Publish(names []string) ([]Export, error) {
	exports := make([]Export, 0, len(names))
	for _, n := range names {
		qualified := Qualify(r.module, n)
		h, ok := r.byName[qualified]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrPublishUnbound, qualified)
		}
		exports = append(exports, Export{Name: qualified, Hash: h})
	}

	r.public[r.module] = appendMissing(r.public[r.module], names)
	return exports, nil
}

// PublicSet returns the names a module has declared eligible for export.
func (r *Registry) PublicSet(module string) []string {
	out := make([]string, len(r.public[module]))
	copy(out, r.public[module])
	return out
}

// PublicNames returns every published name across all modules, qualified
// and sorted.
func (r *Registry) PublicNames() []string {
	var names []string
	for module, set := range r.public {
		for _, n := range set {
			names = append(names, Qualify(module, n))
		}
	}
	sort.Strings(names)
	return names
}

// Defined reports whether name was ever hashed away. The host uses this to
// tell "call to a symbol that lost its plain name" apart from an ordinary
// missing command.
func (r *Registry) Defined(name string) bool {
	return r.defined[name]
}

// LookupName returns the symbol currently bound to a qualified name.
func (r *Registry) LookupName(name string) (*Symbol, error) {
	h, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownName, name)
	}
	return r.byHash[h], nil
}

// LookupHash returns the symbol stored under a hash, if any.
func (r *Registry) LookupHash(h Hash) (*Symbol, bool) {
	sym, ok := r.byHash[h]
	return sym, ok
}

// Names returns all currently bound names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for n := range r.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of distinct bodies in the hash table.
func (r *Registry) Len() int {
	return len(r.byHash)
}

func appendMissing(set []string, names []string) []string {
	for _, n := range names {
		seen := false
		for _, have := range set {
			if have == n {
				seen = true
				break
			}
		}
		if !seen {
			set = append(set, n)
		}
	}
	return set
}
