// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// MetaFileName is the per-entry metadata file written next to a cached
// module's source units. It pairs with the cache slot the way a lock file
// pairs with its manifest: enough to reconstruct where an entry came from.
const MetaFileName = ".shmod.toml"

type (
	// Meta records the provenance of one cache entry.
	Meta struct {
		// Ref is the canonical owner/name@version reference.
		Ref string `toml:"ref"`

		// SourceURL is the archive URL the entry was fetched from.
		SourceURL string `toml:"source_url"`

		// FetchedAt is the download timestamp (UTC).
		FetchedAt time.Time `toml:"fetched_at"`
	}

	// CachedModule is one resolved entry found in the cache.
	CachedModule struct {
		// Ref is the reference string reconstructed from the cache layout.
		Ref string

		// Dir is the absolute cache slot path.
		Dir string

		// Meta is the stored provenance, zero-valued when the metadata file
		// is missing or unreadable.
		Meta Meta
	}
)

func writeMeta(dir string, m Meta) error {
	data, err := toml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding cache metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, MetaFileName), data, 0o644); err != nil {
		return fmt.Errorf("writing cache metadata: %w", err)
	}
	return nil
}

func readMeta(dir string) (Meta, error) {
	data, err := os.ReadFile(filepath.Join(dir, MetaFileName))
	if err != nil {
		return Meta{}, err
	}
	var m Meta
	if err := toml.Unmarshal(data, &m); err != nil {
		return Meta{}, fmt.Errorf("decoding cache metadata: %w", err)
	}
	return m, nil
}

// ListCached walks the cache root and returns every resolved module,
// sorted by reference. Entries without metadata are still listed — the
// directory layout alone identifies them.
func ListCached(cacheDir string) ([]CachedModule, error) {
	owners, err := os.ReadDir(cacheDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading cache root: %w", err)
	}

	var modules []CachedModule
	for _, owner := range owners {
		if !owner.IsDir() {
			continue
		}
		slots, err := os.ReadDir(filepath.Join(cacheDir, owner.Name()))
		if err != nil {
			continue
		}
		for _, slot := range slots {
			if !slot.IsDir() || !strings.Contains(slot.Name(), "@") {
				continue
			}
			dir := filepath.Join(cacheDir, owner.Name(), slot.Name())
			mod := CachedModule{
				Ref: owner.Name() + "/" + slot.Name(),
				Dir: dir,
			}
			if meta, err := readMeta(dir); err == nil {
				mod.Meta = meta
			}
			modules = append(modules, mod)
		}
	}

	sort.Slice(modules, func(i, j int) bool { return modules[i].Ref < modules[j].Ref })
	return modules, nil
}
