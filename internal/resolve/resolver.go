// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"shmod-cli/pkg/modref"

	"github.com/charmbracelet/log"
)

// UnitExt is the file extension of executable source units inside a
// module directory.
const UnitExt = ".sh"

// ErrCircularImport is returned when a module's import chain reaches
// itself again.
var ErrCircularImport = errors.New("circular module import")

type (
	// UnitRunner executes one source unit. Implemented by the host; the
	// interface keeps the dependency pointing from resolver to host's
	// caller, not into it.
	UnitRunner interface {
		RunUnit(ctx context.Context, path string) error
	}

	// Options defines the inputs for building a Resolver. Fetcher and
	// Logger fall back to defaults when nil; CacheDir is required. Runner
	// may stay nil for resolve-only use, in which case Import is
	// unavailable.
	Options struct {
		CacheDir string
		Runner   UnitRunner
		Fetcher  *Fetcher
		Logger   *log.Logger
	}

	// Resolver maps module references to local cache directories, fetching
	// on first use, and drives execution of resolved modules. Aside from
	// the on-disk cache it is stateless; the in-progress set exists only to
	// detect import cycles within one resolving chain.
	Resolver struct {
		cacheDir   string
		fetcher    *Fetcher
		runner     UnitRunner
		inProgress map[string]bool
		logger     *log.Logger
	}
)

// New creates a Resolver and ensures the cache root exists.
func New(opts Options) (*Resolver, error) {
	if opts.CacheDir == "" {
		return nil, errors.New("resolver requires a cache directory")
	}
	if opts.Fetcher == nil {
		opts.Fetcher = NewFetcher()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	if err := os.MkdirAll(opts.CacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	return &Resolver{
		cacheDir:   opts.CacheDir,
		fetcher:    opts.Fetcher,
		runner:     opts.Runner,
		inProgress: make(map[string]bool),
		logger:     opts.Logger,
	}, nil
}

// CachePath returns the cache slot for a reference without resolving it.
func (r *Resolver) CachePath(ref modref.Ref) string {
	return filepath.Join(r.cacheDir, ref.CacheSlot())
}

// Resolve maps a reference to its local directory, fetching and caching on
// first use. The version is validated before any I/O; a present cache slot
// is returned without network access. A failed fetch or extraction leaves
// no cache entry behind.
func (r *Resolver) Resolve(ctx context.Context, ref modref.Ref) (string, error) {
	if err := ref.Validate(); err != nil {
		return "", err
	}

	slot := r.CachePath(ref)
	if info, err := os.Stat(slot); err == nil && info.IsDir() {
		r.logger.Debug("cache hit", "ref", ref.String(), "dir", slot)
		return slot, nil
	}

	r.logger.Debug("cache miss", "ref", ref.String())
	if err := r.fetchInto(ctx, ref, slot); err != nil {
		return "", err
	}
	return slot, nil
}

// fetchInto downloads and extracts a module, then installs it into its
// cache slot with an atomic rename. Extraction happens in a temporary
// directory under the cache root (same filesystem, so the rename cannot
// degrade into a copy). If another process won the race and the slot
// appeared concurrently, the temporary result is discarded and the
// existing entry wins.
func (r *Resolver) fetchInto(ctx context.Context, ref modref.Ref, slot string) (err error) {
	archive, err := r.fetcher.Download(ctx, ref, r.cacheDir)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", ref, err)
	}
	defer func() {
		_ = os.Remove(archive)
	}()

	tmpDir, err := os.MkdirTemp(r.cacheDir, "fetch-*")
	if err != nil {
		return fmt.Errorf("resolving %s: %w: creating staging directory: %w", ref, ErrExtractFailed, err)
	}
	defer func() {
		if err != nil {
			_ = os.RemoveAll(tmpDir)
		}
	}()

	if err = extractArchive(archive, tmpDir); err != nil {
		return fmt.Errorf("resolving %s: %w", ref, err)
	}

	if err = writeMeta(tmpDir, Meta{
		Ref:       ref.String(),
		SourceURL: r.fetcher.URL(ref),
		FetchedAt: time.Now().UTC(),
	}); err != nil {
		return fmt.Errorf("resolving %s: %w: %w", ref, ErrExtractFailed, err)
	}

	if err = os.MkdirAll(filepath.Dir(slot), 0o755); err != nil {
		return fmt.Errorf("resolving %s: %w: %w", ref, ErrExtractFailed, err)
	}

	if renameErr := os.Rename(tmpDir, slot); renameErr != nil {
		if info, statErr := os.Stat(slot); statErr == nil && info.IsDir() {
			// Lost the race to a concurrent fetch; its entry is as good as ours.
			_ = os.RemoveAll(tmpDir)
			return nil
		}
		err = fmt.Errorf("resolving %s: %w: installing cache entry: %w", ref, ErrExtractFailed, renameErr)
		return err
	}

	r.logger.Info("fetched module", "ref", ref.String(), "dir", slot)
	return nil
}

// Import resolves a reference and executes every top-level source unit in
// its directory, in lexical order. Units may import further modules;
// recursion is depth-first and each distinct reference is fetched at most
// once per process thanks to the cache-slot check. Re-importing a module
// re-runs its units: definitions deduplicate through content addressing
// and publishes overwrite idempotently.
func (r *Resolver) Import(ctx context.Context, ref modref.Ref) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if r.runner == nil {
		return errors.New("resolver has no unit runner configured")
	}

	key := ref.String()
	if r.inProgress[key] {
		return fmt.Errorf("%w: %s", ErrCircularImport, key)
	}

	dir, err := r.Resolve(ctx, ref)
	if err != nil {
		return err
	}

	r.inProgress[key] = true
	defer delete(r.inProgress, key)

	units, err := sourceUnits(dir)
	if err != nil {
		return fmt.Errorf("importing %s: %w", ref, err)
	}
	if len(units) == 0 {
		r.logger.Warn("module has no source units", "ref", ref.String())
		return nil
	}

	for _, unit := range units {
		if err := r.runner.RunUnit(ctx, unit); err != nil {
			return fmt.Errorf("importing %s: %w", ref, err)
		}
	}
	return nil
}

// sourceUnits lists the executable units at the top level of a module
// directory in stable lexical order. Subdirectories are data, not code.
func sourceUnits(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading module directory: %w", err)
	}

	var units []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), UnitExt) {
			continue
		}
		units = append(units, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(units)
	return units, nil
}
