// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"testing"

	"shmod-cli/pkg/modref"

	"github.com/charmbracelet/log"
)

// makeArchive builds a release-shaped tar.gz: every file sits below a
// single top-level container directory, the way tag archives are laid out.
func makeArchive(t *testing.T, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		content := files[name]
		hdr := &tar.Header{
			Name:     "module-1.0.0/" + name,
			Mode:     0o644,
			Size:     int64(len(content)),
			Typeflag: tar.TypeReg,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("writing tar header: %v", err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatalf("writing tar entry: %v", err)
		}
	}

	if err := tw.Close(); err != nil {
		t.Fatalf("closing tar writer: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("closing gzip writer: %v", err)
	}
	return buf.Bytes()
}

// moduleServer serves archives by "/owner/name/version.tar.gz" path and
// counts every request.
func moduleServer(t *testing.T, archives map[string][]byte) (*httptest.Server, *atomic.Int64) {
	t.Helper()

	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		data, ok := archives[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/gzip")
		_, _ = w.Write(data)
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func newTestResolver(t *testing.T, srvURL string) *Resolver {
	t.Helper()

	r, err := New(Options{
		CacheDir: t.TempDir(),
		Fetcher: NewFetcher(
			WithURLTemplate(srvURL + "/{owner}/{name}/{version}.tar.gz"),
		),
		Logger: log.New(io.Discard),
	})
	if err != nil {
		t.Fatalf("creating resolver: %v", err)
	}
	return r
}

func TestResolve_FetchesAndCaches(t *testing.T) {
	t.Parallel()

	archive := makeArchive(t, map[string]string{"a.sh": "echo hello\n"})
	srv, requests := moduleServer(t, map[string][]byte{
		"/acme/strings/v1.0.0.tar.gz": archive,
	})

	r := newTestResolver(t, srv.URL)
	ref := modref.Ref{Owner: "acme", Name: "strings", Version: "v1.0.0"}

	dir, err := r.Resolve(context.Background(), ref)
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "a.sh")); err != nil {
		t.Errorf("extracted unit missing: %v", err)
	}

	meta, err := readMeta(dir)
	if err != nil {
		t.Fatalf("reading metadata: %v", err)
	}
	if meta.Ref != "acme/strings@v1.0.0" {
		t.Errorf("meta ref = %q, want %q", meta.Ref, "acme/strings@v1.0.0")
	}

	// Second resolve must be a pure cache hit.
	dir2, err := r.Resolve(context.Background(), ref)
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if dir2 != dir {
		t.Errorf("cache slot changed: %q != %q", dir2, dir)
	}
	if got := requests.Load(); got != 1 {
		t.Errorf("network fetches = %d, want 1", got)
	}
}

func TestResolve_InvalidVersion_NoIO(t *testing.T) {
	t.Parallel()

	srv, requests := moduleServer(t, nil)
	r := newTestResolver(t, srv.URL)

	// Missing the leading "v" — must fail before any network access.
	ref := modref.Ref{Owner: "x", Name: "y", Version: "1.0"}
	_, err := r.Resolve(context.Background(), ref)
	if !errors.Is(err, modref.ErrInvalidVersion) {
		t.Errorf("error = %v, want ErrInvalidVersion", err)
	}
	if got := requests.Load(); got != 0 {
		t.Errorf("network fetches = %d, want 0", got)
	}
}

func TestResolve_FetchFailed_LeavesNoCacheEntry(t *testing.T) {
	t.Parallel()

	srv, _ := moduleServer(t, nil) // every request 404s
	r := newTestResolver(t, srv.URL)
	ref := modref.Ref{Owner: "acme", Name: "missing", Version: "v1.0.0"}

	_, err := r.Resolve(context.Background(), ref)
	if !errors.Is(err, ErrFetchFailed) {
		t.Fatalf("error = %v, want ErrFetchFailed", err)
	}

	assertNoCacheResidue(t, r, ref)
}

func TestResolve_ExtractFailed_LeavesNoCacheEntry(t *testing.T) {
	t.Parallel()

	srv, _ := moduleServer(t, map[string][]byte{
		"/acme/broken/v1.0.0.tar.gz": []byte("this is not a gzip stream"),
	})
	r := newTestResolver(t, srv.URL)
	ref := modref.Ref{Owner: "acme", Name: "broken", Version: "v1.0.0"}

	_, err := r.Resolve(context.Background(), ref)
	if !errors.Is(err, ErrExtractFailed) {
		t.Fatalf("error = %v, want ErrExtractFailed", err)
	}

	assertNoCacheResidue(t, r, ref)
}

func assertNoCacheResidue(t *testing.T, r *Resolver, ref modref.Ref) {
	t.Helper()

	if _, err := os.Stat(r.CachePath(ref)); !os.IsNotExist(err) {
		t.Errorf("cache slot must not exist after a failed resolve")
	}

	entries, err := os.ReadDir(r.cacheDir)
	if err != nil {
		t.Fatalf("reading cache root: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "fetch-") || strings.HasPrefix(e.Name(), "shmod-archive-") {
			t.Errorf("staging residue left in cache root: %s", e.Name())
		}
	}
}

func TestListCached(t *testing.T) {
	t.Parallel()

	archive := makeArchive(t, map[string]string{"a.sh": "echo a\n"})
	srv, _ := moduleServer(t, map[string][]byte{
		"/acme/strings/v1.0.0.tar.gz": archive,
		"/acme/net/v2.1.0.tar.gz":     archive,
	})

	r := newTestResolver(t, srv.URL)
	for _, raw := range []string{"acme/strings@v1.0.0", "acme/net@v2.1.0"} {
		ref, err := modref.Parse(raw)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := r.Resolve(context.Background(), ref); err != nil {
			t.Fatalf("resolving %s: %v", raw, err)
		}
	}

	mods, err := ListCached(r.cacheDir)
	if err != nil {
		t.Fatalf("ListCached: %v", err)
	}
	if len(mods) != 2 {
		t.Fatalf("cached modules = %d, want 2", len(mods))
	}
	if mods[0].Ref != "acme/net@v2.1.0" || mods[1].Ref != "acme/strings@v1.0.0" {
		t.Errorf("unexpected order: %v, %v", mods[0].Ref, mods[1].Ref)
	}
	if mods[0].Meta.SourceURL == "" {
		t.Error("metadata not round-tripped")
	}
}

func TestFetcher_URLTemplate(t *testing.T) {
	t.Parallel()

	f := NewFetcher()
	ref := modref.Ref{Owner: "acme", Name: "strings", Version: "v1.2.0"}
	want := "https://github.com/acme/strings/archive/refs/tags/v1.2.0.tar.gz"
	if got := f.URL(ref); got != want {
		t.Errorf("URL() = %q, want %q", got, want)
	}
}
