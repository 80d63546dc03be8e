// SPDX-License-Identifier: MPL-2.0

package resolve_test

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
	"strings"
	"sync/atomic"
	"testing"

	"shmod-cli/internal/host"
	"shmod-cli/internal/resolve"
	"shmod-cli/pkg/modref"

	"github.com/charmbracelet/log"
)

// stack bundles a host, its resolver and the captured stdout for
// whole-pipeline tests: script in, fetch over HTTP, output out.
type stack struct {
	host     *host.Host
	resolver *resolve.Resolver
	out      *strings.Builder
	requests *atomic.Int64
}

// newStack wires a host and resolver against an httptest server that
// serves the given module sources as release tarballs.
func newStack(t *testing.T, modules map[string]map[string]string) *stack {
	t.Helper()

	archives := make(map[string][]byte, len(modules))
	for raw, units := range modules {
		ref, err := modref.Parse(raw)
		if err != nil {
			t.Fatalf("bad module ref %q: %v", raw, err)
		}
		path := "/" + ref.Owner + "/" + ref.Name + "/" + ref.Version + ".tar.gz"
		archives[path] = tarGzUnits(t, units)
	}

	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		data, ok := archives[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(data)
	}))
	t.Cleanup(srv.Close)

	var out strings.Builder
	h, err := host.New(host.Options{
		Stdin:  strings.NewReader(""),
		Stdout: &out,
		Stderr: io.Discard,
		Logger: log.New(io.Discard),
	})
	if err != nil {
		t.Fatalf("creating host: %v", err)
	}

	res, err := resolve.New(resolve.Options{
		CacheDir: t.TempDir(),
		Runner:   h,
		Fetcher: resolve.NewFetcher(
			resolve.WithURLTemplate(srv.URL + "/{owner}/{name}/{version}.tar.gz"),
		),
		Logger: log.New(io.Discard),
	})
	if err != nil {
		t.Fatalf("creating resolver: %v", err)
	}
	h.SetImporter(res)

	return &stack{host: h, resolver: res, out: &out, requests: &requests}
}

func tarGzUnits(t *testing.T, units map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for name, content := range units {
		hdr := &tar.Header{
			Name:     "module-src/" + name,
			Mode:     0o644,
			Size:     int64(len(content)),
			Typeflag: tar.TypeReg,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func (s *stack) runScript(t *testing.T, src string) error {
	t.Helper()

	path := filepath.Join(t.TempDir(), "main.sh")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("writing script: %v", err)
	}
	return s.host.RunScript(context.Background(), path, nil)
}

// A published name from an imported module must win over the importer's
// own private definition of the same name: the private one lost its plain
// binding when it was hashed away, and the export shim restored the
// published one.
func TestImport_PublishedNameShadowsPrivate(t *testing.T) {
	t.Parallel()

	s := newStack(t, map[string]map[string]string{
		"acme/dates@v1.0.0": {
			"dates.sh": "get() { echo \"2020\"; }\npublish get\n",
		},
	})

	script := "get() { echo \"private\"; }\n" +
		"import acme/dates@v1.0.0\n" +
		"get\n"
	if err := s.runScript(t, script); err != nil {
		t.Fatalf("running script: %v", err)
	}
	if got := s.out.String(); got != "2020\n" {
		t.Errorf("output = %q, want %q", got, "2020\n")
	}
}

// Unpublished module functions stay private: the importer cannot call
// them by name even though the module ran in the same interpreter.
func TestImport_PrivateFunctionsStayHidden(t *testing.T) {
	t.Parallel()

	s := newStack(t, map[string]map[string]string{
		"acme/dates@v1.0.0": {
			"dates.sh": "helper() { echo \"internal\"; }\nget() { helper; }\npublish get\n",
		},
	})

	if err := s.runScript(t, "import acme/dates@v1.0.0\n"); err != nil {
		t.Fatalf("importing: %v", err)
	}

	res := s.host.CallCapture(context.Background(), "helper")
	if !errors.Is(res.Error, host.ErrUndefinedFunction) {
		t.Errorf("calling private helper: error = %v, want ErrUndefinedFunction", res.Error)
	}

	// The published entry point still reaches the helper internally.
	res = s.host.CallCapture(context.Background(), "get")
	if res.Error != nil || res.Output != "internal\n" {
		t.Errorf("get: output = %q, err = %v", res.Output, res.Error)
	}
}

// Importing the same module twice costs one fetch and leaves the registry
// unchanged: definitions deduplicate by content and publish is idempotent.
func TestImport_TwiceIsIdempotent(t *testing.T) {
	t.Parallel()

	s := newStack(t, map[string]map[string]string{
		"acme/dates@v1.0.0": {
			"dates.sh": "get() { echo \"2020\"; }\npublish get\n",
		},
	})

	ref := modref.Ref{Owner: "acme", Name: "dates", Version: "v1.0.0"}
	if err := s.resolver.Import(context.Background(), ref); err != nil {
		t.Fatalf("first import: %v", err)
	}
	size := s.host.Registry().Len()

	if err := s.resolver.Import(context.Background(), ref); err != nil {
		t.Fatalf("second import: %v", err)
	}
	if got := s.host.Registry().Len(); got != size {
		t.Errorf("registry size after re-import = %d, want %d", got, size)
	}
	if got := s.requests.Load(); got != 1 {
		t.Errorf("network fetches = %d, want 1", got)
	}

	res := s.host.CallCapture(context.Background(), "get")
	if res.Error != nil || res.Output != "2020\n" {
		t.Errorf("get after re-import: output = %q, err = %v", res.Output, res.Error)
	}
}

// Modules import other modules; the shared reference is fetched once even
// when two import chains reach it.
func TestImport_TransitiveSharedDependency(t *testing.T) {
	t.Parallel()

	s := newStack(t, map[string]map[string]string{
		"acme/base@v1.0.0": {
			"base.sh": "base_value() { echo \"base\"; }\npublish base_value\n",
		},
		"acme/mid@v1.0.0": {
			"mid.sh": "import acme/base@v1.0.0\nmid_value() { base_value; }\npublish mid_value\n",
		},
	})

	script := "import acme/mid@v1.0.0\n" +
		"import acme/base@v1.0.0\n" +
		"mid_value\n"
	if err := s.runScript(t, script); err != nil {
		t.Fatalf("running script: %v", err)
	}
	if got := s.out.String(); got != "base\n" {
		t.Errorf("output = %q, want %q", got, "base\n")
	}
	if got := s.requests.Load(); got != 2 {
		t.Errorf("network fetches = %d, want 2 (one per distinct module)", got)
	}
}

// A module that imports itself must fail with a cycle error instead of
// recursing forever.
func TestImport_CycleDetected(t *testing.T) {
	t.Parallel()

	s := newStack(t, map[string]map[string]string{
		"acme/loop@v1.0.0": {
			"loop.sh": "import acme/loop@v1.0.0\n",
		},
	})

	err := s.resolver.Import(context.Background(), modref.Ref{Owner: "acme", Name: "loop", Version: "v1.0.0"})
	if !errors.Is(err, resolve.ErrCircularImport) {
		t.Errorf("error = %v, want ErrCircularImport", err)
	}
}

// A module directive inside an imported module must not leak its prefix
// into the importer's later definitions.
func TestImport_ModulePrefixDoesNotLeak(t *testing.T) {
	t.Parallel()

	s := newStack(t, map[string]map[string]string{
		"acme/named@v1.0.0": {
			"named.sh": "module acme\nget() { echo \"2020\"; }\npublish get\n",
		},
	})

	script := "import acme/named@v1.0.0\n" +
		"after() { echo \"plain\"; }\n" +
		"publish after\n" +
		"acme.get\n" +
		"after\n"
	if err := s.runScript(t, script); err != nil {
		t.Fatalf("running script: %v", err)
	}
	if got := s.out.String(); got != "2020\nplain\n" {
		t.Errorf("output = %q, want %q", got, "2020\nplain\n")
	}

	// The importer's function published under its plain name, not under
	// the imported module's prefix.
	if _, err := s.host.Registry().LookupName("acme.after"); err == nil {
		t.Error("imported module prefix leaked into the importer's namespace")
	}
}
