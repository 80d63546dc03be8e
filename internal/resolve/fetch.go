// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"shmod-cli/pkg/modref"
)

// DefaultURLTemplate builds release tarball URLs the way GitHub tags them.
// The placeholders {owner}, {name} and {version} expand from the module
// reference.
const DefaultURLTemplate = "https://github.com/{owner}/{name}/archive/refs/tags/{version}.tar.gz"

// maxArchiveBytes is the upper bound on a downloaded module archive (64 MB).
// Prevents unbounded disk consumption from a misbehaving remote.
const maxArchiveBytes = 64 << 20

// ErrFetchFailed is returned for network faults and unexpected HTTP
// statuses while downloading a module archive.
var ErrFetchFailed = errors.New("module fetch failed")

type (
	// Fetcher downloads release archives for module references.
	Fetcher struct {
		httpClient  *http.Client
		urlTemplate string
		userAgent   string
	}

	// FetcherOption configures a Fetcher during construction.
	FetcherOption func(*Fetcher)
)

// WithHTTPClient sets a custom HTTP client, useful for tests or proxy
// configurations.
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *Fetcher) {
		f.httpClient = c
	}
}

// WithURLTemplate overrides the release URL template.
func WithURLTemplate(tmpl string) FetcherOption {
	return func(f *Fetcher) {
		if tmpl != "" {
			f.urlTemplate = tmpl
		}
	}
}

// NewFetcher creates a Fetcher with GitHub-shaped defaults.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		httpClient:  http.DefaultClient,
		urlTemplate: DefaultURLTemplate,
		userAgent:   "shmod/dev",
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// URL expands the template for a reference.
func (f *Fetcher) URL(ref modref.Ref) string {
	r := strings.NewReplacer(
		"{owner}", ref.Owner,
		"{name}", ref.Name,
		"{version}", ref.Version,
	)
	return r.Replace(f.urlTemplate)
}

// Download retrieves the release archive for ref into destDir and returns
// the archive path. The download blocks until the archive is retrieved or
// the context is canceled; any fault maps to ErrFetchFailed.
func (f *Fetcher) Download(ctx context.Context, ref modref.Ref, destDir string) (string, error) {
	url := f.URL(ref)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: building request for %s: %w", ErrFetchFailed, url, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrFetchFailed, url, err)
	}
	defer func() {
		// Read-only response body; close errors are not actionable.
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s: unexpected status %d", ErrFetchFailed, url, resp.StatusCode)
	}

	tmp, err := os.CreateTemp(destDir, "shmod-archive-*.tar.gz")
	if err != nil {
		return "", fmt.Errorf("%w: creating temp archive: %w", ErrFetchFailed, err)
	}

	if copyErr := func() (copyErr error) {
		defer func() {
			if closeErr := tmp.Close(); closeErr != nil && copyErr == nil {
				copyErr = closeErr
			}
		}()
		_, copyErr = io.Copy(tmp, io.LimitReader(resp.Body, maxArchiveBytes))
		return copyErr
	}(); copyErr != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("%w: downloading %s: %w", ErrFetchFailed, url, copyErr)
	}

	return tmp.Name(), nil
}
