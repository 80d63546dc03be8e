// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// maxFileBytes is the upper bound on a single extracted file (16 MB).
// Prevents decompression bombs inside module archives.
const maxFileBytes = 16 << 20

// ErrExtractFailed is returned when a downloaded archive cannot be
// unpacked into a module directory.
var ErrExtractFailed = errors.New("module archive extraction failed")

// extractArchive unpacks a tar.gz archive into destDir, stripping the
// single top-level container directory that release tarballs wrap their
// contents in. Symlinks are skipped and entry paths escaping destDir are
// rejected outright.
func extractArchive(archivePath, destDir string) (err error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("%w: opening archive: %w", ErrExtractFailed, err)
	}
	defer func() {
		// Read-only file handle; close errors are exotic.
		_ = f.Close()
	}()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("%w: creating gzip reader: %w", ErrExtractFailed, err)
	}
	defer func() {
		_ = gz.Close()
	}()

	extracted := 0
	tr := tar.NewReader(gz)
	for {
		hdr, nextErr := tr.Next()
		if errors.Is(nextErr, io.EOF) {
			break
		}
		if nextErr != nil {
			return fmt.Errorf("%w: reading tar entry: %w", ErrExtractFailed, nextErr)
		}

		rel, ok := stripContainer(hdr.Name)
		if !ok {
			continue
		}
		if !filepath.IsLocal(rel) {
			return fmt.Errorf("%w: entry %q escapes the module directory", ErrExtractFailed, hdr.Name)
		}
		target := filepath.Join(destDir, rel)

		switch hdr.Typeflag {
		case tar.TypeDir:
			if mkErr := os.MkdirAll(target, 0o755); mkErr != nil {
				return fmt.Errorf("%w: creating %s: %w", ErrExtractFailed, rel, mkErr)
			}
		case tar.TypeReg:
			if mkErr := os.MkdirAll(filepath.Dir(target), 0o755); mkErr != nil {
				return fmt.Errorf("%w: creating parent of %s: %w", ErrExtractFailed, rel, mkErr)
			}
			if wrErr := writeEntry(target, tr, hdr.FileInfo().Mode().Perm()); wrErr != nil {
				return fmt.Errorf("%w: extracting %s: %w", ErrExtractFailed, rel, wrErr)
			}
			extracted++
		default:
			// Symlinks and special files are dropped to keep cache entries
			// self-contained and traversal-safe.
		}
	}

	if extracted == 0 {
		return fmt.Errorf("%w: archive contains no files under a top-level directory", ErrExtractFailed)
	}
	return nil
}

// stripContainer drops the first path element of a tar entry name. Release
// tarballs place everything under "name-version/"; only entries below that
// container belong to the module.
func stripContainer(name string) (string, bool) {
	name = strings.TrimPrefix(filepath.ToSlash(name), "./")
	_, rest, ok := strings.Cut(name, "/")
	if !ok || rest == "" {
		return "", false
	}
	return filepath.FromSlash(rest), true
}

func writeEntry(target string, tr *tar.Reader, perm os.FileMode) (err error) {
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	_, err = io.Copy(out, io.LimitReader(tr, maxFileBytes))
	return err
}
