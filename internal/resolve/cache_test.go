// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"path/filepath"
	"testing"
)

func TestCacheDir_OverrideBeatsEnv(t *testing.T) {
	t.Setenv(CacheDirEnv, t.TempDir())

	want := t.TempDir()
	got, err := CacheDir(want)
	if err != nil {
		t.Fatalf("CacheDir: %v", err)
	}
	if got != want {
		t.Errorf("CacheDir = %q, want override %q", got, want)
	}
}

func TestCacheDir_EnvValueIsAbsolutized(t *testing.T) {
	t.Setenv(CacheDirEnv, "relative/cache")

	got, err := CacheDir("")
	if err != nil {
		t.Fatalf("CacheDir: %v", err)
	}
	if !filepath.IsAbs(got) {
		t.Errorf("CacheDir = %q, want an absolute path independent of the working directory", got)
	}
	want, err := filepath.Abs("relative/cache")
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("CacheDir = %q, want %q", got, want)
	}
}
