// SPDX-License-Identifier: MPL-2.0

package resolve

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// CacheDirEnv overrides the module cache root.
	CacheDirEnv = "SHMOD_MODULES_PATH"

	// projectCacheDir is the project-relative cache location, used when a
	// .shmod directory exists in the working directory.
	projectCacheDir = ".shmod"

	// modulesSubdir is the cache subdirectory under both the project and
	// the user cache roots.
	modulesSubdir = "modules"
)

// CacheDir returns the module cache root, in priority order: the explicit
// override, the SHMOD_MODULES_PATH environment variable, a project-local
// .shmod/modules directory, and finally the user cache home.
func CacheDir(override string) (string, error) {
	if override != "" {
		return filepath.Abs(override)
	}

	if envPath := os.Getenv(CacheDirEnv); envPath != "" {
		return filepath.Abs(envPath)
	}

	if info, err := os.Stat(projectCacheDir); err == nil && info.IsDir() {
		return filepath.Abs(filepath.Join(projectCacheDir, modulesSubdir))
	}

	userCache, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("locating user cache directory: %w", err)
	}
	return filepath.Join(userCache, "shmod", modulesSubdir), nil
}
