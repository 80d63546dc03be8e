// SPDX-License-Identifier: MPL-2.0

package config

import "context"

var (
	// configDirOverride allows tests to override the config directory.
	// Necessary because os.UserHomeDir() doesn't reliably respect the
	// HOME environment variable on all platforms (e.g., macOS in CI).
	configDirOverride string

	// configFilePathOverride carries the --config flag value for callers
	// going through the package-level Load.
	configFilePathOverride string
)

// Load reads configuration using the active package-level overrides.
// CLI entry points call this once at startup; everything downstream
// receives the resulting *Config explicitly.
func Load() (*Config, error) {
	return NewProvider().Load(context.Background(), LoadOptions{
		ConfigFilePath: configFilePathOverride,
	})
}

// SetConfigFilePathOverride forces loading from a specific config file.
func SetConfigFilePathOverride(path string) {
	configFilePathOverride = path
}

// SetConfigDirOverride sets a custom config directory path. Primarily
// intended for testing.
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}

// Reset clears overrides. Call from test cleanup to restore defaults.
func Reset() {
	configDirOverride = ""
	configFilePathOverride = ""
}
