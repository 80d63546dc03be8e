// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidModulesPath is returned when a ModulesPath value is
	// whitespace-only.
	ErrInvalidModulesPath = errors.New("invalid modules path")
	// ErrInvalidURLTemplate is returned when a URLTemplate value lacks a
	// required placeholder.
	ErrInvalidURLTemplate = errors.New("invalid url template")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ModulesPath is a filesystem path to the module cache root.
	// The zero value ("") is valid and means "use the default cache dir".
	// Non-zero values must not be whitespace-only.
	ModulesPath string

	// InvalidModulesPathError is returned when a ModulesPath value is
	// non-empty but whitespace-only. It wraps ErrInvalidModulesPath for
	// errors.Is() compatibility.
	InvalidModulesPathError struct {
		Value ModulesPath
	}

	// URLTemplate is an archive URL template with {owner}, {name} and
	// {version} placeholders. The zero value ("") is valid and means
	// "use the default GitHub release template".
	URLTemplate string

	// InvalidURLTemplateError is returned when a URLTemplate value is
	// missing a placeholder. It wraps ErrInvalidURLTemplate for
	// errors.Is() compatibility.
	InvalidURLTemplateError struct {
		Value   URLTemplate
		Missing string
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// ModulesPath overrides the module cache root directory.
		ModulesPath ModulesPath `json:"modules_path" mapstructure:"modules_path"`
		// Registry configures module archive fetching.
		Registry RegistryConfig `json:"registry" mapstructure:"registry"`
		// UI configures terminal output.
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// RegistryConfig configures where module archives come from.
	RegistryConfig struct {
		// URLTemplate expands {owner}, {name} and {version} into the
		// archive download URL.
		URLTemplate URLTemplate `json:"url_template" mapstructure:"url_template"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// Verbose enables debug-level logging.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}
)

// String returns the string representation of the ModulesPath.
func (p ModulesPath) String() string { return string(p) }

// IsValid returns whether the ModulesPath is valid. The zero value is
// valid; non-zero values must not be whitespace-only.
func (p ModulesPath) IsValid() (bool, []error) {
	if p == "" {
		return true, nil
	}
	if strings.TrimSpace(string(p)) == "" {
		return false, []error{&InvalidModulesPathError{Value: p}}
	}
	return true, nil
}

// Error implements the error interface for InvalidModulesPathError.
func (e *InvalidModulesPathError) Error() string {
	return fmt.Sprintf("invalid modules path %q: non-empty value must not be whitespace-only", e.Value)
}

// Unwrap returns ErrInvalidModulesPath for errors.Is() compatibility.
func (e *InvalidModulesPathError) Unwrap() error { return ErrInvalidModulesPath }

// String returns the string representation of the URLTemplate.
func (t URLTemplate) String() string { return string(t) }

// IsValid returns whether the URLTemplate is valid. The zero value is
// valid; non-zero values must contain every placeholder, otherwise two
// distinct references could map to the same URL.
func (t URLTemplate) IsValid() (bool, []error) {
	if t == "" {
		return true, nil
	}
	for _, placeholder := range []string{"{owner}", "{name}", "{version}"} {
		if !strings.Contains(string(t), placeholder) {
			return false, []error{&InvalidURLTemplateError{Value: t, Missing: placeholder}}
		}
	}
	return true, nil
}

// Error implements the error interface for InvalidURLTemplateError.
func (e *InvalidURLTemplateError) Error() string {
	return fmt.Sprintf("invalid url template %q: missing %s placeholder", e.Value, e.Missing)
}

// Unwrap returns ErrInvalidURLTemplate for errors.Is() compatibility.
func (e *InvalidURLTemplateError) Unwrap() error { return ErrInvalidURLTemplate }

// IsValid returns whether the Config has valid fields. It delegates to
// ModulesPath.IsValid() and Registry.URLTemplate.IsValid(); UI has only
// bool fields and needs no validation.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.ModulesPath.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Registry.URLTemplate.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		ModulesPath: "", // Resolved by the cache dir lookup chain when empty
		Registry: RegistryConfig{
			URLTemplate: "", // Fetcher default (GitHub release tags) when empty
		},
		UI: UIConfig{
			Verbose: false,
		},
	}
}
