// SPDX-License-Identifier: MPL-2.0

// Package config loads and validates shmod configuration. Config files
// are written in CUE and validated against an embedded schema before
// merging into Viper, so defaults, file values, and overrides compose
// in one place.
package config
