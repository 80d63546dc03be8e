// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides shared helpers for CUE schema validation and
// error formatting. It centralizes the compile/unify/validate flow so
// callers embed a schema, hand over user bytes, and get back either a
// unified value or an error message with JSON-path context.
package cueutil
