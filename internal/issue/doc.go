// SPDX-License-Identifier: MPL-2.0

// Package issue provides user-facing error context and a catalog of
// known failure modes with rendered markdown guidance. ActionableError
// carries what failed and how to fix it; the Issue catalog maps stable
// ids to longer help cards shown by the CLI.
package issue
