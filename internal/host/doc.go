// SPDX-License-Identifier: MPL-2.0

// Package host executes module source units inside an embedded shell
// interpreter (mvdan.cc/sh) and bridges them to the symbol registry.
//
// A unit is an ordinary shell file processed statement by statement in
// program order. Function declarations never reach the interpreter under
// their written name: each one is registered with the content-addressed
// registry and installed only under its hash identifier, so every symbol
// is private by construction. Three directives are recognized at the top
// level of a unit:
//
//	module NAME            activate a namespace prefix
//	import owner/name@vX.Y.Z   resolve and execute another module
//	publish NAME...        expose symbols as callable forwarding shims
//
// Everything else a unit contains runs through the interpreter unchanged.
// The interpreter state persists for the host's lifetime and acts as the
// importer's namespace; it is torn down with the process.
package host
