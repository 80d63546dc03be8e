// SPDX-License-Identifier: MPL-2.0

package host

import (
	"context"
	"fmt"
	"strings"

	"shmod-cli/internal/registry"
)

// installSymbol installs a freshly registered symbol in the interpreter
// under its hash identifier. The rewritten body references siblings by
// hash, and the shell resolves function names at call time, so install
// order within a unit does not matter.
func (h *Host) installSymbol(ctx context.Context, sym *registry.Symbol) error {
	src := sym.Hash.Ident() + "() " + sym.Body + "\n"
	if err := h.runSource(ctx, src); err != nil {
		return fmt.Errorf("installing symbol %s (%s): %w", sym.Name, sym.Hash, err)
	}
	return nil
}

// installShim installs a forwarding function for one export: calling the
// public name dispatches to the hash-identified body with all arguments
// forwarded and the exit status returned unchanged. Redefinition silently
// overwrites, which makes republishing idempotent.
func (h *Host) installShim(ctx context.Context, exp registry.Export) error {
	src := exp.Name + `() { ` + exp.Hash.Ident() + ` "$@"; }` + "\n"
	if err := h.runSource(ctx, src); err != nil {
		return fmt.Errorf("installing shim %s -> %s: %w", exp.Name, exp.Hash, err)
	}
	h.logger.Debug("publish", "name", exp.Name, "hash", exp.Hash)
	return nil
}

func (h *Host) runSource(ctx context.Context, src string) error {
	file, err := h.parser.Parse(strings.NewReader(src), "generated")
	if err != nil {
		return fmt.Errorf("parsing generated source: %w", err)
	}
	return h.runner.Run(ctx, file)
}
