// SPDX-License-Identifier: MPL-2.0

package host

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"shmod-cli/internal/registry"
	"shmod-cli/pkg/modref"

	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// Directive keywords recognized at the top level of a source unit.
const (
	directiveImport  = "import"
	directivePublish = "publish"
	directiveModule  = "module"
)

// ErrBadDirective is returned for a malformed import/publish/module
// statement.
var ErrBadDirective = errors.New("malformed directive")

var moduleNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// RunScript executes a standalone script as a source unit with positional
// parameters available as $1, $2, and so on. This is the CLI entry point;
// modules reach the same machinery through import directives.
func (h *Host) RunScript(ctx context.Context, path string, args []string) error {
	if len(args) > 0 {
		params := append([]string{"--"}, args...)
		if err := interp.Params(params...)(h.runner); err != nil {
			return fmt.Errorf("setting positional parameters: %w", err)
		}
	}
	return h.RunUnit(ctx, path)
}

// RunUnit parses one source unit and processes its top-level statements in
// program order: function declarations are registered and hashed away,
// directives are handled in Go, and everything else runs through the
// interpreter. The first failure aborts the unit — no partial success.
func (h *Host) RunUnit(ctx context.Context, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading source unit: %w", err)
	}

	file, err := h.parser.Parse(bytes.NewReader(src), filepath.Base(path))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	pending, qualified := h.prescan(file, src)

	for _, stmt := range file.Stmts {
		switch cmd := stmt.Cmd.(type) {
		case *syntax.FuncDecl:
			if err := h.define(ctx, cmd, src, qualified[cmd], pending); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
		case *syntax.CallExpr:
			name, args, isDirective := directiveCall(cmd)
			if isDirective {
				if err := h.runDirective(ctx, name, args); err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				continue
			}
			if err := h.runner.Run(ctx, stmt); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
		default:
			if err := h.runner.Run(ctx, stmt); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
		}
	}

	return nil
}

// prescan walks a unit's top-level statements before execution, collecting
// every function declaration it will define and pre-computing body hashes.
// Bodies can then reference siblings declared later in the unit — the
// rewrite pass resolves them through this pending set, so definition order
// within a unit carries no hazard. The scan tracks module directives so
// each declaration is qualified with the prefix active at its position.
func (h *Host) prescan(file *syntax.File, src []byte) (map[string]registry.Hash, map[*syntax.FuncDecl]string) {
	pending := make(map[string]registry.Hash)
	qualified := make(map[*syntax.FuncDecl]string)

	prefix := h.reg.Module()
	for _, stmt := range file.Stmts {
		switch cmd := stmt.Cmd.(type) {
		case *syntax.FuncDecl:
			raw := bodyText(cmd, src)
			pending[cmd.Name.Value] = registry.HashBody(raw)
			qualified[cmd] = registry.Qualify(prefix, cmd.Name.Value)
		case *syntax.CallExpr:
			if name, args, ok := directiveCall(cmd); ok && name == directiveModule && len(args) == 1 {
				prefix = args[0]
			}
		}
	}
	return pending, qualified
}

// define registers one function declaration and installs its rewritten
// body under the hash identifier. The written name is never installed:
// from this point the symbol is reachable only via its hash, an export
// shim, or another rewritten body.
func (h *Host) define(ctx context.Context, fn *syntax.FuncDecl, src []byte, name string, pending map[string]registry.Hash) error {
	raw := bodyText(fn, src)

	sym, fresh, err := h.reg.Define(name, raw, pending)
	if err != nil {
		return err
	}
	if !fresh {
		return nil
	}
	return h.installSymbol(ctx, sym)
}

func (h *Host) runDirective(ctx context.Context, name string, args []string) error {
	switch name {
	case directiveModule:
		if len(args) != 1 || !moduleNamePattern.MatchString(args[0]) {
			return fmt.Errorf("%w: module expects one plain name", ErrBadDirective)
		}
		h.reg.SetModule(args[0])
		return nil

	case directivePublish:
		if len(args) == 0 {
			return fmt.Errorf("%w: publish expects at least one name", ErrBadDirective)
		}
		exports, err := h.reg.Publish(args)
		if err != nil {
			return err
		}
		for _, exp := range exports {
			if err := h.installShim(ctx, exp); err != nil {
				return err
			}
		}
		return nil

	case directiveImport:
		if len(args) != 1 {
			return fmt.Errorf("%w: import expects one module reference", ErrBadDirective)
		}
		ref, err := modref.Parse(args[0])
		if err != nil {
			return err
		}
		return h.runImport(ctx, ref)

	default:
		return fmt.Errorf("%w: %q", ErrBadDirective, name)
	}
}

// runImport hands a reference to the resolver. The imported module starts
// with a clean namespace prefix and the importer's prefix is restored
// afterwards, so a module directive never leaks across module boundaries.
func (h *Host) runImport(ctx context.Context, ref modref.Ref) error {
	if h.importer == nil {
		return fmt.Errorf("importing %s: %w", ref, ErrNoImporter)
	}

	saved := h.reg.Module()
	h.reg.SetModule("")
	defer h.reg.SetModule(saved)

	h.logger.Debug("import", "ref", ref.String())
	return h.importer.Import(ctx, ref)
}

// directiveCall reports whether a call statement is a directive, returning
// its name and argument words. Directive arguments must be plain literal
// words: a directive is configuration, not computation.
func directiveCall(call *syntax.CallExpr) (string, []string, bool) {
	if len(call.Assigns) > 0 || len(call.Args) == 0 {
		return "", nil, false
	}
	name := literalValue(call.Args[0])
	switch name {
	case directiveImport, directivePublish, directiveModule:
	default:
		return "", nil, false
	}

	args := make([]string, 0, len(call.Args)-1)
	for _, w := range call.Args[1:] {
		v := literalValue(w)
		if v == "" {
			return "", nil, false
		}
		args = append(args, v)
	}
	return name, args, true
}

// bodyText extracts the literal body text of a function declaration from
// the unit source. Offsets come straight from the parser, so the text is
// byte-for-byte what the author wrote — the hash input.
func bodyText(fn *syntax.FuncDecl, src []byte) string {
	return string(src[fn.Body.Pos().Offset():fn.Body.End().Offset()])
}

func literalValue(w *syntax.Word) string {
	if w == nil || len(w.Parts) != 1 {
		return ""
	}
	lit, ok := w.Parts[0].(*syntax.Lit)
	if !ok {
		return ""
	}
	return lit.Value
}
