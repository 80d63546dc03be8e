// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// rewrite resolves a body's references against the current bindings at
// definition time. The body is parsed, every call to a tracked name is
// replaced by its hash identifier, and the result is printed back. Working
// on the syntax tree rather than raw text means a name inside a string
// literal or a comment is never touched.
//
// Resolution order for a call to name n:
//
//  1. the unit's own pending set (covers self-recursion and forward
//     references within one source unit)
//  2. the active module's qualified binding (symbols defined earlier in
//     the same module, referenced by their source-level name)
//  3. the exact binding (cross-module references by published name)
//
// A name that resolves nowhere is left as written: it may be an external
// command, a shell builtin, or a symbol from a unit that has not run yet.
func (r *Registry) rewrite(raw string, pending map[string]Hash) (string, error) {
	parser := syntax.NewParser(syntax.Variant(syntax.LangBash))
	file, err := parser.Parse(strings.NewReader(raw), "body")
	if err != nil {
		return "", fmt.Errorf("parsing body: %w", err)
	}

	syntax.Walk(file, func(node syntax.Node) bool {
		call, ok := node.(*syntax.CallExpr)
		if !ok || len(call.Args) == 0 {
			return true
		}
		name := literalValue(call.Args[0])
		if name == "" {
			return true
		}
		if h, ok := r.resolveCall(name, pending); ok {
			call.Args[0] = hashWord(h)
		}
		return true
	})

	var buf strings.Builder
	printer := syntax.NewPrinter()
	if err := printer.Print(&buf, file); err != nil {
		return "", fmt.Errorf("printing rewritten body: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func (r *Registry) resolveCall(name string, pending map[string]Hash) (Hash, bool) {
	if h, ok := pending[name]; ok {
		return h, true
	}
	if h, ok := r.byName[Qualify(r.module, name)]; ok {
		return h, true
	}
	if h, ok := r.byName[name]; ok {
		return h, true
	}
	return "", false
}

// literalValue returns the plain text of a word made of a single literal
// part, or "" when the word carries expansions or quoting.
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

func hashWord(h Hash) *syntax.Word {
	return &syntax.Word{Parts: []syntax.WordPart{&syntax.Lit{Value: h.Ident()}}}
}
