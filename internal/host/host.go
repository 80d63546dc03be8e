// SPDX-License-Identifier: MPL-2.0

package host

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"shmod-cli/internal/registry"
	"shmod-cli/pkg/modref"

	"github.com/charmbracelet/log"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

var (
	// ErrUndefinedFunction is returned when a call names a symbol whose
	// plain name was hashed away and never restored via publish.
	ErrUndefinedFunction = errors.New("undefined function")

	// ErrNoImporter is returned when an import directive runs on a host
	// with no resolver wired in.
	ErrNoImporter = errors.New("no module importer configured")
)

type (
	// Importer resolves a module reference and executes its source units
	// against this host. Implemented by the resolve package; declared here
	// so the dependency points one way only.
	Importer interface {
		Import(ctx context.Context, ref modref.Ref) error
	}

	// Options defines the injection points for building a Host. Nil fields
	// are replaced with production defaults by New.
	Options struct {
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
		Logger *log.Logger
	}

	// Host owns the embedded interpreter and the symbol registry. A single
	// Host represents one importer namespace; all units executed through it
	// share the same interpreter state.
	Host struct {
		reg      *registry.Registry
		runner   *interp.Runner
		parser   *syntax.Parser
		importer Importer
		stdout   *swapWriter
		stderr   *swapWriter
		logger   *log.Logger
	}

	// swapWriter lets capture calls redirect interpreter output without
	// rebuilding the runner. Execution is strictly sequential (there is no
	// internal scheduler), so plain swapping is safe.
	swapWriter struct {
		w io.Writer
	}
)

func (s *swapWriter) Write(p []byte) (int, error) { return s.w.Write(p) }

func (s *swapWriter) swap(w io.Writer) io.Writer {
	old := s.w
	s.w = w
	return old
}

// New creates a Host with a fresh registry and interpreter.
func New(opts Options) (*Host, error) {
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	h := &Host{
		reg:    registry.New(opts.Logger),
		parser: syntax.NewParser(syntax.Variant(syntax.LangBash)),
		stdout: &swapWriter{w: opts.Stdout},
		stderr: &swapWriter{w: opts.Stderr},
		logger: opts.Logger,
	}

	runner, err := interp.New(
		interp.StdIO(opts.Stdin, h.stdout, h.stderr),
		interp.Env(expand.ListEnviron(os.Environ()...)),
		interp.ExecHandlers(h.undefinedGuard),
	)
	if err != nil {
		return nil, fmt.Errorf("creating interpreter: %w", err)
	}
	h.runner = runner

	return h, nil
}

// SetImporter wires the module resolver. Separate from New because the
// resolver needs the Host as its unit runner.
func (h *Host) SetImporter(imp Importer) {
	h.importer = imp
}

// Registry exposes the symbol registry for read-only inspection tooling.
func (h *Host) Registry() *registry.Registry {
	return h.reg
}

// Call invokes a published name with the given arguments, writing through
// the host's stdio. Exit status is forwarded unchanged.
func (h *Host) Call(ctx context.Context, name string, args ...string) *Result {
	return h.call(ctx, name, args)
}

// CallCapture invokes a published name and captures its output.
func (h *Host) CallCapture(ctx context.Context, name string, args ...string) *Result {
	var out, errOut strings.Builder
	oldOut := h.stdout.swap(&out)
	oldErr := h.stderr.swap(&errOut)
	defer func() {
		h.stdout.swap(oldOut)
		h.stderr.swap(oldErr)
	}()

	res := h.call(ctx, name, args)
	res.Output = out.String()
	res.ErrOutput = errOut.String()
	return res
}

func (h *Host) call(ctx context.Context, name string, args []string) *Result {
	src, err := callSource(name, args)
	if err != nil {
		return NewErrorResult(1, err)
	}

	file, err := h.parser.Parse(strings.NewReader(src), "call")
	if err != nil {
		return NewErrorResult(1, fmt.Errorf("building call for %q: %w", name, err))
	}

	if err := h.runner.Run(ctx, file); err != nil {
		return resultFromRunError(err)
	}
	return NewExitCodeResult(0)
}

func callSource(name string, args []string) (string, error) {
	var b strings.Builder
	b.WriteString(name)
	for _, a := range args {
		quoted, err := syntax.Quote(a, syntax.LangBash)
		if err != nil {
			return "", fmt.Errorf("quoting argument %q: %w", a, err)
		}
		b.WriteByte(' ')
		b.WriteString(quoted)
	}
	b.WriteByte('\n')
	return b.String(), nil
}

func resultFromRunError(err error) *Result {
	var status interp.ExitStatus
	if errors.As(err, &status) {
		return NewExitCodeResult(int(status))
	}
	if errors.Is(err, ErrUndefinedFunction) {
		return NewErrorResult(127, err)
	}
	return NewErrorResult(1, err)
}

// undefinedGuard converts calls to hashed-away names into
// ErrUndefinedFunction. The interpreter resolves shell functions before
// consulting exec handlers, so any registry-tracked name that reaches this
// point has no shim and no plain binding — by construction it is a symbol
// that lost its name. Unknown commands fall through to the default
// handler.
func (h *Host) undefinedGuard(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
	return func(ctx context.Context, args []string) error {
		if len(args) > 0 && h.hashedAway(args[0]) {
			return fmt.Errorf("%q: %w", args[0], ErrUndefinedFunction)
		}
		return next(ctx, args)
	}
}

func (h *Host) hashedAway(name string) bool {
	if h.reg.Defined(name) {
		return true
	}
	if m := h.reg.Module(); m != "" {
		return h.reg.Defined(registry.Qualify(m, name))
	}
	return false
}
