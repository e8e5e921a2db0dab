package compiler

import (
	"io"

	"github.com/mexlang/mexc/internal/diag"
	"github.com/mexlang/mexc/internal/lexer"
	"github.com/mexlang/mexc/internal/parser"
	"github.com/mexlang/mexc/internal/quadio"
	"github.com/mexlang/mexc/internal/sema"
)

// Compiler holds configuration shared across calls to Compile, built via
// New the same way the teacher's VM is built via its New(opts...).
type Compiler struct {
	cfg config
}

// New returns a Compiler configured by opts.
func New(opts ...Option) *Compiler {
	c := &Compiler{cfg: defaultConfig()}
	Options(opts...).apply(&c.cfg)
	return c
}

// Result is one source file's compilation outcome: the diagnostics
// reported (possibly empty) and, if none were errors, the serializable
// program (spec.md §7: "if zero errors were reported, the serialized
// quad + symbol output; otherwise a non-zero exit indication with no
// output committed").
type Result struct {
	Diagnostics []diag.Diagnostic
	Program     *quadio.Program // nil if compilation failed
}

// Failed reports whether r's compilation failed (any Error-severity
// diagnostic was reported).
func (r *Result) Failed() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == diag.Error {
			return true
		}
	}
	return false
}

// Compile reads and compiles one MEX source file named name, wiring
// internal/lexer -> internal/parser -> internal/sema -> internal/quadio
// per spec.md §2's pipeline overview.
func (c *Compiler) Compile(src io.Reader, name string) (*Result, error) {
	sink := diag.NewSink(c.cfg.warningsAsErrors)
	sc := sema.NewContext(sink, c.cfg.padStructs)

	lx := lexer.New(name, src)
	p, err := parser.New(lx, sc)
	if err != nil {
		return nil, err
	}
	if err := p.ParseProgram(); err != nil {
		return nil, err
	}

	res := &Result{Diagnostics: sink.Diagnostics}
	if sink.Failed() {
		return res, nil
	}
	res.Program = buildProgram(sc)
	return res, nil
}

// buildProgram flattens a completed sema.Context into the quadio.Program
// wire format: every compiled function's quad buffer, plus the global
// symbol table a back end needs to resolve non-local symbol operands.
func buildProgram(sc *sema.Context) *quadio.Program {
	prog := &quadio.Program{}
	for name, fn := range sc.Funcs {
		prog.Functions = append(prog.Functions, quadio.Function{
			Name:      name,
			Args:      fn.Sym.Args,
			Variadic:  fn.Sym.Variadic,
			StartQuad: fn.Sym.StartQuad,
			EndQuad:   fn.Sym.EndQuad,
			Quads:     fn.Emit.Quads,
		})
	}
	for _, sym := range sc.Symbols.Globals() {
		prog.Globals = append(prog.Globals, quadio.Global{
			Name:   sym.Name,
			Kind:   sym.Kind,
			Offset: sym.Offset,
		})
	}
	return prog
}
