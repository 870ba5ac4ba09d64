// Package asm assembles tukun source text into module definitions.
//
// The pipeline is lexer → Parse (AST with constants, types and functions
// resolved by name) → Lower (constant pool layout plus one Builder per
// function). The first error of any stage aborts the assembly and is
// returned as an *Error.
package asm

import (
	"tukun/internal/diag"
	"tukun/internal/module"
	"tukun/internal/observ"
	"tukun/internal/source"
	"tukun/internal/trace"
)

const defaultMaxDiagnostics = 100

type config struct {
	timer    *observ.Timer
	tracer   trace.Tracer
	maxDiags int
}

// Option configures an assembly.
type Option func(*config)

// WithTimer records the parse and lower phases.
func WithTimer(t *observ.Timer) Option { return func(c *config) { c.timer = t } }

// WithTracer emits a span per phase.
func WithTracer(t trace.Tracer) Option {
	return func(c *config) {
		if t != nil {
			c.tracer = t
		}
	}
}

// WithMaxDiagnostics bounds the diagnostics collected while parsing.
func WithMaxDiagnostics(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxDiags = n
		}
	}
}

// Result is everything an assembly produced, including the diagnostics
// needed to render a failure with source context.
type Result struct {
	Module *module.ModuleDef
	Bag    *diag.Bag
	Files  *source.FileSet
	File   source.FileID
}

// Assemble assembles src, naming it path in positions.
func Assemble(path string, src []byte, opts ...Option) (*module.ModuleDef, error) {
	fs := source.NewFileSet()
	res, err := AssembleFile(fs, fs.AddNormalized(path, src), opts...)
	return res.Module, err
}

// AssembleFile assembles a file already loaded into fs.
func AssembleFile(fs *source.FileSet, id source.FileID, opts ...Option) (Result, error) {
	cfg := config{tracer: trace.Nop, maxDiags: defaultMaxDiagnostics}
	for _, opt := range opts {
		opt(&cfg)
	}
	res := Result{Bag: diag.NewBag(cfg.maxDiags), Files: fs, File: id}
	file := fs.Get(id)

	phase := cfg.begin("parse", file.Path)
	ast := Parse(file, ParseOptions{Reporter: diag.BagReporter{Bag: res.Bag}, MaxErrors: cfg.maxDiags})
	if d, failed := res.Bag.FirstError(); failed {
		phase.end("failed")
		return res, diagError(fs, d)
	}
	phase.end("")

	phase = cfg.begin("lower", ast.Name)
	def, err := Lower(ast)
	if err != nil {
		phase.end("failed")
		if ae, ok := err.(*Error); ok && ae.Pos == "" && !ae.Span.Empty() {
			ae.Pos = fs.Position(ae.Span)
		}
		return res, err
	}
	phase.end("")
	res.Module = def
	return res, nil
}

// Serialize encodes def, reporting failures as a SerializationError.
func Serialize(def *module.ModuleDef, format module.Format) ([]byte, error) {
	data, err := module.Encode(def, format)
	if err != nil {
		return nil, &Error{Kind: SerializationError, Msg: err.Error(), Err: err}
	}
	return data, nil
}

func diagError(fs *source.FileSet, d diag.Diagnostic) *Error {
	kind := AstGenerationError
	if d.Code.IsSyntax() {
		kind = ParseError
	}
	return &Error{Kind: kind, Msg: d.Message, Span: d.Primary, Pos: fs.Position(d.Primary)}
}

type phase struct {
	cfg  *config
	idx  int
	span *trace.Span
}

func (c *config) begin(name, detail string) phase {
	p := phase{cfg: c, idx: -1, span: trace.Begin(c.tracer, trace.ScopePhase, name, 0).WithExtra("target", detail)}
	if c.timer != nil {
		p.idx = c.timer.Begin(name)
	}
	return p
}

func (p phase) end(note string) {
	p.span.End(note)
	if p.cfg.timer != nil {
		p.cfg.timer.End(p.idx, note)
	}
}
