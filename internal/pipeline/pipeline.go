// Package pipeline orchestrates one compiler run: lex+parse every file,
// BUILD over the whole Program, ANALYZE over the whole Program, then
// GENERATE one `.vm` stream per input file, skipping a phase the moment a
// fatal diagnostic has been recorded.
package pipeline

import (
	"path/filepath"
	"strings"

	"github.com/klein-martifex/jackc/internal/analyzer"
	"github.com/klein-martifex/jackc/internal/arena"
	"github.com/klein-martifex/jackc/internal/ast"
	"github.com/klein-martifex/jackc/internal/builder"
	"github.com/klein-martifex/jackc/internal/codegen"
	"github.com/klein-martifex/jackc/internal/diagnostics"
	"github.com/klein-martifex/jackc/internal/lexer"
	"github.com/klein-martifex/jackc/internal/parser"
	"github.com/klein-martifex/jackc/internal/stdlib"
	"github.com/klein-martifex/jackc/internal/symbols"
	"github.com/klein-martifex/jackc/internal/token"
)

// reserveHint is advisory (see arena.New); a typical multi-file Jack program
// allocates on the order of a few thousand arena objects.
const reserveHint = 4096

// FileInput is one `.jack` source file to compile, keyed by its path so
// Outputs can derive a sibling `.vm` path per file.
type FileInput struct {
	Filename string
	Source   string
}

// Result is everything a caller (the CLI, or a test) might want out of one
// run: the diagnostics sink, the emitted VM text per output path, the
// classes parsed from each input file, and the Program/Global symbol table
// for deeper introspection (e.g. symindex).
type Result struct {
	Sink          *diagnostics.Sink
	Outputs       map[string]string
	ClassesByPath map[string][]*ast.Class
	Program       *ast.Program
	Global        *symbols.SymbolTable
}

// Options configures one run; StdlibCatalogPath overrides the embedded
// catalog (jackc.yaml's stdlib_catalog_path).
type Options struct {
	StdlibCatalogPath string
}

// Run compiles files end-to-end and returns the aggregate Result. It never
// panics on a malformed program: every failure mode surfaces as a
// diagnostic in Result.Sink.
func Run(files []FileInput, opts Options) *Result {
	sink := diagnostics.NewSink()
	a := arena.New(reserveHint)

	global := symbols.NewTable(symbols.ScopeGlobal, nil)
	if cat, err := stdlib.Load(opts.StdlibCatalogPath); err == nil {
		stdlib.Seed(global, cat)
	} else {
		sink.Report(diagnostics.PhaseInternal, diagnostics.MemoryAllocation, token.Token{},
			"failed to load standard library catalog: %s", err)
	}

	prog := arena.Alloc[ast.Program](a)
	classByPath := make(map[string][]*ast.Class)

	for _, f := range files {
		q := lexer.Lex(f.Filename, f.Source, sink)
		if sink.HasFatal() {
			continue
		}
		p := parser.New(f.Filename, q, sink, a)
		classes := p.ParseFile()
		prog.Classes = append(prog.Classes, classes...)
		classByPath[f.Filename] = classes
	}

	result := &Result{Sink: sink, ClassesByPath: classByPath, Program: prog, Global: global}
	if sink.HasFatal() {
		return result
	}

	builder.New(global, sink).Build(prog)
	if sink.HasFatal() {
		return result
	}

	analyzer.New(global, sink).Analyze(prog)
	if sink.HasFatal() {
		return result
	}

	gen := codegen.New(sink)
	outputs := make(map[string]string, len(classByPath))
	for path, classes := range classByPath {
		var buf strings.Builder
		for _, class := range classes {
			gen.GenerateClass(class, &buf)
		}
		outputs[vmPath(path)] = buf.String()
	}
	result.Outputs = outputs
	return result
}

func vmPath(jackPath string) string {
	ext := filepath.Ext(jackPath)
	return strings.TrimSuffix(jackPath, ext) + ".vm"
}
