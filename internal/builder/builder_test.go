package builder

import (
	"testing"

	"github.com/klein-martifex/jackc/internal/arena"
	"github.com/klein-martifex/jackc/internal/ast"
	"github.com/klein-martifex/jackc/internal/diagnostics"
	"github.com/klein-martifex/jackc/internal/lexer"
	"github.com/klein-martifex/jackc/internal/parser"
	"github.com/klein-martifex/jackc/internal/symbols"
)

func buildProgram(t *testing.T, sources ...string) (*ast.Program, *symbols.SymbolTable, *diagnostics.Sink) {
	t.Helper()
	sink := diagnostics.NewSink()
	a := arena.New(64)
	prog := arena.Alloc[ast.Program](a)
	for _, src := range sources {
		filename := "t.jack"
		q := lexer.Lex(filename, src, sink)
		p := parser.New(filename, q, sink, a)
		prog.Classes = append(prog.Classes, p.ParseClass())
	}
	global := symbols.NewTable(symbols.ScopeGlobal, nil)
	New(global, sink).Build(prog)
	return prog, global, sink
}

func TestBuildClassCreatesClassScopeSymbol(t *testing.T) {
	_, global, sink := buildProgram(t, `class Foo { field int x; }`)
	if len(sink.All()) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", sink.All())
	}
	sym := global.Lookup("Foo", symbols.LookupLocal)
	if sym == nil || sym.Kind != symbols.Class {
		t.Fatalf("Foo class symbol missing or wrong kind: %+v", sym)
	}
	if sym.ChildTable == nil {
		t.Fatalf("Foo has no ChildTable")
	}
	field := sym.ChildTable.Lookup("x", symbols.LookupLocal)
	if field == nil || field.Kind != symbols.Field || field.Index != 0 {
		t.Fatalf("field x = %+v, want Field at index 0", field)
	}
}

func TestBuildRedeclaredClassReportsDiagnostic(t *testing.T) {
	_, _, sink := buildProgram(t, `class Foo { }`, `class Foo { }`)
	found := false
	for _, d := range sink.All() {
		if d.Code == diagnostics.RedeclaredSymbol {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a REDECLARED_SYMBOL diagnostic, got %+v", sink.All())
	}
}

func TestBuildMethodGetsImplicitThisBeforeParams(t *testing.T) {
	_, global, sink := buildProgram(t, `class Foo { method void set(int a, int b) { return; } }`)
	if len(sink.All()) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", sink.All())
	}
	classSym := global.Lookup("Foo", symbols.LookupLocal)
	subSym := classSym.ChildTable.Lookup("set", symbols.LookupLocal)
	if subSym == nil || subSym.Kind != symbols.Method {
		t.Fatalf("set missing or wrong kind: %+v", subSym)
	}
	args := subSym.ChildTable.SymbolsOfKind(symbols.Arg)
	if len(args) != 3 {
		t.Fatalf("len(args) = %d, want 3 (this, a, b)", len(args))
	}
	if args[0].Name != "this" || args[0].Index != 0 {
		t.Fatalf("args[0] = %+v, want implicit this at index 0", args[0])
	}
	if args[1].Name != "a" || args[1].Index != 1 || args[2].Name != "b" || args[2].Index != 2 {
		t.Fatalf("declared params = %+v, want a@1, b@2", args[1:])
	}
}

func TestBuildFunctionHasNoImplicitThis(t *testing.T) {
	_, global, sink := buildProgram(t, `class Foo { function void run(int a) { return; } }`)
	if len(sink.All()) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", sink.All())
	}
	classSym := global.Lookup("Foo", symbols.LookupLocal)
	subSym := classSym.ChildTable.Lookup("run", symbols.LookupLocal)
	args := subSym.ChildTable.SymbolsOfKind(symbols.Arg)
	if len(args) != 1 || args[0].Name != "a" || args[0].Index != 0 {
		t.Fatalf("args = %+v, want just a@0", args)
	}
}

func TestBuildVarDecAssignsLocalIndices(t *testing.T) {
	_, global, sink := buildProgram(t, `
class Foo {
	function void run() {
		var int i, j;
		var boolean done;
		return;
	}
}`)
	if len(sink.All()) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", sink.All())
	}
	classSym := global.Lookup("Foo", symbols.LookupLocal)
	subSym := classSym.ChildTable.Lookup("run", symbols.LookupLocal)
	if subSym.ChildTable.Count(symbols.Var) != 3 {
		t.Fatalf("Count(Var) = %d, want 3", subSym.ChildTable.Count(symbols.Var))
	}
	i := subSym.ChildTable.Lookup("i", symbols.LookupLocal)
	j := subSym.ChildTable.Lookup("j", symbols.LookupLocal)
	done := subSym.ChildTable.Lookup("done", symbols.LookupLocal)
	if i.Index != 0 || j.Index != 1 || done.Index != 2 {
		t.Fatalf("indices = %d,%d,%d, want 0,1,2", i.Index, j.Index, done.Index)
	}
}

func TestBuildRedeclaredLocalReportsDiagnostic(t *testing.T) {
	_, _, sink := buildProgram(t, `
class Foo {
	function void run() {
		var int i;
		var int i;
		return;
	}
}`)
	found := false
	for _, d := range sink.All() {
		if d.Code == diagnostics.RedeclaredSymbol {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a REDECLARED_SYMBOL diagnostic for duplicate local, got %+v", sink.All())
	}
}
