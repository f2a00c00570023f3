package analyzer

import (
	"testing"

	"github.com/klein-martifex/jackc/internal/arena"
	"github.com/klein-martifex/jackc/internal/ast"
	"github.com/klein-martifex/jackc/internal/builder"
	"github.com/klein-martifex/jackc/internal/diagnostics"
	"github.com/klein-martifex/jackc/internal/lexer"
	"github.com/klein-martifex/jackc/internal/parser"
	"github.com/klein-martifex/jackc/internal/stdlib"
	"github.com/klein-martifex/jackc/internal/symbols"
)

func analyzeProgram(t *testing.T, seedStdlib bool, sources ...string) (*ast.Program, *diagnostics.Sink) {
	t.Helper()
	sink := diagnostics.NewSink()
	a := arena.New(64)
	prog := arena.Alloc[ast.Program](a)
	for _, src := range sources {
		q := lexer.Lex("t.jack", src, sink)
		p := parser.New("t.jack", q, sink, a)
		prog.Classes = append(prog.Classes, p.ParseClass())
	}
	global := symbols.NewTable(symbols.ScopeGlobal, nil)
	if seedStdlib {
		cat, err := stdlib.Load("")
		if err != nil {
			t.Fatalf("stdlib.Load: %v", err)
		}
		stdlib.Seed(global, cat)
	}
	builder.New(global, sink).Build(prog)
	if sink.HasFatal() {
		return prog, sink
	}
	New(global, sink).Analyze(prog)
	return prog, sink
}

func hasCode(sink *diagnostics.Sink, code diagnostics.Code) bool {
	for _, d := range sink.All() {
		if d.Code == code {
			return true
		}
	}
	return false
}

func TestAnalyzeUndeclaredVariableInLet(t *testing.T) {
	_, sink := analyzeProgram(t, false, `class Foo { function void run() { let x = 1; return; } }`)
	if !hasCode(sink, diagnostics.UndeclaredSymbol) {
		t.Fatalf("expected SEMANTIC_UNDECLARED_SYMBOL, got %+v", sink.All())
	}
}

func TestAnalyzeLetTypeMismatch(t *testing.T) {
	_, sink := analyzeProgram(t, false, `
class Foo {
	function void run() {
		var boolean b;
		let b = 1;
		return;
	}
}`)
	if !hasCode(sink, diagnostics.InvalidType) {
		t.Fatalf("expected SEMANTIC_INVALID_TYPE, got %+v", sink.All())
	}
}

func TestAnalyzeLetMatchingTypeIsClean(t *testing.T) {
	_, sink := analyzeProgram(t, false, `
class Foo {
	function void run() {
		var int i;
		let i = 1 + 2;
		return;
	}
}`)
	if sink.HasFatal() {
		t.Fatalf("unexpected fatal diagnostics: %+v", sink.All())
	}
}

func TestAnalyzeIfConditionMustBeBoolean(t *testing.T) {
	_, sink := analyzeProgram(t, false, `
class Foo {
	function void run() {
		if (1) {
			return;
		}
		return;
	}
}`)
	if !hasCode(sink, diagnostics.InvalidType) {
		t.Fatalf("expected SEMANTIC_INVALID_TYPE for a non-boolean if condition, got %+v", sink.All())
	}
}

func TestAnalyzeNonVoidSubroutineWithoutReturnIsMissingReturn(t *testing.T) {
	_, sink := analyzeProgram(t, false, `class Foo { function int f() { } }`)
	if !hasCode(sink, diagnostics.MissingReturn) {
		t.Fatalf("expected SEMANTIC_MISSING_RETURN, got %+v", sink.All())
	}
}

func TestAnalyzeVoidSubroutineWithoutReturnIsClean(t *testing.T) {
	_, sink := analyzeProgram(t, false, `class Foo { function void f() { } }`)
	if sink.HasFatal() {
		t.Fatalf("unexpected fatal diagnostics: %+v", sink.All())
	}
}

func TestAnalyzeReturnTypeMismatch(t *testing.T) {
	_, sink := analyzeProgram(t, false, `class Foo { function int f() { return true; } }`)
	if !hasCode(sink, diagnostics.InvalidType) {
		t.Fatalf("expected SEMANTIC_INVALID_TYPE for return true from int function, got %+v", sink.All())
	}
}

func TestAnalyzeArithmeticFoldsToInt(t *testing.T) {
	prog, sink := analyzeProgram(t, false, `class Foo { function int f() { return 1 + 2; } }`)
	if sink.HasFatal() {
		t.Fatalf("unexpected fatal diagnostics: %+v", sink.All())
	}
	ret := prog.Classes[0].SubroutineDecs[0].Body.Statements.List[0].(*ast.ReturnStatement)
	if !ret.Value.Type.Equal(symbols.Int) {
		t.Fatalf("Expression.Type = %v, want int", ret.Value.Type)
	}
}

func TestAnalyzeRelationalFoldsToBoolean(t *testing.T) {
	prog, sink := analyzeProgram(t, false, `class Foo { function boolean f() { return 1 < 2; } }`)
	if sink.HasFatal() {
		t.Fatalf("unexpected fatal diagnostics: %+v", sink.All())
	}
	ret := prog.Classes[0].SubroutineDecs[0].Body.Statements.List[0].(*ast.ReturnStatement)
	if !ret.Value.Type.Equal(symbols.Boolean) {
		t.Fatalf("Expression.Type = %v, want boolean", ret.Value.Type)
	}
}

func TestAnalyzeArrayAccessTypeIsTheArraySymbolType(t *testing.T) {
	prog, sink := analyzeProgram(t, false, `
class Foo {
	function void run() {
		var Array a;
		var Array i;
		let i = a[0];
		return;
	}
}`)
	if sink.HasFatal() {
		t.Fatalf("unexpected fatal diagnostics: %+v", sink.All())
	}
	let := prog.Classes[0].SubroutineDecs[0].Body.Statements.List[0].(*ast.LetStatement)
	arrTerm := let.Value.Head.(*ast.ArrayTerm)
	if !arrTerm.Type.Equal(symbols.Array) {
		t.Fatalf("ArrayTerm.Type = %v, want Array (opaque element type)", arrTerm.Type)
	}
}

func TestAnalyzeIndexingNonArrayIsInvalidType(t *testing.T) {
	_, sink := analyzeProgram(t, false, `
class Foo {
	function void run() {
		var int i;
		var int j;
		let j = i[0];
		return;
	}
}`)
	if !hasCode(sink, diagnostics.InvalidType) {
		t.Fatalf("expected SEMANTIC_INVALID_TYPE indexing a non-Array, got %+v", sink.All())
	}
}

func TestAnalyzeUnqualifiedCallResolvesAgainstOwnClass(t *testing.T) {
	prog, sink := analyzeProgram(t, false, `
class Foo {
	function void helper() { return; }
	function void run() { do helper(); return; }
}`)
	if sink.HasFatal() {
		t.Fatalf("unexpected fatal diagnostics: %+v", sink.All())
	}
	doStmt := prog.Classes[0].SubroutineDecs[1].Body.Statements.List[0].(*ast.DoStatement)
	if doStmt.Call.Target == nil || doStmt.Call.Target.Kind != symbols.Function {
		t.Fatalf("Call.Target = %+v, want resolved Function symbol", doStmt.Call.Target)
	}
}

func TestAnalyzeArgumentCountMismatchReportsInvalidArgument(t *testing.T) {
	_, sink := analyzeProgram(t, false, `
class Foo {
	function void helper(int a) { return; }
	function void run() { do helper(); return; }
}`)
	if !hasCode(sink, diagnostics.InvalidArgument) {
		t.Fatalf("expected SEMANTIC_INVALID_ARGUMENT, got %+v", sink.All())
	}
}

func TestAnalyzeMemoryDeAllocIsExemptFromArgumentTypeCheck(t *testing.T) {
	_, sink := analyzeProgram(t, true, `
class Foo {
	function void run() {
		var Counter c;
		do Memory.deAlloc(c);
		return;
	}
}`)
	if sink.HasFatal() {
		t.Fatalf("unexpected fatal diagnostics passing a non-Array object to Memory.deAlloc: %+v", sink.All())
	}
}

func TestAnalyzeUndeclaredCallerIsUndeclaredSymbol(t *testing.T) {
	_, sink := analyzeProgram(t, false, `class Foo { function void run() { do Bar.baz(); return; } }`)
	if !hasCode(sink, diagnostics.UndeclaredSymbol) {
		t.Fatalf("expected SEMANTIC_UNDECLARED_SYMBOL for an unknown caller class, got %+v", sink.All())
	}
}
