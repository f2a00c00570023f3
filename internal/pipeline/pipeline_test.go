package pipeline

import (
	"strings"
	"testing"
)

func compileOne(t *testing.T, filename, src string) *Result {
	t.Helper()
	return Run([]FileInput{{Filename: filename, Source: src}}, Options{})
}

// vmLines splits emitted VM text into its non-empty instruction lines, so
// expected sequences can be compared without fussing over trailing
// newlines.
func vmLines(t *testing.T, result *Result, path string) []string {
	t.Helper()
	text, ok := result.Outputs[path]
	if !ok {
		t.Fatalf("no output for %s; outputs = %v", path, result.Outputs)
	}
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func requireClean(t *testing.T, result *Result) {
	t.Helper()
	if result.Sink.HasFatal() {
		var msgs []string
		for _, d := range result.Sink.All() {
			msgs = append(msgs, string(d.Code)+": "+d.Message)
		}
		t.Fatalf("unexpected fatal diagnostics: %s", strings.Join(msgs, "; "))
	}
}

func TestSimpleReturn(t *testing.T) {
	result := compileOne(t, "A.jack", `class A { function int f() { return 7; } }`)
	requireClean(t, result)
	got := vmLines(t, result, "A.vm")
	want := []string{"function A.f 0", "push constant 7", "return"}
	assertLines(t, got, want)
}

// Expressions evaluate left-to-right at a single precedence level.
func TestLeftToRightExpression(t *testing.T) {
	result := compileOne(t, "A.jack", `class A { function int f() { return 1 + 2 * 3; } }`)
	requireClean(t, result)
	got := vmLines(t, result, "A.vm")
	want := []string{
		"function A.f 0",
		"push constant 1",
		"push constant 2",
		"add",
		"push constant 3",
		"call Math.multiply 2",
		"return",
	}
	assertLines(t, got, want)
}

// A constructor allocates, assigns a field, returns `this`.
func TestConstructor(t *testing.T) {
	src := `class A { field int x; constructor A new() { let x = 5; return this; } }`
	result := compileOne(t, "A.jack", src)
	requireClean(t, result)
	got := vmLines(t, result, "A.vm")
	want := []string{
		"function A.new 0",
		"push constant 1",
		"call Memory.alloc 1",
		"pop pointer 0",
		"push constant 5",
		"pop this 0",
		"push pointer 0",
		"return",
	}
	assertLines(t, got, want)
}

// A method binds the implicit `this`, recurses, and labels its if branches.
func TestMethodRecursiveIf(t *testing.T) {
	src := `class A { method void g(int i) { if (i > 0) { do g(i - 1); } return; } }`
	result := compileOne(t, "A.jack", src)
	requireClean(t, result)
	got := vmLines(t, result, "A.vm")
	want := []string{
		"function A.g 0",
		"push argument 0",
		"pop pointer 0",
		"push argument 1",
		"push constant 0",
		"gt",
		"not",
		"if-goto IF_FALSE_0",
		"label IF_TRUE_0",
		"push pointer 0",
		"push argument 1",
		"push constant 1",
		"sub",
		"call A.g 2",
		"pop temp 0",
		"goto IF_END_0",
		"label IF_FALSE_0",
		"label IF_END_0",
		"push constant 0",
		"return",
	}
	assertLines(t, got, want)
}

// Local variable, while loop, labeled WHILE_START/WHILE_END.
func TestWhileLoop(t *testing.T) {
	src := `class A { function void h() { var int i; let i = 0; while (i < 10) { let i = i + 1; } return; } }`
	result := compileOne(t, "A.jack", src)
	requireClean(t, result)
	got := vmLines(t, result, "A.vm")
	want := []string{
		"function A.h 1",
		"push constant 0",
		"pop local 0",
		"label WHILE_START_0",
		"push local 0",
		"push constant 10",
		"lt",
		"not",
		"if-goto WHILE_END_0",
		"push local 0",
		"push constant 1",
		"add",
		"pop local 0",
		"goto WHILE_START_0",
		"label WHILE_END_0",
		"push constant 0",
		"return",
	}
	assertLines(t, got, want)
}

// A type mismatch on return raises a SEMANTIC diagnostic and produces no
// .vm output.
func TestTypeMismatchOnReturn(t *testing.T) {
	result := compileOne(t, "A.jack", `class A { function int f() { return true; } }`)
	if !result.Sink.HasFatal() {
		t.Fatalf("expected a fatal diagnostic for returning boolean from an int function")
	}
	if len(result.Outputs) != 0 {
		t.Fatalf("expected no .vm output on semantic failure, got %v", result.Outputs)
	}
	found := false
	for _, d := range result.Sink.All() {
		if strings.Contains(string(d.Code), "INVALID_TYPE") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an INVALID_TYPE diagnostic, got %+v", result.Sink.All())
	}
}

func assertLines(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("line count = %d, want %d\ngot:  %v\nwant: %v", len(got), len(want), got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("line %d = %q, want %q\ngot:  %v\nwant: %v", i, got[i], want[i], got, want)
		}
	}
}

// An empty class compiles to zero function emissions and no errors.
func TestEmptyClassCompilesClean(t *testing.T) {
	result := compileOne(t, "A.jack", `class A { }`)
	requireClean(t, result)
	if text := result.Outputs["A.vm"]; strings.TrimSpace(text) != "" {
		t.Fatalf("empty class should emit nothing, got %q", text)
	}
}

// A void subroutine with no return is accepted and auto-terminated with
// `push constant 0; return`.
func TestVoidSubroutineWithoutReturnIsAutoTerminated(t *testing.T) {
	result := compileOne(t, "A.jack", `class A { function void f() { do Sys.halt(); } }`)
	requireClean(t, result)
	got := vmLines(t, result, "A.vm")
	want := []string{
		"function A.f 0",
		"call Sys.halt 0",
		"pop temp 0",
		"push constant 0",
		"return",
	}
	assertLines(t, got, want)
}

// A non-void subroutine with no return statement is a semantic error, not
// silently patched at GENERATE time.
func TestNonVoidSubroutineWithoutReturnIsAnError(t *testing.T) {
	result := compileOne(t, "A.jack", `class A { function int f() { do Sys.halt(); } }`)
	if !result.Sink.HasFatal() {
		t.Fatalf("expected MISSING_RETURN diagnostic for non-void subroutine without a return")
	}
}

// Array element assignment exercises the let v[i] = e GENERATE sequence.
func TestArrayElementAssignment(t *testing.T) {
	src := `class A { function void f() { var Array a; var int i; let a[i] = 7; return; } }`
	result := compileOne(t, "A.jack", src)
	requireClean(t, result)
	got := vmLines(t, result, "A.vm")
	want := []string{
		"function A.f 2",
		"push constant 7",
		"push local 1",
		"push local 0",
		"add",
		"pop temp 0",
		"pop pointer 1",
		"push temp 0",
		"pop that 0",
		"push constant 0",
		"return",
	}
	assertLines(t, got, want)
}

// A qualified call on a variable of user-defined type dispatches on its
// declared class.
func TestMethodCallOnInstanceVariable(t *testing.T) {
	src := `
class Counter { field int n; constructor Counter new() { let n = 0; return this; } method void bump() { let n = n + 1; return; } }
class Main { function void main() { var Counter c; let c = Counter.new(); do c.bump(); return; } }
`
	result := Run([]FileInput{{Filename: "prog.jack", Source: src}}, Options{})
	requireClean(t, result)
	if got := len(result.ClassesByPath["prog.jack"]); got != 2 {
		t.Fatalf("ClassesByPath[prog.jack] has %d classes, want 2", got)
	}
	got := vmLines(t, result, "prog.vm")
	want := []string{
		"function Counter.new 0",
		"push constant 1",
		"call Memory.alloc 1",
		"pop pointer 0",
		"push constant 0",
		"pop this 0",
		"push pointer 0",
		"return",
		"function Counter.bump 0",
		"push argument 0",
		"pop pointer 0",
		"push this 0",
		"push constant 1",
		"add",
		"pop this 0",
		"push constant 0",
		"return",
		"function Main.main 1",
		"call Counter.new 0",
		"pop local 0",
		"push local 0",
		"call Counter.bump 1",
		"pop temp 0",
		"push constant 0",
		"return",
	}
	assertLines(t, got, want)
}
