package stdlib

import (
	"testing"

	"github.com/klein-martifex/jackc/internal/symbols"
)

func TestLoadEmbeddedCatalogHasCoreClasses(t *testing.T) {
	cat, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, name := range []string{"Math", "String", "Array", "Output", "Screen", "Keyboard", "Memory", "Sys"} {
		if _, ok := cat[name]; !ok {
			t.Fatalf("catalog missing class %q", name)
		}
	}
}

func TestSeedInsertsClassAndSubroutineSymbols(t *testing.T) {
	cat, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	global := symbols.NewTable(symbols.ScopeGlobal, nil)
	Seed(global, cat)

	mathSym := global.Lookup("Math", symbols.LookupLocal)
	if mathSym == nil || mathSym.Kind != symbols.Class {
		t.Fatalf("Math class symbol missing or wrong kind: %+v", mathSym)
	}
	if mathSym.ChildTable == nil {
		t.Fatalf("Math class symbol has no ChildTable")
	}
	multiply := mathSym.ChildTable.Lookup("multiply", symbols.LookupLocal)
	if multiply == nil || multiply.Kind != symbols.Function {
		t.Fatalf("Math.multiply missing or wrong kind: %+v", multiply)
	}
	params := multiply.ChildTable.SymbolsOfKind(symbols.Arg)
	if len(params) != 2 {
		t.Fatalf("Math.multiply param count = %d, want 2", len(params))
	}
}

func TestSeedMethodGetsImplicitThisAtArgZero(t *testing.T) {
	cat, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	global := symbols.NewTable(symbols.ScopeGlobal, nil)
	Seed(global, cat)

	strSym := global.Lookup("String", symbols.LookupLocal)
	appendChar := strSym.ChildTable.Lookup("appendChar", symbols.LookupLocal)
	if appendChar == nil || appendChar.Kind != symbols.Method {
		t.Fatalf("String.appendChar missing or wrong kind: %+v", appendChar)
	}
	params := appendChar.ChildTable.SymbolsOfKind(symbols.Arg)
	if len(params) < 1 || params[0].Name != "this" || params[0].Index != 0 {
		t.Fatalf("appendChar params[0] = %+v, want implicit this at index 0", params)
	}
	if !params[0].Type.Equal(symbols.UserDefined("String")) {
		t.Fatalf("implicit this type = %v, want String", params[0].Type)
	}
}

// Seeding twice leaves every table's symbol counts exactly where the first
// call put them, all the way down the class and subroutine scopes.
func TestSeedTwiceLeavesCountsUnchanged(t *testing.T) {
	cat, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	global := symbols.NewTable(symbols.ScopeGlobal, nil)
	Seed(global, cat)

	classCount := global.Count(symbols.Class)
	mathSym := global.Lookup("Math", symbols.LookupLocal)
	mathFuncs := mathSym.ChildTable.Count(symbols.Function)
	multiply := mathSym.ChildTable.Lookup("multiply", symbols.LookupLocal)
	multiplyArgs := multiply.ChildTable.Count(symbols.Arg)
	globalSymbols := len(global.All())

	Seed(global, cat)

	if got := global.Count(symbols.Class); got != classCount {
		t.Fatalf("Count(Class) after re-seed = %d, want %d", got, classCount)
	}
	if got := len(global.All()); got != globalSymbols {
		t.Fatalf("len(global.All()) after re-seed = %d, want %d", got, globalSymbols)
	}
	if got := mathSym.ChildTable.Count(symbols.Function); got != mathFuncs {
		t.Fatalf("Math Count(Function) after re-seed = %d, want %d", got, mathFuncs)
	}
	if got := multiply.ChildTable.Count(symbols.Arg); got != multiplyArgs {
		t.Fatalf("Math.multiply Count(Arg) after re-seed = %d, want %d", got, multiplyArgs)
	}
}

// Re-seeding the same table never replaces an already-seeded class's child
// table, so lookups resolved before a second Seed call stay valid.
func TestSeedReseedKeepsOriginalChildTableIdentity(t *testing.T) {
	cat, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	global := symbols.NewTable(symbols.ScopeGlobal, nil)
	Seed(global, cat)
	mathSym := global.Lookup("Math", symbols.LookupLocal)
	firstChildTable := mathSym.ChildTable

	Seed(global, cat)
	mathSymAgain := global.Lookup("Math", symbols.LookupLocal)
	if mathSymAgain != mathSym {
		t.Fatalf("Lookup after re-seed returned a different symbol than the original")
	}
	if mathSymAgain.ChildTable != firstChildTable {
		t.Fatalf("re-seeding replaced Math's child table instead of reusing it")
	}
	multiply := mathSymAgain.ChildTable.Lookup("multiply", symbols.LookupLocal)
	if multiply == nil {
		t.Fatalf("Math.multiply should still resolve after re-seeding")
	}
}
