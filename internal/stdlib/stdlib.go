// Package stdlib loads the standard-library symbol catalog and seeds a
// GLOBAL symbol table with it: one CLASS-scope child table per stdlib
// class, one subroutine-scope child table per function/method/constructor,
// pre-populated with ARG symbols, exactly as if the library had been parsed
// from source. The catalog JSON is compiled into the binary via go:embed
// and parsed once at startup; an external file of the same schema can
// override it.
package stdlib

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/klein-martifex/jackc/internal/symbols"
)

//go:embed catalog.json
var embeddedCatalog embed.FS

// entry is one function/method/constructor record in the catalog JSON.
type entry struct {
	Name       string  `json:"name"`
	ReturnType string  `json:"return_type"`
	Kind       string  `json:"kind"`
	Parameters []param `json:"parameters"`
}

type param struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// classEntry is one class's catalog record: a functions array (functions
// and constructors) and a methods array.
type classEntry struct {
	Functions []entry `json:"functions"`
	Methods   []entry `json:"methods"`
}

// Catalog is the full class-name-keyed catalog.
type Catalog map[string]classEntry

// Load parses the embedded catalog, or the file at overridePath if
// non-empty (jackc.yaml's stdlib_catalog_path).
func Load(overridePath string) (Catalog, error) {
	var data []byte
	var err error
	if overridePath != "" {
		data, err = os.ReadFile(overridePath)
	} else {
		data, err = embeddedCatalog.ReadFile("catalog.json")
	}
	if err != nil {
		return nil, fmt.Errorf("stdlib: load catalog: %w", err)
	}
	var cat Catalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("stdlib: parse catalog: %w", err)
	}
	return cat, nil
}

func kindOf(s string) symbols.Kind {
	switch s {
	case "KIND_CONSTRUCTOR":
		return symbols.Constructor
	case "KIND_METHOD":
		return symbols.Method
	default:
		return symbols.Function
	}
}

func scopeOf(k symbols.Kind) symbols.ScopeKind {
	switch k {
	case symbols.Constructor:
		return symbols.ScopeConstructor
	case symbols.Method:
		return symbols.ScopeMethod
	default:
		return symbols.ScopeFunction
	}
}

// Seed inserts every class, and every function/method/constructor within
// it, into global exactly as the BUILD phase would for source-declared
// equivalents. Calling Seed twice on the same table is idempotent: every
// insert goes through AddOnce, so a name already present is returned as-is
// and the table's symbols, counts and child tables are left untouched.
func Seed(global *symbols.SymbolTable, cat Catalog) {
	for className, ce := range cat {
		classSym, existed := global.AddOnce(className, symbols.UserDefined(className), symbols.Class)
		if !existed {
			classSym.ChildTable = symbols.NewTable(symbols.ScopeClass, global)
		}
		seedSubroutines(classSym.ChildTable, className, ce.Functions)
		seedSubroutines(classSym.ChildTable, className, ce.Methods)
	}
}

func seedSubroutines(classTable *symbols.SymbolTable, className string, entries []entry) {
	for _, e := range entries {
		kind := kindOf(e.Kind)
		sym, existed := classTable.AddOnce(e.Name, symbols.ParseType(e.ReturnType), kind)
		if existed {
			continue
		}
		subTable := symbols.NewTable(scopeOf(kind), classTable)
		sym.ChildTable = subTable
		if kind == symbols.Method {
			// Implicit receiver occupies ARG index 0, exactly as BUILD does
			// for a source-declared method; declared parameters start at 1.
			subTable.AddTyped("this", symbols.UserDefined(className), symbols.Arg)
		}
		for _, p := range e.Parameters {
			subTable.Add(p.Name, p.Type, symbols.Arg)
		}
	}
}
