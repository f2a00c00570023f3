// Package symindex optionally persists a completed run's global symbol
// table and diagnostics list into a SQLite file, so editor tooling can
// query a compile without re-running it.
package symindex

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/klein-martifex/jackc/internal/diagnostics"
	"github.com/klein-martifex/jackc/internal/symbols"
)

const schema = `
CREATE TABLE IF NOT EXISTS symbols (
	run_id     TEXT NOT NULL,
	scope      TEXT NOT NULL,
	name       TEXT NOT NULL,
	kind       TEXT NOT NULL,
	type       TEXT NOT NULL,
	arg_index  INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS diagnostics (
	run_id   TEXT NOT NULL,
	code     TEXT NOT NULL,
	phase    TEXT NOT NULL,
	severity TEXT NOT NULL,
	message  TEXT NOT NULL,
	filename TEXT NOT NULL,
	line     INTEGER NOT NULL
);
`

// Export opens (creating if needed) the SQLite database at dbPath and
// inserts one row per symbol reachable from global and one row per
// diagnostic in diags, all stamped with runID so successive runs against
// the same database stay distinguishable.
func Export(dbPath, runID string, global *symbols.SymbolTable, diags []diagnostics.Diagnostic) error {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("symindex: open %s: %w", dbPath, err)
	}
	defer db.Close()

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("symindex: create schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("symindex: begin transaction: %w", err)
	}

	if err := insertSymbols(tx, runID, global); err != nil {
		tx.Rollback()
		return err
	}
	for _, d := range diags {
		if _, err := tx.Exec(
			`INSERT INTO diagnostics (run_id, code, phase, severity, message, filename, line) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			runID, string(d.Code), d.Phase.String(), d.Severity.String(), d.Message, d.Filename, d.Line,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("symindex: insert diagnostic: %w", err)
		}
	}
	return tx.Commit()
}

// symbolDump is the companion-file JSON shape for one class's symbol table
// (jackc.yaml's emit_symbol_dump), a lighter-weight sibling of the sqlite
// export above for editors that just want one class's scope as a file.
type symbolDump struct {
	Scope   string        `json:"scope"`
	Symbols []symbolEntry `json:"symbols"`
}

type symbolEntry struct {
	Name     string      `json:"name"`
	Kind     string      `json:"kind"`
	Type     string      `json:"type"`
	Index    int         `json:"index"`
	Children *symbolDump `json:"children,omitempty"`
}

// DumpClassJSON renders table (typically a Class-scope table) and every
// scope nested under it as indented JSON, for a `<class>.sym.json`
// companion file alongside a `.vm` output.
func DumpClassJSON(table *symbols.SymbolTable) ([]byte, error) {
	return json.MarshalIndent(dump(table), "", "  ")
}

func dump(table *symbols.SymbolTable) symbolDump {
	d := symbolDump{Scope: table.Scope.String()}
	for _, sym := range table.All() {
		entry := symbolEntry{
			Name:  sym.Name,
			Kind:  sym.Kind.String(),
			Type:  sym.Type.String(),
			Index: sym.Index,
		}
		if sym.ChildTable != nil {
			child := dump(sym.ChildTable)
			entry.Children = &child
		}
		d.Symbols = append(d.Symbols, entry)
	}
	return d
}

func insertSymbols(tx *sql.Tx, runID string, table *symbols.SymbolTable) error {
	scopeName := table.Scope.String()
	for _, sym := range table.All() {
		if _, err := tx.Exec(
			`INSERT INTO symbols (run_id, scope, name, kind, type, arg_index) VALUES (?, ?, ?, ?, ?, ?)`,
			runID, scopeName, sym.Name, sym.Kind.String(), sym.Type.String(), sym.Index,
		); err != nil {
			return fmt.Errorf("symindex: insert symbol %s: %w", sym.Name, err)
		}
		if sym.ChildTable != nil {
			if err := insertSymbols(tx, runID, sym.ChildTable); err != nil {
				return err
			}
		}
	}
	return nil
}
