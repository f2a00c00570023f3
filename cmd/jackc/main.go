// Command jackc takes a positional directory argument, recursively compiles
// every `*.jack` file inside it, and writes one sibling `.vm` file per
// input. Exit code is 0 on a clean compile, non-zero if any fatal
// diagnostic was recorded.
package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klein-martifex/jackc/internal/ast"
	"github.com/klein-martifex/jackc/internal/pipeline"
	"github.com/klein-martifex/jackc/internal/projectcfg"
	"github.com/klein-martifex/jackc/internal/symindex"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr *os.File) int {
	if len(args) < 1 {
		fmt.Fprintln(stderr, "usage: jackc <directory>")
		return 2
	}
	dir := args[0]

	sources, err := findJackFiles(dir)
	if err != nil {
		fmt.Fprintf(stderr, "jackc: %s\n", err)
		return 2
	}
	if len(sources) == 0 {
		fmt.Fprintf(stderr, "jackc: no .jack files found under %s\n", dir)
		return 2
	}

	cfg, err := projectcfg.Load(filepath.Join(dir, "jackc.yaml"))
	if err != nil {
		fmt.Fprintf(stderr, "jackc: reading jackc.yaml: %s\n", err)
		return 2
	}

	var inputs []pipeline.FileInput
	for _, path := range sources {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(stderr, "jackc: %s\n", err)
			return 2
		}
		inputs = append(inputs, pipeline.FileInput{Filename: path, Source: string(data)})
	}

	fmt.Fprintf(stderr, "jackc: compiling %d file(s) under %s\n", len(inputs), dir)

	result := pipeline.Run(inputs, pipeline.Options{StdlibCatalogPath: cfg.StdlibCatalogPath})

	for path, content := range result.Outputs {
		outPath := path
		if cfg.OutputDir != "" {
			outPath = filepath.Join(cfg.OutputDir, filepath.Base(path))
		}
		if err := os.WriteFile(outPath, []byte(content), 0o644); err != nil {
			fmt.Fprintf(stderr, "jackc: writing %s: %s\n", outPath, err)
			return 1
		}
	}

	// One dump per class, not per file: a single .jack file may declare
	// several classes, and its name need not match any of them.
	if cfg.EmitSymbolDump && !result.Sink.HasFatal() {
		for srcPath, classes := range result.ClassesByPath {
			outDir := filepath.Dir(srcPath)
			if cfg.OutputDir != "" {
				outDir = cfg.OutputDir
			}
			for _, class := range classes {
				dumpPath := filepath.Join(outDir, class.Name+".sym.json")
				if err := writeSymbolDump(dumpPath, class); err != nil {
					fmt.Fprintf(stderr, "jackc: symbol dump: %s\n", err)
				}
			}
		}
	}

	result.Sink.PrintAll(stderr)
	result.Sink.PrintSummary(stderr)

	if cfg.SymbolIndex {
		dbPath := cfg.SymbolIndexPath
		if dbPath == "" {
			dbPath = filepath.Join(dir, "jackc.db")
		}
		if err := symindex.Export(dbPath, result.Sink.RunID(), result.Global, result.Sink.All()); err != nil {
			fmt.Fprintf(stderr, "jackc: symbol index: %s\n", err)
		}
	}

	if result.Sink.HasFatal() {
		return 1
	}
	return 0
}

// writeSymbolDump writes class's symbol table to dumpPath (jackc.yaml's
// emit_symbol_dump).
func writeSymbolDump(dumpPath string, class *ast.Class) error {
	if class.Table == nil {
		return fmt.Errorf("class %q has no symbol table", class.Name)
	}
	data, err := symindex.DumpClassJSON(class.Table)
	if err != nil {
		return fmt.Errorf("dumping symbols for %s: %w", class.Name, err)
	}
	return os.WriteFile(dumpPath, data, 0o644)
}

func findJackFiles(dir string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".jack") {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	return out, nil
}
