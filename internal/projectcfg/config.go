// Package projectcfg loads an optional per-project `jackc.yaml`. The file
// is entirely optional: the compiler works with zero config, and no
// environment variables are consumed.
package projectcfg

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is jackc.yaml's schema.
type Config struct {
	// OutputDir, if set, redirects every emitted .vm file here instead of
	// sitting beside its .jack input.
	OutputDir string `yaml:"output_dir,omitempty"`

	// EmitSymbolDump writes a companion `<class>.sym.json` alongside each
	// .vm output, dumping that class's symbol table for editor tooling.
	EmitSymbolDump bool `yaml:"emit_symbol_dump,omitempty"`

	// StdlibCatalogPath overrides the embedded standard-library catalog
	// with an external JSON file of the same schema.
	StdlibCatalogPath string `yaml:"stdlib_catalog_path,omitempty"`

	// SymbolIndex, when true, exports the GLOBAL symbol table and the
	// run's diagnostics into a SQLite database (internal/symindex) after a
	// completed run.
	SymbolIndex bool `yaml:"symbol_index,omitempty"`

	// SymbolIndexPath is the SQLite file SymbolIndex writes to. Defaults to
	// "jackc.db" in the compiled directory when empty.
	SymbolIndexPath string `yaml:"symbol_index_path,omitempty"`
}

// Load reads and parses path. A missing file is not an error: it yields the
// zero-value Config, since every field already has a sensible default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
