package symbols

// SymbolTable is one lexical scope: an ordered list of declared symbols plus
// a per-kind count, linked to its parent and children.
type SymbolTable struct {
	Scope   ScopeKind
	symbols []*Symbol
	byName  map[string]*Symbol
	counts  [numKinds]int
	Parent  *SymbolTable
	Children []*SymbolTable
}

// NewTable creates a scope of the given kind linked under parent (parent may
// be nil only for the GLOBAL table).
func NewTable(scope ScopeKind, parent *SymbolTable) *SymbolTable {
	t := &SymbolTable{Scope: scope, Parent: parent, byName: make(map[string]*Symbol)}
	if parent != nil {
		parent.Children = append(parent.Children, t)
	}
	return t
}

// Add inserts name with the given type-string and kind, assigning
// Index = count of same-kind symbols already present. If name already
// exists in this table, the new symbol is still appended (so later lookups
// keep resolving to the first declaration) and redeclared reports true so
// the caller can raise a REDECLARED diagnostic at the right source
// location; SymbolTable itself holds no token, so it cannot report
// diagnostics on its own.
func (t *SymbolTable) Add(name, typeString string, kind Kind) (sym *Symbol, redeclared bool) {
	typ := ParseType(typeString)
	return t.AddTyped(name, typ, kind)
}

// AddTyped is Add with an already-resolved Type (used when seeding the
// standard library and by callers that computed the Type themselves).
func (t *SymbolTable) AddTyped(name string, typ Type, kind Kind) (sym *Symbol, redeclared bool) {
	_, exists := t.byName[name]
	s := &Symbol{
		Name:  name,
		Type:  typ,
		Kind:  kind,
		Index: t.counts[kind],
		Table: t,
	}
	t.counts[kind]++
	t.symbols = append(t.symbols, s)
	if !exists {
		t.byName[name] = s
	}
	return s, exists
}

// AddOnce inserts name only if it is not already declared in this table; if
// it is, the existing symbol is returned with existed=true and the table is
// left completely untouched (no append, no count change). Catalog seeding
// uses this so re-seeding the same table is a no-op.
func (t *SymbolTable) AddOnce(name string, typ Type, kind Kind) (sym *Symbol, existed bool) {
	if s, ok := t.byName[name]; ok {
		return s, true
	}
	s, _ := t.AddTyped(name, typ, kind)
	return s, false
}

// LookupDepth selects how far Lookup is allowed to search.
type LookupDepth int

const (
	// LookupLocal searches only the given table.
	LookupLocal LookupDepth = iota
	// LookupClass walks up through and including the first enclosing CLASS
	// scope, then stops.
	LookupClass
	// LookupGlobal walks up to the root and then sweeps every table
	// reachable from the root, so a subroutine can resolve another class's
	// top-level declarations.
	LookupGlobal
)

// Lookup resolves name starting at t, per the selected search depth.
func (t *SymbolTable) Lookup(name string, depth LookupDepth) *Symbol {
	switch depth {
	case LookupLocal:
		return t.localLookup(name)
	case LookupClass:
		for table := t; table != nil; table = table.Parent {
			if s := table.localLookup(name); s != nil {
				return s
			}
			if table.Scope == ScopeClass {
				return nil
			}
		}
		return nil
	case LookupGlobal:
		root := t
		for root.Parent != nil {
			if s := root.localLookup(name); s != nil {
				return s
			}
			root = root.Parent
		}
		// root is now the GLOBAL table; sweep it and every table reachable
		// from it (the per-class scopes and, under them, the subroutine scopes).
		return root.sweep(name, make(map[*SymbolTable]bool))
	default:
		return nil
	}
}

func (t *SymbolTable) localLookup(name string) *Symbol {
	return t.byName[name]
}

func (t *SymbolTable) sweep(name string, seen map[*SymbolTable]bool) *Symbol {
	if seen[t] {
		return nil
	}
	seen[t] = true
	if s := t.localLookup(name); s != nil {
		return s
	}
	for _, child := range t.Children {
		if s := child.sweep(name, seen); s != nil {
			return s
		}
	}
	return nil
}

// SymbolsOfKind returns the kind-k subset of t's own symbols, in insertion
// (declaration) order, used by code-gen to size frames and argument lists.
func (t *SymbolTable) SymbolsOfKind(kind Kind) []*Symbol {
	out := make([]*Symbol, 0, t.counts[kind])
	for _, s := range t.symbols {
		if s.Kind == kind {
			out = append(out, s)
		}
	}
	return out
}

// Count returns the number of symbols of kind k declared directly in t.
func (t *SymbolTable) Count(kind Kind) int { return t.counts[kind] }

// All returns every symbol declared directly in t, in declaration order.
func (t *SymbolTable) All() []*Symbol { return t.symbols }
