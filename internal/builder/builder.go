// Package builder implements the BUILD phase: a declaration pass that
// allocates one SymbolTable per scope-owning node and assigns every
// declared name a symbol with the correct kind and index. It is one
// concrete ast.Visitor implementation among three (BUILD/ANALYZE/GENERATE);
// nodes that declare nothing are no-ops.
package builder

import (
	"github.com/klein-martifex/jackc/internal/ast"
	"github.com/klein-martifex/jackc/internal/diagnostics"
	"github.com/klein-martifex/jackc/internal/symbols"
)

// Builder walks a Program once, creating the scope spine that ANALYZE and
// GENERATE both re-use without re-creating a single table.
type Builder struct {
	global           *symbols.SymbolTable
	current          *symbols.SymbolTable
	currentClassName string
	sink             *diagnostics.Sink
}

// New creates a Builder that inserts top-level declarations into global.
func New(global *symbols.SymbolTable, sink *diagnostics.Sink) *Builder {
	return &Builder{global: global, current: global, sink: sink}
}

// Build runs the BUILD phase over prog.
func (b *Builder) Build(prog *ast.Program) { prog.Accept(b) }

func (b *Builder) VisitProgram(p *ast.Program) {
	for _, c := range p.Classes {
		c.Accept(b)
	}
}

func (b *Builder) VisitClass(c *ast.Class) {
	sym, redeclared := b.global.AddTyped(c.Name, symbols.UserDefined(c.Name), symbols.Class)
	if redeclared {
		b.sink.Report(diagnostics.PhaseSemantic, diagnostics.RedeclaredSymbol, c.Tok,
			"class %q already declared", c.Name)
		sym = b.global.Lookup(c.Name, symbols.LookupLocal)
	} else {
		sym.ChildTable = symbols.NewTable(symbols.ScopeClass, b.global)
	}
	c.Table = sym.ChildTable

	prevTable, prevName := b.current, b.currentClassName
	b.current, b.currentClassName = c.Table, c.Name
	for _, cv := range c.ClassVarDecs {
		cv.Accept(b)
	}
	for _, sd := range c.SubroutineDecs {
		sd.Accept(b)
	}
	b.current, b.currentClassName = prevTable, prevName
}

func (b *Builder) VisitClassVarDec(cv *ast.ClassVarDec) {
	kind := symbols.Static
	if cv.Modifier == ast.ModField {
		kind = symbols.Field
	}
	for _, name := range cv.Names {
		if _, redeclared := b.current.Add(name, cv.Type, kind); redeclared {
			b.sink.Report(diagnostics.PhaseSemantic, diagnostics.RedeclaredSymbol, cv.Tok,
				"%q already declared in class %q", name, b.currentClassName)
		}
	}
}

func (b *Builder) VisitSubroutineDec(s *ast.SubroutineDec) {
	var scope symbols.ScopeKind
	var kind symbols.Kind
	switch s.Kind {
	case ast.SubConstructor:
		scope, kind = symbols.ScopeConstructor, symbols.Constructor
	case ast.SubFunction:
		scope, kind = symbols.ScopeFunction, symbols.Function
	case ast.SubMethod:
		scope, kind = symbols.ScopeMethod, symbols.Method
	default:
		b.sink.Report(diagnostics.PhaseInternal, diagnostics.InvalidKind, s.Tok,
			"unknown subroutine kind for %q", s.Name)
		return
	}

	s.ClassName = b.currentClassName
	subTable := symbols.NewTable(scope, b.current)
	s.Table = subTable

	sym, redeclared := b.current.Add(s.Name, s.ReturnType, kind)
	if redeclared {
		b.sink.Report(diagnostics.PhaseSemantic, diagnostics.RedeclaredSymbol, s.Tok,
			"%q already declared in class %q", s.Name, b.currentClassName)
	} else {
		sym.ChildTable = subTable
	}

	prevTable := b.current
	b.current = subTable
	if s.Kind == ast.SubMethod {
		// The implicit receiver occupies ARG index 0 so that declared
		// parameters line up with "push argument 1.." at GENERATE time.
		subTable.AddTyped("this", symbols.UserDefined(b.currentClassName), symbols.Arg)
	}
	s.Params.Accept(b)
	s.Body.Accept(b)
	b.current = prevTable
}

func (b *Builder) VisitParameterList(pl *ast.ParameterList) {
	for _, p := range pl.Params {
		if _, redeclared := b.current.Add(p.Name, p.Type, symbols.Arg); redeclared {
			b.sink.Report(diagnostics.PhaseSemantic, diagnostics.RedeclaredSymbol, pl.Tok,
				"parameter %q already declared", p.Name)
		}
	}
}

func (b *Builder) VisitSubroutineBody(body *ast.SubroutineBody) {
	for _, vd := range body.VarDecs {
		vd.Accept(b)
	}
}

func (b *Builder) VisitVarDec(vd *ast.VarDec) {
	for _, name := range vd.Names {
		if _, redeclared := b.current.Add(name, vd.Type, symbols.Var); redeclared {
			b.sink.Report(diagnostics.PhaseSemantic, diagnostics.RedeclaredSymbol, vd.Tok,
				"local %q already declared", name)
		}
	}
}

// Statements, statement kinds, expressions and terms carry no declarations
// of their own; BUILD does not visit into them.
func (b *Builder) VisitStatements(*ast.Statements)             {}
func (b *Builder) VisitLetStatement(*ast.LetStatement)         {}
func (b *Builder) VisitIfStatement(*ast.IfStatement)           {}
func (b *Builder) VisitWhileStatement(*ast.WhileStatement)     {}
func (b *Builder) VisitDoStatement(*ast.DoStatement)           {}
func (b *Builder) VisitReturnStatement(*ast.ReturnStatement)   {}
func (b *Builder) VisitSubroutineCall(*ast.SubroutineCall)     {}
func (b *Builder) VisitExpression(*ast.Expression)             {}
func (b *Builder) VisitIntTerm(*ast.IntTerm)                   {}
func (b *Builder) VisitStringTerm(*ast.StringTerm)             {}
func (b *Builder) VisitKeywordTerm(*ast.KeywordTerm)           {}
func (b *Builder) VisitVarTerm(*ast.VarTerm)                   {}
func (b *Builder) VisitArrayTerm(*ast.ArrayTerm)               {}
func (b *Builder) VisitCallTerm(*ast.CallTerm)                 {}
func (b *Builder) VisitParenTerm(*ast.ParenTerm)               {}
func (b *Builder) VisitUnaryTerm(*ast.UnaryTerm)               {}
