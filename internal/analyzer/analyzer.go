// Package analyzer implements the ANALYZE phase: it computes and checks a
// Type for every Expression, Term, VarTerm and SubroutineCall, walking the
// scope spine BUILD already created rather than allocating new tables.
package analyzer

import (
	"github.com/klein-martifex/jackc/internal/ast"
	"github.com/klein-martifex/jackc/internal/diagnostics"
	"github.com/klein-martifex/jackc/internal/symbols"
)

// Analyzer is the ANALYZE-phase ast.Visitor.
type Analyzer struct {
	global           *symbols.SymbolTable
	current          *symbols.SymbolTable
	currentClassName string
	currentSub       *ast.SubroutineDec
	sink             *diagnostics.Sink
}

// New creates an Analyzer rooted at global.
func New(global *symbols.SymbolTable, sink *diagnostics.Sink) *Analyzer {
	return &Analyzer{global: global, current: global, sink: sink}
}

// Analyze runs the ANALYZE phase over prog.
func (a *Analyzer) Analyze(prog *ast.Program) { prog.Accept(a) }

func (a *Analyzer) VisitProgram(p *ast.Program) {
	for _, c := range p.Classes {
		c.Accept(a)
	}
}

func (a *Analyzer) VisitClass(c *ast.Class) {
	prevTable, prevName := a.current, a.currentClassName
	a.current, a.currentClassName = c.Table, c.Name
	for _, sd := range c.SubroutineDecs {
		sd.Accept(a)
	}
	a.current, a.currentClassName = prevTable, prevName
}

func (a *Analyzer) VisitClassVarDec(*ast.ClassVarDec)     {}
func (a *Analyzer) VisitParameterList(*ast.ParameterList) {}
func (a *Analyzer) VisitVarDec(*ast.VarDec)               {}

func (a *Analyzer) VisitSubroutineDec(s *ast.SubroutineDec) {
	prevTable, prevSub := a.current, a.currentSub
	a.current, a.currentSub = s.Table, s
	s.Body.Accept(a)

	wantVoid := symbols.ParseType(s.ReturnType).Basic == symbols.TVoid
	if !wantVoid {
		stmts := s.Body.Statements.List
		lastIsReturn := false
		if len(stmts) > 0 {
			_, lastIsReturn = stmts[len(stmts)-1].(*ast.ReturnStatement)
		}
		if !lastIsReturn {
			b := s.Body.Tok
			a.sink.Report(diagnostics.PhaseSemantic, diagnostics.MissingReturn, b,
				"subroutine %q declares return type %q but does not end with a return statement",
				s.Name, s.ReturnType)
		}
	}
	a.current, a.currentSub = prevTable, prevSub
}

func (a *Analyzer) VisitSubroutineBody(b *ast.SubroutineBody) {
	b.Statements.Accept(a)
}

func (a *Analyzer) VisitStatements(s *ast.Statements) {
	for _, st := range s.List {
		st.Accept(a)
	}
}

// resolveVar resolves a bare name against the current class scope, i.e. the
// subroutine's own locals/args plus its class's fields/statics.
func (a *Analyzer) resolveVar(name string) *symbols.Symbol {
	return a.current.Lookup(name, symbols.LookupClass)
}

func (a *Analyzer) VisitLetStatement(s *ast.LetStatement) {
	sym := a.resolveVar(s.Name)
	if sym == nil {
		a.sink.Report(diagnostics.PhaseSemantic, diagnostics.UndeclaredSymbol, s.Tok,
			"undeclared variable %q", s.Name)
		return
	}
	s.Target = sym

	if s.Index != nil {
		if !sym.Type.Equal(symbols.Array) {
			a.sink.Report(diagnostics.PhaseSemantic, diagnostics.InvalidType, s.Tok,
				"%q is not an Array, cannot be indexed", s.Name)
		}
		s.Index.Accept(a)
		if !s.Index.Type.Equal(symbols.Int) {
			a.sink.Report(diagnostics.PhaseSemantic, diagnostics.InvalidType, s.Tok,
				"array index must be int, got %s", s.Index.Type)
		}
		s.Value.Accept(a)
		return
	}

	s.Value.Accept(a)
	if !s.Value.Type.Equal(sym.Type) {
		a.sink.Report(diagnostics.PhaseSemantic, diagnostics.InvalidType, s.Tok,
			"cannot assign %s to %q of type %s", s.Value.Type, s.Name, sym.Type)
	}
}

func (a *Analyzer) VisitIfStatement(s *ast.IfStatement) {
	s.Condition.Accept(a)
	if !s.Condition.Type.Equal(symbols.Boolean) {
		a.sink.Report(diagnostics.PhaseSemantic, diagnostics.InvalidType, s.Tok,
			"if condition must be boolean, got %s", s.Condition.Type)
	}
	s.Then.Accept(a)
	if s.Else != nil {
		s.Else.Accept(a)
	}
}

func (a *Analyzer) VisitWhileStatement(s *ast.WhileStatement) {
	s.Condition.Accept(a)
	if !s.Condition.Type.Equal(symbols.Boolean) {
		a.sink.Report(diagnostics.PhaseSemantic, diagnostics.InvalidType, s.Tok,
			"while condition must be boolean, got %s", s.Condition.Type)
	}
	s.Body.Accept(a)
}

func (a *Analyzer) VisitDoStatement(s *ast.DoStatement) {
	s.Call.Accept(a)
}

func (a *Analyzer) VisitReturnStatement(s *ast.ReturnStatement) {
	want := symbols.ParseType(a.currentSub.ReturnType)
	if s.Value == nil {
		if want.Basic != symbols.TVoid {
			a.sink.Report(diagnostics.PhaseSemantic, diagnostics.InvalidType, s.Tok,
				"subroutine %q must return a value of type %s", a.currentSub.Name, want)
		}
		return
	}
	if want.Basic == symbols.TVoid {
		a.sink.Report(diagnostics.PhaseSemantic, diagnostics.InvalidType, s.Tok,
			"void subroutine %q must not return a value", a.currentSub.Name)
	}
	s.Value.Accept(a)
	if want.Basic != symbols.TVoid && !s.Value.Type.Equal(want) {
		a.sink.Report(diagnostics.PhaseSemantic, diagnostics.InvalidType, s.Tok,
			"subroutine %q declares return type %s but returns %s", a.currentSub.Name, want, s.Value.Type)
	}
}

func isSubroutineKind(k symbols.Kind) bool {
	return k == symbols.Constructor || k == symbols.Function || k == symbols.Method
}

// resolveCallTarget finds the table the called name must resolve in: the
// caller's class table when the caller names a class, the class table of
// the caller's declared type when the caller is a variable, or the current
// scope for an unqualified call.
func (a *Analyzer) resolveCallTarget(call *ast.SubroutineCall) *symbols.SymbolTable {
	if call.Caller == "" {
		return a.current
	}
	if sym := a.current.Lookup(call.Caller, symbols.LookupGlobal); sym != nil && sym.Kind == symbols.Class {
		call.CallerSymbol = sym
		return sym.ChildTable
	}
	if sym := a.current.Lookup(call.Caller, symbols.LookupClass); sym != nil && sym.Type.Basic == symbols.TUserDefined {
		call.CallerSymbol = sym
		classSym := a.global.Lookup(sym.Type.UserDefinedName, symbols.LookupLocal)
		if classSym != nil {
			return classSym.ChildTable
		}
		return nil
	}
	return nil
}

func (a *Analyzer) VisitSubroutineCall(call *ast.SubroutineCall) {
	lookupDepth := symbols.LookupLocal
	if call.Caller == "" {
		lookupDepth = symbols.LookupClass
	}
	targetTable := a.resolveCallTarget(call)
	if targetTable == nil {
		a.sink.Report(diagnostics.PhaseSemantic, diagnostics.UndeclaredSymbol, call.Tok,
			"undeclared caller %q", call.Caller)
		for _, arg := range call.Args {
			arg.Accept(a)
		}
		return
	}

	sym := targetTable.Lookup(call.Name, lookupDepth)
	if sym == nil || !isSubroutineKind(sym.Kind) {
		a.sink.Report(diagnostics.PhaseSemantic, diagnostics.InvalidSubroutine, call.Tok,
			"%q does not resolve to a constructor, function or method", call.Name)
		for _, arg := range call.Args {
			arg.Accept(a)
		}
		return
	}
	call.Target = sym
	call.Type = sym.Type

	params := sym.ChildTable.SymbolsOfKind(symbols.Arg)
	if sym.Kind == symbols.Method && len(params) > 0 {
		params = params[1:] // drop the implicit receiver
	}

	exempt := call.Caller == "Memory" && call.Name == "deAlloc"
	if len(call.Args) != len(params) && !exempt {
		a.sink.Report(diagnostics.PhaseSemantic, diagnostics.InvalidArgument, call.Tok,
			"%q expects %d argument(s), got %d", call.Name, len(params), len(call.Args))
	}
	for i, arg := range call.Args {
		arg.Accept(a)
		if exempt || i >= len(params) {
			continue
		}
		if !arg.Type.Equal(params[i].Type) {
			a.sink.Report(diagnostics.PhaseSemantic, diagnostics.InvalidArgument, call.Tok,
				"argument %d to %q: expected %s, got %s", i+1, call.Name, params[i].Type, arg.Type)
		}
	}
}

func (a *Analyzer) VisitExpression(e *ast.Expression) {
	e.Head.Accept(a)
	e.Type = e.Head.GetType()
	for _, ot := range e.Ops {
		ot.Term.Accept(a)
		rhs := ot.Term.GetType()
		lhs := e.Type
		switch categoryOf(ot.Op) {
		case opArithmetic:
			if !lhs.IsArithmetic() || !rhs.IsArithmetic() {
				a.sink.Report(diagnostics.PhaseSemantic, diagnostics.InvalidType, e.Tok,
					"arithmetic operator requires int operands, got %s and %s", lhs, rhs)
			}
			e.Type = symbols.Int
		case opRelational:
			if !lhs.IsComparable() || !rhs.IsComparable() {
				a.sink.Report(diagnostics.PhaseSemantic, diagnostics.InvalidType, e.Tok,
					"relational operator requires int or char operands, got %s and %s", lhs, rhs)
			}
			e.Type = symbols.Boolean
		case opBoolean:
			if lhs.Basic != symbols.TBoolean || rhs.Basic != symbols.TBoolean {
				a.sink.Report(diagnostics.PhaseSemantic, diagnostics.InvalidType, e.Tok,
					"boolean operator requires boolean operands, got %s and %s", lhs, rhs)
			}
			e.Type = symbols.Boolean
		}
	}
}

func (a *Analyzer) VisitIntTerm(t *ast.IntTerm) { t.Type = symbols.Int }

func (a *Analyzer) VisitStringTerm(t *ast.StringTerm) { t.Type = symbols.String }

func (a *Analyzer) VisitKeywordTerm(t *ast.KeywordTerm) {
	switch t.Keyword {
	case ast.KwTrue, ast.KwFalse:
		t.Type = symbols.Boolean
	case ast.KwNull:
		t.Type = symbols.Null
	case ast.KwThis:
		t.Type = symbols.UserDefined(a.currentClassName)
	}
}

func (a *Analyzer) VisitVarTerm(t *ast.VarTerm) {
	if t.ClassName != "" {
		classSym := a.global.Lookup(t.ClassName, symbols.LookupLocal)
		if classSym == nil || classSym.ChildTable == nil {
			a.sink.Report(diagnostics.PhaseSemantic, diagnostics.UndeclaredSymbol, t.Tok,
				"undeclared class %q", t.ClassName)
			t.Type = symbols.Null
			return
		}
		sym := classSym.ChildTable.Lookup(t.Name, symbols.LookupLocal)
		if sym == nil {
			a.sink.Report(diagnostics.PhaseSemantic, diagnostics.UndeclaredSymbol, t.Tok,
				"%q has no attribute %q", t.ClassName, t.Name)
			t.Type = symbols.Null
			return
		}
		t.Symbol = sym
		t.Type = sym.Type
		return
	}
	sym := a.resolveVar(t.Name)
	if sym == nil {
		a.sink.Report(diagnostics.PhaseSemantic, diagnostics.UndeclaredSymbol, t.Tok,
			"undeclared variable %q", t.Name)
		t.Type = symbols.Null
		return
	}
	t.Symbol = sym
	t.Type = sym.Type
}

func (a *Analyzer) VisitArrayTerm(t *ast.ArrayTerm) {
	sym := a.resolveVar(t.Name)
	if sym == nil {
		a.sink.Report(diagnostics.PhaseSemantic, diagnostics.UndeclaredSymbol, t.Tok,
			"undeclared variable %q", t.Name)
		t.Type = symbols.Null
		return
	}
	if !sym.Type.Equal(symbols.Array) {
		a.sink.Report(diagnostics.PhaseSemantic, diagnostics.InvalidType, t.Tok,
			"%q is not an Array, cannot be indexed", t.Name)
	}
	t.Symbol = sym
	t.Index.Accept(a)
	if !t.Index.Type.Equal(symbols.Int) {
		a.sink.Report(diagnostics.PhaseSemantic, diagnostics.InvalidType, t.Tok,
			"array index must be int, got %s", t.Index.Type)
	}
	// The element type is opaque: an array access types as the named array
	// symbol itself.
	t.Type = sym.Type
}

func (a *Analyzer) VisitCallTerm(t *ast.CallTerm) {
	t.Call.Accept(a)
	t.Type = t.Call.Type
}

func (a *Analyzer) VisitParenTerm(t *ast.ParenTerm) {
	t.Inner.Accept(a)
	t.Type = t.Inner.Type
}

func (a *Analyzer) VisitUnaryTerm(t *ast.UnaryTerm) {
	t.Operand.Accept(a)
	operandType := t.Operand.GetType()
	if t.Op == ast.UnaryNot {
		if operandType.Basic != symbols.TBoolean {
			a.sink.Report(diagnostics.PhaseSemantic, diagnostics.InvalidType, t.Tok,
				"'~' requires a boolean operand, got %s", operandType)
		}
		t.Type = symbols.Boolean
		return
	}
	if operandType.Basic != symbols.TInt {
		a.sink.Report(diagnostics.PhaseSemantic, diagnostics.InvalidType, t.Tok,
			"'-' requires an int operand, got %s", operandType)
	}
	t.Type = symbols.Int
}
