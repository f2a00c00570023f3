// Package codegen implements the GENERATE phase: a tree-walking emitter
// that turns an analyzed AST into VM assembly text, written class by class to
// the writer the caller supplies (the pipeline collects one `.vm` stream per
// input file).
package codegen

import (
	"fmt"
	"io"

	"github.com/klein-martifex/jackc/internal/ast"
	"github.com/klein-martifex/jackc/internal/diagnostics"
	"github.com/klein-martifex/jackc/internal/symbols"
	"github.com/klein-martifex/jackc/internal/token"
)

// Generator is the GENERATE-phase ast.Visitor. One Generator may emit many
// classes in sequence; the label counter is shared across all of them so
// label names stay unique for the whole pipeline run.
type Generator struct {
	sink             *diagnostics.Sink
	out              io.Writer
	currentClassName string
	labels           *LabelCounter
}

// New creates a Generator that reports codegen-level problems to sink.
func New(sink *diagnostics.Sink) *Generator {
	return &Generator{sink: sink, labels: NewLabelCounter()}
}

// GenerateClass emits c's VM assembly to w.
func (g *Generator) GenerateClass(c *ast.Class, w io.Writer) {
	prevOut := g.out
	g.out = w
	c.Accept(g)
	g.out = prevOut
}

func (g *Generator) emit(format string, args ...any) {
	fmt.Fprintf(g.out, format+"\n", args...)
}

// segmentOf maps a symbol Kind to its VM memory segment.
func segmentOf(k symbols.Kind) (string, bool) {
	switch k {
	case symbols.Static:
		return "static", true
	case symbols.Field:
		return "this", true
	case symbols.Arg:
		return "argument", true
	case symbols.Var:
		return "local", true
	default:
		return "", false
	}
}

func (g *Generator) VisitProgram(p *ast.Program) {
	for _, c := range p.Classes {
		c.Accept(g)
	}
}

func (g *Generator) VisitClass(c *ast.Class) {
	g.currentClassName = c.Name
	for _, sd := range c.SubroutineDecs {
		sd.Accept(g)
	}
}

func (g *Generator) VisitClassVarDec(*ast.ClassVarDec)     {}
func (g *Generator) VisitParameterList(*ast.ParameterList) {}
func (g *Generator) VisitVarDec(*ast.VarDec)               {}

func (g *Generator) VisitSubroutineDec(s *ast.SubroutineDec) {
	numLocals := s.Table.Count(symbols.Var)
	g.emit("function %s.%s %d", g.currentClassName, s.Name, numLocals)

	switch s.Kind {
	case ast.SubConstructor:
		numFields := s.Table.Parent.Count(symbols.Field)
		g.emit("push constant %d", numFields)
		g.emit("call Memory.alloc 1")
		g.emit("pop pointer 0")
	case ast.SubMethod:
		g.emit("push argument 0")
		g.emit("pop pointer 0")
	}

	s.Body.Accept(g)

	// A subroutine whose last top-level statement was not a return is
	// auto-terminated here. ANALYZE already rejected this for a non-void
	// subroutine, so only a void one (or an empty body) ever reaches this
	// branch.
	stmts := s.Body.Statements.List
	if len(stmts) == 0 {
		g.emit("push constant 0")
		g.emit("return")
		return
	}
	if _, ok := stmts[len(stmts)-1].(*ast.ReturnStatement); !ok {
		g.emit("push constant 0")
		g.emit("return")
	}
}

func (g *Generator) VisitSubroutineBody(b *ast.SubroutineBody) {
	b.Statements.Accept(g)
}

func (g *Generator) VisitStatements(s *ast.Statements) {
	for _, st := range s.List {
		st.Accept(g)
	}
}

func (g *Generator) VisitLetStatement(s *ast.LetStatement) {
	if s.Target == nil {
		g.sink.Report(diagnostics.PhaseCodegen, diagnostics.CodegenInvalidInput, s.Tok,
			"let statement has no resolved target")
		return
	}
	seg, ok := segmentOf(s.Target.Kind)
	if !ok {
		g.sink.Report(diagnostics.PhaseCodegen, diagnostics.CodegenInvalidInput, s.Tok,
			"symbol %q has no VM segment", s.Target.Name)
		return
	}

	if s.Index == nil {
		s.Value.Accept(g)
		g.emit("pop %s %d", seg, s.Target.Index)
		return
	}

	s.Value.Accept(g)
	s.Index.Accept(g)
	g.emit("push %s %d", seg, s.Target.Index)
	g.emit("add")
	g.emit("pop temp 0")
	g.emit("pop pointer 1")
	g.emit("push temp 0")
	g.emit("pop that 0")
}

func (g *Generator) VisitIfStatement(s *ast.IfStatement) {
	trueLabel := g.labels.Next("IF_TRUE")
	falseLabel := g.labels.Next("IF_FALSE")
	endLabel := g.labels.Next("IF_END")

	s.Condition.Accept(g)
	g.emit("not")
	g.emit("if-goto %s", falseLabel)
	g.emit("label %s", trueLabel)
	s.Then.Accept(g)
	g.emit("goto %s", endLabel)
	g.emit("label %s", falseLabel)
	if s.Else != nil {
		s.Else.Accept(g)
	}
	g.emit("label %s", endLabel)
}

func (g *Generator) VisitWhileStatement(s *ast.WhileStatement) {
	startLabel := g.labels.Next("WHILE_START")
	endLabel := g.labels.Next("WHILE_END")

	g.emit("label %s", startLabel)
	s.Condition.Accept(g)
	g.emit("not")
	g.emit("if-goto %s", endLabel)
	s.Body.Accept(g)
	g.emit("goto %s", startLabel)
	g.emit("label %s", endLabel)
}

func (g *Generator) VisitDoStatement(s *ast.DoStatement) {
	s.Call.Accept(g)
	g.emit("pop temp 0")
}

func (g *Generator) VisitReturnStatement(s *ast.ReturnStatement) {
	if s.Value != nil {
		s.Value.Accept(g)
	} else {
		g.emit("push constant 0")
	}
	g.emit("return")
}

func (g *Generator) VisitSubroutineCall(call *ast.SubroutineCall) {
	nArgs := 0
	var target string

	switch {
	case call.Caller == "":
		if call.Target != nil && call.Target.Kind == symbols.Method {
			g.emit("push pointer 0")
			nArgs++
		}
		target = fmt.Sprintf("%s.%s", g.currentClassName, call.Name)
	case call.CallerSymbol != nil && call.CallerSymbol.Kind == symbols.Class:
		target = fmt.Sprintf("%s.%s", call.Caller, call.Name)
	case call.CallerSymbol != nil:
		if seg, ok := segmentOf(call.CallerSymbol.Kind); ok {
			g.emit("push %s %d", seg, call.CallerSymbol.Index)
			nArgs++
		}
		target = fmt.Sprintf("%s.%s", call.CallerSymbol.Type.UserDefinedName, call.Name)
	default:
		g.sink.Report(diagnostics.PhaseCodegen, diagnostics.CodegenInvalidInput, call.Tok,
			"call %q has no resolved target", call.Name)
		target = call.Name
	}

	for _, arg := range call.Args {
		arg.Accept(g)
		nArgs++
	}
	g.emit("call %s %d", target, nArgs)
}

func (g *Generator) VisitExpression(e *ast.Expression) {
	e.Head.Accept(g)
	for _, ot := range e.Ops {
		ot.Term.Accept(g)
		switch ot.Op {
		case token.PLUS:
			g.emit("add")
		case token.MINUS:
			g.emit("sub")
		case token.ASTERISK:
			g.emit("call Math.multiply 2")
		case token.SLASH:
			g.emit("call Math.divide 2")
		case token.AMPERSAND:
			g.emit("and")
		case token.BAR:
			g.emit("or")
		case token.LT:
			g.emit("lt")
		case token.GT:
			g.emit("gt")
		case token.EQUAL:
			g.emit("eq")
		default:
			g.sink.Report(diagnostics.PhaseCodegen, diagnostics.InvalidOperation, e.Tok,
				"unknown binary operator %s", ot.Op)
		}
	}
}

func (g *Generator) VisitIntTerm(t *ast.IntTerm) {
	g.emit("push constant %d", t.Value)
}

func (g *Generator) VisitStringTerm(t *ast.StringTerm) {
	g.emit("push constant %d", len(t.Value))
	g.emit("call String.new 1")
	for _, ch := range t.Value {
		g.emit("push constant %d", ch)
		g.emit("call String.appendChar 2")
	}
}

func (g *Generator) VisitKeywordTerm(t *ast.KeywordTerm) {
	switch t.Keyword {
	case ast.KwTrue:
		g.emit("push constant 0")
		g.emit("not")
	case ast.KwFalse, ast.KwNull:
		g.emit("push constant 0")
	case ast.KwThis:
		g.emit("push pointer 0")
	}
}

func (g *Generator) VisitVarTerm(t *ast.VarTerm) {
	if t.Symbol == nil {
		g.sink.Report(diagnostics.PhaseCodegen, diagnostics.CodegenInvalidInput, t.Tok,
			"variable %q has no resolved symbol", t.Name)
		return
	}
	seg, ok := segmentOf(t.Symbol.Kind)
	if !ok {
		g.sink.Report(diagnostics.PhaseCodegen, diagnostics.CodegenInvalidInput, t.Tok,
			"symbol %q has no VM segment", t.Name)
		return
	}
	g.emit("push %s %d", seg, t.Symbol.Index)
}

func (g *Generator) VisitArrayTerm(t *ast.ArrayTerm) {
	if t.Symbol == nil {
		g.sink.Report(diagnostics.PhaseCodegen, diagnostics.CodegenInvalidInput, t.Tok,
			"array access %q has no resolved symbol", t.Name)
		return
	}
	t.Index.Accept(g)
	seg, ok := segmentOf(t.Symbol.Kind)
	if !ok {
		g.sink.Report(diagnostics.PhaseCodegen, diagnostics.CodegenInvalidInput, t.Tok,
			"symbol %q has no VM segment", t.Name)
		return
	}
	g.emit("push %s %d", seg, t.Symbol.Index)
	g.emit("add")
	g.emit("pop pointer 1")
	g.emit("push that 0")
}

func (g *Generator) VisitCallTerm(t *ast.CallTerm) {
	t.Call.Accept(g)
}

func (g *Generator) VisitParenTerm(t *ast.ParenTerm) {
	t.Inner.Accept(g)
}

func (g *Generator) VisitUnaryTerm(t *ast.UnaryTerm) {
	t.Operand.Accept(g)
	if t.Op == ast.UnaryNeg {
		g.emit("neg")
	} else {
		g.emit("not")
	}
}
