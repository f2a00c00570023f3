package ast

import (
	"github.com/klein-martifex/jackc/internal/symbols"
	"github.com/klein-martifex/jackc/internal/token"
)

// base gives every node its fixed source location and a default Pos().
type base struct {
	Tok token.Token
}

func (b base) Pos() token.Token { return b.Tok }

// Program is the root node: an ordered sequence of classes compiled
// together.
type Program struct {
	base
	Classes []*Class
}

func (p *Program) Accept(v Visitor) { v.VisitProgram(p) }

// Class holds a class's own declarations. Table is set by the BUILD phase
// and re-used by ANALYZE/GENERATE to descend into the same scope without
// re-creating it.
type Class struct {
	base
	Name           string
	ClassVarDecs   []*ClassVarDec
	SubroutineDecs []*SubroutineDec
	Table          *symbols.SymbolTable
}

func (c *Class) Accept(v Visitor) { v.VisitClass(c) }

// ClassVarModifier distinguishes static from instance fields.
type ClassVarModifier int

const (
	ModStatic ClassVarModifier = iota
	ModField
)

// ClassVarDec is one `static|field type name (, name)* ;` declaration.
type ClassVarDec struct {
	base
	Modifier ClassVarModifier
	Type     string
	Names    []string
}

func (c *ClassVarDec) Accept(v Visitor) { v.VisitClassVarDec(c) }

// SubroutineKind distinguishes constructor/function/method subroutines.
type SubroutineKind int

const (
	SubConstructor SubroutineKind = iota
	SubFunction
	SubMethod
)

// SubroutineDec is one constructor/function/method declaration.
type SubroutineDec struct {
	base
	Kind       SubroutineKind
	ReturnType string // "void" included verbatim
	Name       string
	Params     *ParameterList
	Body       *SubroutineBody
	ClassName  string // set by BUILD, used by ANALYZE/GENERATE for this.* resolution
	Table      *symbols.SymbolTable
}

func (s *SubroutineDec) Accept(v Visitor) { v.VisitSubroutineDec(s) }

// Param is one (type, name) pair in a parameter list.
type Param struct {
	Type string
	Name string
}

// ParameterList is a subroutine's formal parameter list.
type ParameterList struct {
	base
	Params []Param
}

func (p *ParameterList) Accept(v Visitor) { v.VisitParameterList(p) }

// SubroutineBody is `{ varDec* statements }`.
type SubroutineBody struct {
	base
	VarDecs    []*VarDec
	Statements *Statements
}

func (b *SubroutineBody) Accept(v Visitor) { v.VisitSubroutineBody(b) }

// VarDec is one `var type name (, name)* ;` local declaration.
type VarDec struct {
	base
	Type  string
	Names []string
}

func (v *VarDec) Accept(vi Visitor) { vi.VisitVarDec(v) }

// Statements is an ordered sequence of statements.
type Statements struct {
	base
	List []Statement
}

func (s *Statements) Accept(v Visitor) { v.VisitStatements(s) }

// Statement is the common interface for the five statement kinds.
type Statement interface {
	Node
	statementNode()
}

// LetStatement is `let name [ '[' expr ']' ] '=' expr ';'`.
type LetStatement struct {
	base
	Name   string
	Index  *Expression // non-nil iff this is an array-element assignment
	Value  *Expression
	Target *symbols.Symbol // resolved by ANALYZE
}

func (s *LetStatement) Accept(v Visitor) { v.VisitLetStatement(s) }
func (s *LetStatement) statementNode()   {}

// IfStatement is `if ( expr ) { statements } [ else { statements } ]`.
type IfStatement struct {
	base
	Condition *Expression
	Then      *Statements
	Else      *Statements // nil if no else clause
}

func (s *IfStatement) Accept(v Visitor) { v.VisitIfStatement(s) }
func (s *IfStatement) statementNode()   {}

// WhileStatement is `while ( expr ) { statements }`.
type WhileStatement struct {
	base
	Condition *Expression
	Body      *Statements
}

func (s *WhileStatement) Accept(v Visitor) { v.VisitWhileStatement(s) }
func (s *WhileStatement) statementNode()   {}

// DoStatement is `do subroutineCall ;`.
type DoStatement struct {
	base
	Call *SubroutineCall
}

func (s *DoStatement) Accept(v Visitor) { v.VisitDoStatement(s) }
func (s *DoStatement) statementNode()   {}

// ReturnStatement is `return [ expr ] ;`.
type ReturnStatement struct {
	base
	Value *Expression // nil for a bare `return;`
}

func (s *ReturnStatement) Accept(v Visitor) { v.VisitReturnStatement(s) }
func (s *ReturnStatement) statementNode()   {}

// SubroutineCall is `[ (ident '.')? ] ident '(' (expr (',' expr)*)? ')'`.
// Caller is empty for an unqualified call; Target and CallerSymbol are
// resolved by ANALYZE and consumed by GENERATE for call-target dispatch.
type SubroutineCall struct {
	base
	Caller string // "" if unqualified
	Name   string
	Args   []*Expression

	Type         symbols.Type    // the call's return type, set by ANALYZE
	Target       *symbols.Symbol // resolved subroutine symbol, set by ANALYZE
	CallerSymbol *symbols.Symbol // resolved symbol for a variable/class caller, if any
}

func (c *SubroutineCall) Accept(v Visitor) { v.VisitSubroutineCall(c) }

// Term is the common interface for every term variant. GetType/SetType let
// ANALYZE fold an Expression's operand types without a type switch over
// every term variant.
type Term interface {
	Node
	termNode()
	GetType() symbols.Type
	SetType(symbols.Type)
}

// Expression is a head term followed by zero or more (operator, term) pairs,
// evaluated strictly left-to-right at a single precedence level.
type Expression struct {
	base
	Head Term
	Ops  []OpTerm
	Type symbols.Type // set by ANALYZE
}

// OpTerm is one (binary operator, term) pair folded onto an Expression.
type OpTerm struct {
	Op   token.Type // one of + - * / < > = & |
	Term Term
}

func (e *Expression) Accept(v Visitor) { v.VisitExpression(e) }

type termBase struct {
	base
	Type symbols.Type
}

func (termBase) termNode() {}

// GetType and SetType give the analyzer a uniform way to read/write the
// Type field shared by every term variant through termBase.
func (t *termBase) GetType() symbols.Type    { return t.Type }
func (t *termBase) SetType(typ symbols.Type) { t.Type = typ }

// IntTerm is an integer literal.
type IntTerm struct {
	termBase
	Value int
}

func (t *IntTerm) Accept(v Visitor) { v.VisitIntTerm(t) }

// StringTerm is a string literal.
type StringTerm struct {
	termBase
	Value string
}

func (t *StringTerm) Accept(v Visitor) { v.VisitStringTerm(t) }

// KeywordConst distinguishes the four keyword-constant terms.
type KeywordConst int

const (
	KwTrue KeywordConst = iota
	KwFalse
	KwNull
	KwThis
)

// KeywordTerm is one of true|false|null|this.
type KeywordTerm struct {
	termBase
	Keyword KeywordConst
}

func (t *KeywordTerm) Accept(v Visitor) { v.VisitKeywordTerm(t) }

// VarTerm is a (possibly class-qualified) variable reference: plain `name`
// or `className.fieldName`. Symbol is resolved by ANALYZE.
type VarTerm struct {
	termBase
	ClassName string // "" unless this is a qualified C.v reference
	Name      string
	Symbol    *symbols.Symbol
}

func (t *VarTerm) Accept(v Visitor) { v.VisitVarTerm(t) }

// ArrayTerm is `name '[' expr ']'`.
type ArrayTerm struct {
	termBase
	Name   string
	Index  *Expression
	Symbol *symbols.Symbol
}

func (t *ArrayTerm) Accept(v Visitor) { v.VisitArrayTerm(t) }

// CallTerm wraps a SubroutineCall used as a term (i.e., used for its value).
type CallTerm struct {
	termBase
	Call *SubroutineCall
}

func (t *CallTerm) Accept(v Visitor) { v.VisitCallTerm(t) }

// ParenTerm is `'(' expr ')'`.
type ParenTerm struct {
	termBase
	Inner *Expression
}

func (t *ParenTerm) Accept(v Visitor) { v.VisitParenTerm(t) }

// UnaryOp distinguishes the two unary operators.
type UnaryOp int

const (
	UnaryNeg UnaryOp = iota // '-'
	UnaryNot                // '~'
)

// UnaryTerm is a unary operator applied to a term.
type UnaryTerm struct {
	termBase
	Op      UnaryOp
	Operand Term
}

func (t *UnaryTerm) Accept(v Visitor) { v.VisitUnaryTerm(t) }
