// Package parser implements the recursive-descent parser: one token of
// lookahead for every production, plus the extra peeks (up to three tokens
// past the identifier) Term needs to disambiguate `ID`, `ID[`, `ID.ID`, and `ID.ID(`. Each production is one
// method returning a freshly arena-allocated node. The grammar has a single
// precedence level, so there is no Pratt table and no precedence climbing.
package parser

import (
	"github.com/klein-martifex/jackc/internal/arena"
	"github.com/klein-martifex/jackc/internal/ast"
	"github.com/klein-martifex/jackc/internal/diagnostics"
	"github.com/klein-martifex/jackc/internal/lexer"
	"github.com/klein-martifex/jackc/internal/token"
)

// Parser consumes one file's TokenQueue and produces its Class subtree.
type Parser struct {
	q        *token.Queue
	sink     *diagnostics.Sink
	arena    *arena.Arena
	filename string
	hasError bool
}

// New creates a Parser over q. Diagnostics are reported to sink; nodes are
// allocated from a.
func New(filename string, q *token.Queue, sink *diagnostics.Sink, a *arena.Arena) *Parser {
	return &Parser{q: q, sink: sink, arena: a, filename: filename}
}

// HasError reports whether any parse error was recorded (a mismatch in
// expectAndConsume, or an unexpected token where a type, statement, term or
// class declaration was required).
func (p *Parser) HasError() bool { return p.hasError }

func (p *Parser) cur() token.Token {
	t, ok := p.q.Peek()
	if !ok {
		return token.Token{Type: token.EOF, Filename: p.filename}
	}
	return t
}

func (p *Parser) peekAt(offset int) token.Token {
	t, ok := p.q.PeekOffset(offset)
	if !ok {
		return token.Token{Type: token.EOF, Filename: p.filename}
	}
	return t
}

func (p *Parser) advance() token.Token {
	t, ok := p.q.Pop()
	if !ok {
		return token.Token{Type: token.EOF, Filename: p.filename}
	}
	return t
}

// expectAndConsume compares the current token to typ: on match it advances
// and returns the consumed token; on mismatch it records a PARSER
// diagnostic, sets hasError, and does NOT advance or back-track, so the
// caller's subsequent expectAndConsume calls can still surface their own
// independent mismatches from the same run.
func (p *Parser) expectAndConsume(typ token.Type) (token.Token, bool) {
	t := p.cur()
	if t.Type != typ {
		p.sink.Report(diagnostics.PhaseParser, diagnostics.UnexpectedToken, t,
			"expected %s, found %s %q", typ, t.Type, t.Lexeme)
		p.hasError = true
		return t, false
	}
	return p.advance(), true
}

// ParseFile parses every class declaration in the file's token stream.
// Anything left over that is not EOF (or another class) is reported as an
// unexpected token.
func (p *Parser) ParseFile() []*ast.Class {
	var classes []*ast.Class
	for p.cur().Type == token.CLASS {
		classes = append(classes, p.ParseClass())
	}
	if t := p.cur(); t.Type != token.EOF {
		p.sink.Report(diagnostics.PhaseParser, diagnostics.UnexpectedToken, t,
			"expected a class declaration, found %s %q", t.Type, t.Lexeme)
		p.hasError = true
	}
	return classes
}

// ParseClass parses one `class IDENT { classVarDec* subroutineDec* }`.
func (p *Parser) ParseClass() *ast.Class {
	tok := p.cur()
	p.expectAndConsume(token.CLASS)
	nameTok, _ := p.expectAndConsume(token.IDENT)
	p.expectAndConsume(token.LBRACE)

	c := arena.Alloc[ast.Class](p.arena)
	c.Tok = tok
	c.Name = nameTok.Lexeme

	for token.Is(p.cur().Type, token.CatClassVarKeyword) {
		c.ClassVarDecs = append(c.ClassVarDecs, p.parseClassVarDec())
	}
	for token.Is(p.cur().Type, token.CatSubroutineKeyword) {
		c.SubroutineDecs = append(c.SubroutineDecs, p.parseSubroutineDec())
	}
	p.expectAndConsume(token.RBRACE)
	return c
}

func (p *Parser) parseClassVarDec() *ast.ClassVarDec {
	tok := p.cur()
	mod := ast.ModStatic
	if tok.Type == token.FIELD {
		mod = ast.ModField
	}
	p.advance()

	d := arena.Alloc[ast.ClassVarDec](p.arena)
	d.Tok = tok
	d.Modifier = mod
	d.Type = p.parseTypeName()

	nameTok, _ := p.expectAndConsume(token.IDENT)
	d.Names = append(d.Names, nameTok.Lexeme)
	for p.cur().Type == token.COMMA {
		p.advance()
		nt, _ := p.expectAndConsume(token.IDENT)
		d.Names = append(d.Names, nt.Lexeme)
	}
	p.expectAndConsume(token.SEMICOLON)
	return d
}

// parseTypeName parses `int|char|boolean|IDENT`, used everywhere a type is
// required but `void` is not allowed (field/param/local declarations).
func (p *Parser) parseTypeName() string {
	t := p.cur()
	switch t.Type {
	case token.INT, token.CHAR, token.BOOLEAN, token.IDENT:
		p.advance()
		return t.Lexeme
	default:
		p.sink.Report(diagnostics.PhaseParser, diagnostics.UnexpectedToken, t,
			"expected a type, found %s %q", t.Type, t.Lexeme)
		p.hasError = true
		p.advance()
		return t.Lexeme
	}
}

// parseReturnType parses `type|void`, used only for a subroutine's declared
// return type.
func (p *Parser) parseReturnType() string {
	if p.cur().Type == token.VOID {
		t := p.advance()
		return t.Lexeme
	}
	return p.parseTypeName()
}

func (p *Parser) parseSubroutineDec() *ast.SubroutineDec {
	tok := p.cur()
	var kind ast.SubroutineKind
	switch tok.Type {
	case token.CONSTRUCTOR:
		kind = ast.SubConstructor
	case token.FUNCTION:
		kind = ast.SubFunction
	case token.METHOD:
		kind = ast.SubMethod
	}
	p.advance()

	s := arena.Alloc[ast.SubroutineDec](p.arena)
	s.Tok = tok
	s.Kind = kind
	s.ReturnType = p.parseReturnType()

	nameTok, _ := p.expectAndConsume(token.IDENT)
	s.Name = nameTok.Lexeme

	p.expectAndConsume(token.LPAREN)
	s.Params = p.parseParameterList()
	p.expectAndConsume(token.RPAREN)

	s.Body = p.parseSubroutineBody()
	return s
}

func (p *Parser) parseParameterList() *ast.ParameterList {
	tok := p.cur()
	pl := arena.Alloc[ast.ParameterList](p.arena)
	pl.Tok = tok
	if p.cur().Type == token.RPAREN {
		return pl
	}
	pl.Params = append(pl.Params, p.parseParam())
	for p.cur().Type == token.COMMA {
		p.advance()
		pl.Params = append(pl.Params, p.parseParam())
	}
	return pl
}

func (p *Parser) parseParam() ast.Param {
	typ := p.parseTypeName()
	nameTok, _ := p.expectAndConsume(token.IDENT)
	return ast.Param{Type: typ, Name: nameTok.Lexeme}
}

func (p *Parser) parseSubroutineBody() *ast.SubroutineBody {
	tok, _ := p.expectAndConsume(token.LBRACE)
	b := arena.Alloc[ast.SubroutineBody](p.arena)
	b.Tok = tok
	for p.cur().Type == token.VAR {
		b.VarDecs = append(b.VarDecs, p.parseVarDec())
	}
	b.Statements = p.parseStatements()
	p.expectAndConsume(token.RBRACE)
	return b
}

func (p *Parser) parseVarDec() *ast.VarDec {
	tok, _ := p.expectAndConsume(token.VAR)
	d := arena.Alloc[ast.VarDec](p.arena)
	d.Tok = tok
	d.Type = p.parseTypeName()

	nameTok, _ := p.expectAndConsume(token.IDENT)
	d.Names = append(d.Names, nameTok.Lexeme)
	for p.cur().Type == token.COMMA {
		p.advance()
		nt, _ := p.expectAndConsume(token.IDENT)
		d.Names = append(d.Names, nt.Lexeme)
	}
	p.expectAndConsume(token.SEMICOLON)
	return d
}

func (p *Parser) parseStatements() *ast.Statements {
	tok := p.cur()
	stmts := arena.Alloc[ast.Statements](p.arena)
	stmts.Tok = tok
	for token.Is(p.cur().Type, token.CatStatementStarter) {
		stmts.List = append(stmts.List, p.parseStatement())
	}
	return stmts
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.cur().Type {
	case token.LET:
		return p.parseLet()
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.DO:
		return p.parseDo()
	case token.RETURN:
		return p.parseReturn()
	default:
		t := p.cur()
		p.sink.Report(diagnostics.PhaseParser, diagnostics.UnexpectedToken, t,
			"expected a statement, found %s %q", t.Type, t.Lexeme)
		p.hasError = true
		p.advance()
		// Recovery value so callers (Statements.List) always hold a non-nil
		// element; GENERATE never runs once any PARSER diagnostic is fatal.
		ret := arena.Alloc[ast.ReturnStatement](p.arena)
		ret.Tok = t
		return ret
	}
}

func (p *Parser) parseLet() *ast.LetStatement {
	tok, _ := p.expectAndConsume(token.LET)
	nameTok, _ := p.expectAndConsume(token.IDENT)

	s := arena.Alloc[ast.LetStatement](p.arena)
	s.Tok = tok
	s.Name = nameTok.Lexeme

	if p.cur().Type == token.LBRACKET {
		p.advance()
		s.Index = p.parseExpression()
		p.expectAndConsume(token.RBRACKET)
	}
	p.expectAndConsume(token.EQUAL)
	s.Value = p.parseExpression()
	p.expectAndConsume(token.SEMICOLON)
	return s
}

func (p *Parser) parseIf() *ast.IfStatement {
	tok, _ := p.expectAndConsume(token.IF)
	s := arena.Alloc[ast.IfStatement](p.arena)
	s.Tok = tok

	p.expectAndConsume(token.LPAREN)
	s.Condition = p.parseExpression()
	p.expectAndConsume(token.RPAREN)

	p.expectAndConsume(token.LBRACE)
	s.Then = p.parseStatements()
	p.expectAndConsume(token.RBRACE)

	if p.cur().Type == token.ELSE {
		p.advance()
		p.expectAndConsume(token.LBRACE)
		s.Else = p.parseStatements()
		p.expectAndConsume(token.RBRACE)
	}
	return s
}

func (p *Parser) parseWhile() *ast.WhileStatement {
	tok, _ := p.expectAndConsume(token.WHILE)
	s := arena.Alloc[ast.WhileStatement](p.arena)
	s.Tok = tok

	p.expectAndConsume(token.LPAREN)
	s.Condition = p.parseExpression()
	p.expectAndConsume(token.RPAREN)

	p.expectAndConsume(token.LBRACE)
	s.Body = p.parseStatements()
	p.expectAndConsume(token.RBRACE)
	return s
}

func (p *Parser) parseDo() *ast.DoStatement {
	tok, _ := p.expectAndConsume(token.DO)
	s := arena.Alloc[ast.DoStatement](p.arena)
	s.Tok = tok
	s.Call = p.parseSubroutineCall()
	p.expectAndConsume(token.SEMICOLON)
	return s
}

func (p *Parser) parseReturn() *ast.ReturnStatement {
	tok, _ := p.expectAndConsume(token.RETURN)
	s := arena.Alloc[ast.ReturnStatement](p.arena)
	s.Tok = tok
	if p.cur().Type != token.SEMICOLON {
		s.Value = p.parseExpression()
	}
	p.expectAndConsume(token.SEMICOLON)
	return s
}

// parseSubroutineCall parses `(IDENT '.')? IDENT '(' (expr (',' expr)*)? ')'`,
// shared by the `do` statement and by Term's call form.
func (p *Parser) parseSubroutineCall() *ast.SubroutineCall {
	tok := p.cur()
	firstTok, _ := p.expectAndConsume(token.IDENT)

	call := arena.Alloc[ast.SubroutineCall](p.arena)
	call.Tok = tok
	call.Name = firstTok.Lexeme

	if p.cur().Type == token.DOT {
		p.advance()
		secondTok, _ := p.expectAndConsume(token.IDENT)
		call.Caller = firstTok.Lexeme
		call.Name = secondTok.Lexeme
	}

	p.expectAndConsume(token.LPAREN)
	call.Args = p.parseExpressionList()
	p.expectAndConsume(token.RPAREN)
	return call
}

func (p *Parser) parseExpressionList() []*ast.Expression {
	if p.cur().Type == token.RPAREN {
		return nil
	}
	var args []*ast.Expression
	args = append(args, p.parseExpression())
	for p.cur().Type == token.COMMA {
		p.advance()
		args = append(args, p.parseExpression())
	}
	return args
}

// isBinaryOp reports whether t is one of the nine binary operators that may
// continue an Expression's `(op term)*` tail.
func isBinaryOp(t token.Type) bool {
	switch t {
	case token.PLUS, token.MINUS, token.ASTERISK, token.SLASH,
		token.LT, token.GT, token.EQUAL, token.AMPERSAND, token.BAR:
		return true
	default:
		return false
	}
}

// parseExpression parses `term (op term)*`, appending each (op, term) pair
// in source order. The grammar has a single precedence level, so no
// climbing is needed.
func (p *Parser) parseExpression() *ast.Expression {
	tok := p.cur()
	e := arena.Alloc[ast.Expression](p.arena)
	e.Tok = tok
	e.Head = p.parseTerm()

	for isBinaryOp(p.cur().Type) {
		op := p.advance().Type
		term := p.parseTerm()
		e.Ops = append(e.Ops, ast.OpTerm{Op: op, Term: term})
	}
	return e
}

// parseTerm dispatches on the current token, using peekAt(1) through
// peekAt(3) to disambiguate the IDENT-led cases.
func (p *Parser) parseTerm() ast.Term {
	t := p.cur()
	switch t.Type {
	case token.INT_CONST:
		p.advance()
		n, err := lexer.IntLiteral(t)
		if err != nil {
			p.sink.Report(diagnostics.PhaseParser, diagnostics.UnexpectedToken, t, "%s", err)
		}
		term := arena.Alloc[ast.IntTerm](p.arena)
		term.Tok = t
		term.Value = n
		return term

	case token.STRING_CONST:
		p.advance()
		term := arena.Alloc[ast.StringTerm](p.arena)
		term.Tok = t
		term.Value = t.Lexeme
		return term

	case token.TRUE, token.FALSE, token.NULL, token.THIS:
		p.advance()
		term := arena.Alloc[ast.KeywordTerm](p.arena)
		term.Tok = t
		switch t.Type {
		case token.TRUE:
			term.Keyword = ast.KwTrue
		case token.FALSE:
			term.Keyword = ast.KwFalse
		case token.NULL:
			term.Keyword = ast.KwNull
		case token.THIS:
			term.Keyword = ast.KwThis
		}
		return term

	case token.LPAREN:
		p.advance()
		term := arena.Alloc[ast.ParenTerm](p.arena)
		term.Tok = t
		term.Inner = p.parseExpression()
		p.expectAndConsume(token.RPAREN)
		return term

	case token.MINUS, token.TILDE:
		p.advance()
		term := arena.Alloc[ast.UnaryTerm](p.arena)
		term.Tok = t
		if t.Type == token.MINUS {
			term.Op = ast.UnaryNeg
		} else {
			term.Op = ast.UnaryNot
		}
		term.Operand = p.parseTerm()
		return term

	case token.IDENT:
		return p.parseIdentTerm()

	default:
		p.sink.Report(diagnostics.PhaseParser, diagnostics.UnexpectedToken, t,
			"expected a term, found %s %q", t.Type, t.Lexeme)
		p.hasError = true
		p.advance()
		term := arena.Alloc[ast.IntTerm](p.arena)
		term.Tok = t
		return term
	}
}

// parseIdentTerm resolves the four IDENT-led term shapes by peeking up to
// three tokens past the identifier:
//
//	ID [        -> array access
//	ID . ID (   -> subroutine call
//	ID . ID     -> qualified variable term
//	ID          -> plain variable term
func (p *Parser) parseIdentTerm() ast.Term {
	p1 := p.peekAt(1)

	switch p1.Type {
	case token.LBRACKET:
		nameTok := p.advance()
		p.advance() // '['
		term := arena.Alloc[ast.ArrayTerm](p.arena)
		term.Tok = nameTok
		term.Name = nameTok.Lexeme
		term.Index = p.parseExpression()
		p.expectAndConsume(token.RBRACKET)
		return term

	case token.LPAREN:
		term := arena.Alloc[ast.CallTerm](p.arena)
		term.Tok = p.cur()
		term.Call = p.parseSubroutineCall()
		return term

	case token.DOT:
		if p.peekAt(2).Type == token.IDENT && p.peekAt(3).Type == token.LPAREN {
			term := arena.Alloc[ast.CallTerm](p.arena)
			term.Tok = p.cur()
			term.Call = p.parseSubroutineCall()
			return term
		}
		nameTok := p.advance()
		p.advance() // '.'
		fieldTok, _ := p.expectAndConsume(token.IDENT)
		term := arena.Alloc[ast.VarTerm](p.arena)
		term.Tok = nameTok
		term.ClassName = nameTok.Lexeme
		term.Name = fieldTok.Lexeme
		return term

	default:
		nameTok := p.advance()
		term := arena.Alloc[ast.VarTerm](p.arena)
		term.Tok = nameTok
		term.Name = nameTok.Lexeme
		return term
	}
}
