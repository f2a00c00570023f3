// Package ast defines the tagged abstract syntax tree produced by the
// parser. Each node variant is a distinct Go struct implementing Node;
// there is no separate runtime kind discriminator. The static Go type of a
// node is its tag, and phase dispatch happens by double dispatch through
// Accept.
package ast

import "github.com/klein-martifex/jackc/internal/token"

// Node is the common interface satisfied by every AST variant. Nodes are
// created only by the parser; later phases may only mutate symbol-table
// links and type fields, never the tree shape or the source-location
// fields.
type Node interface {
	// Pos returns the token that began this node, fixed at construction.
	Pos() token.Token
	Accept(v Visitor)
}

// Visitor receives one callback per node variant. A concrete phase (BUILD,
// ANALYZE, GENERATE) implements Visitor and is handed to Node.Accept.
type Visitor interface {
	VisitProgram(*Program)
	VisitClass(*Class)
	VisitClassVarDec(*ClassVarDec)
	VisitSubroutineDec(*SubroutineDec)
	VisitParameterList(*ParameterList)
	VisitSubroutineBody(*SubroutineBody)
	VisitVarDec(*VarDec)
	VisitStatements(*Statements)
	VisitLetStatement(*LetStatement)
	VisitIfStatement(*IfStatement)
	VisitWhileStatement(*WhileStatement)
	VisitDoStatement(*DoStatement)
	VisitReturnStatement(*ReturnStatement)
	VisitSubroutineCall(*SubroutineCall)
	VisitExpression(*Expression)
	VisitIntTerm(*IntTerm)
	VisitStringTerm(*StringTerm)
	VisitKeywordTerm(*KeywordTerm)
	VisitVarTerm(*VarTerm)
	VisitArrayTerm(*ArrayTerm)
	VisitCallTerm(*CallTerm)
	VisitParenTerm(*ParenTerm)
	VisitUnaryTerm(*UnaryTerm)
}
