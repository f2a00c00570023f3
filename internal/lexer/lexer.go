// Package lexer turns source text into a token stream with a small DFA:
// a current rune plus one-rune lookahead, advanced by readChar, with one
// state per partially-scanned construct. A token is emitted whenever the
// next character cannot extend the current state.
package lexer

import (
	"fmt"
	"strconv"

	"github.com/klein-martifex/jackc/internal/diagnostics"
	"github.com/klein-martifex/jackc/internal/token"
)

// state is one DFA state.
type state int

const (
	stateStart state = iota
	stateInID
	stateInNum
	stateInString
	stateCommentStart
	stateInCommentSingle
	stateInCommentMulti
	stateSeenStarInComment
	stateInSymbol
	stateError
)

// class is the character-equivalence-class partition the DFA transitions on.
type class int

const (
	classWhitespace class = iota
	classNewline
	classAlphaOrUnderscore
	classDigit
	classDoubleQuote
	classSlash
	classStar
	classSymbol
	classOther
	classEOF
)

func classify(ch rune) class {
	switch {
	case ch == 0:
		return classEOF
	case ch == '\n':
		return classNewline
	case ch == ' ' || ch == '\t' || ch == '\r':
		return classWhitespace
	case ch == '"':
		return classDoubleQuote
	case ch == '/':
		return classSlash
	case ch == '*':
		return classStar
	case isAlpha(ch) || ch == '_':
		return classAlphaOrUnderscore
	case isDigit(ch):
		return classDigit
	case isPunct(ch):
		return classSymbol
	default:
		return classOther
	}
}

func isAlpha(ch rune) bool { return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') }
func isDigit(ch rune) bool { return ch >= '0' && ch <= '9' }
func isAlnum(ch rune) bool { return isAlpha(ch) || isDigit(ch) || ch == '_' }
func isPunct(ch rune) bool {
	_, ok := token.TypeFromSymbol(ch)
	return ok
}

// Lexer scans one source file's text into tokens.
type Lexer struct {
	input    []byte
	pos      int // index of current rune
	readPos  int // index of next rune
	ch       rune
	line     int
	filename string
	sink     *diagnostics.Sink

	tokenStart int // byte offset where the current token began
	state      state
}

// New creates a Lexer over input attributed to filename; diagnostics are
// reported to sink.
func New(filename, input string, sink *diagnostics.Sink) *Lexer {
	l := &Lexer{input: []byte(input), line: 1, filename: filename, sink: sink}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
	}
	if l.readPos >= len(l.input) {
		l.ch = 0
		l.pos = len(l.input)
		l.readPos = len(l.input) + 1
		return
	}
	l.ch = rune(l.input[l.readPos])
	l.pos = l.readPos
	l.readPos++
}

func (l *Lexer) peekChar() rune {
	if l.readPos >= len(l.input) {
		return 0
	}
	return rune(l.input[l.readPos])
}

func (l *Lexer) makeToken(typ token.Type, lexeme string, line, offset int) token.Token {
	return token.Token{Type: typ, Lexeme: lexeme, Line: line, Offset: offset, Filename: l.filename}
}

// Lex runs the DFA to completion and returns the full token queue, always
// terminated with an EOF token so parser peeks stay safe.
func Lex(filename, input string, sink *diagnostics.Sink) *token.Queue {
	l := New(filename, input, sink)
	q := token.NewQueue()
	for {
		tok := l.Next()
		q.Push(tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return q
}

// ringBufferCapacity bounds the internal buffer Tokens() drains through.
const ringBufferCapacity = 2048

// Tokens streams l's token sequence over a channel instead of materializing
// a full Queue up front, for a streaming mode over pathologically large
// single lines where the parser's normal arena-backed Queue would have to
// hold every token in memory before parsing starts. Internally it drives
// the DFA into a bounded token.RingBuffer and drains that buffer into the
// returned channel, so the producer (the DFA) runs up to ringBufferCapacity
// tokens ahead of a slow consumer before it blocks on the unbuffered channel.
// The channel is closed after the EOF token is delivered.
func (l *Lexer) Tokens() <-chan token.Token {
	out := make(chan token.Token)
	go func() {
		defer close(out)
		rb := token.NewRingBuffer(ringBufferCapacity)
		for {
			tok := l.Next()
			for rb.Full() {
				buffered, ok := rb.Pop()
				if !ok {
					break
				}
				out <- buffered
			}
			// rb.Push cannot fail here: the drain loop above guarantees a
			// free slot whenever the buffer was full.
			_ = rb.Push(tok)
			if tok.Type == token.EOF {
				break
			}
		}
		for !rb.Empty() {
			buffered, _ := rb.Pop()
			out <- buffered
		}
	}()
	return out
}

// Next runs the DFA from stateStart until it produces one token: a token is
// emitted whenever the next transition would leave an accepting state, and
// the symbol state always emits a single-character token immediately, so
// chains of punctuation become separate tokens.
func (l *Lexer) Next() token.Token {
	l.skipInsignificant()

	startLine := l.line
	startOffset := l.pos
	cls := classify(l.ch)

	switch cls {
	case classEOF:
		return l.makeToken(token.EOF, "", startLine, startOffset)
	case classAlphaOrUnderscore:
		return l.lexIdentifier(startLine, startOffset)
	case classDigit:
		return l.lexNumber(startLine, startOffset)
	case classDoubleQuote:
		return l.lexString(startLine, startOffset)
	case classSymbol, classSlash, classStar:
		ch := l.ch
		typ, _ := token.TypeFromSymbol(ch)
		l.readChar()
		return l.makeToken(typ, string(ch), startLine, startOffset)
	default:
		ch := l.ch
		l.sink.Report(diagnostics.PhaseLexer, diagnostics.IllegalSymbol,
			l.makeToken(token.ILLEGAL, string(ch), startLine, startOffset),
			"illegal character %q", ch)
		l.readChar()
		return l.makeToken(token.ILLEGAL, string(ch), startLine, startOffset)
	}
}

// skipInsignificant consumes whitespace and both comment forms, driving the
// START/COMMENT_START/IN_COMMENT_SINGLE/IN_COMMENT_MULTI/SEEN_STAR_IN_COMMENT
// states; none of these states ever emit a token.
func (l *Lexer) skipInsignificant() {
	for {
		for classify(l.ch) == classWhitespace || classify(l.ch) == classNewline {
			l.readChar()
		}
		if l.ch == '/' && l.peekChar() == '/' {
			l.readChar()
			l.readChar()
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			continue
		}
		if l.ch == '/' && l.peekChar() == '*' {
			l.readChar()
			l.readChar()
			l.skipBlockComment()
			continue
		}
		break
	}
}

func (l *Lexer) skipBlockComment() {
	for {
		if l.ch == 0 {
			l.sink.Report(diagnostics.PhaseLexer, diagnostics.UnexpectedEOF,
				l.makeToken(token.ILLEGAL, "", l.line, l.pos), "unterminated block comment")
			return
		}
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar()
			l.readChar()
			return
		}
		l.readChar()
	}
}

func (l *Lexer) lexIdentifier(line, offset int) token.Token {
	start := l.pos
	for isAlnum(l.ch) {
		l.readChar()
	}
	lexeme := string(l.input[start:l.pos])
	return l.makeToken(token.LookupIdent(lexeme), lexeme, line, offset)
}

func (l *Lexer) lexNumber(line, offset int) token.Token {
	start := l.pos
	for isDigit(l.ch) {
		l.readChar()
	}
	lexeme := string(l.input[start:l.pos])
	return l.makeToken(token.INT_CONST, lexeme, line, offset)
}

func (l *Lexer) lexString(line, offset int) token.Token {
	l.readChar() // consume opening quote
	start := l.pos
	for {
		if l.ch == '"' {
			content := string(l.input[start:l.pos])
			l.readChar() // consume closing quote
			return l.makeToken(token.STRING_CONST, content, line, offset)
		}
		if l.ch == '\n' {
			l.sink.Report(diagnostics.PhaseLexer, diagnostics.NewlineInString,
				l.makeToken(token.ILLEGAL, "", line, offset), "newline inside string literal")
			return l.makeToken(token.ILLEGAL, string(l.input[start:l.pos]), line, offset)
		}
		if l.ch == 0 {
			l.sink.Report(diagnostics.PhaseLexer, diagnostics.EOFInString,
				l.makeToken(token.ILLEGAL, "", line, offset), "end of file inside string literal")
			return l.makeToken(token.ILLEGAL, string(l.input[start:l.pos]), line, offset)
		}
		l.readChar()
	}
}

// IntLiteral parses a token's lexeme as a decimal integer (the analyzer and
// code generator both need the value, not just the lexeme).
func IntLiteral(tok token.Token) (int, error) {
	n, err := strconv.Atoi(tok.Lexeme)
	if err != nil {
		return 0, fmt.Errorf("invalid integer literal %q: %w", tok.Lexeme, err)
	}
	return n, nil
}
