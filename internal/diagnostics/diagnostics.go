// Package diagnostics implements the compiler's error/warning channel.
// There is no package-level error list: every phase appends to a Sink owned
// by the pipeline driver, so two concurrent runs never interleave their
// diagnostics.
package diagnostics

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"

	"github.com/klein-martifex/jackc/internal/token"
)

// Phase identifies which pipeline stage raised a diagnostic.
type Phase int

const (
	PhaseInternal Phase = iota
	PhaseLexer
	PhaseParser
	PhaseSemantic
	PhaseCodegen
)

func (p Phase) String() string {
	switch p {
	case PhaseInternal:
		return "INTERNAL"
	case PhaseLexer:
		return "LEXER"
	case PhaseParser:
		return "PARSER"
	case PhaseSemantic:
		return "SEMANTIC"
	case PhaseCodegen:
		return "CODEGEN"
	default:
		return "UNKNOWN"
	}
}

// Severity distinguishes a hard failure from an advisory.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityFatal
)

func (s Severity) String() string {
	if s == SeverityFatal {
		return "error"
	}
	return "warning"
}

// Code identifies one diagnostic in the fixed per-phase taxonomy.
type Code string

const (
	// INTERNAL: always fatal.
	MemoryAllocation Code = "INTERNAL_MEMORY_ALLOCATION"
	NullPointer      Code = "INTERNAL_NULL_POINTER"
	UnknownNodeType  Code = "INTERNAL_UNKNOWN_NODE_TYPE"
	OutOfBounds      Code = "INTERNAL_OUT_OF_BOUNDS"
	BufferFull       Code = "INTERNAL_BUFFER_FULL"
	BufferEmpty      Code = "INTERNAL_BUFFER_EMPTY"

	// LEXER: fatal for the file.
	NewlineInString Code = "LEXER_NEWLINE_IN_STRING"
	EOFInString     Code = "LEXER_EOF_IN_STRING"
	UnexpectedEOF   Code = "LEXER_UNEXPECTED_EOF"
	IllegalSymbol   Code = "LEXER_ILLEGAL_SYMBOL"

	// PARSER: fatal for the file, but parsing continues.
	UnexpectedToken Code = "PARSER_UNEXPECTED_TOKEN"

	// SEMANTIC: fatal for the program (no code gen).
	UndeclaredSymbol  Code = "SEMANTIC_UNDECLARED_SYMBOL"
	RedeclaredSymbol  Code = "SEMANTIC_REDECLARED_SYMBOL"
	InvalidSubroutine Code = "SEMANTIC_INVALID_SUBROUTINE"
	InvalidType       Code = "SEMANTIC_INVALID_TYPE"
	InvalidKind       Code = "SEMANTIC_INVALID_KIND"
	InvalidScope      Code = "SEMANTIC_INVALID_SCOPE"
	InvalidStatement  Code = "SEMANTIC_INVALID_STATEMENT"
	InvalidExpression Code = "SEMANTIC_INVALID_EXPRESSION"
	InvalidTerm       Code = "SEMANTIC_INVALID_TERM"
	InvalidOperation  Code = "SEMANTIC_INVALID_OPERATION"
	InvalidVar        Code = "SEMANTIC_INVALID_VAR"
	InvalidArgument   Code = "SEMANTIC_INVALID_ARGUMENT"
	MissingReturn     Code = "SEMANTIC_MISSING_RETURN"

	// CODEGEN: fatal.
	CodegenInvalidInput Code = "CODEGEN_INVALID_INPUT"
)

// suggestions holds a short, code-specific remediation hint per code.
var suggestions = map[Code]string{
	NewlineInString:   "close the string literal before the end of the line",
	EOFInString:       "add a closing \" before the end of the file",
	UnexpectedEOF:     "the file ends mid-construct; check for an unclosed comment or block",
	IllegalSymbol:     "remove or replace the unrecognized character",
	UnexpectedToken:   "check for a missing or misplaced token near here",
	UndeclaredSymbol:  "declare the variable, or check for a typo in its name",
	RedeclaredSymbol:  "rename one of the conflicting declarations",
	InvalidSubroutine: "the call does not resolve to a constructor, function, or method",
	InvalidType:       "change one side to match the other's type, or add an explicit cast",
	InvalidExpression: "check the call target and argument list",
	InvalidArgument:   "the argument type does not match the declared parameter type",
	MissingReturn:     "add a return statement with a value of the declared type",
}

func fatalByDefault(c Code) Severity {
	return SeverityFatal
}

// Diagnostic is one reported problem.
type Diagnostic struct {
	Code          Code
	Phase         Phase
	Severity      Severity
	Message       string
	Filename      string
	Line          int
	Offset        int
	SourceExcerpt string
	Suggestion    string
	RunID         string // identifies the compilation run that raised this
}

// Sink accumulates diagnostics for one pipeline run. It is the single owner
// of the diagnostics list; phases append to it, never read a package-level
// global.
type Sink struct {
	diags []Diagnostic
	runID string
}

// NewSink creates an empty Sink stamped with a fresh run ID.
func NewSink() *Sink {
	return &Sink{runID: uuid.NewString()}
}

// RunID returns the identifier stamped on every diagnostic this sink emits.
func (s *Sink) RunID() string { return s.runID }

// Report appends a fatal diagnostic anchored at tok.
func (s *Sink) Report(phase Phase, code Code, tok token.Token, format string, args ...any) {
	s.append(phase, fatalByDefault(code), code, tok, format, args...)
}

// Warn appends a non-fatal diagnostic anchored at tok.
func (s *Sink) Warn(phase Phase, code Code, tok token.Token, format string, args ...any) {
	s.append(phase, SeverityWarning, code, tok, format, args...)
}

func (s *Sink) append(phase Phase, sev Severity, code Code, tok token.Token, format string, args ...any) {
	s.diags = append(s.diags, Diagnostic{
		Code:       code,
		Phase:      phase,
		Severity:   sev,
		Message:    fmt.Sprintf(format, args...),
		Filename:   tok.Filename,
		Line:       tok.Line,
		Offset:     tok.Offset,
		Suggestion: suggestions[code],
		RunID:      s.runID,
	})
}

// All returns every diagnostic reported so far, in report order.
func (s *Sink) All() []Diagnostic { return s.diags }

// HasFatal reports whether any fatal diagnostic has been recorded. The
// pipeline driver consults this between phases to decide whether to skip
// the next one.
func (s *Sink) HasFatal() bool {
	for _, d := range s.diags {
		if d.Severity == SeverityFatal {
			return true
		}
	}
	return false
}

// Count returns the total number of diagnostics and the subset that are
// warnings.
func (s *Sink) Count() (total, warnings int) {
	for _, d := range s.diags {
		total++
		if d.Severity == SeverityWarning {
			warnings++
		}
	}
	return total, warnings
}

// PrintAll writes one formatted block per diagnostic to w, colorizing the
// severity label when w is a terminal.
func (s *Sink) PrintAll(w io.Writer) {
	color := shouldColor(w)
	for _, d := range s.diags {
		fmt.Fprintf(w, "%s[%s][%s:%s]%s\n", sevColor(color, d.Severity), d.Severity, d.Phase, d.Code, reset(color))
		fmt.Fprintf(w, "  in file '%s', line %d:\n", d.Filename, d.Line)
		fmt.Fprintf(w, "    %s\n", d.Message)
		if d.SourceExcerpt != "" {
			fmt.Fprintf(w, "    source: %s\n", d.SourceExcerpt)
		}
		if d.Suggestion != "" {
			fmt.Fprintf(w, "    suggestion: %s\n", d.Suggestion)
		}
	}
}

// PrintSummary writes the totals-and-verdict block printed after PrintAll.
func (s *Sink) PrintSummary(w io.Writer) {
	total, warnings := s.Count()
	errors := total - warnings
	verdict := "PASS"
	if s.HasFatal() {
		verdict = "FAIL"
	}
	fmt.Fprintf(w, "%d error(s), %d warning(s): %s\n", errors, warnings, verdict)
}

func shouldColor(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func sevColor(color bool, sev Severity) string {
	if !color {
		return ""
	}
	if sev == SeverityFatal {
		return "\x1b[31m"
	}
	return "\x1b[33m"
}

func reset(color bool) string {
	if !color {
		return ""
	}
	return "\x1b[0m"
}
