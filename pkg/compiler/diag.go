package compiler

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Location is a half-open source range attached to tokens, AST nodes,
// symbols, and diagnostics.
type Location struct {
	File      string
	Line      int // 1-based line of the first character
	Column    int // 1-based column of the first character
	EndLine   int
	EndColumn int // column one past the last character
}

func locationOf(tok Token) Location {
	return Location{
		File:      "",
		Line:      tok.Line,
		Column:    tok.Column,
		EndLine:   tok.Line,
		EndColumn: tok.End(),
	}
}

// Span returns the range from the start of l to the end of other; other
// is expected to end after l. A zero other leaves l unchanged.
func (l Location) Span(other Location) Location {
	merged := l
	if other.Line != 0 {
		merged.EndLine = other.EndLine
		merged.EndColumn = other.EndColumn
	}
	return merged
}

func (l Location) String() string {
	file := l.File
	if file == "" {
		file = "stdin"
	}
	return fmt.Sprintf("%s:%d.%d", file, l.Line, l.Column)
}

// SyntaxError is raised while the AST is being constructed: arity overflow,
// duplicate case values, malformed initializers, and plain parse failures.
type SyntaxError struct {
	Location Location
	Message  string
}

func (e *SyntaxError) Error() string { return e.Message }

func syntaxErrorf(loc Location, format string, args ...any) *SyntaxError {
	return &SyntaxError{Location: loc, Message: fmt.Sprintf(format, args...)}
}

// CompileError is raised during code generation: undefined names, type
// mismatches, invalid accesses. The first one stops the compilation.
type CompileError struct {
	Location Location
	Message  string
}

func (e *CompileError) Error() string { return e.Message }

func compileErrorf(loc Location, format string, args ...any) *CompileError {
	return &CompileError{Location: loc, Message: fmt.Sprintf(format, args...)}
}

// Printer is the diagnostics sink handed to the code generator. Warnings
// are routed through it with kind "warning"; errors with kind "error".
type Printer func(loc Location, message, kind string)

// PrintDiagnostic writes one diagnostic in the canonical
// <file>:<line>.<col>: <kind>: <message> form, then re-emits the offending
// source line (and the one before it) with a caret marker. The source echo
// is produced only for real files, never for standard input.
func PrintDiagnostic(w io.Writer, loc Location, message, kind string) {
	fmt.Fprintf(w, "%s: %s: %s\n", loc, kind, message)

	if loc.File == "" {
		return
	}
	data, err := os.ReadFile(loc.File)
	if err != nil {
		return
	}
	lines := strings.Split(string(data), "\n")
	if loc.EndLine < 1 || loc.EndLine > len(lines) {
		return
	}

	// The marker starts at the begin column unless the range spans lines.
	beginColumn := loc.Column
	if loc.Line != loc.EndLine {
		beginColumn = 1
	}

	if loc.EndLine > 1 {
		fmt.Fprintf(w, "%5d | %s\n", loc.EndLine-1, lines[loc.EndLine-2])
	}
	fmt.Fprintf(w, "%5d | %s\n", loc.EndLine, lines[loc.EndLine-1])

	tildes := loc.EndColumn - beginColumn - 1
	if tildes < 0 {
		tildes = 0
	}
	fmt.Fprintf(w, "%5s | %s^%s\n", "", strings.Repeat(" ", beginColumn-1), strings.Repeat("~", tildes))
}
