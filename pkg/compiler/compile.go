package compiler

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Options configures one compilation run.
type Options struct {
	Filename    string // source path; empty means standard input
	RuntimeFile string // runtime stub appended to the output
	TokensFile  string // token dump destination; empty disables the dump
	ASTFile     string // AST dump destination; empty disables the dump
	TraceScan   bool   // echo every token to the diagnostics writer
	TraceParse  bool   // echo the parsed tree to the diagnostics writer
	Stderr      io.Writer
}

// CompileSource runs the whole pipeline over src and returns the emitted
// assembly text. Diagnostics go to opts.Stderr; the first error stops the
// compilation and is also returned.
func CompileSource(src string, opts Options) (string, error) {
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	tokens, err := Lex(src)
	if err != nil {
		fmt.Fprintln(stderr, "lex error:", err)
		return "", err
	}

	if opts.TraceScan {
		for _, tok := range tokens {
			fmt.Fprintln(stderr, " ", tok)
		}
	}
	if opts.TokensFile != "" {
		var sb strings.Builder
		for _, tok := range tokens {
			fmt.Fprintln(&sb, tok)
		}
		if err := os.WriteFile(opts.TokensFile, []byte(sb.String()), 0o644); err != nil {
			err = fmt.Errorf("unable to open file %q: %w", opts.TokensFile, err)
			fmt.Fprintln(stderr, err)
			return "", err
		}
	}

	program, err := Parse(tokens, opts.Filename)
	if err != nil {
		printError(stderr, err)
		return "", err
	}

	if opts.ASTFile != "" {
		if err := os.WriteFile(opts.ASTFile, []byte(program.Tree(0)), 0o644); err != nil {
			err = fmt.Errorf("unable to open file %q: %w", opts.ASTFile, err)
			fmt.Fprintln(stderr, err)
			return "", err
		}
	}
	if opts.TraceParse {
		fmt.Fprint(stderr, program.Tree(0))
	}

	stub := ""
	if opts.RuntimeFile != "" {
		data, err := os.ReadFile(opts.RuntimeFile)
		if err != nil {
			err = fmt.Errorf("unable to open file %q: %w", opts.RuntimeFile, err)
			fmt.Fprintln(stderr, err)
			return "", err
		}
		stub = string(data)
	}

	printer := func(loc Location, message, kind string) {
		PrintDiagnostic(stderr, loc, message, kind)
	}

	code, err := program.Compile(stub, printer)
	if err != nil {
		printError(stderr, err)
		return "", err
	}
	return code.Render(), nil
}

// printError routes located errors through the diagnostic printer and
// everything else straight to the writer.
func printError(w io.Writer, err error) {
	var syntaxErr *SyntaxError
	if errors.As(err, &syntaxErr) {
		PrintDiagnostic(w, syntaxErr.Location, syntaxErr.Message, "error")
		return
	}
	var compileErr *CompileError
	if errors.As(err, &compileErr) {
		PrintDiagnostic(w, compileErr.Location, compileErr.Message, "error")
		return
	}
	fmt.Fprintln(w, err)
}
