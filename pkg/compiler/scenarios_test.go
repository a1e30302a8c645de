package compiler

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/nalgeon/be"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"mipscc/pkg/asmcheck"
)

// scenario is one end-to-end test case extracted from the Markdown corpus:
// a source program plus assertions on the compiler's behavior.
type scenario struct {
	Name         string
	Input        string   // the source program (mips-program fence)
	Contains     []string // fragments the emitted assembly must contain
	CompileError string   // expected error fragment; empty means success
}

// extractScenarios walks the Markdown document and collects every test
// case: a "Test:" heading followed by fenced code blocks.
func extractScenarios(t *testing.T, markdown []byte) []scenario {
	t.Helper()
	doc := goldmark.New().Parser().Parse(text.NewReader(markdown))

	var scenarios []scenario
	var current *scenario

	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n := node.(type) {
		case *ast.Heading:
			heading := extractText(n, markdown)
			if strings.HasPrefix(heading, "Test: ") {
				if current != nil {
					scenarios = append(scenarios, *current)
				}
				current = &scenario{Name: strings.TrimPrefix(heading, "Test: ")}
			}

		case *ast.FencedCodeBlock:
			if current == nil {
				break
			}
			content := extractFence(n, markdown)
			switch string(n.Language(markdown)) {
			case "mips-program":
				current.Input = content
			case "contains":
				for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
					if line != "" {
						current.Contains = append(current.Contains, line)
					}
				}
			case "compile-error":
				current.CompileError = strings.TrimRight(content, "\n")
			}
		}
		return ast.WalkContinue, nil
	})
	be.Err(t, err, nil)

	if current != nil {
		scenarios = append(scenarios, *current)
	}
	return scenarios
}

func extractText(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if txt, ok := n.(*ast.Text); ok {
				buf.Write(txt.Segment.Value(source))
			}
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

func extractFence(block *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	for i := 0; i < block.Lines().Len(); i++ {
		line := block.Lines().At(i)
		buf.Write(line.Value(source))
	}
	return buf.String()
}

func TestScenarios(t *testing.T) {
	markdown, err := os.ReadFile("testdata/scenarios.md")
	be.Err(t, err, nil)
	stub, err := os.ReadFile("../../runtime/builtins.asm")
	be.Err(t, err, nil)

	scenarios := extractScenarios(t, markdown)
	be.True(t, len(scenarios) > 0)

	for _, sc := range scenarios {
		t.Run(sc.Name, func(t *testing.T) {
			if sc.Input == "" {
				t.Fatal("scenario has no mips-program fence")
			}

			tokens, err := Lex(sc.Input)
			be.Err(t, err, nil)
			program, parseErr := Parse(tokens, "test")

			var compileErr error
			var output string
			if parseErr != nil {
				compileErr = parseErr
			} else {
				code, err := program.Compile(string(stub), nil)
				if err != nil {
					compileErr = err
				} else {
					output = code.Render()
				}
			}

			if sc.CompileError != "" {
				if compileErr == nil {
					t.Fatalf("expected error containing %q, compilation succeeded", sc.CompileError)
				}
				if !strings.Contains(compileErr.Error(), sc.CompileError) {
					t.Fatalf("expected error containing %q, got %q", sc.CompileError, compileErr)
				}
				return
			}

			if compileErr != nil {
				t.Fatalf("compilation failed: %v", compileErr)
			}
			for _, fragment := range sc.Contains {
				if !strings.Contains(output, fragment) {
					t.Errorf("output does not contain %q.\nOutput:\n%s", fragment, output)
				}
			}

			// every successfully emitted program must be structurally
			// sound: unique labels, resolvable branch targets, and only
			// the documented instruction families
			if err := asmcheck.Check(output); err != nil {
				t.Errorf("assembly check failed: %v\nOutput:\n%s", err, output)
			}
		})
	}
}
