package main

import (
	"fmt"
	"io"
	"os"

	"mipscc/pkg/asmcheck"
	"mipscc/pkg/compiler"
)

func main() {
	opts := compiler.Options{
		TokensFile:  "tokens.txt",
		ASTFile:     "ast.txt",
		RuntimeFile: "runtime/builtins.asm",
	}
	output := "program.asm"
	readStdin := false
	check := false

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-h":
			fmt.Println("Usage: mipscc [filename] [options]")
			fmt.Println("Specify - instead of a filename to read from standard input")
			fmt.Println("  -p        enable parse tracing")
			fmt.Println("  -s        enable scan tracing")
			fmt.Println("  -t file   write the token dump to file")
			fmt.Println("  -nt       disable the token dump")
			fmt.Println("  -a file   write the AST dump to file")
			fmt.Println("  -o file   write the assembly output to file")
			fmt.Println("  -r file   read the runtime stub from file")
			fmt.Println("  -check    validate the emitted assembly structurally")
			return

		case "-p":
			opts.TraceParse = true
		case "-s":
			opts.TraceScan = true
		case "-nt":
			opts.TokensFile = ""
		case "-check":
			check = true

		case "-t", "-a", "-o", "-r":
			flag := args[i]
			i++
			if i >= len(args) {
				fmt.Fprintf(os.Stderr, "Missing filename for argument %s\n", flag)
				os.Exit(1)
			}
			switch flag {
			case "-t":
				opts.TokensFile = args[i]
			case "-a":
				opts.ASTFile = args[i]
			case "-o":
				output = args[i]
			case "-r":
				opts.RuntimeFile = args[i]
			}

		case "-":
			readStdin = true

		default:
			opts.Filename = args[i]
		}
	}

	var src string
	switch {
	case readStdin:
		opts.Filename = ""
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintln(os.Stderr, "read error:", err)
			os.Exit(1)
		}
		src = string(data)
	case opts.Filename != "":
		data, err := os.ReadFile(opts.Filename)
		if err != nil {
			fmt.Fprintln(os.Stderr, "read error:", err)
			os.Exit(1)
		}
		src = string(data)
	default:
		fmt.Fprintln(os.Stderr, "no input file (use - to read from standard input)")
		os.Exit(1)
	}

	assembly, err := compiler.CompileSource(src, opts)
	if err != nil {
		os.Exit(1)
	}

	if check {
		if err := asmcheck.Check(assembly); err != nil {
			fmt.Fprintln(os.Stderr, "assembly check failed:", err)
			os.Exit(1)
		}
	}

	if err := os.WriteFile(output, []byte(assembly), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "unable to open file %q: %v\n", output, err)
		os.Exit(1)
	}
}
