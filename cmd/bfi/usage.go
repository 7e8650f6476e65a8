package main

import (
	"fmt"
	"os"
)

func modeCommandLabel(mode executionMode) string {
	switch mode {
	case modeCheck:
		return "bfi check"
	case modeAST:
		return "bfi ast"
	case modeIR:
		return "bfi ir"
	default:
		return "bfi run"
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  bfi [--opt=none|full] [--eof=zero|max|error] run <file.b|->")
	fmt.Fprintln(os.Stderr, "  bfi [--opt=none|full] [--eof=zero|max|error] <file.b>")
	fmt.Fprintln(os.Stderr, "  bfi check <file.b|->")
	fmt.Fprintln(os.Stderr, "  bfi ast [--json] <file.b|->")
	fmt.Fprintln(os.Stderr, "  bfi [--opt=none|full] ir <file.b|->")
	fmt.Fprintln(os.Stderr, "  bfi test [--list] [--fail-fast] [--parallel N] [--name NAME] [suite.yml ...]")
	fmt.Fprintln(os.Stderr, "  bfi [--opt=none|full] [--eof=zero|max|error] repl")
	fmt.Fprintln(os.Stderr, "  bfi deps install")
	fmt.Fprintln(os.Stderr, "  bfi deps update [source ...]")
	fmt.Fprintln(os.Stderr, "  bfi version")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Environment:")
	fmt.Fprintln(os.Stderr, "  BFI_OPT, BFI_EOF      defaults for --opt and --eof")
	fmt.Fprintln(os.Stderr, "  BFI_CACHE             cache for fetched suite sources (default ~/.bfi)")
	fmt.Fprintln(os.Stderr, "  BFI_HISTORY           repl history file (default ~/.bfi_history)")
}
