package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"bfi/interpreter-go/pkg/driver"
	"bfi/interpreter-go/pkg/interpreter"
	"bfi/interpreter-go/pkg/runtime"
)

func runEntryWithMode(args []string, cfg cliConfig, mode executionMode) int {
	asJSON := false
	var paths []string
	for _, arg := range args {
		switch {
		case arg == "--json" && mode == modeAST:
			asJSON = true
		case strings.HasPrefix(arg, "-") && arg != driver.StdinPath:
			fmt.Fprintf(os.Stderr, "%s: unknown flag '%s'\n", modeCommandLabel(mode), arg)
			return 1
		default:
			paths = append(paths, arg)
		}
	}
	if len(paths) == 0 {
		fmt.Fprintf(os.Stderr, "%s requires a source file\n", modeCommandLabel(mode))
		return 1
	}
	if len(paths) > 1 {
		fmt.Fprintf(os.Stderr, "unexpected arguments: %s\n", strings.Join(paths[1:], " "))
		return 1
	}

	program, err := driver.NewLoader(cfg.Level).Load(paths[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, driver.DescribeLoadError(err))
		return 1
	}

	switch mode {
	case modeCheck:
		fmt.Fprintln(os.Stdout, "check: ok")
		return 0
	case modeAST:
		if asJSON {
			data, err := json.MarshalIndent(program.Syntax, "", "  ")
			if err != nil {
				fmt.Fprintf(os.Stderr, "bfi ast: %v\n", err)
				return 1
			}
			fmt.Fprintln(os.Stdout, string(data))
			return 0
		}
		fmt.Fprintln(os.Stdout, program.Syntax.String())
		return 0
	case modeIR:
		fmt.Fprint(os.Stdout, program.IR.String())
		return 0
	default:
		return executeProgram(program, cfg)
	}
}

// executeProgram runs program against the process's standard streams.
// An interrupt cancels the run.
func executeProgram(program *driver.Program, cfg cliConfig) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	interp := interpreter.New()
	in := runtime.NewReaderPort(os.Stdin, cfg.EOF)
	out := runtime.NewWriterPort(os.Stdout)
	if err := interp.ExecuteContext(ctx, program.IR, in, out); err != nil {
		fmt.Fprintln(os.Stderr, interpreter.DescribeRuntimeDiagnostic(interp.BuildRuntimeDiagnostic(err)))
		if errors.Is(err, context.Canceled) {
			return 130
		}
		return 1
	}
	return 0
}
