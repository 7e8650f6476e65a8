package driver

import (
	"fmt"

	"bfi/interpreter-go/pkg/ast"
	"bfi/interpreter-go/pkg/ir"
	"bfi/interpreter-go/pkg/optimizer"
	"bfi/interpreter-go/pkg/parser"
)

// Program is a source text carried through every pipeline stage.
type Program struct {
	Path    string
	Source  string
	Level   optimizer.Level
	Syntax  *ast.Program
	Lowered *ir.Program
	// IR is the instruction tree to execute: Lowered itself under LevelNone,
	// the optimized tree under LevelFull.
	IR *ir.Program
}

// Compile parses, lowers and, for LevelFull, optimizes source.
func Compile(source string, level optimizer.Level) (*Program, error) {
	syntax, err := parser.Parse(source)
	if err != nil {
		return nil, err
	}
	lowered := ir.Lower(syntax)
	prog := &Program{
		Source:  source,
		Level:   level,
		Syntax:  syntax,
		Lowered: lowered,
		IR:      lowered,
	}
	switch level {
	case optimizer.LevelNone:
	case optimizer.LevelFull:
		optimized, err := optimizer.Optimize(lowered)
		if err != nil {
			return nil, err
		}
		prog.IR = optimized
	default:
		return nil, fmt.Errorf("driver: unknown optimization level %q", level)
	}
	return prog, nil
}
