// Package optimizer rewrites lowered instruction trees into cheaper,
// equivalent ones. Passes never mutate their input; each returns a new tree.
package optimizer

import (
	"fmt"
	"strings"

	"bfi/interpreter-go/pkg/ir"
)

// Level selects which passes Optimize applies.
type Level string

const (
	LevelNone Level = "none"
	LevelFull Level = "full"
)

// ParseLevel accepts "none"/"0"/"off" and "full"/"1"/"on", case-insensitively.
func ParseLevel(value string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "":
		return LevelFull, fmt.Errorf("optimization level expects a value")
	case string(LevelNone), "0", "off":
		return LevelNone, nil
	case string(LevelFull), "1", "on":
		return LevelFull, nil
	default:
		return LevelFull, fmt.Errorf("unknown optimization level '%s' (expected none or full)", value)
	}
}

// InvariantError reports an instruction shape a pass relies on but did not find.
type InvariantError struct {
	Pass    string
	Message string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("optimizer: %s: %s", e.Pass, e.Message)
}

// Optimize runs multiply-loop conversion followed by move coalescing. The
// order matters: conversion removes loops whose exit shifts coalescing would
// otherwise have to keep. Running Optimize on its own output changes nothing.
func Optimize(prog *ir.Program) (*ir.Program, error) {
	return OptimizeLevel(prog, LevelFull)
}

// OptimizeLevel is Optimize with LevelNone returning a copy of prog unchanged.
func OptimizeLevel(prog *ir.Program, level Level) (*ir.Program, error) {
	if prog == nil {
		return &ir.Program{Body: []ir.Instruction{}}, nil
	}
	if level == LevelNone {
		return &ir.Program{Body: append([]ir.Instruction{}, prog.Body...)}, nil
	}
	converted, err := ConvertMultiplyLoops(prog.Body)
	if err != nil {
		return nil, err
	}
	return &ir.Program{Body: CoalesceMoves(converted)}, nil
}
