package ir

import "bfi/interpreter-go/pkg/ast"

// Lower converts a syntax tree into an instruction tree. Every offset it
// produces is 0; nonzero offsets only come from the optimizer.
func Lower(prog *ast.Program) *Program {
	if prog == nil {
		return &Program{Body: []Instruction{}}
	}
	return &Program{Body: lowerBody(prog.Body)}
}

func lowerBody(nodes []ast.Node) []Instruction {
	out := make([]Instruction, 0, len(nodes))
	for _, node := range nodes {
		if inst, ok := lowerNode(node); ok {
			out = append(out, inst)
		}
	}
	return out
}

func lowerNode(node ast.Node) (Instruction, bool) {
	switch n := node.(type) {
	case *ast.Loop:
		return Loop{Body: lowerBody(n.Body)}, true
	case *ast.Shift:
		return Shift{Delta: n.Delta}, true
	case *ast.Arith:
		return AddConst{Offset: 0, Amount: n.Amount}, true
	case *ast.Output:
		return Output{Offset: 0}, true
	case *ast.Input:
		return Input{Offset: 0}, true
	default:
		return nil, false
	}
}
