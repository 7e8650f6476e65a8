package optimizer

import "bfi/interpreter-go/pkg/ir"

// CoalesceMoves folds pointer movement into the offsets of the instructions
// that follow it. Each sequence (the top level and every loop body) is its
// own scope starting at offset 0. Pending movement is materialized as a Shift
// before each loop, since a loop tests the cell under the real pointer, and
// at the end of the sequence.
func CoalesceMoves(body []ir.Instruction) []ir.Instruction {
	out := make([]ir.Instruction, 0, len(body))
	offset := 0
	for _, inst := range body {
		switch n := inst.(type) {
		case ir.Shift:
			offset += n.Delta
		case ir.AddConst:
			out = append(out, ir.AddConst{Offset: n.Offset + offset, Amount: n.Amount})
		case ir.AddMult:
			out = append(out, ir.AddMult{Offset: n.Offset + offset, Source: n.Source + offset, Factor: n.Factor})
		case ir.Zero:
			out = append(out, ir.Zero{Offset: n.Offset + offset})
		case ir.Output:
			out = append(out, ir.Output{Offset: n.Offset + offset})
		case ir.Input:
			out = append(out, ir.Input{Offset: n.Offset + offset})
		case ir.Loop:
			if offset != 0 {
				out = append(out, ir.Shift{Delta: offset})
				offset = 0
			}
			out = append(out, ir.Loop{Body: CoalesceMoves(n.Body)})
		default:
			out = append(out, inst)
		}
	}
	if offset != 0 {
		out = append(out, ir.Shift{Delta: offset})
	}
	return out
}
