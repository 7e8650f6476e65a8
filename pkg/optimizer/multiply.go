package optimizer

import (
	"fmt"

	"bfi/interpreter-go/pkg/ir"
)

// IsMultiplyLoop reports whether inst is a loop that only shifts and adds,
// returns the pointer to where it started, and decrements its counter cell by
// exactly one (mod 256) per iteration.
func IsMultiplyLoop(inst ir.Instruction) bool {
	loop, ok := inst.(ir.Loop)
	if !ok {
		return false
	}
	return isSimpleBody(loop.Body) &&
		ir.Displacement(loop.Body) == 0 &&
		uint8(counterIncrement(loop.Body)) == 0xFF
}

func isSimpleBody(body []ir.Instruction) bool {
	for _, inst := range body {
		switch inst.(type) {
		case ir.Shift, ir.AddConst:
		default:
			return false
		}
	}
	return true
}

// counterIncrement sums the AddConst amounts that land on the cell the loop
// started on.
func counterIncrement(body []ir.Instruction) int {
	offset := 0
	total := 0
	for _, inst := range body {
		switch n := inst.(type) {
		case ir.Shift:
			offset += n.Delta
		case ir.AddConst:
			if offset+n.Offset == 0 {
				total += n.Amount
			}
		}
	}
	return total
}

// ConvertMultiplyLoops replaces every multiply loop in body, at any depth,
// with AddMult instructions followed by Zero. Other loops are kept and their
// bodies converted recursively.
func ConvertMultiplyLoops(body []ir.Instruction) ([]ir.Instruction, error) {
	out := make([]ir.Instruction, 0, len(body))
	for _, inst := range body {
		loop, ok := inst.(ir.Loop)
		if !ok {
			out = append(out, inst)
			continue
		}
		if IsMultiplyLoop(loop) {
			expanded, err := convertMultiplyLoop(loop)
			if err != nil {
				return nil, err
			}
			out = append(out, expanded...)
			continue
		}
		inner, err := ConvertMultiplyLoops(loop.Body)
		if err != nil {
			return nil, err
		}
		out = append(out, ir.Loop{Body: inner})
	}
	return out, nil
}

// convertMultiplyLoop expects a loop that satisfies IsMultiplyLoop.
func convertMultiplyLoop(loop ir.Loop) ([]ir.Instruction, error) {
	out := make([]ir.Instruction, 0, len(loop.Body)+1)
	offset := 0
	for _, inst := range loop.Body {
		switch n := inst.(type) {
		case ir.Shift:
			offset += n.Delta
			out = append(out, n)
		case ir.AddConst:
			if offset+n.Offset == 0 {
				// The counter; its net effect is the trailing Zero.
				continue
			}
			out = append(out, ir.AddMult{Offset: n.Offset, Source: -offset, Factor: n.Amount})
		default:
			return nil, &InvariantError{Pass: "multiply", Message: fmt.Sprintf("unexpected %s in multiply loop", inst.Kind())}
		}
	}
	if offset != 0 {
		return nil, &InvariantError{Pass: "multiply", Message: fmt.Sprintf("multiply loop ends at offset %d", offset)}
	}
	return append(out, ir.Zero{Offset: 0}), nil
}
