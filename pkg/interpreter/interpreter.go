package interpreter

import (
	"context"
	"errors"
	"fmt"

	"bfi/interpreter-go/pkg/ir"
	"bfi/interpreter-go/pkg/runtime"
)

// Interpreter evaluates instruction trees. Each Execute call is an
// independent run with a fresh tape and pointer; the state of the last run
// stays readable through Tape and Pointer until the next one starts.
// An Interpreter must not be used by several goroutines at once.
type Interpreter struct {
	tape    *Tape
	pointer int
	in      runtime.InputPort
	out     runtime.OutputPort
	ctx     context.Context
}

func New() *Interpreter {
	return &Interpreter{tape: NewTape()}
}

// Execute runs prog on a fresh interpreter.
func Execute(prog *ir.Program, in runtime.InputPort, out runtime.OutputPort) error {
	return New().Execute(prog, in, out)
}

// Execute runs prog reading from in and writing to out. The output port is
// flushed when the run ends, whether or not it failed.
func (i *Interpreter) Execute(prog *ir.Program, in runtime.InputPort, out runtime.OutputPort) error {
	return i.ExecuteContext(context.Background(), prog, in, out)
}

// ExecuteContext is Execute with cancellation. The context is checked on every
// loop iteration; a cancelled run stops with an error wrapping ctx.Err() and
// cannot be resumed. Buffered output is flushed before every input read.
func (i *Interpreter) ExecuteContext(ctx context.Context, prog *ir.Program, in runtime.InputPort, out runtime.OutputPort) error {
	if prog == nil {
		return fmt.Errorf("interpreter: nil program")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	i.tape = NewTape()
	i.pointer = 0
	i.in = in
	i.out = out
	i.ctx = ctx

	err := i.evalBody(prog.Body)
	if out != nil {
		if flushErr := runtime.Flush(out); flushErr != nil && err == nil {
			err = newPortError("output", flushErr)
		}
	}
	return err
}

// Tape returns the tape of the most recent run.
func (i *Interpreter) Tape() *Tape {
	return i.tape
}

// Pointer returns the pointer position at the end of the most recent run.
func (i *Interpreter) Pointer() int {
	return i.pointer
}

// resolve turns an offset into an absolute cell index, growing the tape to
// cover it. Negative results are address faults.
func (i *Interpreter) resolve(op ir.Kind, offset int) (int, error) {
	index := i.pointer + offset
	if index < 0 {
		return 0, newAddressFault(op, i.pointer, offset)
	}
	i.tape.grow(index)
	return index, nil
}

func (i *Interpreter) evalBody(body []ir.Instruction) error {
	for _, inst := range body {
		if err := i.eval(inst); err != nil {
			return err
		}
	}
	return nil
}

func (i *Interpreter) eval(inst ir.Instruction) error {
	switch n := inst.(type) {
	case ir.Loop:
		return i.evalLoop(n)
	case ir.Shift:
		index, err := i.resolve(ir.KindShift, n.Delta)
		if err != nil {
			return err
		}
		i.pointer = index
	case ir.AddConst:
		index, err := i.resolve(ir.KindAddConst, n.Offset)
		if err != nil {
			return err
		}
		i.tape.cells[index] += byte(n.Amount)
	case ir.AddMult:
		src, err := i.resolve(ir.KindAddMult, n.Source)
		if err != nil {
			return err
		}
		// A zero source stands for a loop that never ran; the destination is
		// left unresolved.
		if i.tape.cells[src] == 0 {
			return nil
		}
		value := i.tape.cells[src] * byte(n.Factor)
		dst, err := i.resolve(ir.KindAddMult, n.Offset)
		if err != nil {
			return err
		}
		i.tape.cells[dst] += value
	case ir.Zero:
		index, err := i.resolve(ir.KindZero, n.Offset)
		if err != nil {
			return err
		}
		i.tape.cells[index] = 0
	case ir.Output:
		index, err := i.resolve(ir.KindOutput, n.Offset)
		if err != nil {
			return err
		}
		if i.out == nil {
			return newPortError("output", errors.New("no output port"))
		}
		if err := i.out.WriteByte(i.tape.cells[index]); err != nil {
			return newPortError("output", err)
		}
	case ir.Input:
		index, err := i.resolve(ir.KindInput, n.Offset)
		if err != nil {
			return err
		}
		if i.in == nil {
			return newPortError("input", errors.New("no input port"))
		}
		if i.out != nil {
			if err := runtime.Flush(i.out); err != nil {
				return newPortError("output", err)
			}
		}
		b, err := i.in.ReadByte()
		if err != nil {
			return newPortError("input", err)
		}
		i.tape.cells[index] = b
	default:
		return fmt.Errorf("interpreter: unsupported instruction %T", inst)
	}
	return nil
}

func (i *Interpreter) evalLoop(loop ir.Loop) error {
	for {
		index, err := i.resolve(ir.KindLoop, 0)
		if err != nil {
			return err
		}
		if i.tape.cells[index] == 0 {
			return nil
		}
		select {
		case <-i.ctx.Done():
			return fmt.Errorf("interpreter: run cancelled: %w", i.ctx.Err())
		default:
		}
		if err := i.evalBody(loop.Body); err != nil {
			return err
		}
	}
}
