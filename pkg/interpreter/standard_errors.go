package interpreter

import (
	"fmt"

	"bfi/interpreter-go/pkg/ir"
)

// AddressFault aborts a run whose instruction addressed a cell left of the
// tape origin.
type AddressFault struct {
	Pointer  int
	Offset   int
	Resolved int
	Op       ir.Kind
}

func (e *AddressFault) Error() string {
	return fmt.Sprintf("address fault: %s at pointer %d offset %d resolves to cell %d, left of cell 0", e.Op, e.Pointer, e.Offset, e.Resolved)
}

// PortError aborts a run whose input or output port failed.
type PortError struct {
	Op  string
	Err error
}

func (e *PortError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *PortError) Unwrap() error {
	return e.Err
}

func newAddressFault(op ir.Kind, pointer, offset int) error {
	return &AddressFault{Pointer: pointer, Offset: offset, Resolved: pointer + offset, Op: op}
}

func newPortError(op string, err error) error {
	return &PortError{Op: op, Err: err}
}
