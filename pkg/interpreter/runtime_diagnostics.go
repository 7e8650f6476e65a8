package interpreter

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

type RuntimeDiagnostic struct {
	Message string
	Notes   []string
}

// BuildRuntimeDiagnostic describes err, a failure returned by the most recent
// run, with notes on the machine state it left behind.
func (i *Interpreter) BuildRuntimeDiagnostic(err error) RuntimeDiagnostic {
	diag := RuntimeDiagnostic{Message: runtimeMessageFromError(err)}
	if i == nil || i.tape == nil {
		return diag
	}
	diag.Notes = append(diag.Notes,
		fmt.Sprintf("pointer at cell %d", i.pointer),
		fmt.Sprintf("tape length %d", i.tape.Len()),
	)
	var fault *AddressFault
	if errors.As(err, &fault) && fault.Pointer < i.tape.Len() {
		diag.Notes = append(diag.Notes, fmt.Sprintf("cell %d holds %d", fault.Pointer, i.tape.Cell(fault.Pointer)))
	}
	return diag
}

func runtimeMessageFromError(err error) string {
	if err == nil {
		return ""
	}
	var fault *AddressFault
	var port *PortError
	switch {
	case errors.As(err, &fault):
		return fault.Error()
	case errors.As(err, &port):
		return port.Error()
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "run cancelled"
	default:
		return strings.TrimPrefix(err.Error(), "interpreter: ")
	}
}

func DescribeRuntimeDiagnostic(diag RuntimeDiagnostic) string {
	message := strings.TrimSpace(diag.Message)
	var b strings.Builder
	fmt.Fprintf(&b, "runtime: %s", message)
	for _, note := range diag.Notes {
		fmt.Fprintf(&b, "\nnote: %s", note)
	}
	return b.String()
}
