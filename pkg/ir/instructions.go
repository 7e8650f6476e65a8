package ir

// Kind identifies the instruction variant.
type Kind int

const (
	KindLoop Kind = iota
	KindShift
	KindAddConst
	KindAddMult
	KindZero
	KindOutput
	KindInput
)

func (k Kind) String() string {
	switch k {
	case KindLoop:
		return "loop"
	case KindShift:
		return "shift"
	case KindAddConst:
		return "add_const"
	case KindAddMult:
		return "add_mult"
	case KindZero:
		return "zero"
	case KindOutput:
		return "output"
	case KindInput:
		return "input"
	default:
		return "unknown"
	}
}

// Instruction is one node of the instruction tree. Every offset is relative
// to the pointer in effect when the instruction is reached.
type Instruction interface {
	Kind() Kind
	isInstruction()
}

// Program is a lowered (and possibly optimized) instruction tree.
type Program struct {
	Body []Instruction
}

// Loop repeats Body while the cell at offset 0 is nonzero.
type Loop struct {
	Body []Instruction
}

// Shift moves the pointer by Delta.
type Shift struct {
	Delta int
}

// AddConst adds Amount (mod 256) to the cell at Offset.
type AddConst struct {
	Offset int
	Amount int
}

// AddMult adds cell[Source] * Factor (mod 256) to the cell at Offset.
type AddMult struct {
	Offset int
	Source int
	Factor int
}

// Zero clears the cell at Offset.
type Zero struct {
	Offset int
}

// Output writes the cell at Offset.
type Output struct {
	Offset int
}

// Input reads one byte into the cell at Offset.
type Input struct {
	Offset int
}

func (Loop) Kind() Kind     { return KindLoop }
func (Shift) Kind() Kind    { return KindShift }
func (AddConst) Kind() Kind { return KindAddConst }
func (AddMult) Kind() Kind  { return KindAddMult }
func (Zero) Kind() Kind     { return KindZero }
func (Output) Kind() Kind   { return KindOutput }
func (Input) Kind() Kind    { return KindInput }

func (Loop) isInstruction()     {}
func (Shift) isInstruction()    {}
func (AddConst) isInstruction() {}
func (AddMult) isInstruction()  {}
func (Zero) isInstruction()     {}
func (Output) isInstruction()   {}
func (Input) isInstruction()    {}

// Displacement sums the direct Shift deltas of body. Loop bodies are not
// counted.
func Displacement(body []Instruction) int {
	total := 0
	for _, inst := range body {
		if shift, ok := inst.(Shift); ok {
			total += shift.Delta
		}
	}
	return total
}

// Equal reports whether two instruction sequences are structurally identical.
func Equal(a, b []Instruction) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		la, aLoop := a[i].(Loop)
		lb, bLoop := b[i].(Loop)
		if aLoop || bLoop {
			if !aLoop || !bLoop || !Equal(la.Body, lb.Body) {
				return false
			}
			continue
		}
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Count returns the number of instructions in body, including nested ones.
func Count(body []Instruction) int {
	n := 0
	for _, inst := range body {
		n++
		if loop, ok := inst.(Loop); ok {
			n += Count(loop.Body)
		}
	}
	return n
}
