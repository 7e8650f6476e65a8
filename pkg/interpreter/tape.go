package interpreter

// Tape is the cell store of one run. Cell 0 always exists; the tape grows
// with zero cells on demand and never shrinks.
type Tape struct {
	cells []byte
}

func NewTape() *Tape {
	return &Tape{cells: make([]byte, 1, 64)}
}

// Len is one more than the highest address touched so far.
func (t *Tape) Len() int {
	return len(t.cells)
}

// Cell returns the value at index, or 0 for cells that were never touched.
func (t *Tape) Cell(index int) byte {
	if index < 0 || index >= len(t.cells) {
		return 0
	}
	return t.cells[index]
}

// Bytes returns a copy of the cells.
func (t *Tape) Bytes() []byte {
	return append([]byte(nil), t.cells...)
}

func (t *Tape) grow(index int) {
	if index < len(t.cells) {
		return
	}
	t.cells = append(t.cells, make([]byte, index+1-len(t.cells))...)
}
