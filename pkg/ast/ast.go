package ast

type NodeType string

const (
	NodeProgram NodeType = "Program"
	NodeLoop    NodeType = "Loop"
	NodeShift   NodeType = "Shift"
	NodeArith   NodeType = "Arith"
	NodeOutput  NodeType = "Output"
	NodeInput   NodeType = "Input"
)

// Node is implemented by every syntax tree variant. The set is closed: Loop,
// Shift, Arith, Output and Input.
type Node interface {
	NodeType() NodeType
	Span() Span
	isNode()
}

type Position struct {
	Offset int `json:"offset"`
	Line   int `json:"line"`
	Column int `json:"column"`
}

type Span struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

type nodeImpl struct {
	Type NodeType `json:"type"`
	span Span
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n nodeImpl) NodeType() NodeType { return n.Type }
func (n nodeImpl) Span() Span         { return n.span }
func (nodeImpl) isNode()              {}
func (n *nodeImpl) setSpan(span Span) { n.span = span }

// Program is the root of a parsed source file.
type Program struct {
	nodeImpl

	Body []Node `json:"body"`
}

func NewProgram(body []Node) *Program {
	if body == nil {
		body = []Node{}
	}
	return &Program{nodeImpl: newNodeImpl(NodeProgram), Body: body}
}

// Loop repeats Body while the current cell is nonzero.
type Loop struct {
	nodeImpl

	Body []Node `json:"body"`
}

func NewLoop(body []Node) *Loop {
	if body == nil {
		body = []Node{}
	}
	return &Loop{nodeImpl: newNodeImpl(NodeLoop), Body: body}
}

// Shift moves the pointer by Delta cells; a folded run of '>' and '<'.
type Shift struct {
	nodeImpl

	Delta int `json:"delta"`
}

func NewShift(delta int) *Shift {
	return &Shift{nodeImpl: newNodeImpl(NodeShift), Delta: delta}
}

// Arith adds Amount to the current cell; a folded run of '+' and '-'.
type Arith struct {
	nodeImpl

	Amount int `json:"amount"`
}

func NewArith(amount int) *Arith {
	return &Arith{nodeImpl: newNodeImpl(NodeArith), Amount: amount}
}

type Output struct {
	nodeImpl
}

func NewOutput() *Output {
	return &Output{nodeImpl: newNodeImpl(NodeOutput)}
}

type Input struct {
	nodeImpl
}

func NewInput() *Input {
	return &Input{nodeImpl: newNodeImpl(NodeInput)}
}
