package ast

import "strings"

// String renders the program back to canonical source text.
func (p *Program) String() string {
	var b strings.Builder
	writeSource(&b, p.Body)
	return b.String()
}

func (l *Loop) String() string {
	var b strings.Builder
	writeNode(&b, l)
	return b.String()
}

// Source renders a single node as canonical source text.
func Source(node Node) string {
	var b strings.Builder
	writeNode(&b, node)
	return b.String()
}

func writeSource(b *strings.Builder, body []Node) {
	for _, node := range body {
		writeNode(b, node)
	}
}

func writeNode(b *strings.Builder, node Node) {
	switch n := node.(type) {
	case *Program:
		writeSource(b, n.Body)
	case *Loop:
		b.WriteByte('[')
		writeSource(b, n.Body)
		b.WriteByte(']')
	case *Shift:
		writeRun(b, n.Delta, '>', '<')
	case *Arith:
		writeRun(b, n.Amount, '+', '-')
	case *Output:
		b.WriteByte('.')
	case *Input:
		b.WriteByte(',')
	}
}

func writeRun(b *strings.Builder, count int, up, down byte) {
	ch := up
	if count < 0 {
		ch = down
		count = -count
	}
	for i := 0; i < count; i++ {
		b.WriteByte(ch)
	}
}
