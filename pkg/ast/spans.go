package ast

// SetSpan annotates the node with the provided span.
func SetSpan(node Node, span Span) {
	if node == nil {
		return
	}
	if setter, ok := node.(interface{ setSpan(Span) }); ok {
		setter.setSpan(span)
	}
}

// ZeroSpan returns an empty span value.
func ZeroSpan() Span {
	return Span{}
}

// ClearSpans resets the span of node and every node beneath it. Trees that
// differ only in source positions compare equal afterwards.
func ClearSpans(node Node) {
	Walk(node, func(n Node) bool {
		SetSpan(n, ZeroSpan())
		return true
	})
}

// Walk visits node and its descendants depth-first, children in order.
// Returning false from visit skips the children of that node.
func Walk(node Node, visit func(Node) bool) {
	if node == nil {
		return
	}
	if !visit(node) {
		return
	}
	for _, child := range Children(node) {
		Walk(child, visit)
	}
}

// Children returns the direct children of a Program or Loop; other nodes have none.
func Children(node Node) []Node {
	switch n := node.(type) {
	case *Program:
		return n.Body
	case *Loop:
		return n.Body
	default:
		return nil
	}
}
