package ast

// ChildNodes returns n's direct children in a fixed field order.
func ChildNodes(n *Node) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	out = append(out, n.Decorators...)
	if n.Test != nil {
		out = append(out, n.Test)
	}
	if n.Value != nil {
		out = append(out, n.Value)
	}
	out = append(out, n.Args...)
	out = append(out, n.Operands...)
	out = append(out, n.Children...)
	out = append(out, n.Cases...)
	out = append(out, n.Body...)
	out = append(out, n.Handlers...)
	out = append(out, n.Orelse...)
	out = append(out, n.Finally...)
	return out
}

// Inspect traverses the tree rooted at n depth-first in pre-order. If f
// returns false the children of that node are skipped.
func Inspect(n *Node, f func(*Node) bool) {
	if n == nil || !f(n) {
		return
	}
	for _, c := range ChildNodes(n) {
		Inspect(c, f)
	}
}

// InspectBody walks every statement of body without entering nested scopes.
// Scope nodes themselves are passed to f but never descended into.
func InspectBody(body []*Node, f func(*Node) bool) {
	for _, stmt := range body {
		Inspect(stmt, func(n *Node) bool {
			if !f(n) {
				return false
			}
			return !n.IsScope()
		})
	}
}
