package ast

// Inspect traverses n depth-first, calling fn for each node. If fn returns
// false the node's children are skipped.
func Inspect(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range Children(n) {
		Inspect(c, fn)
	}
}

// InspectFile runs Inspect over every top-level statement of f.
func InspectFile(f *File, fn func(Node) bool) {
	for _, n := range f.Body {
		Inspect(n, fn)
	}
}

// Children returns the direct child nodes of n in source order.
func Children(n Node) []Node {
	var out []Node
	add := func(c Node) {
		if c != nil {
			out = append(out, c)
		}
	}
	switch n := n.(type) {
	case *Member:
		add(n.Object)
		add(n.Index)
	case *Call:
		add(n.Callee)
		for _, a := range n.Args {
			add(a)
		}
	case *TaggedTemplate:
		add(n.Tag)
		add(n.Quasi)
	case *ArrowFunc:
		for _, p := range n.Params {
			add(p)
		}
		for _, s := range n.Body {
			add(s)
		}
		add(n.Expr)
	case *VarDecl:
		for _, d := range n.Declarators {
			add(d.Init)
		}
	case *Other:
		for _, c := range n.Children {
			add(c)
		}
	}
	return out
}
