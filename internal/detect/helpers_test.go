package detect

import "github.com/jward/stylescope/internal/ast"

// unit builds a file for tests. Nodes for one file must come from the same
// builder so their IDs are distinct.
type unit struct {
	b    ast.Builder
	file *ast.File
}

func newUnit(path string) *unit {
	return &unit{file: &ast.File{Path: path}}
}

func (u *unit) imports(source string, specs ...ast.Specifier) *unit {
	u.file.Imports = append(u.file.Imports, u.b.Import(ast.Span{}, source, specs...))
	return u
}

func (u *unit) ctx(reg *Registry) *Context {
	return &Context{Unit: u.file, Registry: reg}
}

func (u *unit) id(name string) *ast.Ident {
	return u.b.Ident(ast.Span{}, name)
}

func (u *unit) member(obj ast.Node, prop string) *ast.Member {
	return u.b.Member(ast.Span{}, obj, prop)
}

func (u *unit) call(callee ast.Node, args ...ast.Node) *ast.Call {
	return u.b.Call(ast.Span{}, callee, args...)
}

func (u *unit) object() ast.Node {
	return u.b.Other(ast.Span{}, "object")
}

func (u *unit) str(v string) ast.Node {
	return u.b.String(ast.Span{}, v)
}

// path builds a member chain: path("styled", "div", "attrs") is
// styled.div.attrs.
func (u *unit) path(root string, props ...string) ast.Node {
	var n ast.Node = u.id(root)
	for _, p := range props {
		n = u.member(n, p)
	}
	return n
}

func (u *unit) constDecl(name string, init ast.Node) *ast.VarDecl {
	return u.b.VarDecl(ast.Span{}, "const", &ast.Declarator{Name: name, Simple: true, Init: init})
}
