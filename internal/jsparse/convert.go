package jsparse

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/stylescope/internal/ast"
)

// converter lowers one tree-sitter tree. Node IDs come from its Builder, so
// a converter must not be reused across files.
type converter struct {
	src []byte
	b   ast.Builder
}

func span(n *sitter.Node) ast.Span {
	start, end := n.StartPoint(), n.EndPoint()
	return ast.Span{
		StartLine: int(start.Row) + 1,
		StartCol:  int(start.Column) + 1,
		EndLine:   int(end.Row) + 1,
		EndCol:    int(end.Column) + 1,
		StartByte: int(n.StartByte()),
		EndByte:   int(n.EndByte()),
	}
}

func (c *converter) text(n *sitter.Node) string {
	return n.Content(c.src)
}

func (c *converter) program(root *sitter.Node) *ast.File {
	f := &ast.File{}
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		if child.Type() == "import_statement" {
			imp := c.importDecl(child)
			f.Imports = append(f.Imports, imp)
			f.Body = append(f.Body, imp)
			continue
		}
		if n := c.convert(child); n != nil {
			f.Body = append(f.Body, n)
		}
	}
	return f
}

// convert lowers n. Comments lower to nil.
func (c *converter) convert(n *sitter.Node) ast.Node {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "comment":
		return nil

	case "parenthesized_expression":
		if inner := c.firstNamed(n); inner != nil {
			return c.convert(inner)
		}

	case "identifier", "shorthand_property_identifier":
		return c.b.Ident(span(n), c.text(n))

	case "member_expression":
		obj := c.convert(n.ChildByFieldName("object"))
		var prop string
		if p := n.ChildByFieldName("property"); p != nil {
			prop = c.text(p)
		}
		return c.b.Member(span(n), obj, prop)

	case "subscript_expression":
		obj := c.convert(n.ChildByFieldName("object"))
		index := c.convert(n.ChildByFieldName("index"))
		return c.b.ComputedMember(span(n), obj, index)

	case "call_expression":
		callee := c.convert(n.ChildByFieldName("function"))
		args := n.ChildByFieldName("arguments")
		if args != nil && args.Type() == "template_string" {
			return c.b.TaggedTemplate(span(n), callee, c.other(args))
		}
		return c.b.Call(span(n), callee, c.namedChildren(args)...)

	case "arrow_function":
		return c.arrow(n)

	case "lexical_declaration", "variable_declaration":
		return c.varDecl(n)

	case "import_statement":
		return c.importDecl(n)

	case "string":
		return c.b.String(span(n), unquote(c.text(n)))
	}
	return c.other(n)
}

func (c *converter) other(n *sitter.Node) *ast.Other {
	return c.b.Other(span(n), n.Type(), c.namedChildren(n)...)
}

func (c *converter) namedChildren(n *sitter.Node) []ast.Node {
	if n == nil {
		return nil
	}
	var out []ast.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if child := c.convert(n.NamedChild(i)); child != nil {
			out = append(out, child)
		}
	}
	return out
}

func (c *converter) firstNamed(n *sitter.Node) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if child := n.NamedChild(i); child.Type() != "comment" {
			return child
		}
	}
	return nil
}

func (c *converter) arrow(n *sitter.Node) *ast.ArrowFunc {
	var params []ast.Node
	if p := n.ChildByFieldName("parameters"); p != nil {
		params = c.namedChildren(p)
	} else if p := n.ChildByFieldName("parameter"); p != nil {
		params = []ast.Node{c.convert(p)}
	}

	body := n.ChildByFieldName("body")
	if body != nil && body.Type() == "statement_block" {
		return c.b.BlockArrow(span(n), params, c.namedChildren(body)...)
	}
	return c.b.ExprArrow(span(n), params, c.convert(body))
}

func (c *converter) varDecl(n *sitter.Node) *ast.VarDecl {
	kind := "var"
	if n.ChildCount() > 0 {
		kind = n.Child(0).Type()
	}

	var decls []*ast.Declarator
	for i := 0; i < int(n.NamedChildCount()); i++ {
		d := n.NamedChild(i)
		if d.Type() != "variable_declarator" {
			continue
		}
		decl := &ast.Declarator{}
		if name := d.ChildByFieldName("name"); name != nil {
			decl.Name = c.text(name)
			decl.Simple = name.Type() == "identifier"
		}
		if value := d.ChildByFieldName("value"); value != nil {
			decl.Init = c.convert(value)
		}
		decls = append(decls, decl)
	}
	return c.b.VarDecl(span(n), kind, decls...)
}

func (c *converter) importDecl(n *sitter.Node) *ast.ImportDecl {
	var source string
	if s := n.ChildByFieldName("source"); s != nil {
		source = unquote(c.text(s))
	}

	var specs []ast.Specifier
	for i := 0; i < int(n.NamedChildCount()); i++ {
		clause := n.NamedChild(i)
		if clause.Type() != "import_clause" {
			continue
		}
		for j := 0; j < int(clause.NamedChildCount()); j++ {
			part := clause.NamedChild(j)
			switch part.Type() {
			case "identifier":
				specs = append(specs, ast.Default(c.text(part)))
			case "namespace_import":
				if id := c.childOfType(part, "identifier"); id != nil {
					specs = append(specs, ast.Namespace(c.text(id)))
				}
			case "named_imports":
				specs = append(specs, c.namedImports(part)...)
			}
		}
	}
	return c.b.Import(span(n), source, specs...)
}

func (c *converter) namedImports(n *sitter.Node) []ast.Specifier {
	var specs []ast.Specifier
	for i := 0; i < int(n.NamedChildCount()); i++ {
		spec := n.NamedChild(i)
		if spec.Type() != "import_specifier" {
			continue
		}
		name := spec.ChildByFieldName("name")
		if name == nil {
			continue
		}
		imported := unquote(c.text(name))
		local := imported
		if alias := spec.ChildByFieldName("alias"); alias != nil {
			local = c.text(alias)
		}
		specs = append(specs, ast.Named(imported, local))
	}
	return specs
}

func (c *converter) childOfType(n *sitter.Node, typ string) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if child := n.NamedChild(i); child.Type() == typ {
			return child
		}
	}
	return nil
}

// unquote strips matching single, double or backtick quotes.
func unquote(s string) string {
	if len(s) >= 2 {
		q := s[0]
		if (q == '\'' || q == '"' || q == '`') && s[len(s)-1] == q {
			return s[1 : len(s)-1]
		}
	}
	return s
}
