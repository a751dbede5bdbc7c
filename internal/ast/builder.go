package ast

// Builder constructs nodes and hands out NodeIDs in construction order.
// One Builder is used per File.
type Builder struct {
	next NodeID
}

func (b *Builder) base(sp Span) base {
	b.next++
	return base{id: b.next, span: sp}
}

// Count returns the number of nodes built so far.
func (b *Builder) Count() int { return int(b.next) }

func (b *Builder) Ident(sp Span, name string) *Ident {
	return &Ident{base: b.base(sp), Name: name}
}

func (b *Builder) Member(sp Span, obj Node, prop string) *Member {
	return &Member{base: b.base(sp), Object: obj, Property: prop}
}

// ComputedMember builds obj[index].
func (b *Builder) ComputedMember(sp Span, obj, index Node) *Member {
	return &Member{base: b.base(sp), Object: obj, Computed: true, Index: index}
}

func (b *Builder) Call(sp Span, callee Node, args ...Node) *Call {
	return &Call{base: b.base(sp), Callee: callee, Args: args}
}

func (b *Builder) TaggedTemplate(sp Span, tag, quasi Node) *TaggedTemplate {
	return &TaggedTemplate{base: b.base(sp), Tag: tag, Quasi: quasi}
}

// BlockArrow builds an arrow function with a statement block body.
func (b *Builder) BlockArrow(sp Span, params []Node, body ...Node) *ArrowFunc {
	if body == nil {
		body = []Node{}
	}
	return &ArrowFunc{base: b.base(sp), Params: params, Body: body}
}

// ExprArrow builds an arrow function with an expression body.
func (b *Builder) ExprArrow(sp Span, params []Node, expr Node) *ArrowFunc {
	return &ArrowFunc{base: b.base(sp), Params: params, Expr: expr}
}

func (b *Builder) VarDecl(sp Span, kind string, decls ...*Declarator) *VarDecl {
	return &VarDecl{base: b.base(sp), DeclKind: kind, Declarators: decls}
}

func (b *Builder) Import(sp Span, source string, specs ...Specifier) *ImportDecl {
	return &ImportDecl{base: b.base(sp), Source: source, Specifiers: specs}
}

func (b *Builder) Other(sp Span, typ string, children ...Node) *Other {
	return &Other{base: b.base(sp), Type: typ, Children: children}
}

// String builds a string literal with its unquoted value.
func (b *Builder) String(sp Span, value string) *Other {
	return &Other{base: b.base(sp), Type: "string", Value: value}
}

// Named returns a named import specifier: { imported as local }.
func Named(imported, local string) Specifier {
	return Specifier{Kind: SpecNamed, Imported: imported, Local: local}
}

// Default returns a default import specifier.
func Default(local string) Specifier {
	return Specifier{Kind: SpecDefault, Local: local}
}

// Namespace returns a namespace import specifier: * as local.
func Namespace(local string) Specifier {
	return Specifier{Kind: SpecNamespace, Local: local}
}
