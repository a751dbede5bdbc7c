// Package ast is the small syntax model the detectors work on. It covers the
// closed set of node kinds the style detectors inspect (identifiers, member
// and call expressions, tagged templates, arrow functions, variable and
// import declarations). Anything else is kept as an Other node so walks can
// still reach nested expressions.
//
// Every node carries a NodeID assigned by a Builder at parse time. IDs are
// unique within one File and are the key used by memoization, so detection
// state never depends on pointer identity.
package ast

// NodeID identifies a node within its File.
type NodeID int32

// Kind enumerates the node variants.
type Kind uint8

const (
	KindOther Kind = iota
	KindIdent
	KindMember
	KindCall
	KindTaggedTemplate
	KindArrowFunc
	KindVarDecl
	KindImportDecl
)

var kindNames = [...]string{
	KindOther:          "other",
	KindIdent:          "identifier",
	KindMember:         "member_expression",
	KindCall:           "call_expression",
	KindTaggedTemplate: "tagged_template",
	KindArrowFunc:      "arrow_function",
	KindVarDecl:        "variable_declaration",
	KindImportDecl:     "import_declaration",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Span is a source range. Lines and columns are 1-based; bytes are offsets
// into the file's source.
type Span struct {
	StartLine, StartCol int
	EndLine, EndCol     int
	StartByte, EndByte  int
}

// Node is implemented by every variant in this package.
type Node interface {
	ID() NodeID
	Kind() Kind
	Span() Span
}

// base carries the fields every node shares.
type base struct {
	id   NodeID
	span Span
}

func (b *base) ID() NodeID { return b.id }
func (b *base) Span() Span { return b.span }

// Ident is a plain identifier reference.
type Ident struct {
	base
	Name string
}

func (*Ident) Kind() Kind { return KindIdent }

// Member is obj.prop, or obj[expr] when Computed is set. Property is empty
// for computed accesses; the index expression is kept in Index.
type Member struct {
	base
	Object   Node
	Property string
	Computed bool
	Index    Node
}

func (*Member) Kind() Kind { return KindMember }

// Call is callee(args...).
type Call struct {
	base
	Callee Node
	Args   []Node
}

func (*Call) Kind() Kind { return KindCall }

// TaggedTemplate is tag`...`.
type TaggedTemplate struct {
	base
	Tag   Node
	Quasi Node
}

func (*TaggedTemplate) Kind() Kind { return KindTaggedTemplate }

// ArrowFunc is an arrow function. Block-bodied arrows populate Body;
// expression-bodied arrows populate Expr.
type ArrowFunc struct {
	base
	Params []Node
	Body   []Node
	Expr   Node
}

func (*ArrowFunc) Kind() Kind { return KindArrowFunc }

// HasBlockBody reports whether the arrow has a statement block body.
func (a *ArrowFunc) HasBlockBody() bool { return a.Expr == nil }

// Declarator is one binding of a variable declaration. Name is the source
// text of the binding target, which may be a destructuring pattern.
type Declarator struct {
	Name   string
	Simple bool // Name is a plain identifier
	Init   Node
}

// VarDecl is a const, let or var declaration.
type VarDecl struct {
	base
	DeclKind    string
	Declarators []*Declarator
}

func (*VarDecl) Kind() Kind { return KindVarDecl }

// SpecKind enumerates import specifier kinds.
type SpecKind uint8

const (
	SpecDefault SpecKind = iota
	SpecNamed
	SpecNamespace
)

func (k SpecKind) String() string {
	switch k {
	case SpecDefault:
		return "default"
	case SpecNamed:
		return "named"
	case SpecNamespace:
		return "namespace"
	}
	return "unknown"
}

// Specifier is one binding clause of an import declaration. Imported is
// only meaningful for SpecNamed.
type Specifier struct {
	Kind     SpecKind
	Imported string
	Local    string
}

// ImportDecl is a top-level import declaration.
type ImportDecl struct {
	base
	Source     string
	Specifiers []Specifier
}

func (*ImportDecl) Kind() Kind { return KindImportDecl }

// Other is any node outside the closed set. Type is the parser's node type.
// Value holds the unquoted content of string literals.
type Other struct {
	base
	Type     string
	Value    string
	Children []Node
}

func (*Other) Kind() Kind { return KindOther }

// File is one parsed compilation unit.
type File struct {
	Path      string
	Language  string
	Source    []byte
	Imports   []*ImportDecl
	Body      []Node
	NodeCount int
}

// ID returns the unit identity used to partition detection state.
func (f *File) ID() string { return f.Path }

// WalkImports calls fn once for each top-level import declaration, in
// declaration order.
func (f *File) WalkImports(fn func(*ImportDecl)) {
	for _, imp := range f.Imports {
		fn(imp)
	}
}

// Text returns the source text covered by n.
func (f *File) Text(n Node) string {
	sp := n.Span()
	if sp.StartByte < 0 || sp.EndByte > len(f.Source) || sp.StartByte > sp.EndByte {
		return ""
	}
	return string(f.Source[sp.StartByte:sp.EndByte])
}
