package detect

import "github.com/jward/stylescope/internal/ast"

// TagKind enumerates the library tag constructors.
type TagKind uint8

const (
	TagNone TagKind = iota
	TagStyled
	TagCSS
	TagKeyframes
	TagWithTheme
	TagCreateGlobalStyle
	TagInjectGlobal
)

var tagKindInfo = [...]struct {
	name   string
	symbol string
}{
	TagNone:              {"none", ""},
	TagStyled:            {"styled", SymbolDefault},
	TagCSS:               {"css", SymbolCSS},
	TagKeyframes:         {"keyframes", SymbolKeyframes},
	TagWithTheme:         {"withTheme", SymbolWithTheme},
	TagCreateGlobalStyle: {"createGlobalStyle", SymbolCreateGlobalStyle},
	TagInjectGlobal:      {"injectGlobal", SymbolInjectGlobal},
}

func (k TagKind) String() string {
	if int(k) < len(tagKindInfo) {
		return tagKindInfo[k].name
	}
	return "unknown"
}

// Symbol returns the exported library symbol the kind is bound to.
func (k TagKind) Symbol() string {
	if int(k) < len(tagKindInfo) {
		return tagKindInfo[k].symbol
	}
	return ""
}

// ParseTagKind maps a kind name back to its TagKind.
func ParseTagKind(s string) (TagKind, bool) {
	for k, info := range tagKindInfo {
		if TagKind(k) != TagNone && info.name == s {
			return TagKind(k), true
		}
	}
	return TagNone, false
}

var (
	// HelperKinds are the helpers that build style fragments.
	HelperKinds = []TagKind{TagCSS, TagKeyframes, TagWithTheme}
	// PureHelperKinds are the helpers whose calls can be marked pure.
	PureHelperKinds = []TagKind{TagCSS, TagKeyframes, TagCreateGlobalStyle, TagWithTheme}

	// classifyOrder is the order Classify tests helper kinds in.
	classifyOrder = []TagKind{TagCSS, TagKeyframes, TagCreateGlobalStyle, TagInjectGlobal, TagWithTheme}
)

// IsStyledTag reports whether node is the main tag constructor or a chain
// built from it: styled.div, styled(Comp), styled.div.attrs({}), and the
// require-style spellings sc.default.div and sc.default(Comp).
//
// With includeIIFE, an arrow function wrapping the constructor call in its
// first variable declaration (as emitted by the pure-annotation pass) is
// seen through.
//
// Positive results are memoized for the rest of the run regardless of
// includeIIFE. Negative results are never cached.
func (r *Run) IsStyledTag(node ast.Node, ctx *Context, includeIIFE bool) bool {
	return r.isStyled(node, ctx, includeIIFE, false)
}

// isStyled carries peeled, set once the walk has descended from a call
// through its callee.
func (r *Run) isStyled(node ast.Node, ctx *Context, includeIIFE, peeled bool) bool {
	if node == nil {
		return false
	}

	if includeIIFE {
		if callee := wrappedCallee(node); callee != nil && r.isStyled(callee, ctx, false, false) {
			return true
		}
	}

	if call, ok := node.(*ast.Call); ok {
		switch callee := call.Callee.(type) {
		case *ast.Member:
			// sc.default(...) is matched below, not peeled.
			if callee.Property != "default" {
				return r.isStyled(callee.Object, ctx, false, true)
			}
		case *ast.Call:
			return r.isStyled(callee, ctx, false, true)
		}
	}

	if r.Memoized(node, ctx) {
		return true
	}

	if r.matchesStyled(node, ctx, peeled) {
		r.remember(node, ctx)
		return true
	}
	return false
}

func (r *Run) matchesStyled(node ast.Node, ctx *Context, peeled bool) bool {
	local, bound := r.ResolveLocalName(SymbolDefault, ctx, false)
	req := ctx.requireBinding()

	switch n := node.(type) {
	case *ast.Member:
		if bound && isIdent(n.Object, local) {
			return true
		}
		if req == "" {
			return false
		}
		if inner, ok := n.Object.(*ast.Member); ok && isDefaultOf(inner, req) {
			return true
		}
		return peeled && isDefaultOf(n, req)
	case *ast.Call:
		if bound && isIdent(n.Callee, local) {
			return true
		}
		if req == "" {
			return false
		}
		m, ok := n.Callee.(*ast.Member)
		return ok && isDefaultOf(m, req)
	}
	return false
}

// wrappedCallee returns the callee of the call initializing the first
// declarator of an arrow function's first statement, or nil when the node
// does not have that shape. Both the arrow itself and an immediate
// invocation of it are accepted.
func wrappedCallee(node ast.Node) ast.Node {
	if call, ok := node.(*ast.Call); ok {
		node = call.Callee
	}
	arrow, ok := node.(*ast.ArrowFunc)
	if !ok || !arrow.HasBlockBody() || len(arrow.Body) == 0 {
		return nil
	}
	decl, ok := arrow.Body[0].(*ast.VarDecl)
	if !ok || len(decl.Declarators) == 0 {
		return nil
	}
	init, ok := decl.Declarators[0].Init.(*ast.Call)
	if !ok {
		return nil
	}
	return init.Callee
}

// isDefaultOf reports whether m is <name>.default.
func isDefaultOf(m *ast.Member, name string) bool {
	return !m.Computed && m.Property == "default" && isIdent(m.Object, name)
}

func isIdent(n ast.Node, name string) bool {
	id, ok := n.(*ast.Ident)
	return ok && id.Name == name
}

// isHelper reports whether node is an identifier bound to symbol.
func (r *Run) isHelper(node ast.Node, ctx *Context, symbol string) bool {
	id, ok := node.(*ast.Ident)
	if !ok {
		return false
	}
	local, bound := r.ResolveLocalName(symbol, ctx, false)
	return bound && id.Name == local
}

// IsCSSHelper reports whether node is the identifier bound to css.
func (r *Run) IsCSSHelper(node ast.Node, ctx *Context) bool {
	return r.isHelper(node, ctx, SymbolCSS)
}

// IsCreateGlobalStyleHelper reports whether node is the identifier bound to createGlobalStyle.
func (r *Run) IsCreateGlobalStyleHelper(node ast.Node, ctx *Context) bool {
	return r.isHelper(node, ctx, SymbolCreateGlobalStyle)
}

// IsInjectGlobalHelper reports whether node is the identifier bound to injectGlobal.
func (r *Run) IsInjectGlobalHelper(node ast.Node, ctx *Context) bool {
	return r.isHelper(node, ctx, SymbolInjectGlobal)
}

// IsKeyframesHelper reports whether node is the identifier bound to keyframes.
func (r *Run) IsKeyframesHelper(node ast.Node, ctx *Context) bool {
	return r.isHelper(node, ctx, SymbolKeyframes)
}

// IsWithThemeHelper reports whether node is the identifier bound to withTheme.
func (r *Run) IsWithThemeHelper(node ast.Node, ctx *Context) bool {
	return r.isHelper(node, ctx, SymbolWithTheme)
}

// IsTagKind reports whether node denotes a constructor of the given kind.
// TagStyled is tested without IIFE unwrapping.
func (r *Run) IsTagKind(kind TagKind, node ast.Node, ctx *Context) bool {
	switch kind {
	case TagStyled:
		return r.IsStyledTag(node, ctx, false)
	case TagNone:
		return false
	}
	return r.isHelper(node, ctx, kind.Symbol())
}

// IsAnyTagKind reports whether node denotes any of kinds.
func (r *Run) IsAnyTagKind(kinds []TagKind, node ast.Node, ctx *Context) bool {
	for _, k := range kinds {
		if r.IsTagKind(k, node, ctx) {
			return true
		}
	}
	return false
}

// IsHelper reports whether node is the css, keyframes or withTheme helper.
func (r *Run) IsHelper(node ast.Node, ctx *Context) bool {
	return r.IsAnyTagKind(HelperKinds, node, ctx)
}

// IsPureHelper reports whether node is the css, keyframes,
// createGlobalStyle or withTheme helper.
func (r *Run) IsPureHelper(node ast.Node, ctx *Context) bool {
	return r.IsAnyTagKind(PureHelperKinds, node, ctx)
}

// Classify returns the kind of constructor node denotes, testing the main
// constructor first. Arrow functions are tested with IIFE unwrapping.
func (r *Run) Classify(node ast.Node, ctx *Context) TagKind {
	if node == nil {
		return TagNone
	}
	_, arrow := node.(*ast.ArrowFunc)
	if r.IsStyledTag(node, ctx, arrow) {
		return TagStyled
	}
	for _, k := range classifyOrder {
		if r.isHelper(node, ctx, k.Symbol()) {
			return k
		}
	}
	return TagNone
}
