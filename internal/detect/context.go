package detect

import "github.com/jward/stylescope/internal/ast"

// Unit is the compilation unit a query runs against. *ast.File satisfies it.
type Unit interface {
	// ID is the stable file identity used to partition run state.
	ID() string
	// WalkImports visits each top-level import declaration exactly once,
	// in declaration order.
	WalkImports(fn func(*ast.ImportDecl))
}

var _ Unit = (*ast.File)(nil)

// Context is the per-query state: which unit is being analyzed, the local
// name bound by a require-style import of the library (set upstream by
// FindRequireBinding, empty when none), and the recognized import paths.
type Context struct {
	Unit           Unit
	RequireBinding string
	Registry       *Registry
}

// NewContext returns a Context for f with the given registry. The
// require-style binding is detected from f.
func NewContext(f *ast.File, reg *Registry) *Context {
	return &Context{
		Unit:           f,
		RequireBinding: FindRequireBinding(f, reg),
		Registry:       reg,
	}
}

func (c *Context) unitID() string {
	if c == nil || c.Unit == nil {
		return ""
	}
	return c.Unit.ID()
}

func (c *Context) requireBinding() string {
	if c == nil {
		return ""
	}
	return c.RequireBinding
}
