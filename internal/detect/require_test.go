package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jward/stylescope/internal/ast"
)

func TestFindRequireBinding(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		build func(u *unit) []ast.Node
		want  string
	}{
		{"plain require", func(u *unit) []ast.Node {
			return []ast.Node{u.constDecl("sc", u.call(u.id("require"), u.str("styled-components")))}
		}, "sc"},
		{"interop wrapper", func(u *unit) []ast.Node {
			req := u.call(u.id("require"), u.str("styled-components/native"))
			return []ast.Node{u.constDecl("_sc", u.call(u.id("_interopRequireDefault"), req))}
		}, "_sc"},
		{"exported", func(u *unit) []ast.Node {
			decl := u.constDecl("sc", u.call(u.id("require"), u.str("styled-components")))
			return []ast.Node{u.b.Other(ast.Span{}, "export_statement", decl)}
		}, "sc"},
		{"other module", func(u *unit) []ast.Node {
			return []ast.Node{u.constDecl("r", u.call(u.id("require"), u.str("react")))}
		}, ""},
		{"not require", func(u *unit) []ast.Node {
			return []ast.Node{u.constDecl("sc", u.call(u.id("load"), u.str("styled-components")))}
		}, ""},
		{"destructured", func(u *unit) []ast.Node {
			init := u.call(u.id("require"), u.str("styled-components"))
			return []ast.Node{u.b.VarDecl(ast.Span{}, "const", &ast.Declarator{Name: "{ css }", Init: init})}
		}, ""},
		{"last wins", func(u *unit) []ast.Node {
			return []ast.Node{
				u.constDecl("a", u.call(u.id("require"), u.str("styled-components"))),
				u.constDecl("b", u.call(u.id("require"), u.str("styled-components"))),
			}
		}, "b"},
		{"nested scope ignored", func(u *unit) []ast.Node {
			decl := u.constDecl("sc", u.call(u.id("require"), u.str("styled-components")))
			return []ast.Node{u.b.Other(ast.Span{}, "function_declaration", decl)}
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			u := newUnit("a.js")
			u.file.Body = tt.build(u)
			assert.Equal(t, tt.want, FindRequireBinding(u.file, NewRegistry()))
		})
	}
}

func TestFindRequireBinding_NilFile(t *testing.T) {
	t.Parallel()
	assert.Empty(t, FindRequireBinding(nil, nil))
}

func TestNewContext_DetectsRequireBinding(t *testing.T) {
	t.Parallel()
	u := newUnit("a.js")
	u.file.Body = []ast.Node{u.constDecl("sc", u.call(u.id("require"), u.str("@acme/styled")))}

	ctx := NewContext(u.file, NewRegistry("@acme/styled"))
	assert.Equal(t, "sc", ctx.RequireBinding)
	assert.Equal(t, "a.js", ctx.Unit.ID())
}
