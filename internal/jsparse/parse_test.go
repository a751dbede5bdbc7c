package jsparse

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/stylescope/internal/ast"
)

func parse(t *testing.T, path, src string) *ast.File {
	t.Helper()
	f, err := Parse(context.Background(), path, []byte(src))
	require.NoError(t, err)
	return f
}

// initOf returns the initializer of the first declarator of the first
// top-level declaration named name.
func initOf(t *testing.T, f *ast.File, name string) ast.Node {
	t.Helper()
	var found ast.Node
	ast.InspectFile(f, func(n ast.Node) bool {
		if d, ok := n.(*ast.VarDecl); ok && found == nil {
			for _, decl := range d.Declarators {
				if decl.Name == name {
					found = decl.Init
				}
			}
		}
		return true
	})
	require.NotNil(t, found, "declaration %s not found", name)
	return found
}

func TestLanguageForFile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want string
		ok   bool
	}{
		{"app.js", "javascript", true},
		{"app.jsx", "javascript", true},
		{"app.mjs", "javascript", true},
		{"app.cjs", "javascript", true},
		{"app.ts", "typescript", true},
		{"app.tsx", "tsx", true},
		{"path/to/App.JSX", "javascript", true},
		{"style.css", "", false},
		{"Makefile", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			got, ok := LanguageForFile(tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGrammarForLanguage(t *testing.T) {
	t.Parallel()
	for _, lang := range []string{"javascript", "typescript", "tsx"} {
		l, ok := GrammarForLanguage(lang)
		assert.True(t, ok, lang)
		assert.NotNil(t, l, lang)
	}
	_, ok := GrammarForLanguage("cobol")
	assert.False(t, ok)
}

func TestParse_UnsupportedExtension(t *testing.T) {
	t.Parallel()
	_, err := Parse(context.Background(), "a.css", []byte("a{}"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedLanguage))
}

func TestParse_ImportSpecifiers(t *testing.T) {
	t.Parallel()
	f := parse(t, "a.js", `import styled, { css as c, keyframes } from 'styled-components';
import * as sc from "styled-components/native";
import 'side-effect';
`)

	require.Len(t, f.Imports, 3)

	first := f.Imports[0]
	assert.Equal(t, "styled-components", first.Source)
	assert.Equal(t, []ast.Specifier{
		ast.Default("styled"),
		ast.Named("css", "c"),
		ast.Named("keyframes", "keyframes"),
	}, first.Specifiers)

	assert.Equal(t, "styled-components/native", f.Imports[1].Source)
	assert.Equal(t, []ast.Specifier{ast.Namespace("sc")}, f.Imports[1].Specifiers)

	assert.Equal(t, "side-effect", f.Imports[2].Source)
	assert.Empty(t, f.Imports[2].Specifiers)
}

func TestParse_TaggedTemplateAndChains(t *testing.T) {
	t.Parallel()
	f := parse(t, "a.js", "const Foo = styled.div.attrs({ id: 1 })`color: red;`;\n")

	init := initOf(t, f, "Foo")
	tt, ok := init.(*ast.TaggedTemplate)
	require.True(t, ok, "got %T", init)

	call, ok := tt.Tag.(*ast.Call)
	require.True(t, ok)
	require.Len(t, call.Args, 1)

	attrs, ok := call.Callee.(*ast.Member)
	require.True(t, ok)
	assert.Equal(t, "attrs", attrs.Property)

	div, ok := attrs.Object.(*ast.Member)
	require.True(t, ok)
	assert.Equal(t, "div", div.Property)
	assert.Equal(t, "styled", div.Object.(*ast.Ident).Name)

	assert.Equal(t, "styled.div.attrs({ id: 1 })`color: red;`", f.Text(tt))
	assert.Equal(t, 1, tt.Span().StartLine)
	assert.Equal(t, 13, tt.Span().StartCol)
}

func TestParse_ComputedMember(t *testing.T) {
	t.Parallel()
	f := parse(t, "a.js", "const x = sc['default'].div;\n")

	m := initOf(t, f, "x").(*ast.Member)
	inner, ok := m.Object.(*ast.Member)
	require.True(t, ok)
	assert.True(t, inner.Computed)
	assert.Empty(t, inner.Property)
	assert.Equal(t, "default", inner.Index.(*ast.Other).Value)
}

func TestParse_ArrowIIFEIsUnparenthesized(t *testing.T) {
	t.Parallel()
	f := parse(t, "a.js", `const Wrapped = (() => {
  var _x = styled.div({});
  _x.displayName = "X";
  return _x;
})();
`)

	call, ok := initOf(t, f, "Wrapped").(*ast.Call)
	require.True(t, ok)
	arrow, ok := call.Callee.(*ast.ArrowFunc)
	require.True(t, ok, "parentheses are dropped, got %T", call.Callee)
	require.True(t, arrow.HasBlockBody())
	require.Len(t, arrow.Body, 3)

	decl, ok := arrow.Body[0].(*ast.VarDecl)
	require.True(t, ok)
	assert.Equal(t, "var", decl.DeclKind)
	require.Len(t, decl.Declarators, 1)
	assert.Equal(t, "_x", decl.Declarators[0].Name)
	assert.IsType(t, &ast.Call{}, decl.Declarators[0].Init)
}

func TestParse_ExpressionArrow(t *testing.T) {
	t.Parallel()
	f := parse(t, "a.js", "const f = x => x.y;\n")

	arrow := initOf(t, f, "f").(*ast.ArrowFunc)
	assert.False(t, arrow.HasBlockBody())
	assert.Len(t, arrow.Params, 1)
	assert.IsType(t, &ast.Member{}, arrow.Expr)
}

func TestParse_RequireDeclaration(t *testing.T) {
	t.Parallel()
	f := parse(t, "a.js", "const { css } = require('styled-components');\nlet sc = require(\"styled-components\");\n")

	require.Len(t, f.Body, 2)
	first := f.Body[0].(*ast.VarDecl)
	assert.Equal(t, "const", first.DeclKind)
	assert.False(t, first.Declarators[0].Simple)

	second := f.Body[1].(*ast.VarDecl)
	assert.Equal(t, "let", second.DeclKind)
	assert.True(t, second.Declarators[0].Simple)
	call := second.Declarators[0].Init.(*ast.Call)
	assert.Equal(t, "require", call.Callee.(*ast.Ident).Name)
	assert.Equal(t, "styled-components", call.Args[0].(*ast.Other).Value)
}

func TestParse_TypeScriptGenerics(t *testing.T) {
	t.Parallel()
	f := parse(t, "a.ts", `import styled from 'styled-components';
type Props = { active: boolean };
export const Button = styled.button<Props>`+"`color: red;`"+`;
`)

	require.Len(t, f.Imports, 1)
	assert.Equal(t, "typescript", f.Language)

	tt, ok := initOf(t, f, "Button").(*ast.TaggedTemplate)
	require.True(t, ok)
	m, ok := tt.Tag.(*ast.Member)
	require.True(t, ok)
	assert.Equal(t, "button", m.Property)
}

func TestParse_TSXComponent(t *testing.T) {
	t.Parallel()
	f := parse(t, "a.tsx", `import styled from 'styled-components';
export const Title = styled.h1`+"`font-size: 2em;`"+`;
export const App = () => <Title>hello</Title>;
`)

	assert.Equal(t, "tsx", f.Language)
	require.Len(t, f.Imports, 1)
	assert.IsType(t, &ast.TaggedTemplate{}, initOf(t, f, "Title"))
	assert.IsType(t, &ast.ArrowFunc{}, initOf(t, f, "App"))
}

func TestParse_NodeIDsAreUnique(t *testing.T) {
	t.Parallel()
	f := parse(t, "a.js", "import styled from 'styled-components';\nconst A = styled.a``;\nconst B = styled.b``;\n")

	seen := map[ast.NodeID]bool{}
	ast.InspectFile(f, func(n ast.Node) bool {
		assert.False(t, seen[n.ID()], "duplicate id %d", n.ID())
		seen[n.ID()] = true
		return true
	})
	assert.Equal(t, f.NodeCount, len(seen))
}

func TestParseFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "a.jsx")
	require.NoError(t, os.WriteFile(path, []byte("import styled from 'styled-components';\n"), 0o644))

	f, err := ParseFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, path, f.ID())
	assert.Equal(t, "javascript", f.Language)

	_, err = ParseFile(context.Background(), filepath.Join(t.TempDir(), "missing.js"))
	assert.Error(t, err)
}

func TestUnquote(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "a", unquote(`'a'`))
	assert.Equal(t, "a", unquote(`"a"`))
	assert.Equal(t, "a", unquote("`a`"))
	assert.Equal(t, `'a"`, unquote(`'a"`))
	assert.Equal(t, "", unquote(`''`))
	assert.Equal(t, "x", unquote("x"))
}
