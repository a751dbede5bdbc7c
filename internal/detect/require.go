package detect

import "github.com/jward/stylescope/internal/ast"

// FindRequireBinding returns the local name a top-level declaration binds
// the library to through require(), or "" when there is none:
//
//	const styled = require('styled-components')
//	var _sc = _interopRequireDefault(require('styled-components'))
//
// The last such declaration wins.
func FindRequireBinding(f *ast.File, reg *Registry) string {
	if f == nil {
		return ""
	}
	var name string
	for _, stmt := range f.Body {
		decl := topLevelDecl(stmt)
		if decl == nil {
			continue
		}
		for _, d := range decl.Declarators {
			if d.Simple && requiresLibrary(d.Init, reg) {
				name = d.Name
			}
		}
	}
	return name
}

// topLevelDecl unwraps export statements around a declaration.
func topLevelDecl(stmt ast.Node) *ast.VarDecl {
	switch n := stmt.(type) {
	case *ast.VarDecl:
		return n
	case *ast.Other:
		if n.Type != "export_statement" {
			return nil
		}
		for _, c := range n.Children {
			if d, ok := c.(*ast.VarDecl); ok {
				return d
			}
		}
	}
	return nil
}

// requiresLibrary reports whether init is require('<recognized path>'),
// optionally wrapped in a single-argument interop helper call.
func requiresLibrary(init ast.Node, reg *Registry) bool {
	call, ok := init.(*ast.Call)
	if !ok {
		return false
	}
	if isRequireOf(call, reg) {
		return true
	}
	if len(call.Args) != 1 {
		return false
	}
	inner, ok := call.Args[0].(*ast.Call)
	return ok && isRequireOf(inner, reg)
}

func isRequireOf(call *ast.Call, reg *Registry) bool {
	if !isIdent(call.Callee, "require") || len(call.Args) != 1 {
		return false
	}
	lit, ok := call.Args[0].(*ast.Other)
	return ok && lit.Type == "string" && reg.Contains(lit.Value)
}
