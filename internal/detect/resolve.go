package detect

import "github.com/jward/stylescope/internal/ast"

// Exported symbol names of the styling library.
const (
	SymbolDefault           = "default"
	SymbolCSS               = "css"
	SymbolKeyframes         = "keyframes"
	SymbolWithTheme         = "withTheme"
	SymbolCreateGlobalStyle = "createGlobalStyle"
	SymbolInjectGlobal      = "injectGlobal"
)

// Symbols lists every symbol the resolver is queried for.
var Symbols = []string{
	SymbolDefault,
	SymbolCSS,
	SymbolKeyframes,
	SymbolWithTheme,
	SymbolCreateGlobalStyle,
	SymbolInjectGlobal,
}

// requiredLocalName is the name assumed for the main constructor when the
// library is bound through require().
const requiredLocalName = "styled"

// ResolveLocalName returns the local identifier bound to symbol in ctx's
// unit. ok is false when nothing binds it.
//
// Results are cached per (symbol, unit) for the lifetime of the run. With
// bypassCache the binding is recomputed and the cache entry overwritten.
func (r *Run) ResolveLocalName(symbol string, ctx *Context, bypassCache bool) (string, bool) {
	r.lookups.Add(1)

	key := bindingKey{symbol: symbol, unit: ctx.unitID()}
	if !bypassCache {
		if v, ok := r.bindings.Load(key); ok {
			b := v.(binding)
			return b.name, b.ok
		}
	}

	b := r.scanImports(symbol, ctx)
	r.bindings.Store(key, b)
	return b.name, b.ok
}

// scanImports applies the specifier rules to every qualifying import
// declaration. Later matches overwrite earlier ones and there is no early
// exit. The styled, default and namespace rules apply whatever symbol is
// being resolved.
func (r *Run) scanImports(symbol string, ctx *Context) binding {
	r.scans.Add(1)

	var b binding
	if ctx.requireBinding() != "" {
		b = binding{name: symbol, ok: true}
		if symbol == SymbolDefault {
			b.name = requiredLocalName
		}
	}
	if ctx == nil || ctx.Unit == nil {
		return b
	}

	ctx.Unit.WalkImports(func(decl *ast.ImportDecl) {
		if !ctx.Registry.Contains(decl.Source) {
			return
		}
		for _, spec := range decl.Specifiers {
			if spec.Kind == ast.SpecNamed && spec.Imported == requiredLocalName {
				b = binding{name: requiredLocalName, ok: true}
			}
			if spec.Kind == ast.SpecDefault {
				b = binding{name: spec.Local, ok: true}
			}
			if spec.Kind == ast.SpecNamed && spec.Imported == symbol {
				b = binding{name: spec.Local, ok: true}
			}
			if spec.Kind == ast.SpecNamespace {
				b = binding{name: spec.Local, ok: true}
			}
		}
	})
	return b
}
