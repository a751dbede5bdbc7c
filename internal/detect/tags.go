package detect

import "github.com/jward/stylescope/internal/ast"

// Tag is one occurrence of a library constructor in a file.
type Tag struct {
	// Node is the tagged template or call expression.
	Node ast.Node
	// Tag is the classified tag or callee of Node, or Node itself for a
	// constructor call such as styled(Comp).
	Tag  ast.Node
	Kind TagKind
}

// FindTags classifies the tag of every tagged template and every call in
// f, in source order. A call is the main constructor itself or is
// classified by its callee. The tag or callee of a match is not
// searched further; its template or arguments are.
func (r *Run) FindTags(f *ast.File, ctx *Context) []Tag {
	var out []Tag
	var visit func(n ast.Node) bool
	visit = func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.TaggedTemplate:
			if k := r.Classify(n.Tag, ctx); k != TagNone {
				out = append(out, Tag{Node: n, Tag: n.Tag, Kind: k})
				ast.Inspect(n.Quasi, visit)
				return false
			}
		case *ast.Call:
			tag, k := n.Callee, r.Classify(n.Callee, ctx)
			// styled(Comp) matches as a call; its bare callee may resolve
			// to a helper.
			if k != TagStyled && r.IsStyledTag(n, ctx, false) {
				tag, k = n, TagStyled
			}
			if k != TagNone {
				out = append(out, Tag{Node: n, Tag: tag, Kind: k})
				for _, arg := range n.Args {
					ast.Inspect(arg, visit)
				}
				return false
			}
		}
		return true
	}
	ast.InspectFile(f, visit)
	return out
}

// TaggedTemplates returns every tagged template in f in source order,
// whether or not its tag is recognized.
func TaggedTemplates(f *ast.File) []*ast.TaggedTemplate {
	var out []*ast.TaggedTemplate
	ast.InspectFile(f, func(n ast.Node) bool {
		if tt, ok := n.(*ast.TaggedTemplate); ok {
			out = append(out, tt)
		}
		return true
	})
	return out
}
