package runtime

import (
	"context"

	"github.com/risor-io/risor/object"

	"github.com/jward/stylescope/internal/ast"
	"github.com/jward/stylescope/internal/detect"
	"github.com/jward/stylescope/internal/store"
)

// FileEnv exposes one parsed file to a rule script:
//
//	file_path, language, require_binding   strings
//	local_name(symbol)                     string or nil
//	is_styled(node_id [, include_iife])    bool
//	is_helper(kind, node_id)               bool; kind is a tag kind name, "any" or "pure"
//	classify(node_id)                      tag kind name, "none" when unrecognized
//	node_text(node_id)                     string
//	tags()                                 list of maps, one per tagged template
//	report(map)                            records a finding, returns its id
//
// Node ids are the ids assigned by the parser.
type FileEnv struct {
	file *ast.File
	dctx *detect.Context
	run  *detect.Run
	sink store.DataStore

	nodes map[ast.NodeID]ast.Node
}

// NewFileEnv builds the environment for f. sink receives reported findings
// and may be nil, in which case report fails.
func NewFileEnv(f *ast.File, dctx *detect.Context, run *detect.Run, sink store.DataStore) *FileEnv {
	nodes := make(map[ast.NodeID]ast.Node, f.NodeCount)
	ast.InspectFile(f, func(n ast.Node) bool {
		nodes[n.ID()] = n
		return true
	})
	return &FileEnv{file: f, dctx: dctx, run: run, sink: sink, nodes: nodes}
}

// Globals returns the script globals for the file.
func (e *FileEnv) Globals() map[string]any {
	return map[string]any{
		"file_path":       e.file.Path,
		"language":        e.file.Language,
		"require_binding": e.dctx.RequireBinding,
		"local_name":      e.localNameFn(),
		"is_styled":       e.isStyledFn(),
		"is_helper":       e.isHelperFn(),
		"classify":        e.classifyFn(),
		"node_text":       e.nodeTextFn(),
		"tags":            e.tagsFn(),
		"report":          makeReportFn(e.sink, e.file, e.nodes),
	}
}

// node resolves a node id argument.
func (e *FileEnv) node(fn string, arg object.Object) (ast.Node, *object.Error) {
	id, err := toInt64(arg)
	if err != nil {
		return nil, object.Errorf("%s: node id: %v", fn, err)
	}
	n, ok := e.nodes[ast.NodeID(id)]
	if !ok {
		return nil, object.Errorf("%s: no node with id %d", fn, id)
	}
	return n, nil
}

// localNameFn creates "local_name".
//
// local_name(symbol) → string or nil
func (e *FileEnv) localNameFn() *object.Builtin {
	return object.NewBuiltin("local_name", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("local_name", 1, len(args))
		}
		symbol, err := toString(args[0])
		if err != nil {
			return object.Errorf("local_name: %v", err)
		}
		name, ok := e.run.ResolveLocalName(symbol, e.dctx, false)
		if !ok {
			return object.Nil
		}
		return object.NewString(name)
	})
}

// isStyledFn creates "is_styled".
//
// is_styled(node_id [, include_iife]) → bool
func (e *FileEnv) isStyledFn() *object.Builtin {
	return object.NewBuiltin("is_styled", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) < 1 || len(args) > 2 {
			return object.NewArgsRangeError("is_styled", 1, 2, len(args))
		}
		n, errObj := e.node("is_styled", args[0])
		if errObj != nil {
			return errObj
		}
		includeIIFE := false
		if len(args) == 2 {
			b, ok := args[1].(*object.Bool)
			if !ok {
				return object.Errorf("is_styled: include_iife must be a bool, got %s", args[1].Type())
			}
			includeIIFE = b.Value()
		}
		return object.NewBool(e.run.IsStyledTag(n, e.dctx, includeIIFE))
	})
}

// isHelperFn creates "is_helper".
//
// is_helper(kind, node_id) → bool
func (e *FileEnv) isHelperFn() *object.Builtin {
	return object.NewBuiltin("is_helper", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 2 {
			return object.NewArgsError("is_helper", 2, len(args))
		}
		kind, err := toString(args[0])
		if err != nil {
			return object.Errorf("is_helper: %v", err)
		}
		n, errObj := e.node("is_helper", args[1])
		if errObj != nil {
			return errObj
		}
		switch kind {
		case "any":
			return object.NewBool(e.run.IsHelper(n, e.dctx))
		case "pure":
			return object.NewBool(e.run.IsPureHelper(n, e.dctx))
		}
		k, ok := detect.ParseTagKind(kind)
		if !ok {
			return object.Errorf("is_helper: unknown kind %q", kind)
		}
		return object.NewBool(e.run.IsTagKind(k, n, e.dctx))
	})
}

// classifyFn creates "classify".
//
// classify(node_id) → string
func (e *FileEnv) classifyFn() *object.Builtin {
	return object.NewBuiltin("classify", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("classify", 1, len(args))
		}
		n, errObj := e.node("classify", args[0])
		if errObj != nil {
			return errObj
		}
		return object.NewString(e.run.Classify(n, e.dctx).String())
	})
}

// nodeTextFn creates "node_text".
//
// node_text(node_id) → string
func (e *FileEnv) nodeTextFn() *object.Builtin {
	return object.NewBuiltin("node_text", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("node_text", 1, len(args))
		}
		n, errObj := e.node("node_text", args[0])
		if errObj != nil {
			return errObj
		}
		return object.NewString(e.file.Text(n))
	})
}

// tagsFn creates "tags".
//
// tags() → []map with keys id, tag_id, kind, tag_text, text, start_line,
// start_col, end_line, end_col
func (e *FileEnv) tagsFn() *object.Builtin {
	return object.NewBuiltin("tags", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 0 {
			return object.NewArgsError("tags", 0, len(args))
		}
		var results []object.Object
		for _, tt := range detect.TaggedTemplates(e.file) {
			if tt.Tag == nil {
				continue
			}
			sp := tt.Span()
			results = append(results, object.NewMap(map[string]object.Object{
				"id":         object.NewInt(int64(tt.ID())),
				"tag_id":     object.NewInt(int64(tt.Tag.ID())),
				"kind":       object.NewString(e.run.Classify(tt.Tag, e.dctx).String()),
				"tag_text":   object.NewString(e.file.Text(tt.Tag)),
				"text":       object.NewString(e.file.Text(tt)),
				"start_line": object.NewInt(int64(sp.StartLine)),
				"start_col":  object.NewInt(int64(sp.StartCol)),
				"end_line":   object.NewInt(int64(sp.EndLine)),
				"end_col":    object.NewInt(int64(sp.EndCol)),
			}))
		}
		if results == nil {
			results = []object.Object{}
		}
		return object.NewList(results)
	})
}
