package runtime

import (
	"context"
	"fmt"

	"github.com/risor-io/risor/object"

	"github.com/jward/stylescope/internal/ast"
	"github.com/jward/stylescope/internal/store"
)

// DefaultReportKind is the finding kind used when a report omits one.
const DefaultReportKind = "rule"

// makeReportFn creates the "report" host function. Risor scripts cannot
// construct Go struct pointers, so it accepts a map with primitive values
// and builds the Finding on the Go side.
//
// report({kind?, message, node_id? | start_line, start_col, end_line, end_col}) → int
//
// With node_id the position is taken from that node, and so is the text
// unless the report gives one.
func makeReportFn(sink store.DataStore, file *ast.File, nodes map[ast.NodeID]ast.Node) *object.Builtin {
	return object.NewBuiltin("report", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("report", 1, len(args))
		}
		if sink == nil {
			return object.Errorf("report: no finding sink configured")
		}
		m, err := extractMap(args[0])
		if err != nil {
			return object.Errorf("report: %v", err)
		}

		f := &store.Finding{
			Kind:      getStringDefault(m, "kind", DefaultReportKind),
			Message:   getString(m, "message"),
			Text:      getString(m, "text"),
			StartLine: getInt(m, "start_line"),
			StartCol:  getInt(m, "start_col"),
			EndLine:   getInt(m, "end_line"),
			EndCol:    getInt(m, "end_col"),
		}
		if f.Message == "" {
			return object.Errorf("report: message is required")
		}
		if id, ok := getOptionalInt64(m, "node_id"); ok {
			n, ok := nodes[ast.NodeID(id)]
			if !ok {
				return object.Errorf("report: no node with id %d", id)
			}
			sp := n.Span()
			f.StartLine, f.StartCol, f.EndLine, f.EndCol = sp.StartLine, sp.StartCol, sp.EndLine, sp.EndCol
			if f.Text == "" {
				f.Text = file.Text(n)
			}
		}

		id, insertErr := sink.InsertFinding(f)
		if insertErr != nil {
			return object.Errorf("report: %v", insertErr)
		}
		return object.NewInt(id)
	})
}

func extractMap(obj object.Object) (map[string]object.Object, error) {
	m, ok := obj.(*object.Map)
	if !ok {
		return nil, fmt.Errorf("expected map, got %s", obj.Type())
	}
	return m.Value(), nil
}

func getString(m map[string]object.Object, key string) string {
	v, ok := m[key]
	if !ok {
		return ""
	}
	if s, ok := v.(*object.String); ok {
		return s.Value()
	}
	return ""
}

func getStringDefault(m map[string]object.Object, key, def string) string {
	v := getString(m, key)
	if v == "" {
		return def
	}
	return v
}

func getInt(m map[string]object.Object, key string) int {
	v, ok := m[key]
	if !ok {
		return 0
	}
	if i, ok := v.(*object.Int); ok {
		return int(i.Value())
	}
	if f, ok := v.(*object.Float); ok {
		return int(f.Value())
	}
	return 0
}

func getOptionalInt64(m map[string]object.Object, key string) (int64, bool) {
	v, ok := m[key]
	if !ok || v == nil {
		return 0, false
	}
	if _, ok := v.(*object.NilType); ok {
		return 0, false
	}
	if i, ok := v.(*object.Int); ok {
		return i.Value(), true
	}
	if f, ok := v.(*object.Float); ok {
		return int64(f.Value()), true
	}
	return 0, false
}

func toInt64(obj object.Object) (int64, error) {
	if i, ok := obj.(*object.Int); ok {
		return i.Value(), nil
	}
	if f, ok := obj.(*object.Float); ok {
		return int64(f.Value()), nil
	}
	return 0, fmt.Errorf("expected int, got %s", obj.Type())
}

func toString(obj object.Object) (string, error) {
	if s, ok := obj.(*object.String); ok {
		return s.Value(), nil
	}
	return "", fmt.Errorf("expected string, got %s", obj.Type())
}
