package runtime

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/stylescope/internal/ast"
	"github.com/jward/stylescope/internal/detect"
	"github.com/jward/stylescope/internal/jsparse"
	"github.com/jward/stylescope/internal/store"
)

const buttonSource = "import styled, { css as c } from 'styled-components';\n" +
	"const mixin = c`color: red;`;\n" +
	"export const Button = styled.button`${mixin}`;\n" +
	"const page = html`<p></p>`;\n"

// newEnv parses src and returns a FileEnv writing to a fresh batch.
func newEnv(t *testing.T, path, src string) (*FileEnv, *store.BatchedStore) {
	t.Helper()
	f, err := jsparse.Parse(context.Background(), path, []byte(src))
	require.NoError(t, err)
	batch := store.NewBatchedStore(store.File{Path: path, Language: f.Language, LastScanned: time.Now()})
	return NewFileEnv(f, detect.NewContext(f, nil), detect.NewRun(), batch), batch
}

func quietRuntime(opts ...RuntimeOption) *Runtime {
	opts = append([]RuntimeOption{WithLogger(log.New(&bytes.Buffer{}))}, opts...)
	return NewRuntime("", opts...)
}

// --- Detection globals ---

func TestRunFile_DetectionGlobals(t *testing.T) {
	t.Parallel()
	env, _ := newEnv(t, "Button.js", buttonSource)
	rt := quietRuntime()

	script := `
assert(file_path == "Button.js", 'unexpected file_path {file_path}')
assert(language == "javascript", 'unexpected language {language}')
assert(require_binding == "", "no require binding expected")

assert(local_name("default") == "styled", "default should resolve to styled")
assert(local_name("css") == "c", "css should resolve to its alias")
assert(local_name("withTheme") == "styled", "the default import binds every symbol")

all := tags()
assert(len(all) == 3, 'expected 3 tagged templates, got {len(all)}')

assert(all[0]["kind"] == "css", 'first tag kind {all[0]["kind"]}')
assert(all[0]["tag_text"] == "c", 'first tag text {all[0]["tag_text"]}')
assert(is_helper("css", all[0]["tag_id"]), "c is the css helper")
assert(is_helper("any", all[0]["tag_id"]), "css is a helper")
assert(!is_styled(all[0]["tag_id"]), "css is not the main tag")

assert(all[1]["kind"] == "styled", 'second tag kind {all[1]["kind"]}')
assert(all[1]["start_line"] == 3, 'second tag line {all[1]["start_line"]}')
assert(is_styled(all[1]["tag_id"]), "styled.button is the main tag")
assert(is_styled(all[1]["tag_id"], true), "still styled with iife unwrapping")
assert(classify(all[1]["tag_id"]) == "styled", "classify styled")
assert(node_text(all[1]["tag_id"]) == "styled.button", "tag text")

assert(all[2]["kind"] == "none", 'third tag kind {all[2]["kind"]}')
assert(!is_helper("pure", all[2]["tag_id"]), "html is not a helper")
`
	require.NoError(t, rt.RunFile(context.Background(), script, "<test>", env))
}

func TestRunFile_Report(t *testing.T) {
	t.Parallel()
	env, batch := newEnv(t, "Button.js", buttonSource)
	rt := quietRuntime()

	script := `
for _, t := range tags() {
    if t["kind"] == "styled" {
        report({"message": 'component {t["tag_text"]}', "node_id": t["id"]})
        report({"kind": "named", "message": "m", "node_id": t["tag_id"], "text": "Button"})
    }
}
report({"kind": "todo", "message": "manual", "start_line": 9, "start_col": 2})
`
	require.NoError(t, rt.RunFile(context.Background(), script, "<test>", env))

	require.Len(t, batch.Findings, 3)
	first := batch.Findings[0]
	assert.Equal(t, DefaultReportKind, first.Kind)
	assert.Equal(t, "component styled.button", first.Message)
	assert.Equal(t, 3, first.StartLine)
	assert.Equal(t, 23, first.StartCol)
	assert.Equal(t, "styled.button`${mixin}`", first.Text, "text defaults to the node's source")
	assert.Negative(t, first.ID)

	named := batch.Findings[1]
	assert.Equal(t, "Button", named.Text, "explicit text wins over the node's source")
	assert.Equal(t, 23, named.StartCol)

	second := batch.Findings[2]
	assert.Equal(t, "todo", second.Kind)
	assert.Equal(t, 9, second.StartLine)
	assert.Equal(t, 2, second.StartCol)
}

func TestRunFile_ReportErrors(t *testing.T) {
	t.Parallel()
	rt := quietRuntime()

	tests := []struct {
		name   string
		script string
	}{
		{"missing message", `report({"kind": "x"})`},
		{"not a map", `report("oops")`},
		{"unknown node", `report({"message": "m", "node_id": 99999})`},
		{"unknown helper kind", `is_helper("bogus", tags()[0]["tag_id"])`},
		{"unknown node id", `is_styled(99999)`},
		{"bad iife flag", `is_styled(tags()[0]["tag_id"], "yes")`},
		{"local_name arity", `local_name()`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			env, _ := newEnv(t, "Button.js", buttonSource)
			err := rt.RunFile(context.Background(), tt.script, "<test>", env)
			assert.Error(t, err)
		})
	}
}

func TestRunFile_ReportWithoutSink(t *testing.T) {
	t.Parallel()
	f, err := jsparse.Parse(context.Background(), "a.js", []byte("const a = 1;\n"))
	require.NoError(t, err)
	env := NewFileEnv(f, detect.NewContext(f, nil), detect.NewRun(), nil)

	err = quietRuntime().RunFile(context.Background(), `report({"message": "m"})`, "<test>", env)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no finding sink")
}

func TestRunFile_RequireBinding(t *testing.T) {
	t.Parallel()
	env, _ := newEnv(t, "legacy.js", "var _sc = require('styled-components');\nvar A = _sc.default.div`x: y;`;\n")

	script := `
assert(require_binding == "_sc", 'got {require_binding}')
assert(local_name("default") == "styled", "require default")
assert(local_name("keyframes") == "keyframes", "require helpers keep their names")
assert(tags()[0]["kind"] == "styled", "require-style tag")
`
	require.NoError(t, quietRuntime().RunFile(context.Background(), script, "<test>", env))
}

func TestRunFile_NoLibraryImport(t *testing.T) {
	t.Parallel()
	env, _ := newEnv(t, "plain.ts", "const A = styled.div`color: red;`;\n")

	script := `
assert(local_name("default") == nil, "nothing is imported")
assert(local_name("css") == nil, "nothing is imported")
assert(tags()[0]["kind"] == "none", "unbound styled is not recognized")
assert(!is_styled(tags()[0]["tag_id"]), "unbound styled is not recognized")
`
	require.NoError(t, quietRuntime().RunFile(context.Background(), script, "<test>", env))
}

func TestNewFileEnv_IndexesEveryNode(t *testing.T) {
	t.Parallel()
	env, _ := newEnv(t, "Button.js", buttonSource)
	assert.Len(t, env.nodes, env.file.NodeCount)
	for id, n := range env.nodes {
		assert.Equal(t, id, n.ID())
	}
	_, ok := env.nodes[ast.NodeID(0)]
	assert.False(t, ok)
}

// --- Logging ---

func TestLogGlobal(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	rt := NewRuntime("", WithLogger(log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})))

	err := rt.RunSource(context.Background(), `log.Warn("check this")`, nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "check this")
	assert.Contains(t, buf.String(), "script=")
	assert.Contains(t, buf.String(), "inline")
}

// --- Script loading & imports ---

func TestRunSource_NoImport_NoRegression(t *testing.T) {
	t.Parallel()
	script := `
x := 1 + 2
assert(x == 3, 'expected 3')
`
	require.NoError(t, quietRuntime().RunSource(context.Background(), script, nil))
}

func TestRunSource_ExtraGlobals(t *testing.T) {
	t.Parallel()
	err := quietRuntime().RunSource(context.Background(), `assert(answer == 42, "answer")`, map[string]any{"answer": 42})
	require.NoError(t, err)
}

func TestRunSource_ScriptError(t *testing.T) {
	t.Parallel()
	err := quietRuntime().RunSource(context.Background(), `assert(false, "boom")`, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "<inline>")
}

func TestLoadScript_FromDisk(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rules.risor"), []byte(`x := 1`), 0o644))

	rt := NewRuntime(dir)
	src, err := rt.LoadScript("rules.risor")
	require.NoError(t, err)
	assert.Equal(t, "x := 1", src)

	src, err = rt.LoadScript(filepath.Join(dir, "rules.risor"))
	require.NoError(t, err)
	assert.Equal(t, "x := 1", src)

	_, err = rt.LoadScript("missing.risor")
	assert.Error(t, err)
}

func TestLoadScript_FromFS(t *testing.T) {
	t.Parallel()
	rt := NewRuntime("", WithRuntimeFS(fstest.MapFS{
		"rules/main.risor": &fstest.MapFile{Data: []byte(`y := 2`)},
	}))

	src, err := rt.LoadScript("/rules/main.risor")
	require.NoError(t, err)
	assert.Equal(t, "y := 2", src)
}

func TestRunScript_FromDisk(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "check.risor"), []byte(`assert(file_path == "x.js", "file_path")`), 0o644))

	rt := NewRuntime(dir, WithLogger(log.New(&bytes.Buffer{})))
	require.NoError(t, rt.RunScript(context.Background(), "check.risor", map[string]any{"file_path": "x.js"}))
	assert.Error(t, rt.RunScript(context.Background(), "nope.risor", nil))
}

func TestImport_LocalImporter(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "naming.risor"), []byte(`
func is_component(name) {
	return len(name) > 0 && name[0] >= "A" && name[0] <= "Z"
}
`), 0o644))

	rt := NewRuntime(dir, WithLogger(log.New(&bytes.Buffer{})))
	script := `
import naming
assert(naming.is_component("Button"), "Button is a component name")
assert(!naming.is_component("button"), "button is not")
`
	require.NoError(t, rt.RunSource(context.Background(), script, nil))
}

func TestImport_GlobalsAvailableInImportedModules(t *testing.T) {
	t.Parallel()
	mapFS := fstest.MapFS{
		"helper.risor": &fstest.MapFile{Data: []byte(`
func styled_count() {
	n := 0
	for _, t := range tags() {
		if t["kind"] == "styled" {
			n += 1
		}
	}
	return n
}
`)},
	}
	env, _ := newEnv(t, "Button.js", buttonSource)
	rt := quietRuntime(WithRuntimeFS(mapFS))

	script := `
import helper
assert(helper.styled_count() == 1, 'expected one styled tag')
`
	require.NoError(t, rt.RunFile(context.Background(), script, "<test>", env))
}

func TestNewRuntime_Options(t *testing.T) {
	t.Parallel()
	rt := NewRuntime("/some/dir")
	require.NotNil(t, rt)
	assert.Nil(t, rt.fsys)
	assert.Equal(t, "/some/dir", rt.scriptsDir)
	assert.NotNil(t, rt.logger)
}
