package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindRepoRoot_DirectGitDir(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))

	assert.Equal(t, root, findRepoRoot(root))
}

func TestFindRepoRoot_NestedSubdirectory(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))
	deep := filepath.Join(root, "sub", "deep")
	require.NoError(t, os.MkdirAll(deep, 0o755))

	assert.Equal(t, root, findRepoRoot(deep))
}

func TestFindRepoRoot_NoGitAncestor(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	assert.Equal(t, dir, findRepoRoot(dir))
}

func TestResolveDBPath(t *testing.T) {
	t.Parallel()
	assert.Equal(t, filepath.Join("/repo", ".stylescope.db"), resolveDBPath("/repo", ""))
	assert.Equal(t, filepath.Join("/repo", "out", "x.db"), resolveDBPath("/repo", "out/x.db"))
	assert.Equal(t, "/abs/x.db", resolveDBPath("/repo", "/abs/x.db"))
}

func TestResolveTargetDir(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	got, err := resolveTargetDir([]string{dir})
	require.NoError(t, err)
	assert.Equal(t, dir, got)

	file := filepath.Join(dir, "a.js")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = resolveTargetDir([]string{file})
	assert.ErrorContains(t, err, "not a directory")

	_, err = resolveTargetDir([]string{filepath.Join(dir, "missing")})
	assert.ErrorContains(t, err, "directory not found")
}

func TestFormatFindingsText(t *testing.T) {
	var buf bytes.Buffer
	formatFindingsText(&buf, []CLIFinding{
		{Kind: "css", File: "a.js", StartLine: 2, StartCol: 15, Text: "css"},
		{Kind: "rule", File: "a.js", StartLine: 3, StartCol: 1, Text: "styled.div", Message: "prefer a component"},
	})
	assert.Equal(t, "a.js:2:15\tcss\tcss\na.js:3:1\trule\tstyled.div\tprefer a component\n", buf.String())
}

func TestFormatSummaryText(t *testing.T) {
	var buf bytes.Buffer
	formatSummaryText(&buf, CLISummary{
		Files:                 1200,
		FilesImportingLibrary: 3,
		RequireStyleFiles:     1,
		Findings:              4,
		KindCounts:            map[string]int{"styled": 3, "css": 1},
		Languages:             []CLILanguageStats{{Language: "javascript", FileCount: 1200, FindingCount: 4}},
		LatestRun:             &CLIRun{ID: "run-1", StartedAt: time.Now(), FilesScanned: 1200},
	})
	out := buf.String()
	assert.Contains(t, out, "Files:             1,200")
	assert.Contains(t, out, "Importing library: 3 (1 via require)")
	assert.Contains(t, out, "styled")
	assert.Contains(t, out, "javascript")
	assert.Contains(t, out, "Latest run run-1: 1,200 scanned")
}

func TestOutputResultText_UnknownType(t *testing.T) {
	err := outputResultText(&bytes.Buffer{}, CLIResult{Results: 42})
	assert.Error(t, err)
}

func TestOutputError(t *testing.T) {
	var out, errOut bytes.Buffer
	err := outputError(&out, &errOut, "json", "files", os.ErrNotExist)
	require.ErrorIs(t, err, errHandled)
	assert.Contains(t, out.String(), `"error": "file does not exist"`)
	assert.Empty(t, errOut.String())

	out.Reset()
	err = outputError(&out, &errOut, "text", "files", os.ErrNotExist)
	require.ErrorIs(t, err, errHandled)
	assert.Empty(t, out.String())
	assert.Equal(t, "Error: file does not exist\n", errOut.String())
}
