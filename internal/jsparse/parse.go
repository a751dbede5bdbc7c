// Package jsparse parses JavaScript and TypeScript sources with tree-sitter
// and lowers the concrete syntax tree to the ast package's node set.
package jsparse

import (
	"context"
	"errors"
	"fmt"
	"os"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/stylescope/internal/ast"
)

// ErrUnsupportedLanguage is returned for files whose extension has no
// grammar.
var ErrUnsupportedLanguage = errors.New("jsparse: unsupported language")

// ParseFile reads and parses the file at path.
func ParseFile(ctx context.Context, path string) (*ast.File, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("jsparse: reading %s: %w", path, err)
	}
	return Parse(ctx, path, src)
}

// Parse parses src, choosing the grammar from the extension of path. The
// returned File's identity is path.
func Parse(ctx context.Context, path string, src []byte) (*ast.File, error) {
	lang, ok := LanguageForFile(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, path)
	}
	return ParseLanguage(ctx, path, lang, src)
}

// ParseLanguage parses src with the named grammar.
func ParseLanguage(ctx context.Context, path, lang string, src []byte) (*ast.File, error) {
	grammar, ok := GrammarForLanguage(lang)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(grammar)

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("jsparse: tree-sitter parse failed for %s: %w", path, err)
	}
	defer tree.Close()

	c := &converter{src: src}
	f := c.program(tree.RootNode())
	f.Path = path
	f.Language = lang
	f.Source = src
	f.NodeCount = c.b.Count()
	return f, nil
}
