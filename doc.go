// Package stylescope finds where the styled-components library is imported
// in JavaScript and TypeScript sources and which expressions are its tag
// constructors. It is built on tree-sitter and stores results in SQLite.
//
// # Pipeline
//
// For each source file, stylescope:
//
//  1. Parses the file with the JavaScript, TypeScript or TSX grammar.
//  2. Detects a require-style binding of the library
//     (const styled = require('styled-components')).
//  3. Resolves the local name bound to each library export: default, css,
//     keyframes, withTheme, createGlobalStyle and injectGlobal.
//  4. Classifies every tagged template tag and call callee, unwrapping
//     member chains such as styled(Button).attrs({...}) and the IIFE
//     wrapper left by an earlier transformation pass.
//  5. Optionally runs a Risor rule script that can report findings of its
//     own.
//
// Binding lookups and positive classifications are cached in a [Run] that
// lives until [Engine.ResetRun].
//
// # Usage
//
//	e, err := stylescope.New(".stylescope.db", stylescope.WithImportPaths("@acme/styled"))
//	if err != nil { ... }
//	defer e.Close()
//
//	stats, err := e.ScanDirectory(ctx, "path/to/project")
//
//	q := e.Query()
//	findings, err := q.Findings("src/Button.tsx", "styled")
//
// # Query API
//
// The [QueryBuilder] returned by [Engine.Query] provides:
//
//   - [QueryBuilder.Bindings]: local names bound in a file.
//   - [QueryBuilder.Findings]: detected tags and rule reports, optionally
//     filtered by file and kind.
//   - [QueryBuilder.FilesImportingLibrary]: files that bind the library.
//   - [QueryBuilder.Summary]: counts by kind and the latest run.
//
// # Incremental Scanning
//
// [Engine.ScanFiles] skips files whose content hash is unchanged. Changing
// the recognized import paths or the rule script invalidates every stored
// result; use [WithForce] to rescan regardless.
package stylescope
