package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
)

// newTable returns a table writer mirrored to w with the shared style.
func newTable(w io.Writer, header ...any) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row(header))
	return t
}

// formatBindingsText formats bindings as a two-column table.
func formatBindingsText(w io.Writer, bindings []CLIBinding) {
	if len(bindings) == 0 {
		fmt.Fprintln(w, "(no bindings)")
		return
	}
	t := newTable(w, "SYMBOL", "LOCAL NAME")
	for _, b := range bindings {
		t.AppendRow(table.Row{b.Symbol, b.LocalName})
	}
	t.Render()
}

// formatFindingsText formats findings as "file:line:col kind text" lines.
func formatFindingsText(w io.Writer, findings []CLIFinding) {
	for _, f := range findings {
		line := fmt.Sprintf("%s:%d:%d\t%s\t%s", f.File, f.StartLine, f.StartCol, f.Kind, f.Text)
		if f.Message != "" {
			line += "\t" + f.Message
		}
		fmt.Fprintln(w, line)
	}
}

// formatFilesText formats files as a table.
func formatFilesText(w io.Writer, files []CLIFile, total *int) {
	t := newTable(w, "ID", "PATH", "LANGUAGE", "REQUIRE")
	for _, f := range files {
		t.AppendRow(table.Row{f.ID, f.Path, f.Language, f.RequireBinding})
	}
	t.Render()
	if total != nil {
		fmt.Fprintf(w, "(%d of %s files)\n", len(files), humanize.Comma(int64(*total)))
	}
}

// formatSummaryText formats the summary as readable text.
func formatSummaryText(w io.Writer, s CLISummary) {
	fmt.Fprintln(w, "Summary")
	fmt.Fprintln(w, "=======")
	fmt.Fprintf(w, "Files:             %s\n", humanize.Comma(int64(s.Files)))
	fmt.Fprintf(w, "Importing library: %s (%s via require)\n",
		humanize.Comma(int64(s.FilesImportingLibrary)), humanize.Comma(int64(s.RequireStyleFiles)))
	fmt.Fprintf(w, "Findings:          %s\n", humanize.Comma(int64(s.Findings)))

	if len(s.KindCounts) > 0 {
		fmt.Fprintln(w)
		kinds := make([]string, 0, len(s.KindCounts))
		for k := range s.KindCounts {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)
		t := newTable(w, "KIND", "COUNT")
		for _, k := range kinds {
			t.AppendRow(table.Row{k, humanize.Comma(int64(s.KindCounts[k]))})
		}
		t.Render()
	}

	if len(s.Languages) > 0 {
		fmt.Fprintln(w)
		t := newTable(w, "LANGUAGE", "FILES", "FINDINGS")
		for _, l := range s.Languages {
			t.AppendRow(table.Row{l.Language, humanize.Comma(int64(l.FileCount)), humanize.Comma(int64(l.FindingCount))})
		}
		t.Render()
	}

	if s.LatestRun != nil {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Latest run %s: %s scanned, %s skipped, %s findings\n",
			s.LatestRun.ID,
			humanize.Comma(int64(s.LatestRun.FilesScanned)),
			humanize.Comma(int64(s.LatestRun.FilesSkipped)),
			humanize.Comma(int64(s.LatestRun.Findings)))
	}
}

// formatScanText formats a scan result as a single line.
func formatScanText(w io.Writer, r CLIScanResult) {
	fmt.Fprintf(w, "%s: scanned %s, skipped %s, %s findings",
		r.Root, humanize.Comma(int64(r.Scanned)), humanize.Comma(int64(r.Skipped)), humanize.Comma(int64(r.Findings)))
	if r.Errors > 0 {
		fmt.Fprintf(w, ", %d error(s)", r.Errors)
	}
	fmt.Fprintln(w)
}

// outputResultText dispatches text formatting by result type.
func outputResultText(w io.Writer, result CLIResult) error {
	switch v := result.Results.(type) {
	case []CLIBinding:
		formatBindingsText(w, v)
	case []CLIFinding:
		formatFindingsText(w, v)
	case []CLIFile:
		formatFilesText(w, v, result.TotalCount)
	case CLISummary:
		formatSummaryText(w, v)
	case CLIScanResult:
		formatScanText(w, v)
	default:
		return fmt.Errorf("no text format for %T", v)
	}
	return nil
}

// outputResult writes result in the given format.
func outputResult(w io.Writer, format string, result CLIResult) error {
	if format == "text" {
		return outputResultText(w, result)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// outputError reports err in the given format and returns errHandled.
// JSON errors are written as an envelope to w; text errors go to errW.
func outputError(w, errW io.Writer, format, command string, err error) error {
	if format == "json" {
		_ = outputResult(w, format, CLIResult{Command: command, Results: nil, Error: err.Error()})
	} else {
		fmt.Fprintf(errW, "Error: %s\n", err)
	}
	return fmt.Errorf("%w: %w", errHandled, err)
}
