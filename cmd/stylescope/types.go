package main

import (
	"time"

	"github.com/jward/stylescope"
	"github.com/jward/stylescope/internal/store"
)

// CLIResult is the top-level JSON envelope for all CLI output.
type CLIResult struct {
	Command    string `json:"command"`
	Results    any    `json:"results"`
	TotalCount *int   `json:"total_count,omitempty"`
	Error      string `json:"error,omitempty"`
}

// CLIBinding is a library symbol bound in a file.
type CLIBinding struct {
	Symbol    string `json:"symbol"`
	LocalName string `json:"local_name"`
}

// CLIFinding is a tag constructor or rule report with its location.
type CLIFinding struct {
	Kind      string `json:"kind"`
	File      string `json:"file"`
	StartLine int    `json:"start_line"`
	StartCol  int    `json:"start_col"`
	EndLine   int    `json:"end_line"`
	EndCol    int    `json:"end_col"`
	Text      string `json:"text"`
	Message   string `json:"message,omitempty"`
}

// CLIFile is a scanned file.
type CLIFile struct {
	ID             int64  `json:"id"`
	Path           string `json:"path"`
	Language       string `json:"language"`
	RequireBinding string `json:"require_binding,omitempty"`
}

// CLIRun is a recorded scan run.
type CLIRun struct {
	ID           string     `json:"id"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	FilesScanned int        `json:"files_scanned"`
	FilesSkipped int        `json:"files_skipped"`
	Findings     int        `json:"findings"`
}

// CLILanguageStats is per-language file and finding counts.
type CLILanguageStats struct {
	Language     string `json:"language"`
	FileCount    int    `json:"file_count"`
	FindingCount int    `json:"finding_count"`
}

// CLISummary is the store-wide overview.
type CLISummary struct {
	Files                 int                `json:"files"`
	FilesImportingLibrary int                `json:"files_importing_library"`
	RequireStyleFiles     int                `json:"require_style_files"`
	Findings              int                `json:"findings"`
	KindCounts            map[string]int     `json:"kind_counts"`
	Languages             []CLILanguageStats `json:"languages"`
	LatestRun             *CLIRun            `json:"latest_run,omitempty"`
}

// CLIScanResult reports what a scan did.
type CLIScanResult struct {
	RunID    string `json:"run_id"`
	Root     string `json:"root"`
	Database string `json:"database"`
	Scanned  int    `json:"scanned"`
	Skipped  int    `json:"skipped"`
	Findings int    `json:"findings"`
	Errors   int    `json:"errors"`
}

func toCLIBindings(bs []*store.Binding) []CLIBinding {
	out := make([]CLIBinding, 0, len(bs))
	for _, b := range bs {
		out = append(out, CLIBinding{Symbol: b.Symbol, LocalName: b.LocalName})
	}
	return out
}

func toCLIFindings(rs []stylescope.FindingResult) []CLIFinding {
	out := make([]CLIFinding, 0, len(rs))
	for _, r := range rs {
		loc := r.Location()
		out = append(out, CLIFinding{
			Kind:      r.Kind,
			File:      loc.File,
			StartLine: loc.StartLine,
			StartCol:  loc.StartCol,
			EndLine:   loc.EndLine,
			EndCol:    loc.EndCol,
			Text:      r.Text,
			Message:   r.Message,
		})
	}
	return out
}

func toCLIFiles(fs []store.File) []CLIFile {
	out := make([]CLIFile, 0, len(fs))
	for _, f := range fs {
		out = append(out, CLIFile{ID: f.ID, Path: f.Path, Language: f.Language, RequireBinding: f.RequireBinding})
	}
	return out
}

func toCLIRun(r *store.Run) *CLIRun {
	if r == nil {
		return nil
	}
	return &CLIRun{
		ID:           r.ID,
		StartedAt:    r.StartedAt,
		FinishedAt:   r.FinishedAt,
		FilesScanned: r.FilesScanned,
		FilesSkipped: r.FilesSkipped,
		Findings:     r.Findings,
	}
}

func toCLISummary(s *stylescope.Summary) CLISummary {
	out := CLISummary{
		Files:                 s.Files,
		FilesImportingLibrary: s.FilesImportingLibrary,
		RequireStyleFiles:     s.RequireStyleFiles,
		Findings:              s.Findings,
		KindCounts:            s.KindCounts,
		LatestRun:             toCLIRun(s.LatestRun),
	}
	if out.KindCounts == nil {
		out.KindCounts = map[string]int{}
	}
	for _, l := range s.Languages {
		out.Languages = append(out.Languages, CLILanguageStats{
			Language: l.Language, FileCount: l.FileCount, FindingCount: l.FindingCount,
		})
	}
	return out
}
