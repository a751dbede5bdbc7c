package store

import (
	"crypto/sha256"
	"fmt"
	"sort"
)

// ContentHash returns the hex SHA-256 of a file's contents.
func ContentHash(content []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(content))
}

// ComputeSettingsHash hashes the settings that change scan results without
// changing file contents: the recognized import paths and the rule script
// source. Path order does not affect the hash.
func ComputeSettingsHash(importPaths []string, script string) string {
	h := sha256.New()

	sorted := make([]string, len(importPaths))
	copy(sorted, importPaths)
	sort.Strings(sorted)
	for _, p := range sorted {
		fmt.Fprintf(h, "path:%s\n", p)
	}
	fmt.Fprintf(h, "script:%d:%s\n", len(script), script)

	return fmt.Sprintf("%x", h.Sum(nil))
}
