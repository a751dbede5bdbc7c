// Package rules bundles the built-in Risor rule scripts. A script setting
// of "builtin:<name>" selects <name>.risor from FS.
package rules

import (
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// Prefix marks a script setting that names a bundled script.
const Prefix = "builtin:"

//go:embed *.risor
var FS embed.FS

// Resolve returns the file name within FS for a "builtin:<name>" script
// setting. ok is false for any other setting.
func Resolve(script string) (name string, ok bool) {
	rest, found := strings.CutPrefix(script, Prefix)
	if !found || rest == "" {
		return "", false
	}
	return rest + ".risor", true
}

// Names lists the bundled rule scripts, excluding shared helper modules.
func Names() []string {
	entries, _ := fs.ReadDir(FS, ".")
	var names []string
	for _, e := range entries {
		name := strings.TrimSuffix(e.Name(), path.Ext(e.Name()))
		if e.IsDir() || name == "helpers" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
