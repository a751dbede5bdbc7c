package detect

import "slices"

// builtinImportPaths are the module specifiers always treated as the
// styling library: the root entry point and its documented variants.
var builtinImportPaths = []string{
	"styled-components",
	"styled-components/no-tags",
	"styled-components/native",
	"styled-components/primitives",
}

// PathSource supplies additional recognized import paths, typically from
// configuration.
type PathSource interface {
	TopLevelImportPaths() []string
}

// Registry is the set of import sources that count as the styling library.
type Registry struct {
	paths map[string]struct{}
	extra []string
}

// NewRegistry returns a Registry holding the built-in paths plus extra.
func NewRegistry(extra ...string) *Registry {
	r := &Registry{paths: make(map[string]struct{}, len(builtinImportPaths)+len(extra))}
	for _, p := range builtinImportPaths {
		r.paths[p] = struct{}{}
	}
	for _, p := range extra {
		if p == "" {
			continue
		}
		if _, dup := r.paths[p]; !dup {
			r.extra = append(r.extra, p)
		}
		r.paths[p] = struct{}{}
	}
	return r
}

// RegistryFrom builds a Registry from a configuration source. A nil source
// yields the built-in paths only.
func RegistryFrom(src PathSource) *Registry {
	if src == nil {
		return NewRegistry()
	}
	return NewRegistry(src.TopLevelImportPaths()...)
}

// Contains reports whether path is a recognized import source.
func (r *Registry) Contains(path string) bool {
	if r == nil {
		return slices.Contains(builtinImportPaths, path)
	}
	_, ok := r.paths[path]
	return ok
}

// Paths returns the built-in paths followed by the configured extras.
func (r *Registry) Paths() []string {
	out := slices.Clone(builtinImportPaths)
	if r != nil {
		out = append(out, r.extra...)
	}
	return out
}
