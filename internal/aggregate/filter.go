package aggregate

import (
	"path/filepath"
	"strings"
)

// Filter is the single rule deciding which paths take part in a sync. The
// event-driven trigger and the aggregator share it so that a file which
// cannot be uploaded never triggers an upload either.
type Filter struct {
	// Extension is the source extension including the dot, e.g. ".js".
	Extension string
	// DependencyDir is the directory name holding installed third-party
	// code, e.g. "node_modules". Any path with this segment is excluded.
	DependencyDir string
}

// Match reports whether path is a source file outside dependency
// directories.
func (f Filter) Match(path string) bool {
	return f.HasExtension(path) && !f.InDependencyDir(path)
}

// HasExtension reports whether path ends with the source extension.
func (f Filter) HasExtension(path string) bool {
	return filepath.Ext(path) == f.Extension
}

// InDependencyDir reports whether any segment of path is the dependency
// directory.
func (f Filter) InDependencyDir(path string) bool {
	if f.DependencyDir == "" {
		return false
	}
	for _, segment := range strings.Split(filepath.ToSlash(path), "/") {
		if segment == f.DependencyDir {
			return true
		}
	}
	return false
}
