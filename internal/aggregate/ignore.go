package aggregate

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// ignoreMatcher applies gitignore-style patterns from an optional file at
// the root of the watched folder.
type ignoreMatcher struct {
	root    string
	matcher gitignore.Matcher
}

// loadIgnore reads root/name. A missing file yields a matcher that never
// ignores anything.
func loadIgnore(root, name string) (*ignoreMatcher, error) {
	m := &ignoreMatcher{root: root}
	if name == "" {
		return m, nil
	}

	content, err := os.ReadFile(filepath.Join(root, name))
	if err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	var patterns []gitignore.Pattern
	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}

	if len(patterns) > 0 {
		m.matcher = gitignore.NewMatcher(patterns)
	}
	return m, nil
}

// Ignored reports whether path, which lies under the root, is excluded.
func (m *ignoreMatcher) Ignored(path string, isDir bool) bool {
	if m == nil || m.matcher == nil {
		return false
	}
	rel, err := filepath.Rel(m.root, path)
	if err != nil || rel == "." {
		return false
	}
	return m.matcher.Match(splitPath(rel), isDir)
}

// splitPath splits a relative path into segments for gitignore matching
func splitPath(path string) []string {
	var segments []string
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part != "" && part != "." {
			segments = append(segments, part)
		}
	}
	return segments
}
