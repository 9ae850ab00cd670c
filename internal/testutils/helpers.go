// Package testutils holds fixtures shared by package tests.
package testutils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Subdomain is a well-formed server identifier.
const Subdomain = "abcdefghijklmnopqrstuvw"

// CreateCloudFolder creates a temporary folder holding files, keyed by
// slash separated relative path.
func CreateCloudFolder(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		WriteFile(t, dir, rel, content)
	}
	return dir
}

// WriteFile writes content to rel under dir, creating parent directories.
func WriteFile(t *testing.T, dir, rel, content string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// ScenarioFolder is the folder used by end-to-end sync tests: two cloud
// functions and one installed dependency that must never be uploaded.
func ScenarioFolder(t *testing.T) string {
	t.Helper()
	return CreateCloudFolder(t, map[string]string{
		"a.js":              "console.log(1)",
		"b.js":              "console.log(2)",
		"node_modules/c.js": "console.log(3)",
	})
}

// WaitForFileChange waits for a file to be modified (useful for testing file watchers)
func WaitForFileChange(
	t *testing.T,
	filePath string,
	originalModTime time.Time,
	timeout time.Duration,
) {
	t.Helper()
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		info, err := os.Stat(filePath)
		if err == nil && info.ModTime().After(originalModTime) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Fatalf("File %s was not modified within %v", filePath, timeout)
}

// WaitForRemoval waits until path no longer exists.
func WaitForRemoval(t *testing.T, path string, timeout time.Duration) {
	t.Helper()
	require.Eventually(t, func() bool {
		_, err := os.Stat(path)
		return os.IsNotExist(err)
	}, timeout, 10*time.Millisecond, "%s still exists", path)
}
