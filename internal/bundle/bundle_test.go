package bundle

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/cloudsync/internal/errors"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestBundlePlainScript(t *testing.T) {
	dir := t.TempDir()
	entry := filepath.Join(dir, "output.js")
	writeFile(t, entry, "console.log(1)\nconsole.log(2)\n")

	code, err := NewBundler(Options{}, nil).Bundle(context.Background(), entry)
	require.NoError(t, err)
	assert.Contains(t, code, "console.log(1)")
	assert.Contains(t, code, "console.log(2)")
}

func TestBundleInlinesLocalModules(t *testing.T) {
	dir := t.TempDir()
	entry := filepath.Join(dir, "output.js")
	writeFile(t, filepath.Join(dir, "lib", "helper.js"), "module.exports = function helperMarker() { return 42 };\n")
	writeFile(t, entry, "const helper = require('./lib/helper');\nconsole.log(helper());\n")

	code, err := NewBundler(Options{}, nil).Bundle(context.Background(), entry)
	require.NoError(t, err)
	assert.Contains(t, code, "helperMarker")
	assert.NotContains(t, code, "require(\"./lib/helper\")")
}

func TestBundleKeepsExternals(t *testing.T) {
	dir := t.TempDir()
	entry := filepath.Join(dir, "output.js")
	writeFile(t, entry, "const Web3 = require('web3');\nconsole.log(Web3);\n")

	code, err := NewBundler(Options{Externals: []string{"web3"}}, nil).Bundle(context.Background(), entry)
	require.NoError(t, err)
	assert.Contains(t, code, "require(\"web3\")")
}

func TestBundleResolvesFromNodePaths(t *testing.T) {
	staging := t.TempDir()
	folder := t.TempDir()
	writeFile(t, filepath.Join(folder, "node_modules", "tiny-dep", "index.js"), "module.exports = 'tinyDepMarker';\n")

	entry := filepath.Join(staging, "output.js")
	writeFile(t, entry, "console.log(require('tiny-dep'));\n")

	opts := Options{NodePaths: []string{filepath.Join(folder, "node_modules")}}
	code, err := NewBundler(opts, nil).Bundle(context.Background(), entry)
	require.NoError(t, err)
	assert.Contains(t, code, "tinyDepMarker")
}

func TestBundleUnresolvedImport(t *testing.T) {
	dir := t.TempDir()
	entry := filepath.Join(dir, "output.js")
	writeFile(t, entry, "const missing = require('./does-not-exist');\n")

	code, err := NewBundler(Options{}, nil).Bundle(context.Background(), entry)
	require.Error(t, err)
	assert.Empty(t, code)
	assert.True(t, errors.IsBundleError(err))
	assert.Contains(t, err.Error(), "does-not-exist")
}

func TestBundleMissingEntry(t *testing.T) {
	_, err := NewBundler(Options{}, nil).Bundle(context.Background(), filepath.Join(t.TempDir(), "nope.js"))
	require.Error(t, err)
	assert.True(t, errors.IsBundleError(err))
}

func TestBundleCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewBundler(Options{}, nil).Bundle(ctx, "whatever.js")
	assert.ErrorIs(t, err, context.Canceled)
}
