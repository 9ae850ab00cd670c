package aggregate

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/cloudsync/internal/errors"
	"github.com/conneroisu/cloudsync/internal/syntax"
	"github.com/conneroisu/cloudsync/internal/testutils"
)

var jsFilter = Filter{Extension: ".js", DependencyDir: "node_modules"}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		testutils.WriteFile(t, root, name, content)
	}
}

// countingChecker accepts everything and records what it saw.
type countingChecker struct {
	seen []string
	fail string
}

func (c *countingChecker) Check(path string, source []byte) *errors.SyntaxError {
	c.seen = append(c.seen, path)
	if filepath.Base(path) == c.fail {
		return &errors.SyntaxError{File: path, Line: 1, Message: "bad"}
	}
	return nil
}

func TestAggregateScenario(t *testing.T) {
	root := testutils.ScenarioFolder(t)

	agg := NewAggregator(jsFilter, "", syntax.NewValidator(), nil)
	result, err := agg.Aggregate(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, "console.log(1)\nconsole.log(2)\n", result.Source)
	assert.Equal(t, []string{filepath.Join(root, "a.js"), filepath.Join(root, "b.js")}, result.Files)
}

func TestAggregateSyntaxErrorAborts(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.js": "function broken() {\n  console.log(1)\n",
		"b.js": "console.log(2)",
	})

	agg := NewAggregator(jsFilter, "", syntax.NewValidator(), nil)
	result, err := agg.Aggregate(context.Background(), root)
	require.Error(t, err)
	assert.Nil(t, result)

	var se *errors.SyntaxError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, filepath.Join(root, "a.js"), se.File)
	assert.Equal(t, errors.ErrorTypeSyntax, errors.GetErrorType(err))
}

func TestAggregateStopsAtFirstInvalidFile(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"1.js": "ok",
		"2.js": "bad",
		"3.js": "never read",
	})

	checker := &countingChecker{fail: "2.js"}
	agg := NewAggregator(jsFilter, "", checker, nil)
	_, err := agg.Aggregate(context.Background(), root)
	require.Error(t, err)

	assert.Equal(t, []string{filepath.Join(root, "1.js"), filepath.Join(root, "2.js")}, checker.seen)
}

func TestListOrderAndFiltering(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"z.js":                    "",
		"a.js":                    "",
		"lib/m.js":                "",
		"lib/readme.md":           "",
		"lib/node_modules/x.js":   "",
		"node_modules/dep/i.js":   "",
		"styles.css":              "",
		"nested/deeper/final.js":  "",
		"nested/deeper/notes.txt": "",
	})

	agg := NewAggregator(jsFilter, "", &countingChecker{}, nil)
	files, err := agg.List(root)
	require.NoError(t, err)

	expected := []string{
		filepath.Join(root, "a.js"),
		filepath.Join(root, "lib", "m.js"),
		filepath.Join(root, "nested", "deeper", "final.js"),
		filepath.Join(root, "z.js"),
	}
	assert.Equal(t, expected, files)
}

func TestListHonoursIgnoreFile(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".cloudignore":     "# generated output\n\ndist/\n*.spec.js\n",
		"main.js":          "",
		"main.spec.js":     "",
		"dist/bundle.js":   "",
		"lib/util.js":      "",
		"lib/util.spec.js": "",
	})

	agg := NewAggregator(jsFilter, ".cloudignore", &countingChecker{}, nil)
	files, err := agg.List(root)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(root, "lib", "util.js"),
		filepath.Join(root, "main.js"),
	}, files)
}

func TestListMissingIgnoreFile(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"main.js": ""})

	agg := NewAggregator(jsFilter, ".cloudignore", &countingChecker{}, nil)
	files, err := agg.List(root)
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestListMissingRoot(t *testing.T) {
	agg := NewAggregator(jsFilter, "", &countingChecker{}, nil)
	_, err := agg.List(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeIO, errors.GetErrorType(err))
}

func TestAggregateEmptyFolder(t *testing.T) {
	agg := NewAggregator(jsFilter, "", &countingChecker{}, nil)
	result, err := agg.Aggregate(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, result.Source)
	assert.Empty(t, result.Files)
}

func TestAggregateStripsByteOrderMark(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.js": "\ufeffconsole.log(1)",
		"b.js": "console.log(2)",
	})

	agg := NewAggregator(jsFilter, "", syntax.NewValidator(), nil)
	result, err := agg.Aggregate(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, "console.log(1)\nconsole.log(2)\n", result.Source)
}

func TestAggregateHonoursCancellation(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.js": "1"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	agg := NewAggregator(jsFilter, "", &countingChecker{}, nil)
	_, err := agg.Aggregate(ctx, root)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAggregateIsDeterministic(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"b/two.js":   "const two = 2;",
		"a/one.js":   "const one = 1;",
		"three.js":   "const three = 3;",
		"a/b/c/d.js": "const d = 'd';",
	})

	agg := NewAggregator(jsFilter, "", syntax.NewValidator(), nil)
	first, err := agg.Aggregate(context.Background(), root)
	require.NoError(t, err)
	second, err := agg.Aggregate(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, first.Source, second.Source)
	assert.Equal(t, first.Files, second.Files)
}
