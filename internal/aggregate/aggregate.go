// Package aggregate collects the source files of a watched folder into a
// single in-memory artifact.
//
// Files are visited in lexicographic order so that an unchanged tree always
// produces byte-identical output. Every file is syntax checked before it is
// included; the first invalid file aborts the whole aggregation so that a
// known-bad batch is never uploaded.
package aggregate

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/conneroisu/cloudsync/internal/errors"
	"github.com/conneroisu/cloudsync/internal/logging"
)

// Checker validates the syntax of a single file.
type Checker interface {
	Check(path string, source []byte) *errors.SyntaxError
}

// Result is the outcome of a successful aggregation.
type Result struct {
	// Source is every file's content followed by a newline, in Files order.
	Source string
	// Files lists the aggregated paths in traversal order.
	Files []string
}

// Aggregator walks a folder and concatenates its source files.
type Aggregator struct {
	filter     Filter
	ignoreFile string
	checker    Checker
	logger     logging.Logger
}

// NewAggregator creates a new aggregator. ignoreFile names an optional
// gitignore-style file at the root of the folder; pass "" to disable it.
func NewAggregator(filter Filter, ignoreFile string, checker Checker, logger logging.Logger) *Aggregator {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Aggregator{
		filter:     filter,
		ignoreFile: ignoreFile,
		checker:    checker,
		logger:     logger.WithComponent("aggregate"),
	}
}

// Filter returns the path filter used by the aggregator.
func (a *Aggregator) Filter() Filter {
	return a.filter
}

// List returns every source file under root in lexicographic traversal
// order.
func (a *Aggregator) List(root string) ([]string, error) {
	ignore, err := loadIgnore(root, a.ignoreFile)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeWalkFailed, "failed to load ignore file", err).
			WithLocation(filepath.Join(root, a.ignoreFile), 0, 0)
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != root && (d.Name() == a.filter.DependencyDir || ignore.Ignored(path, true)) {
				return filepath.SkipDir
			}
			return nil
		}

		if !a.filter.Match(path) || ignore.Ignored(path, false) {
			return nil
		}

		if !d.Type().IsRegular() {
			// Follow symlinks to files, skip anything else.
			info, statErr := os.Stat(path)
			if statErr != nil || !info.Mode().IsRegular() {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeWalkFailed, "failed to list source files", err).
			WithLocation(root, 0, 0)
	}

	return files, nil
}

// Aggregate lists, reads and validates every source file under root. A
// syntax error is returned as *errors.SyntaxError and no partial result is
// produced.
func (a *Aggregator) Aggregate(ctx context.Context, root string) (*Result, error) {
	files, err := a.List(root)
	if err != nil {
		return nil, err
	}

	var source strings.Builder
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		content, err := readSource(path)
		if err != nil {
			return nil, errors.NewIOError(errors.ErrCodeFileNotFound, "failed to read source file", err).
				WithLocation(path, 0, 0)
		}

		if se := a.checker.Check(path, content); se != nil {
			return nil, se
		}

		source.Write(content)
		source.WriteByte('\n')
	}

	a.logger.Debug(ctx, "Aggregated sources",
		"root", root,
		"files", len(files),
		"bytes", source.Len(),
	)

	return &Result{Source: source.String(), Files: files}, nil
}

// readSource reads path as text. A leading byte-order mark is removed and
// UTF-16 input is converted to UTF-8, otherwise a BOM in the middle of the
// concatenation would break the bundle.
func readSource(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	decoded, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), raw)
	if err != nil {
		return nil, err
	}
	return decoded, nil
}
