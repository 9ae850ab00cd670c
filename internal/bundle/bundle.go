// Package bundle compiles the aggregated cloud source into one
// self-contained module with esbuild.
package bundle

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/conneroisu/cloudsync/internal/errors"
	"github.com/conneroisu/cloudsync/internal/logging"
)

// Options configures the bundler.
type Options struct {
	// Externals are package names left as require calls instead of being
	// inlined.
	Externals []string
	// NodePaths are extra directories searched when resolving bare
	// imports, typically the watched folder's node_modules.
	NodePaths []string
}

// Bundler wraps the esbuild build API.
type Bundler struct {
	opts   Options
	logger logging.Logger
}

// NewBundler creates a new bundler.
func NewBundler(opts Options, logger logging.Logger) *Bundler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Bundler{opts: opts, logger: logger.WithComponent("bundle")}
}

// Bundle compiles entry and every local module reachable from it into one
// CommonJS module and returns its code.
func (b *Bundler) Bundle(ctx context.Context, entry string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	absEntry, err := filepath.Abs(entry)
	if err != nil {
		return "", errors.NewIOError(errors.ErrCodeArtifact, "failed to resolve bundle entry", err).
			WithLocation(entry, 0, 0)
	}
	dir := filepath.Dir(absEntry)

	buildCtx, ctxErr := api.Context(api.BuildOptions{
		EntryPoints:   []string{absEntry},
		Outfile:       filepath.Join(dir, "bundle.out.js"),
		AbsWorkingDir: dir,
		Bundle:        true,
		Write:         false,
		Platform:      api.PlatformNode,
		Format:        api.FormatCommonJS,
		External:      b.opts.Externals,
		NodePaths:     b.opts.NodePaths,
		LogLevel:      api.LogLevelSilent,
	})
	if ctxErr != nil {
		return "", bundleError(ctxErr.Errors)
	}
	defer buildCtx.Dispose()

	stop := context.AfterFunc(ctx, buildCtx.Cancel)
	defer stop()

	result := buildCtx.Rebuild()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(result.Errors) > 0 {
		return "", bundleError(result.Errors)
	}

	for _, w := range result.Warnings {
		b.logger.Debug(ctx, "Bundler warning", "warning", formatMessage(w))
	}

	for _, out := range result.OutputFiles {
		if strings.HasSuffix(out.Path, ".js") {
			return string(out.Contents), nil
		}
	}

	return "", errors.NewInternalError(errors.ErrCodeBundleFailed, "bundler produced no output", nil).
		WithLocation(entry, 0, 0)
}

func bundleError(messages []api.Message) error {
	if len(messages) == 0 {
		return errors.NewBundleError(errors.ErrCodeBundleFailed, "bundling failed", nil)
	}

	first := messages[0]
	err := errors.NewBundleError(errors.ErrCodeBundleFailed, first.Text, nil)
	if loc := first.Location; loc != nil {
		err.WithLocation(loc.File, loc.Line, loc.Column)
	}
	if len(messages) > 1 {
		err.WithContext("additional_errors", len(messages)-1)
	}
	return err
}

func formatMessage(msg api.Message) string {
	if msg.Location == nil {
		return msg.Text
	}
	return fmt.Sprintf("%s:%d:%d: %s", msg.Location.File, msg.Location.Line, msg.Location.Column, msg.Text)
}
