// Package syntax checks individual source files for syntax errors before
// they are aggregated into a bundle.
package syntax

import (
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"

	"github.com/conneroisu/cloudsync/internal/errors"
)

// Validator parses source files with esbuild and reports the first syntax
// error it finds.
type Validator struct{}

// NewValidator creates a new syntax validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Check parses source as the language implied by path's extension. It
// returns nil when the file parses cleanly.
func (v *Validator) Check(path string, source []byte) *errors.SyntaxError {
	result := api.Transform(string(source), api.TransformOptions{
		Loader:     loaderFor(path),
		Sourcefile: path,
		LogLevel:   api.LogLevelSilent,
	})
	if len(result.Errors) == 0 {
		return nil
	}

	msg := result.Errors[0]
	se := &errors.SyntaxError{
		File:    path,
		Message: msg.Text,
	}
	if loc := msg.Location; loc != nil {
		se.Line = loc.Line
		se.Column = loc.Column
		se.LineText = loc.LineText
	}
	return se
}

func loaderFor(path string) api.Loader {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts", ".mts", ".cts":
		return api.LoaderTS
	case ".jsx":
		return api.LoaderJSX
	case ".tsx":
		return api.LoaderTSX
	default:
		return api.LoaderJS
	}
}
