// Package trigger provides the sources that decide when a sync cycle runs.
//
// Every source reports the same signal, a call to fire with a short
// human readable reason. Whether that call starts a cycle is up to the
// receiver.
package trigger

import (
	"context"
	"errors"
)

// FireFunc requests one sync cycle. It must not block.
type FireFunc func(reason string)

// Source produces sync requests until its context is cancelled or the
// source runs out of input.
type Source interface {
	// Name identifies the source in logs.
	Name() string
	// Banner is the line shown to the user while the source is armed.
	Banner() string
	// Run blocks, calling fire for every request.
	Run(ctx context.Context, fire FireFunc) error
}

// ErrInterrupted is returned by a keypress source when the user pressed
// Ctrl+C while the terminal was in raw mode.
var ErrInterrupted = errors.New("interrupted")
