// Package orchestrator runs sync cycles: aggregate the watched folder,
// bundle it and upload the result.
//
// At most one cycle runs at a time. A trigger that arrives while a cycle
// is in flight is dropped, not queued.
package orchestrator

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/conneroisu/cloudsync/internal/aggregate"
	"github.com/conneroisu/cloudsync/internal/cloud"
	"github.com/conneroisu/cloudsync/internal/config"
	"github.com/conneroisu/cloudsync/internal/console"
	"github.com/conneroisu/cloudsync/internal/errors"
	"github.com/conneroisu/cloudsync/internal/logging"
	"github.com/conneroisu/cloudsync/internal/trigger"
)

// State is the phase of the orchestrator.
type State int32

const (
	StateIdle State = iota
	StateAggregating
	StateBundling
	StateUploading
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAggregating:
		return "aggregating"
	case StateBundling:
		return "bundling"
	case StateUploading:
		return "uploading"
	default:
		return "unknown"
	}
}

// Session holds what a sync session targets. It is fixed for the life of
// the session.
type Session struct {
	Folder    string
	Subdomain string
	APIKey    string
	APISecret string
	Mode      config.Mode
}

// Aggregator concatenates the folder's source files.
type Aggregator interface {
	Aggregate(ctx context.Context, root string) (*aggregate.Result, error)
}

// Bundler turns the artifact into a single module.
type Bundler interface {
	Bundle(ctx context.Context, entry string) (string, error)
}

// Uploader sends the bundle to the backend.
type Uploader interface {
	SaveCloud(ctx context.Context, req cloud.SaveCloudRequest) error
}

// Cycle describes one run of the pipeline.
type Cycle struct {
	ID     uint64
	Reason string
	Files  []string
	Bundle string
}

// Result is the outcome of a cycle.
type Result struct {
	Cycle      *Cycle
	Err        error
	Duration   time.Duration
	FinishedAt time.Time
}

// Callback is called after every cycle.
type Callback func(result Result)

// ErrBusy is returned by RunCycle while another cycle is in flight.
var ErrBusy = stderrors.New("sync already running")

// Options configures an Orchestrator.
type Options struct {
	// ArtifactPath is where the aggregated source is written for bundling.
	ArtifactPath string
	Printer      *console.Printer
	Logger       logging.Logger
	Notifier     errors.Notifier
}

// Orchestrator owns the sync state machine of one session.
type Orchestrator struct {
	session    Session
	aggregator Aggregator
	bundler    Bundler
	uploader   Uploader
	artifact   string

	printer    *console.Printer
	logger     logging.Logger
	errHandler *errors.ErrorHandler
	metrics    *Metrics

	state    atomic.Int32
	cycleIDs atomic.Uint64

	mu        sync.Mutex
	stopping  bool
	banner    string
	last      *Result
	callbacks []Callback
	wg        sync.WaitGroup
}

// New creates an orchestrator in the idle state.
func New(session Session, agg Aggregator, bundler Bundler, uploader Uploader, opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	logger = logger.WithComponent("orchestrator")

	printer := opts.Printer
	if printer == nil {
		printer = console.NewPrinter(os.Stdout)
	}

	artifact := opts.ArtifactPath
	if artifact == "" {
		artifact = config.DefaultArtifactPath()
	}

	return &Orchestrator{
		session:    session,
		aggregator: agg,
		bundler:    bundler,
		uploader:   uploader,
		artifact:   artifact,
		printer:    printer,
		logger:     logger,
		errHandler: errors.NewErrorHandler(logger, opts.Notifier),
		metrics:    &Metrics{},
	}
}

// AddCallback registers fn to run after every cycle.
func (o *Orchestrator) AddCallback(fn Callback) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.callbacks = append(o.callbacks, fn)
}

// State returns the current phase.
func (o *Orchestrator) State() State {
	return State(o.state.Load())
}

// LastResult returns the outcome of the most recent finished cycle, or nil.
func (o *Orchestrator) LastResult() *Result {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.last
}

// Metrics returns a snapshot of the cycle counters.
func (o *Orchestrator) Metrics() MetricsSnapshot {
	return o.metrics.Snapshot()
}

// Fire starts a cycle in the background when the orchestrator is idle and
// reports whether it did.
func (o *Orchestrator) Fire(ctx context.Context, reason string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.stopping {
		return false
	}
	if !o.state.CompareAndSwap(int32(StateIdle), int32(StateAggregating)) {
		o.metrics.RecordDropped()
		o.logger.Debug(ctx, "Sync already running, trigger dropped", "reason", reason, "state", o.State().String())
		return false
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		o.runCycle(ctx, reason)
	}()
	return true
}

// RunCycle runs one cycle on the calling goroutine. It returns ErrBusy
// without doing anything when another cycle is in flight.
func (o *Orchestrator) RunCycle(ctx context.Context, reason string) (*Cycle, error) {
	if !o.state.CompareAndSwap(int32(StateIdle), int32(StateAggregating)) {
		o.metrics.RecordDropped()
		return nil, ErrBusy
	}
	result := o.runCycle(ctx, reason)
	return result.Cycle, result.Err
}

// Wait blocks until no cycle is running.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// Run arms source and serves its triggers until the source returns. The
// cycle in flight at that point is allowed to finish.
func (o *Orchestrator) Run(ctx context.Context, source trigger.Source) error {
	o.mu.Lock()
	o.stopping = false
	o.banner = source.Banner()
	o.mu.Unlock()

	o.logger.Info(ctx, "Session started",
		"source", source.Name(),
		"folder", o.session.Folder,
		"subdomain", o.session.Subdomain,
	)
	o.printer.Info(source.Banner())

	err := source.Run(ctx, func(reason string) {
		o.Fire(ctx, reason)
	})

	o.mu.Lock()
	o.stopping = true
	o.mu.Unlock()
	o.wg.Wait()

	m := o.metrics.Snapshot()
	o.logger.Info(ctx, "Session ended",
		"cycles", m.TotalCycles,
		"failed", m.FailedCycles,
		"dropped", m.DroppedTriggers,
	)

	if stderrors.Is(err, trigger.ErrInterrupted) {
		return nil
	}
	return err
}

func (o *Orchestrator) runCycle(ctx context.Context, reason string) Result {
	cycle := &Cycle{ID: o.cycleIDs.Add(1), Reason: reason}
	logger := o.logger.With("cycle", cycle.ID)
	perf := logging.StartOperation(logger, "sync")
	start := time.Now()

	logger.Debug(ctx, "Sync started", "reason", reason)
	err := o.execute(ctx, logger, cycle)

	result := Result{
		Cycle:      cycle,
		Err:        err,
		Duration:   time.Since(start),
		FinishedAt: time.Now(),
	}
	if err != nil {
		perf.EndWithError(ctx, err)
	} else {
		perf.End(ctx)
	}

	o.report(ctx, err)
	o.metrics.RecordCycle(result)

	o.mu.Lock()
	o.last = &result
	callbacks := o.callbacks
	o.mu.Unlock()

	o.setState(StateIdle)

	for _, cb := range callbacks {
		cb(result)
	}
	return result
}

// execute walks the pipeline. The artifact is removed before aggregation
// and again once the cycle ends, whatever the outcome.
func (o *Orchestrator) execute(ctx context.Context, logger logging.Logger, cycle *Cycle) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.NewInternalError(errors.ErrCodePanic, fmt.Sprintf("panic during sync: %v", r), nil)
		}
	}()

	if err := o.removeArtifact(); err != nil {
		return err
	}
	defer func() {
		if rmErr := o.removeArtifact(); rmErr != nil {
			logger.Warn(ctx, rmErr, "Failed to remove artifact", "path", o.artifact)
		}
	}()

	o.setState(StateAggregating)
	agg, err := o.aggregator.Aggregate(ctx, o.session.Folder)
	if err != nil {
		return err
	}
	cycle.Files = agg.Files
	logger.Debug(ctx, "Folder aggregated", "files", len(agg.Files))

	if err := o.writeArtifact(agg.Source); err != nil {
		return err
	}

	o.setState(StateBundling)
	code, err := o.bundler.Bundle(ctx, o.artifact)
	if err != nil {
		return err
	}
	cycle.Bundle = code

	o.setState(StateUploading)
	o.printer.Info("Uploading...")
	return o.uploader.SaveCloud(ctx, cloud.SaveCloudRequest{
		APIKey:    o.session.APIKey,
		APISecret: o.session.APISecret,
		Subdomain: o.session.Subdomain,
		Cloud:     code,
		IsCli:     true,
	})
}

// report prints the cycle outcome and hands errors to the error handler.
func (o *Orchestrator) report(ctx context.Context, err error) {
	if err == nil {
		o.printer.Success("Changes Uploaded Correctly")
		o.reprintBanner()
		return
	}

	var syntaxErr *errors.SyntaxError
	switch {
	case stderrors.Is(err, context.Canceled):
		o.printer.Info("Sync cancelled")
		return
	case stderrors.As(err, &syntaxErr):
		o.printer.Error(syntaxErr.Report())
	case errors.IsBundleError(err):
		o.printer.Error("Error saving file, please try again")
		o.printer.Error("%v", err)
	case errors.IsUploadError(err) || errors.GetErrorType(err) == errors.ErrorTypeNetwork:
		o.printer.Error("Upload error")
		o.printer.Error("%v", err)
	default:
		o.printer.Error("Unexpected error: %v", err)
	}

	o.errHandler.Handle(ctx, err)
	o.reprintBanner()
}

// reprintBanner reminds the user that the session is armed again.
func (o *Orchestrator) reprintBanner() {
	if o.session.Mode == config.ModeSingle {
		return
	}
	o.mu.Lock()
	banner := o.banner
	o.mu.Unlock()
	if banner != "" {
		o.printer.Info(banner)
	}
}

func (o *Orchestrator) setState(s State) {
	o.state.Store(int32(s))
}

func (o *Orchestrator) writeArtifact(source string) error {
	if err := os.MkdirAll(filepath.Dir(o.artifact), 0o755); err != nil {
		return errors.NewIOError(errors.ErrCodeArtifact, "failed to create artifact directory", err).
			WithContext("path", o.artifact)
	}
	if err := os.WriteFile(o.artifact, []byte(source), 0o644); err != nil {
		return errors.NewIOError(errors.ErrCodeArtifact, "failed to write artifact", err).
			WithContext("path", o.artifact)
	}
	return nil
}

func (o *Orchestrator) removeArtifact() error {
	if err := os.Remove(o.artifact); err != nil && !os.IsNotExist(err) {
		return errors.NewIOError(errors.ErrCodeArtifact, "failed to remove artifact", err).
			WithContext("path", o.artifact)
	}
	return nil
}
