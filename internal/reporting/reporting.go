// Package reporting forwards unexpected failures to Sentry.
package reporting

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/conneroisu/cloudsync/internal/config"
	cserrors "github.com/conneroisu/cloudsync/internal/errors"
)

// Reporter receives errors nobody else could handle.
type Reporter interface {
	Notify(ctx context.Context, err error)
	Flush(timeout time.Duration) bool
}

// New returns a Sentry backed reporter, or a no-op one when no DSN is
// configured.
func New(cfg config.SentryConfig, release string) (Reporter, error) {
	if cfg.DSN == "" {
		return Nop{}, nil
	}

	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		Release:     release,
	})
	if err != nil {
		return nil, err
	}

	return &SentryReporter{hub: sentry.NewHub(client, sentry.NewScope())}, nil
}

// SentryReporter captures errors on its own hub.
type SentryReporter struct {
	hub *sentry.Hub
}

func (r *SentryReporter) Notify(ctx context.Context, err error) {
	if err == nil {
		return
	}
	r.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("error_type", string(cserrors.GetErrorType(err)))
		r.hub.CaptureException(err)
	})
}

func (r *SentryReporter) Flush(timeout time.Duration) bool {
	return r.hub.Flush(timeout)
}

// Nop drops everything.
type Nop struct{}

func (Nop) Notify(context.Context, error) {}

func (Nop) Flush(time.Duration) bool { return true }
