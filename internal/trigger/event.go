package trigger

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/conneroisu/cloudsync/internal/aggregate"
	"github.com/conneroisu/cloudsync/internal/logging"
	"github.com/conneroisu/cloudsync/internal/watcher"
)

// EventSource fires whenever a relevant file under the folder changes.
type EventSource struct {
	folder   string
	filter   aggregate.Filter
	debounce time.Duration
	ignored  map[string]bool
	logger   logging.Logger
	ready    chan struct{}
}

// NewEventSource watches folder recursively. Paths listed in ignore never
// fire, which keeps the sync artifact from re-triggering a cycle when it
// lives inside the folder.
func NewEventSource(folder string, filter aggregate.Filter, debounce time.Duration, logger logging.Logger, ignore ...string) *EventSource {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	ignored := make(map[string]bool, len(ignore))
	for _, p := range ignore {
		if abs, err := filepath.Abs(p); err == nil {
			ignored[abs] = true
		}
	}
	return &EventSource{
		folder:   folder,
		filter:   filter,
		debounce: debounce,
		ignored:  ignored,
		logger:   logger.WithComponent("trigger"),
		ready:    make(chan struct{}),
	}
}

func (s *EventSource) Name() string { return "auto-save" }

func (s *EventSource) Banner() string {
	return fmt.Sprintf("Listening folder: %s", s.folder)
}

// Ready is closed once the watches are in place.
func (s *EventSource) Ready() <-chan struct{} {
	return s.ready
}

func (s *EventSource) Run(ctx context.Context, fire FireFunc) error {
	fw, err := watcher.NewFileWatcher(s.debounce, s.logger)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fw.Stop()

	if s.filter.DependencyDir != "" {
		fw.ExcludeDir(s.filter.DependencyDir)
	}
	fw.AddFilter(s.filter.Match)
	fw.AddFilter(func(path string) bool { return !s.ignored[path] })
	fw.AddHandler(func(events []watcher.ChangeEvent) error {
		if len(events) == 0 {
			return nil
		}
		first := events[0]
		fire(fmt.Sprintf("%s %s", first.Type, first.Path))
		return nil
	})

	if err := fw.AddRecursive(s.folder); err != nil {
		return fmt.Errorf("failed to watch %s: %w", s.folder, err)
	}
	if err := fw.Start(ctx); err != nil {
		return err
	}
	close(s.ready)

	s.logger.Debug(ctx, "Watching folder", "folder", s.folder, "dirs", len(fw.WatchList()))
	<-ctx.Done()
	return nil
}
