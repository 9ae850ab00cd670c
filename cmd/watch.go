package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/cloudsync/internal/aggregate"
	"github.com/conneroisu/cloudsync/internal/bundle"
	"github.com/conneroisu/cloudsync/internal/cloud"
	"github.com/conneroisu/cloudsync/internal/config"
	"github.com/conneroisu/cloudsync/internal/console"
	"github.com/conneroisu/cloudsync/internal/logging"
	"github.com/conneroisu/cloudsync/internal/orchestrator"
	"github.com/conneroisu/cloudsync/internal/prompt"
	"github.com/conneroisu/cloudsync/internal/reporting"
	"github.com/conneroisu/cloudsync/internal/syntax"
	"github.com/conneroisu/cloudsync/internal/trigger"
	"github.com/conneroisu/cloudsync/internal/version"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Aliases: []string{"watch-cloud-folder", "w"},
	Short:   "Sync a folder of cloud functions to a server",
	Long: `Aggregate, syntax-check and bundle the cloud functions of a folder and
upload the bundle to a server.

Modes:
  manual-save (0)  upload each time the trigger key is pressed
  auto-save (1)    upload on every change to a source file
  single (2)       upload once and exit

Missing values are asked for interactively.

Examples:
  cloudsync watch
  cloudsync watch -k $KEY --api-secret $SECRET -p ./cloud -d <subdomain> -m auto-save
  cloudsync watch -p ./cloud -m single --external sharp`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := bindFlags(cmd.Flags(), apiBindings); err != nil {
			return err
		}
		return bindFlags(cmd.Flags(), watchBindings)
	},
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	addAPIFlags(watchCmd.Flags())
	addWatchFlags(watchCmd.Flags())
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	stdout := console.NewTermWriter(cmd.OutOrStdout())
	stderr := console.NewTermWriter(cmd.ErrOrStderr())
	printer := console.NewPrinter(stdout, console.WithColorFrom(cmd.OutOrStdout()))

	logger, err := newLogger(cfg, stderr)
	if err != nil {
		return err
	}

	reporter, err := reporting.New(cfg.Sentry, version.GetVersion())
	if err != nil {
		logger.Warn(cmd.Context(), err, "Error tracking disabled")
		reporter = reporting.Nop{}
	}
	defer reporter.Flush(2 * time.Second)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := newClient(cfg, logger)
	session, err := resolveSession(ctx, cfg, prompt.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout()), client)
	if err != nil {
		return err
	}

	filter := aggregate.Filter{Extension: cfg.Watch.Extension, DependencyDir: cfg.Watch.DependencyDir}
	agg := aggregate.NewAggregator(filter, cfg.Watch.IgnoreFile, syntax.NewValidator(), logger)
	bundler := bundle.NewBundler(bundle.Options{
		Externals: cfg.Bundle.Externals,
		NodePaths: []string{filepath.Join(session.Folder, cfg.Watch.DependencyDir)},
	}, logger)

	orch := orchestrator.New(session, agg, bundler, client, orchestrator.Options{
		ArtifactPath: cfg.Watch.Artifact,
		Printer:      printer,
		Logger:       logger,
		Notifier:     reporter,
	})

	source := newSource(cfg, session, filter, cmd, logger, func(raw bool) {
		stdout.SetRaw(raw)
		stderr.SetRaw(raw)
	})

	return orch.Run(ctx, source)
}

// newSource builds the trigger source for the session's mode.
func newSource(cfg *config.Config, session orchestrator.Session, filter aggregate.Filter, cmd *cobra.Command, logger logging.Logger, onRaw func(bool)) trigger.Source {
	switch session.Mode {
	case config.ModeAuto:
		return trigger.NewEventSource(session.Folder, filter, cfg.Watch.Debounce, logger, cfg.Watch.Artifact)
	case config.ModeSingle:
		return trigger.NewOnceSource(session.Folder)
	default:
		key, _ := utf8.DecodeRuneInString(cfg.Watch.TriggerKey)
		return trigger.NewKeySource(cmd.InOrStdin(), key, logger, trigger.WithRawModeHook(onRaw))
	}
}

func newLogger(cfg *config.Config, output *console.TermWriter) (logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	return logging.NewLogger(&logging.LoggerConfig{
		Level:     level,
		Format:    cfg.Log.Format,
		Output:    output,
		Component: "cloudsync",
	}), nil
}

func newClient(cfg *config.Config, logger logging.Logger) *cloud.Client {
	return cloud.NewClient(cfg.API.BaseURI, logger,
		cloud.WithTimeout(cfg.API.Timeout),
		cloud.WithUserAgent(version.UserAgent()),
	)
}

