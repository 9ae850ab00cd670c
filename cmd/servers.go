package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/cloudsync/internal/config"
	"github.com/conneroisu/cloudsync/internal/console"
	"github.com/conneroisu/cloudsync/internal/logging"
	"github.com/conneroisu/cloudsync/internal/prompt"
)

var serversCmd = &cobra.Command{
	Use:   "servers",
	Short: "List the servers of your account",
	Long: `List the name and subdomain of every server owned by the account the
API credentials belong to. Use a subdomain with "cloudsync watch -d".`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd.Flags(), apiBindings)
	},
	RunE: runServers,
}

func init() {
	rootCmd.AddCommand(serversCmd)
	addAPIFlags(serversCmd.Flags())
}

func runServers(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := newLogger(cfg, console.NewTermWriter(cmd.ErrOrStderr()))
	if err != nil {
		return err
	}

	p := prompt.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
	key, secret, err := resolveCredentials(cfg, p)
	if err != nil {
		return err
	}

	perf := logging.StartOperation(logger, "list-servers")
	servers, err := newClient(cfg, logger).UserServers(cmd.Context(), key, secret)
	if err != nil {
		perf.EndWithError(cmd.Context(), err)
		return fmt.Errorf("failed to list servers: %w", err)
	}
	perf.End(cmd.Context())

	printer := console.NewPrinter(cmd.OutOrStdout())
	if len(servers) == 0 {
		printer.Info("No servers found")
		return nil
	}
	for _, s := range servers {
		printer.Plain("%-30s %s", s.Name, s.Subdomain)
	}
	return nil
}
