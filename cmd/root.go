// Package cmd provides the command-line interface for cloudsync.
//
// Configuration is resolved from several sources, highest priority first:
//
//  1. Command-line flags (--api-key, --folder, etc.)
//  2. Environment variables: CLOUDSYNC_<SECTION>_<OPTION>, plus the legacy
//     moralisApiKey, moralisApiSecret, moralisCloudFolder, moralisSubdomain
//     and moralisAutoSave names
//  3. A .env file in the working directory (never overrides the real
//     environment)
//  4. The configuration file: --config, CLOUDSYNC_CONFIG_FILE or
//     .cloudsync.yml
//
// Anything still missing is asked for interactively by the watch command.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"

	"github.com/conneroisu/cloudsync/internal/config"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cloudsync",
	Short: "Keep a server's cloud functions in sync with a local folder",
	Long: `cloudsync watches a local folder of JavaScript cloud functions, checks and
bundles them, and uploads the bundle to your server.

Quick Start:
  cloudsync watch                          Prompt for anything missing, then sync
  cloudsync watch -p ./cloud -m auto-save  Upload on every change
  cloudsync watch -p ./cloud -m single     Upload once and exit
  cloudsync servers                        List your servers
  cloudsync config show                    Show the resolved configuration`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .cloudsync.yml, can also use CLOUDSYNC_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig wires viper to the config file, the environment and the
// defaults of internal/config.
func initConfig() {
	loadDotEnv(".env")

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("CLOUDSYNC_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".cloudsync")
	}

	viper.SetEnvPrefix("CLOUDSYNC")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	config.SetDefaults(viper.GetViper())

	// A missing file is fine, defaults and the environment still apply.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadDotEnv exports the variables of path that are not already set.
func loadDotEnv(path string) {
	if err := gotenv.Load(path); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Ignoring %s: %v\n", path, err)
	}
}
