package cmd

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// flagBinding ties a configuration key to the flag that overrides it.
type flagBinding struct {
	key  string
	flag string
}

var apiBindings = []flagBinding{
	{key: "api.key", flag: "api-key"},
	{key: "api.secret", flag: "api-secret"},
	{key: "api.base_uri", flag: "base-uri"},
	{key: "api.timeout", flag: "timeout"},
}

var watchBindings = []flagBinding{
	{key: "watch.folder", flag: "folder"},
	{key: "watch.subdomain", flag: "subdomain"},
	{key: "watch.mode", flag: "mode"},
	{key: "watch.artifact", flag: "artifact"},
	{key: "bundle.externals", flag: "external"},
}

func addAPIFlags(fs *pflag.FlagSet) {
	fs.StringP("api-key", "k", "", "API key")
	fs.String("api-secret", "", "API secret")
	fs.String("base-uri", "", "API base URI (default https://admin.moralis.io)")
	fs.Duration("timeout", 0, "HTTP request timeout, 0 for none")
}

func addWatchFlags(fs *pflag.FlagSet) {
	fs.StringP("folder", "p", "", "Folder containing the cloud functions")
	fs.StringP("subdomain", "d", "", "Subdomain of the target server")
	fs.StringP("mode", "m", "", "Sync mode: manual-save (0), auto-save (1) or single (2)")
	fs.String("artifact", "", "Path of the intermediate bundle input")
	fs.StringSlice("external", nil, "Package left as a require call instead of being bundled (repeatable)")
}

// bindFlags binds each flag of fs to its configuration key. Keys are
// shared between commands, so binding happens when a command runs rather
// than at init time.
func bindFlags(fs *pflag.FlagSet, bindings []flagBinding) error {
	for _, b := range bindings {
		flag := fs.Lookup(b.flag)
		if flag == nil {
			return fmt.Errorf("unknown flag --%s", b.flag)
		}
		if err := viper.BindPFlag(b.key, flag); err != nil {
			return fmt.Errorf("failed to bind --%s: %w", b.flag, err)
		}
	}
	return nil
}
