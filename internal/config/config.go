// Package config provides configuration management for cloudsync using
// Viper for loading from flags, environment variables and an optional
// .cloudsync.yml file.
//
// Values that are still missing after loading (credentials, the folder to
// watch, the sync mode, the target subdomain) are not errors here: the CLI
// asks for them interactively.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// SubdomainLength is the length of a server subdomain identifier.
const SubdomainLength = 23

// ArtifactName is the file name of the intermediate bundle input.
const ArtifactName = "output.js"

type Config struct {
	API    APIConfig    `mapstructure:"api" yaml:"api"`
	Watch  WatchConfig  `mapstructure:"watch" yaml:"watch"`
	Bundle BundleConfig `mapstructure:"bundle" yaml:"bundle"`
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
	Sentry SentryConfig `mapstructure:"sentry" yaml:"sentry"`
}

type APIConfig struct {
	Key     string        `mapstructure:"key" yaml:"key"`
	Secret  string        `mapstructure:"secret" yaml:"secret"`
	BaseURI string        `mapstructure:"base_uri" yaml:"base_uri"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

type WatchConfig struct {
	Folder        string        `mapstructure:"folder" yaml:"folder"`
	Subdomain     string        `mapstructure:"subdomain" yaml:"subdomain"`
	Mode          string        `mapstructure:"mode" yaml:"mode"`
	Extension     string        `mapstructure:"extension" yaml:"extension"`
	DependencyDir string        `mapstructure:"dependency_dir" yaml:"dependency_dir"`
	IgnoreFile    string        `mapstructure:"ignore_file" yaml:"ignore_file"`
	Artifact      string        `mapstructure:"artifact" yaml:"artifact"`
	TriggerKey    string        `mapstructure:"trigger_key" yaml:"trigger_key"`
	Debounce      time.Duration `mapstructure:"debounce" yaml:"debounce"`
}

type BundleConfig struct {
	Externals []string `mapstructure:"externals" yaml:"externals"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

type SentryConfig struct {
	DSN         string `mapstructure:"dsn" yaml:"dsn"`
	Environment string `mapstructure:"environment" yaml:"environment"`
}

// envBindings lists the environment variables accepted for each key in
// addition to the CLOUDSYNC_ prefixed form. The camelCase names are the
// ones the original Node tooling read, kept so existing .env files work.
var envBindings = map[string][]string{
	"api.key":         {"CLOUDSYNC_API_KEY", "moralisApiKey"},
	"api.secret":      {"CLOUDSYNC_API_SECRET", "moralisApiSecret"},
	"watch.folder":    {"CLOUDSYNC_WATCH_FOLDER", "moralisCloudFolder"},
	"watch.subdomain": {"CLOUDSYNC_WATCH_SUBDOMAIN", "moralisSubdomain"},
	"watch.mode":      {"CLOUDSYNC_WATCH_MODE", "moralisAutoSave"},
	"sentry.dsn":      {"CLOUDSYNC_SENTRY_DSN", "SENTRY_DSN"},
}

// SetDefaults registers default values and explicit environment bindings
// on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("api.base_uri", "https://admin.moralis.io")
	v.SetDefault("api.timeout", time.Duration(0))
	v.SetDefault("watch.extension", ".js")
	v.SetDefault("watch.dependency_dir", "node_modules")
	v.SetDefault("watch.ignore_file", ".cloudignore")
	v.SetDefault("watch.artifact", DefaultArtifactPath())
	v.SetDefault("watch.trigger_key", "s")
	v.SetDefault("watch.debounce", time.Duration(0))
	v.SetDefault("bundle.externals", []string{})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "auto")

	for key, names := range envBindings {
		args := append([]string{key}, names...)
		_ = v.BindEnv(args...)
	}
}

// Load decodes the configuration held by v and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Viper leaves string slices from env vars as one comma separated value.
	if len(cfg.Bundle.Externals) == 0 && v.IsSet("bundle.externals") {
		cfg.Bundle.Externals = v.GetStringSlice("bundle.externals")
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// DefaultArtifactPath places the intermediate artifact next to the running
// executable, falling back to the temp directory when that cannot be
// determined.
func DefaultArtifactPath() string {
	exe, err := os.Executable()
	if err != nil {
		return filepath.Join(os.TempDir(), "cloudsync", ArtifactName)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), ArtifactName)
}

// Redacted returns a copy of the configuration that is safe to print.
func (c Config) Redacted() Config {
	out := c
	out.API.Key = mask(c.API.Key)
	out.API.Secret = mask(c.API.Secret)
	out.Sentry.DSN = mask(c.Sentry.DSN)
	out.Bundle.Externals = append([]string(nil), c.Bundle.Externals...)
	return out
}

func mask(value string) string {
	if value == "" {
		return ""
	}
	return "[REDACTED]"
}
