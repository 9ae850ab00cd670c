package config

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/conneroisu/cloudsync/internal/logging"
	"github.com/conneroisu/cloudsync/internal/validation"
)

// ValidationError represents a configuration validation error with suggestions
type ValidationError struct {
	Field       string
	Value       interface{}
	Message     string
	Suggestions []string
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", ve.Field, ve.Message)
}

// validateConfig validates the values that cannot be fixed by prompting.
func validateConfig(cfg *Config) error {
	if err := validateAPIConfig(&cfg.API); err != nil {
		return err
	}
	if err := validateWatchConfig(&cfg.Watch); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
		return &ValidationError{Field: "log.level", Value: cfg.Log.Level, Message: err.Error()}
	}
	switch cfg.Log.Format {
	case "", "auto", "text", "json":
	default:
		return &ValidationError{
			Field:       "log.format",
			Value:       cfg.Log.Format,
			Message:     "unsupported log format",
			Suggestions: []string{"use auto, text or json"},
		}
	}
	return nil
}

func validateAPIConfig(api *APIConfig) error {
	if err := validation.ValidateBaseURI(api.BaseURI); err != nil {
		return &ValidationError{
			Field:       "api.base_uri",
			Value:       api.BaseURI,
			Message:     err.Error(),
			Suggestions: []string{"for example https://admin.moralis.io"},
		}
	}
	if api.Timeout < 0 {
		return &ValidationError{Field: "api.timeout", Value: api.Timeout, Message: "must not be negative"}
	}
	return nil
}

func validateWatchConfig(w *WatchConfig) error {
	if !strings.HasPrefix(w.Extension, ".") || len(w.Extension) < 2 {
		return &ValidationError{
			Field:       "watch.extension",
			Value:       w.Extension,
			Message:     "must start with a dot",
			Suggestions: []string{"for example .js"},
		}
	}
	if w.DependencyDir == "" || strings.ContainsAny(w.DependencyDir, `/\`) {
		return &ValidationError{
			Field:   "watch.dependency_dir",
			Value:   w.DependencyDir,
			Message: "must be a single path segment",
		}
	}
	if utf8.RuneCountInString(w.TriggerKey) != 1 {
		return &ValidationError{Field: "watch.trigger_key", Value: w.TriggerKey, Message: "must be exactly one character"}
	}
	if err := validation.ValidateArtifactPath(w.Artifact, w.Extension); err != nil {
		return &ValidationError{Field: "watch.artifact", Value: w.Artifact, Message: err.Error()}
	}
	if w.Debounce < 0 {
		return &ValidationError{Field: "watch.debounce", Value: w.Debounce, Message: "must not be negative"}
	}
	// Mode, folder and subdomain are re-prompted by the CLI when invalid.
	return nil
}

// ValidateSubdomain reports whether subdomain looks like a server
// identifier.
func ValidateSubdomain(subdomain string) error {
	if len(subdomain) != SubdomainLength {
		return &ValidationError{
			Field:   "watch.subdomain",
			Value:   subdomain,
			Message: fmt.Sprintf("must be %d characters long", SubdomainLength),
		}
	}
	return nil
}

// ValidateFolder checks that path exists and is a directory.
func ValidateFolder(path string) error {
	if strings.TrimSpace(path) == "" {
		return &ValidationError{Field: "watch.folder", Value: path, Message: "must not be empty"}
	}
	info, err := os.Stat(path)
	if err != nil {
		return &ValidationError{Field: "watch.folder", Value: path, Message: "File not found!"}
	}
	if !info.IsDir() {
		return &ValidationError{Field: "watch.folder", Value: path, Message: "not a directory"}
	}
	return nil
}
