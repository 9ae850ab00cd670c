package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/conneroisu/cloudsync/internal/cloud"
	"github.com/conneroisu/cloudsync/internal/config"
	"github.com/conneroisu/cloudsync/internal/errors"
	"github.com/conneroisu/cloudsync/internal/orchestrator"
	"github.com/conneroisu/cloudsync/internal/prompt"
)

// serverLister fetches the servers owned by an account.
type serverLister interface {
	UserServers(ctx context.Context, apiKey, apiSecret string) ([]cloud.Server, error)
}

// resolveCredentials returns the configured API key and secret, asking for
// whichever is missing.
func resolveCredentials(cfg *config.Config, p *prompt.Prompter) (string, string, error) {
	key := cfg.API.Key
	if key == "" {
		var err error
		if key, err = p.RequireInput("Specify API key:", nil); err != nil {
			return "", "", err
		}
	}

	secret := cfg.API.Secret
	for secret == "" {
		var err error
		if secret, err = p.AskSecret("Specify API secret:"); err != nil {
			return "", "", err
		}
	}

	return key, secret, nil
}

// resolveSession completes the configuration with interactive answers and
// returns the fixed parameters of a sync session.
func resolveSession(ctx context.Context, cfg *config.Config, p *prompt.Prompter, servers serverLister) (orchestrator.Session, error) {
	var session orchestrator.Session

	key, secret, err := resolveCredentials(cfg, p)
	if err != nil {
		return session, err
	}
	session.APIKey, session.APISecret = key, secret

	folder := cfg.Watch.Folder
	if err := config.ValidateFolder(folder); err != nil {
		if folder != "" {
			p.Printer().Error("File not found!")
		}
		if folder, err = p.Folder("Specify path to cloud functions folder:"); err != nil {
			return session, err
		}
	}
	if session.Folder, err = filepath.Abs(folder); err != nil {
		return session, errors.NewIOError(errors.ErrCodeFileNotFound, "failed to resolve folder", err)
	}

	if session.Mode, err = resolveMode(cfg.Watch.Mode, p); err != nil {
		return session, err
	}

	subdomain := cfg.Watch.Subdomain
	if err := config.ValidateSubdomain(subdomain); err != nil {
		list, err := servers.UserServers(ctx, key, secret)
		if err != nil {
			return session, errors.WrapError(err, errors.ErrorTypeNetwork, errors.ErrCodeRequestFailed, "failed to list servers")
		}
		server, err := p.SelectServer(list, subdomain)
		if err != nil {
			return session, err
		}
		subdomain = server.Subdomain
	}
	session.Subdomain = subdomain

	return session, nil
}

func resolveMode(value string, p *prompt.Prompter) (config.Mode, error) {
	if value != "" {
		mode, err := config.ParseMode(value)
		if err == nil {
			return mode, nil
		}
		p.Printer().Error("Invalid input!")
	}

	mode, err := p.SelectMode()
	if err != nil {
		return config.ModeManual, fmt.Errorf("no sync mode selected: %w", err)
	}
	return mode, nil
}
