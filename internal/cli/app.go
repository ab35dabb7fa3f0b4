// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"io"
	"os"

	"github.com/jeranaias/securechat-tui/internal/api"
	"github.com/jeranaias/securechat-tui/internal/auth"
	"github.com/jeranaias/securechat-tui/internal/config"
	"github.com/jeranaias/securechat-tui/internal/logger"
	"github.com/jeranaias/securechat-tui/internal/session"
	"github.com/jeranaias/securechat-tui/internal/util"
)

// =============================================================================
// OPTIONS
// =============================================================================

// Options are the persistent flags shared by every command.
type Options struct {
	ConfigPath string
	LogLevel   string
	APIURL     string
	JSON       bool
}

// configPath returns the --config path or the default location.
func (o *Options) configPath() (string, error) {
	if o.ConfigPath != "" {
		return util.ExpandHome(o.ConfigPath), nil
	}
	path, err := config.ConfigPath()
	if err != nil {
		return "", &ConfigError{Err: err}
	}
	return path, nil
}

// loadConfig reads the config file, then applies flag overrides on top of
// the environment.
func loadConfig(opts *Options) (*config.Config, error) {
	path, err := opts.configPath()
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadFromPath(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}

	if opts.APIURL != "" {
		cfg.API.BaseURL = opts.APIURL
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	return cfg, nil
}

// =============================================================================
// APP
// =============================================================================

// App bundles what the commands share: configuration, credentials and the
// backend client.
type App struct {
	Config *config.Config
	Tokens auth.TokenSource
	Client *api.Client

	tokenFile *auth.FileSource
	logFile   *os.File
}

// appMode selects where logs go.
type appMode int

const (
	// modeCLI logs to stderr.
	modeCLI appMode = iota
	// modeTUI logs to the configured file; the terminal belongs to the UI.
	modeTUI
)

// newApp loads configuration and wires logging, credentials and the client.
func newApp(opts *Options, mode appMode, stderr io.Writer) (*App, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	config.SetGlobal(cfg)
	app := &App{Config: cfg}
	app.setupLogging(mode, stderr)
	app.Tokens = app.buildTokenSource(mode == modeTUI)
	app.Client = api.NewClient(cfg.API.BaseURL, app.Tokens).WithTimeout(cfg.RequestTimeout())

	logger.Logger.Debug().
		Str("base_url", cfg.API.BaseURL).
		Str("mode", mode.String()).
		Msg("APP_STARTED")
	return app, nil
}

func (m appMode) String() string {
	if m == modeTUI {
		return "tui"
	}
	return "cli"
}

func (a *App) setupLogging(mode appMode, stderr io.Writer) {
	level := a.Config.Log.Level
	if mode == modeCLI {
		logger.Configure(level, stderr, true)
		return
	}

	f, err := logger.OpenFile(util.ExpandHome(a.Config.Log.File))
	if err != nil {
		// Nowhere visible to report it once the UI owns the screen.
		logger.Configure(level, io.Discard, false)
		return
	}
	a.logFile = f
	logger.Configure(level, f, false)
}

// buildTokenSource prefers an explicit token, then the token file. JWTs past
// their expiry are refused before any request is sent.
func (a *App) buildTokenSource(watch bool) auth.TokenSource {
	var sources []auth.TokenSource
	if a.Config.Auth.Token != "" {
		sources = append(sources, auth.StaticSource(a.Config.Auth.Token))
	}
	if path := a.Config.Auth.TokenFile; path != "" {
		fs := auth.NewFileSource(path)
		if watch && a.Config.Auth.WatchTokenFile {
			if err := fs.Watch(); err != nil {
				logger.Logger.Warn().Err(err).Str("path", fs.Path()).Msg("TOKEN_WATCH_FAILED")
			}
		}
		a.tokenFile = fs
		sources = append(sources, fs)
	}
	return auth.CheckExpiry(auth.Chain(sources...), nil)
}

// NewStore creates an in-memory session store that cleans up through the client.
func (a *App) NewStore() *session.Store {
	return session.NewStore(session.Config{CleanupTimeout: a.Config.CleanupTimeout()}, a.Client)
}

// Identity decodes the current access token.
func (a *App) Identity(ctx context.Context) (auth.Identity, error) {
	tok, err := a.Tokens.Token(ctx)
	if err != nil {
		return auth.Identity{}, err
	}
	return auth.ParseIdentity(tok)
}

// UserName is the sidebar name for the current user.
func (a *App) UserName(ctx context.Context) string {
	id, err := a.Identity(ctx)
	if err != nil {
		return "unknown"
	}
	return id.DisplayName()
}

// Shutdown runs the final session cleanup, bounded by the cleanup timeout.
func (a *App) Shutdown(store *session.Store) {
	ctx, cancel := context.WithTimeout(context.Background(), a.Config.CleanupTimeout())
	defer cancel()
	if err := store.Shutdown(ctx); err != nil {
		logger.Logger.Warn().Err(err).Msg("SHUTDOWN_CLEANUP_INCOMPLETE")
	}
}

// Close releases the token watcher and log file.
func (a *App) Close() {
	if a.tokenFile != nil {
		a.tokenFile.Close()
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
}
