// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for securechat.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/jeranaias/securechat-tui/internal/logger"
	"github.com/jeranaias/securechat-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete securechat configuration.
type Config struct {
	API  APIConfig  `toml:"api"`
	Auth AuthConfig `toml:"auth"`
	UI   UIConfig   `toml:"ui"`
	Log  LogConfig  `toml:"log"`
}

// APIConfig holds backend connection settings.
type APIConfig struct {
	// BaseURL is the chat backend root, e.g. https://chat.example.mil/api
	BaseURL string `toml:"base_url"`
	// RequestTimeoutSecs bounds non-streaming calls. Streams have no timeout.
	RequestTimeoutSecs int `toml:"request_timeout_secs"`
	// CleanupTimeoutSecs bounds each best-effort session cleanup call
	CleanupTimeoutSecs int `toml:"cleanup_timeout_secs"`
}

// AuthConfig holds credential sources. Token wins over TokenFile.
type AuthConfig struct {
	Token          string `toml:"token"`
	TokenFile      string `toml:"token_file"`
	WatchTokenFile bool   `toml:"watch_token_file"`
}

// UIConfig holds terminal UI settings.
type UIConfig struct {
	// Theme is "auto", "dark" or "light"
	Theme string `toml:"theme"`
	// ScrollTolerance is how many lines from the end still count as the bottom
	ScrollTolerance int `toml:"scroll_tolerance"`
	// RevealIntervalMs paces the reveal of new assistant messages (0 disables)
	RevealIntervalMs int `toml:"reveal_interval_ms"`
	// NotFoundRedirectSecs is how long the session-not-found notice shows
	NotFoundRedirectSecs int `toml:"not_found_redirect_secs"`
	// WordWrap wraps transcript text to the window width
	WordWrap bool `toml:"word_wrap"`
	// ExportDir is where ctrl+e writes transcripts
	ExportDir string `toml:"export_dir"`
	// ExportFormat is "md", "json" or "yaml"
	ExportFormat string `toml:"export_format"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a configuration with default values.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:            "http://localhost:8000",
			RequestTimeoutSecs: 60,
			CleanupTimeoutSecs: 10,
		},
		Auth: AuthConfig{
			TokenFile:      "~/.securechat/token",
			WatchTokenFile: true,
		},
		UI: UIConfig{
			Theme:                "auto",
			ScrollTolerance:      1,
			RevealIntervalMs:     15,
			NotFoundRedirectSecs: 3,
			WordWrap:             true,
			ExportDir:            "~/.securechat/exports",
			ExportFormat:         "md",
		},
		Log: LogConfig{
			Level: "info",
			File:  "~/.securechat/securechat.log",
		},
	}
}

// RequestTimeout returns the non-streaming request timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.API.RequestTimeoutSecs) * time.Second
}

// CleanupTimeout returns the per-call cleanup timeout.
func (c *Config) CleanupTimeout() time.Duration {
	return time.Duration(c.API.CleanupTimeoutSecs) * time.Second
}

// RevealInterval returns the reveal tick interval.
func (c *Config) RevealInterval() time.Duration {
	return time.Duration(c.UI.RevealIntervalMs) * time.Millisecond
}

// NotFoundRedirect returns how long the not-found notice stays up.
func (c *Config) NotFoundRedirect() time.Duration {
	return time.Duration(c.UI.NotFoundRedirectSecs) * time.Second
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the securechat configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".securechat"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ensureSecurePermissions tightens a config file to 0600. It may hold a token.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load reads ~/.securechat/config.toml when it exists, then .env files, then
// SECURECHAT_* environment overrides, and validates the result.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from path. A missing file yields defaults.
func LoadFromPath(path string) (*Config, error) {
	cfg, err := ReadFile(path)
	if err != nil {
		return nil, err
	}

	LoadDotEnv(filepath.Dir(path))
	cfg.ApplyEnvOverrides()
	fillDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ReadFile decodes only the file at path over the defaults, without .env or
// environment overrides. It is what "config set" edits and writes back.
func ReadFile(path string) (*Config, error) {
	cfg := Default()

	if _, statErr := os.Stat(path); statErr == nil {
		if err := ensureSecurePermissions(path); err != nil {
			logger.Logger.Warn().Err(err).Str("path", path).Msg("CONFIG_PERMISSIONS")
		}
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	} else if !os.IsNotExist(statErr) {
		return nil, fmt.Errorf("failed to stat config %s: %w", path, statErr)
	}

	fillDefaults(cfg)
	return cfg, nil
}

// LoadDotEnv loads .env from the working directory and from dir. Variables
// already set in the environment are never overwritten.
func LoadDotEnv(dir string) {
	for _, p := range []string{".env", filepath.Join(dir, ".env")} {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			logger.Logger.Warn().Err(err).Str("path", p).Msg("DOTENV_LOAD_FAILED")
		}
	}
}

// fillDefaults fills zero values left by a partial file.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.API.RequestTimeoutSecs == 0 {
		cfg.API.RequestTimeoutSecs = defaults.API.RequestTimeoutSecs
	}
	if cfg.API.CleanupTimeoutSecs == 0 {
		cfg.API.CleanupTimeoutSecs = defaults.API.CleanupTimeoutSecs
	}
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}
	if cfg.UI.NotFoundRedirectSecs == 0 {
		cfg.UI.NotFoundRedirectSecs = defaults.UI.NotFoundRedirectSecs
	}
	if cfg.UI.ExportDir == "" {
		cfg.UI.ExportDir = defaults.UI.ExportDir
	}
	if cfg.UI.ExportFormat == "" {
		cfg.UI.ExportFormat = defaults.UI.ExportFormat
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes the configuration to the default path.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the configuration as TOML with 0600 permissions.
func SaveTo(cfg *Config, path string) error {
	var b strings.Builder
	b.WriteString("# securechat configuration file\n")
	b.WriteString("# Environment variables SECURECHAT_* override these values.\n\n")

	if err := toml.NewEncoder(&b).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration and returns every problem found.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.API.BaseURL == "" {
		errs = append(errs, ValidationError{Field: "api.base_url", Message: "must not be empty"})
	} else if u, err := url.Parse(c.API.BaseURL); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, ValidationError{
			Field:   "api.base_url",
			Message: fmt.Sprintf("invalid URL '%s', must be http(s)://host[/path]", c.API.BaseURL),
		})
	}
	if c.API.RequestTimeoutSecs < 1 || c.API.RequestTimeoutSecs > 3600 {
		errs = append(errs, ValidationError{Field: "api.request_timeout_secs", Message: "must be between 1 and 3600"})
	}
	if c.API.CleanupTimeoutSecs < 1 || c.API.CleanupTimeoutSecs > 300 {
		errs = append(errs, ValidationError{Field: "api.cleanup_timeout_secs", Message: "must be between 1 and 300"})
	}

	validThemes := map[string]bool{"auto": true, "dark": true, "light": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: auto, dark, light", c.UI.Theme),
		})
	}
	if c.UI.ScrollTolerance < 0 || c.UI.ScrollTolerance > 20 {
		errs = append(errs, ValidationError{Field: "ui.scroll_tolerance", Message: "must be between 0 and 20"})
	}
	if c.UI.RevealIntervalMs < 0 || c.UI.RevealIntervalMs > 1000 {
		errs = append(errs, ValidationError{Field: "ui.reveal_interval_ms", Message: "must be between 0 and 1000"})
	}
	switch strings.ToLower(c.UI.ExportFormat) {
	case "md", "markdown", "json", "yaml", "yml":
	default:
		errs = append(errs, ValidationError{
			Field:   "ui.export_format",
			Message: fmt.Sprintf("invalid format '%s', must be one of: md, json, yaml", c.UI.ExportFormat),
		})
	}
	if c.UI.NotFoundRedirectSecs < 1 || c.UI.NotFoundRedirectSecs > 60 {
		errs = append(errs, ValidationError{Field: "ui.not_found_redirect_secs", Message: "must be between 1 and 60"})
	}

	if !logger.ValidLevel(c.Log.Level) {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides.
//
// Supported variables:
//   - SECURECHAT_API_URL (or REACT_APP_API_URL): overrides api.base_url
//   - SECURECHAT_TOKEN: overrides auth.token
//   - SECURECHAT_TOKEN_FILE: overrides auth.token_file
//   - SECURECHAT_LOG_LEVEL: overrides log.level
func (c *Config) ApplyEnvOverrides() {
	if u := os.Getenv("REACT_APP_API_URL"); u != "" {
		c.API.BaseURL = u
	}
	if u := os.Getenv("SECURECHAT_API_URL"); u != "" {
		c.API.BaseURL = u
	}
	if tok := os.Getenv("SECURECHAT_TOKEN"); tok != "" {
		c.Auth.Token = tok
	}
	if f := os.Getenv("SECURECHAT_TOKEN_FILE"); f != "" {
		c.Auth.TokenFile = f
	}
	if lvl := os.Getenv("SECURECHAT_LOG_LEVEL"); lvl != "" {
		c.Log.Level = lvl
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "ui.theme").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation. String values are
// converted to the field's type.
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if key == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")
	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			if field.Kind() == reflect.Struct {
				return reflect.Value{}, fmt.Errorf("'%s' is a section, not a value", key)
			}
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})
	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(part[:1]))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}
	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Bool:
			boolVal, err := strconv.ParseBool(strVal)
			if err != nil {
				return fmt.Errorf("invalid boolean value: %v", err)
			}
			field.SetBool(boolVal)
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// AllKeys returns every configuration key in dot notation.
func AllKeys() []string {
	return []string{
		"api.base_url",
		"api.request_timeout_secs",
		"api.cleanup_timeout_secs",
		"auth.token",
		"auth.token_file",
		"auth.watch_token_file",
		"ui.theme",
		"ui.scroll_tolerance",
		"ui.reveal_interval_ms",
		"ui.not_found_redirect_secs",
		"ui.word_wrap",
		"ui.export_dir",
		"ui.export_format",
		"log.level",
		"log.file",
	}
}

// =============================================================================
// DISPLAY
// =============================================================================

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() *Config {
	safe := c.Clone()
	if safe.Auth.Token != "" {
		safe.Auth.Token = "[REDACTED]"
	}
	return safe
}

// String renders the redacted configuration as TOML.
func (c *Config) String() string {
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(c.Redacted()); err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return b.String()
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration, loading it on first access.
// A load failure falls back to defaults with environment overrides.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			logger.Logger.Warn().Err(err).Msg("CONFIG_LOAD_FAILED_USING_DEFAULTS")
			cfg = Default()
			cfg.ApplyEnvOverrides()
		}
		globalConfigMu.Lock()
		if globalConfig == nil {
			globalConfig = cfg
		}
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigOnce.Do(func() {})
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state between tests.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
