// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/jeranaias/securechat-tui/internal/api"
	"github.com/jeranaias/securechat-tui/internal/auth"
	"github.com/jeranaias/securechat-tui/internal/config"
	"github.com/jeranaias/securechat-tui/internal/controller"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	ExitSuccess       = 0
	ExitGeneralError  = 1
	ExitUsageError    = 2
	ExitConfigError   = 3
	ExitAuthError     = 4
	ExitNetworkError  = 5
	ExitNotFoundError = 7
	ExitTimeoutError  = 8
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// CommandError wraps a failure with the command and action that hit it.
type CommandError struct {
	Command string
	Action  string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Command, e.Action, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ConfigError reports a configuration file that could not be used.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("config: %v", e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// UsageError reports invalid arguments.
type UsageError struct {
	Reason string
}

func (e *UsageError) Error() string {
	return e.Reason
}

// =============================================================================
// MAPPING
// =============================================================================

// ExitCode maps an error to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var (
		cfgErr   *ConfigError
		valErrs  config.ValidateErrors
		usageErr *UsageError
		httpErr  *api.HTTPError
	)
	switch {
	case errors.As(err, &usageErr),
		errors.Is(err, controller.ErrInvalidRating),
		errors.Is(err, controller.ErrNoMessageID),
		errors.Is(err, controller.ErrEmptyMessage),
		errors.Is(err, controller.ErrUnsupportedFile):
		return ExitUsageError
	case errors.As(err, &cfgErr), errors.As(err, &valErrs):
		return ExitConfigError
	case errors.Is(err, auth.ErrNoToken),
		errors.Is(err, auth.ErrTokenExpired),
		errors.Is(err, auth.ErrMalformedToken),
		api.IsUnauthorized(err):
		return ExitAuthError
	case errors.Is(err, controller.ErrSessionNotFound):
		return ExitNotFoundError
	case errors.Is(err, context.DeadlineExceeded):
		return ExitTimeoutError
	case errors.As(err, &httpErr):
		return ExitNetworkError
	}
	return ExitGeneralError
}
