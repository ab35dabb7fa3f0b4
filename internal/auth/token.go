// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"errors"
	"strings"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNoToken is returned when no credential is configured.
	ErrNoToken = errors.New("no access token configured")

	// ErrTokenExpired is returned when the token's exp claim is in the past.
	ErrTokenExpired = errors.New("access token expired")

	// ErrMalformedToken is returned when a token is not a decodable JWT.
	ErrMalformedToken = errors.New("malformed access token")
)

// =============================================================================
// TOKEN SOURCE
// =============================================================================

// TokenSource produces the current access token.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticSource always returns the same token.
type StaticSource string

// Token returns the fixed token, or ErrNoToken when it is blank.
func (s StaticSource) Token(ctx context.Context) (string, error) {
	tok := strings.TrimSpace(string(s))
	if tok == "" {
		return "", ErrNoToken
	}
	return tok, nil
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func(ctx context.Context) (string, error)

// Token calls f.
func (f TokenFunc) Token(ctx context.Context) (string, error) {
	return f(ctx)
}

// Chain returns the first token any source yields. Sources reporting
// ErrNoToken are skipped; any other error stops the search.
func Chain(sources ...TokenSource) TokenSource {
	return TokenFunc(func(ctx context.Context) (string, error) {
		for _, src := range sources {
			if src == nil {
				continue
			}
			tok, err := src.Token(ctx)
			if errors.Is(err, ErrNoToken) {
				continue
			}
			return tok, err
		}
		return "", ErrNoToken
	})
}
