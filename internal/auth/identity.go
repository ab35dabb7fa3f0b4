// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity holds the display claims of an access token. The signature is not
// checked here; the backend is the authority on validity.
type Identity struct {
	Subject   string
	Name      string
	Email     string
	Username  string
	ExpiresAt time.Time
}

// DisplayName returns the best human-readable name available.
func (id Identity) DisplayName() string {
	for _, v := range []string{id.Name, id.Username, id.Email, id.Subject} {
		if v != "" {
			return v
		}
	}
	return "unknown"
}

// Expired reports whether the token has an exp claim before now.
func (id Identity) Expired(now time.Time) bool {
	return !id.ExpiresAt.IsZero() && now.After(id.ExpiresAt)
}

// ParseIdentity decodes the claims of a JWT without verifying it.
func ParseIdentity(token string) (Identity, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	id := Identity{
		Subject:  claimString(claims, "sub"),
		Name:     claimString(claims, "name"),
		Email:    claimString(claims, "email"),
		Username: claimString(claims, "preferred_username"),
	}
	if id.Username == "" {
		id.Username = claimString(claims, "upn")
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		id.ExpiresAt = exp.Time
	}
	return id, nil
}

func claimString(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}

// CheckExpiry wraps src so that JWTs past their exp claim yield ErrTokenExpired.
// Tokens that are not JWTs are passed through untouched.
func CheckExpiry(src TokenSource, now func() time.Time) TokenSource {
	if now == nil {
		now = time.Now
	}
	return TokenFunc(func(ctx context.Context) (string, error) {
		tok, err := src.Token(ctx)
		if err != nil {
			return "", err
		}
		id, perr := ParseIdentity(tok)
		if perr == nil && id.Expired(now()) {
			return "", ErrTokenExpired
		}
		return tok, nil
	})
}
