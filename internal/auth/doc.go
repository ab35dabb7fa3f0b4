// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth supplies the bearer credential attached to every backend request.
//
// # Key Types
//
//   - TokenSource: anything that can produce the current access token
//   - StaticSource: a fixed token from config or the environment
//   - FileSource: a token read from disk, re-read when the file changes
//   - Identity: display claims decoded from a JWT access token
//
// # Usage
//
//	src, err := auth.FileSourceFromPath("~/.securechat/token", true)
//	tok, err := src.Token(ctx)
//	id, err := auth.ParseIdentity(tok)
//	fmt.Println("Logged in as", id.DisplayName())
//
// Token acquisition failures never block a request outright; callers decide
// whether to proceed unauthenticated.
package auth
