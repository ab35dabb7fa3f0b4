// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for securechat.
//
// # Key Types
//
//   - Config: all settings, grouped as [api], [auth], [ui] and [log]
//   - ValidationError / ValidateErrors: every problem found by Validate
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (SECURECHAT_*)
//   - .env in the working directory, then ~/.securechat/.env
//   - ~/.securechat/config.toml
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	client := api.NewClient(cfg.API.BaseURL, tokens).WithTimeout(cfg.RequestTimeout())
package config
