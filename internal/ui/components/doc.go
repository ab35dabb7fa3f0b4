// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the reusable view pieces of the securechat TUI.
//
// # Key Types
//
//   - Sidebar: session list with the signed-in user and session totals
//   - ToastManager: short-lived status line notifications
//   - MarkdownRenderer: glamour rendering of assistant answers with a cache
//
// Components hold no session state of their own. The chat model builds them
// from a store snapshot when it renders.
package components
