// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the Bubble Tea model for the securechat TUI.
//
// The model renders two pages: the Overview (static guidance) and the Chat
// page (sidebar, transcript and composer). It never edits sessions directly.
// Sends go through the streaming controller, uploads through the upload
// controller, and rename/delete through the session store. Store changes
// arrive as messages on a channel and trigger a re-render from a fresh
// snapshot.
//
// # Key Types
//
//   - Model: the tea.Model
//   - Deps: the store, controllers and settings the model drives
//   - KeyMap: keyboard bindings, also used for the help view
//
// # Usage
//
//	m := chat.New(chat.Deps{Store: store, Streaming: sc, Upload: uc, Feedback: fc, Config: cfg})
//	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
//	_, err := p.Run()
package chat
