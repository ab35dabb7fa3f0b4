// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and messages.
//
// # Key Types
//
//   - ChatSession: one sidebar entry with its transcript and running token/cost totals
//   - Message: a single user or assistant entry; assistant placeholders carry Pending
//   - HistoryEntry: the wire form of prior messages sent with each request
//
// Sessions and messages are plain values. The session store copies a session,
// edits the copy and swaps it in, so a snapshot handed to the UI never changes
// underneath it.
//
// # Usage
//
//	s := model.NewChatSession(1)
//	s.Append(model.NewUserMessage("Hello"))
//	s.Append(model.NewPlaceholder())
//	history := s.History(model.MaxHistory)
package model
