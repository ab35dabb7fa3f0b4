// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session provides the in-memory chat session store.
//
// The store is the single owner of every ChatSession. Controllers and the UI
// read snapshots and write through Store methods keyed by session id; a write
// aimed at a session that has since been deleted is a no-op.
//
// # Key Types
//
//   - Store: ordered sessions with copy-on-write updates
//   - Cleaner: remote cleanup hook invoked after local deletion
//   - Change / Observer: post-commit notifications used to drive redraws
//
// # Usage
//
//	store := session.NewStore(session.DefaultConfig(), apiClient)
//	id := store.Create()
//	store.Observe(func(c session.Change) { program.Send(storeChangedMsg(c)) })
//	store.Rename(id, "Quarterly report")
//	tokens, cost := store.Totals()
//
// Sessions are never written to disk.
package session
