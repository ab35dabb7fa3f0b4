// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package controller turns user actions into session mutations.
//
// Controllers never hold session state themselves. They read and write
// through a *session.Store keyed by session id, so a reply that lands after
// its session was deleted simply has nothing to write to.
//
// # Key Types
//
//   - StreamingController: one chat turn from user text to finalized reply
//   - UploadController: document summary injected as an assistant message
//   - FeedbackController: rating and comment for a finalized reply
//   - Guard: the process-wide single in-flight turn flag
//   - TurnState: Idle, Sending, Streaming, Finalizing, Errored
//
// # Usage
//
//	guard := controller.NewGuard()
//	chat := controller.NewStreamingController(store, client, guard)
//	turn, err := chat.Submit(ctx, sessionID, "What changed in Q3?")
//
// Submit blocks until the reply is finished. Callers that must stay
// responsive run it in a goroutine and watch the store for changes.
package controller
