// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api is the HTTP client for the chat backend.
//
// Every request goes through one interceptor that attaches the bearer token
// when the configured auth.TokenSource yields one. A missing token is not an
// error: the request is sent unauthenticated and the backend decides.
//
// # Key Types
//
//   - Client: base URL, shared transports and token source
//   - EventStream: lazily produced chunk/final/error/done events for one reply
//   - FinalPayload: the terminal answer with message id, tokens and cost
//   - HTTPError: a non-2xx response
//
// # Endpoints
//
//   - POST /chat/send (streamed or single JSON object)
//   - POST /chat/upload_document (multipart)
//   - POST /chat/cleanup_chat_sessions
//   - POST /feedback/
//   - POST /auth/login
//
// # Usage
//
//	client := api.NewClient(cfg.API.BaseURL, tokens).WithTimeout(30 * time.Second)
//	stream := client.OpenStream(ctx, api.StreamRequest{Message: "hi", ChatID: id})
//	defer stream.Close()
//	for ev, ok := stream.Next(); ok; ev, ok = stream.Next() {
//		...
//	}
//
// No request is ever retried.
package api
