// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the securechat command line.
//
// The root command launches the TUI. Subcommands give scriptable access to
// the same backend:
//
//	securechat                         # interactive TUI
//	securechat ask "What is RAG?"      # one-shot streamed answer
//	securechat summarize report.pdf    # summarize a document
//	securechat feedback m-42 -r 5      # rate an answer
//	securechat config show             # effective configuration
//	securechat whoami                  # identity from the access token
//
// # Key Types
//
//   - Options: persistent flags shared by every command
//   - App: loaded configuration, token source and API client
//   - JSONResponse: envelope for --json output
//
// # Exit Codes
//
// ExitCode maps errors to process exit codes: configuration problems exit
// with ExitConfigError, missing or expired credentials with ExitAuthError,
// and backend failures with ExitNetworkError.
package cli
