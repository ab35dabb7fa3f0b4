// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across securechat.
//
// # Key Functions
//
// String Utilities:
//   - TruncateRunes, TruncateWidth: UTF-8 and column safe truncation
//   - FormatCost, FormatTokens: sidebar number formatting
//
// File Operations:
//   - AtomicWriteFile: crash-safe file writing with fsync
//   - ExpandHome: ~ expansion for configured paths
//
// # Usage
//
//	label := util.TruncateWidth(session.Name, 24)
//	err := util.AtomicWriteFile(path, data, 0600)
package util
