// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the securechat TUI.

All colors use Lip Gloss AdaptiveColor so the palette follows the terminal
background. The theme can be forced to dark or light from the [ui] config.

# Color System (colors.go)

  - Indigo - Primary accent, headings, the active session
  - Sky - User messages and informational toasts
  - Emerald / Rose / Amber - Success, error and warning states

Every colored status also carries an ASCII marker from StatusIndicators.

# Theme System (theme.go)

	theme := styles.NewTheme(cfg.UI.Theme)
	theme.SetSize(width, height)

# Reveal Pacing (animations.go)

RevealStep paces the one-time reveal of new assistant messages with an
ease-out curve so long answers finish in a bounded number of ticks.
*/
package styles
