// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "math"

// =============================================================================
// REVEAL PACING
// =============================================================================

// RevealFrames is how many ticks a full reveal takes, whatever its length.
const RevealFrames = 24

// MinRevealStep keeps short messages from crawling.
const MinRevealStep = 4

// EaseOutCubic decelerates toward the end of the animation.
func EaseOutCubic(t float64) float64 {
	t = clamp01(t) - 1
	return t*t*t + 1
}

// RevealStep returns how many runes to show after the next tick, given the
// total length and how many are shown now. The result is never less than
// shown and never more than total.
func RevealStep(total, shown int) int {
	if total <= 0 || shown >= total {
		return total
	}
	if shown < 0 {
		shown = 0
	}
	progress := float64(shown) / float64(total)
	next := int(math.Ceil(EaseOutCubic(progress+1.0/RevealFrames) * float64(total)))
	if next-shown < MinRevealStep {
		next = shown + MinRevealStep
	}
	if next > total {
		next = total
	}
	return next
}

func clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// TypingCursor is appended to text that is still being revealed.
const TypingCursor = "_"
