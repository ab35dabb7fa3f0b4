// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package scroll decides when the transcript follows new content.
//
// The Coordinator keeps one flag: whether the view is pinned to the bottom.
// While pinned, every content change scrolls to the end. Once the user scrolls
// away from the bottom the flag stays off until they come back within the
// tolerance, so a streaming reply never drags them away from what they are
// reading.
package scroll

// DefaultTolerance is how many lines above the maximum still count as the bottom.
const DefaultTolerance = 1

// Viewport is the scrollable surface the coordinator drives.
type Viewport interface {
	// Offset is the index of the first visible line.
	Offset() int
	// MaxOffset is the offset at which the last line is visible.
	MaxOffset() int
	// SetOffset scrolls to offset.
	SetOffset(offset int)
}

// Coordinator tracks whether the viewport is pinned to the bottom.
type Coordinator struct {
	pinned    bool
	tolerance int
}

// New creates a pinned coordinator. A negative tolerance is treated as 0.
func New(tolerance int) *Coordinator {
	if tolerance < 0 {
		tolerance = 0
	}
	return &Coordinator{pinned: true, tolerance: tolerance}
}

// Pinned reports whether content changes will scroll to the bottom.
func (c *Coordinator) Pinned() bool {
	return c.pinned
}

// Tolerance returns the bottom-zone size in lines.
func (c *Coordinator) Tolerance() int {
	return c.tolerance
}

// ContentChanged is called after the transcript content changes. It scrolls
// to the bottom when pinned and reports whether it did.
func (c *Coordinator) ContentChanged(v Viewport) bool {
	if !c.pinned {
		return false
	}
	v.SetOffset(v.MaxOffset())
	return true
}

// UserScrolled recomputes the pinned flag after a user-initiated scroll.
func (c *Coordinator) UserScrolled(v Viewport) {
	c.pinned = c.AtBottom(v)
}

// AtBottom reports whether v is within the tolerance of its maximum offset.
func (c *Coordinator) AtBottom(v Viewport) bool {
	return v.Offset() >= v.MaxOffset()-c.tolerance
}

// SentinelVisible re-pins when the end of the transcript is on screen, for
// example after a resize made the whole transcript fit.
func (c *Coordinator) SentinelVisible() {
	c.pinned = true
}

// JumpToBottom scrolls to the end and pins.
func (c *Coordinator) JumpToBottom(v Viewport) {
	c.pinned = true
	v.SetOffset(v.MaxOffset())
}

// Reset pins without scrolling, for a freshly selected transcript.
func (c *Coordinator) Reset() {
	c.pinned = true
}
