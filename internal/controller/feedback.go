// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import (
	"context"
	"strings"

	"github.com/jeranaias/securechat-tui/internal/api"
	"github.com/jeranaias/securechat-tui/internal/logger"
)

// Rating bounds.
const (
	MinRating = 1
	MaxRating = 5
)

// FeedbackController submits ratings for finalized replies.
type FeedbackController struct {
	sender FeedbackSender
}

// NewFeedbackController creates a feedback controller.
func NewFeedbackController(sender FeedbackSender) *FeedbackController {
	return &FeedbackController{sender: sender}
}

// Submit sends the rating and comment for messageID and returns the
// backend's acknowledgment.
func (c *FeedbackController) Submit(ctx context.Context, messageID string, rating int, comment string) (string, error) {
	if strings.TrimSpace(messageID) == "" {
		return "", ErrNoMessageID
	}
	if rating < MinRating || rating > MaxRating {
		return "", ErrInvalidRating
	}

	status, err := c.sender.SendFeedback(ctx, api.FeedbackRequest{
		MessageID: messageID,
		Rating:    rating,
		Comment:   strings.TrimSpace(comment),
	})
	if err != nil {
		logger.Logger.Warn().Err(err).Str("message_id", messageID).Msg("FEEDBACK_FAILED")
		return "", err
	}
	logger.Logger.Info().Str("message_id", messageID).Int("rating", rating).Msg("FEEDBACK_SENT")
	return status, nil
}
