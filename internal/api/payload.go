// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/jeranaias/securechat-tui/internal/model"
)

// MaxHistory is the most prior messages sent with a new one.
const MaxHistory = model.MaxHistory

// SendRequest is the body of POST /chat/send.
type SendRequest struct {
	Message string               `json:"message"`
	History []model.HistoryEntry `json:"history"`
}

// FinalPayload is the terminal answer of a chat turn.
type FinalPayload struct {
	Response  string
	MessageID string
	Tokens    float64
	Cost      float64
}

// UnmarshalJSON accepts the loose shapes the backend produces: ids may be
// numbers, and tokens/cost may be missing, null or numeric strings.
func (p *FinalPayload) UnmarshalJSON(data []byte) error {
	var raw struct {
		Response  flexString `json:"response"`
		MessageID flexString `json:"message_id"`
		Tokens    flexNumber `json:"tokens"`
		Cost      flexNumber `json:"cost"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = FinalPayload{
		Response:  string(raw.Response),
		MessageID: string(raw.MessageID),
		Tokens:    float64(raw.Tokens),
		Cost:      float64(raw.Cost),
	}
	return nil
}

// trimHistory keeps the most recent MaxHistory entries.
func trimHistory(h []model.HistoryEntry) []model.HistoryEntry {
	if len(h) > MaxHistory {
		h = h[len(h)-MaxHistory:]
	}
	if h == nil {
		return []model.HistoryEntry{}
	}
	return h
}

// flexString decodes a JSON string or number. null becomes "".
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = flexString(n.String())
	return nil
}

// flexNumber decodes a JSON number or numeric string. Anything else is 0.
type flexNumber float64

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	text := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = flexNumber(v)
	return nil
}
