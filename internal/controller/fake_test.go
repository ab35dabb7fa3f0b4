// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package controller

import (
	"context"
	"io"
	"sync"

	"github.com/jeranaias/securechat-tui/internal/api"
)

// scriptedStream replays a fixed event list. When gate is set, each event
// waits for a receive on it first.
type scriptedStream struct {
	events []api.Event
	gate   chan struct{}
	closed bool
	before func(i int)
	i      int
}

func (s *scriptedStream) Next() (api.Event, bool) {
	if s.i >= len(s.events) {
		return api.Event{}, false
	}
	if s.gate != nil {
		<-s.gate
	}
	if s.before != nil {
		s.before(s.i)
	}
	ev := s.events[s.i]
	s.i++
	return ev, true
}

func (s *scriptedStream) Close() error {
	s.closed = true
	return nil
}

// fakeTransport hands out one scripted stream and records requests.
type fakeTransport struct {
	mu       sync.Mutex
	stream   *scriptedStream
	requests []api.StreamRequest
}

func newFakeTransport(events ...api.Event) *fakeTransport {
	return &fakeTransport{stream: &scriptedStream{events: events}}
}

func (f *fakeTransport) OpenStream(ctx context.Context, req api.StreamRequest) api.EventStream {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return f.stream
}

func (f *fakeTransport) Requests() []api.StreamRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

// fakeUploader records uploads.
type fakeUploader struct {
	calls   int
	name    string
	body    string
	chatID  string
	summary string
	err     error
}

func (f *fakeUploader) UploadDocument(ctx context.Context, chatID, filename string, r io.Reader) (api.UploadResult, error) {
	f.calls++
	f.name = filename
	f.chatID = chatID
	data, _ := io.ReadAll(r)
	f.body = string(data)
	if f.err != nil {
		return api.UploadResult{}, f.err
	}
	return api.UploadResult{Summary: f.summary, Tokens: 99, Cost: 1}, nil
}

// fakeFeedback records feedback.
type fakeFeedback struct {
	got api.FeedbackRequest
	err error
}

func (f *fakeFeedback) SendFeedback(ctx context.Context, fb api.FeedbackRequest) (string, error) {
	f.got = fb
	if f.err != nil {
		return "", f.err
	}
	return "Feedback received", nil
}
