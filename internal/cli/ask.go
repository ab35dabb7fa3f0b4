// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/jeranaias/securechat-tui/internal/api"
	"github.com/jeranaias/securechat-tui/internal/controller"
	"github.com/jeranaias/securechat-tui/internal/model"
	"github.com/jeranaias/securechat-tui/internal/session"
	"github.com/jeranaias/securechat-tui/internal/util"
)

func newAskCommand(opts *Options) *cobra.Command {
	var noStream, raw bool

	cmd := &cobra.Command{
		Use:   "ask <message...>",
		Short: "Ask a single question",
		Long: `# securechat ask

Send one message in a fresh chat and print the answer. The chat is
discarded on the backend afterwards.

Examples:

    securechat ask "Explain RAG in two sentences"
    securechat ask --no-stream --json "List three risks of this plan"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.TrimSpace(strings.Join(args, " "))
			if text == "" {
				return &UsageError{Reason: "message is empty"}
			}
			return runAsk(cmd, opts, text, noStream, raw)
		},
	}
	cmd.Flags().BoolVar(&noStream, "no-stream", false, "wait for the whole answer instead of streaming")
	cmd.Flags().BoolVar(&raw, "raw", false, "print markdown without rendering it")
	return cmd
}

func runAsk(cmd *cobra.Command, opts *Options, text string, noStream, raw bool) error {
	out, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	app, err := newApp(opts, modeCLI, stderr)
	if err != nil {
		return err
	}
	defer app.Close()

	store := app.NewStore()
	defer app.Shutdown(store)
	chatID := store.Create()

	// Chunks are echoed live only for plain text output; rendered markdown
	// needs the whole answer.
	render := !raw && !opts.JSON && IsStdoutTTY()
	live := !noStream && !render && !opts.JSON
	var echo *chunkEcho
	if live {
		echo = &chunkEcho{w: out, store: store, chatID: chatID}
		store.Observe(echo.observe)
	}

	var data AskData
	if noStream {
		data, err = askOnce(cmd, app, store, chatID, text)
	} else {
		data, err = askStreaming(cmd, app, store, chatID, text)
	}
	if err != nil {
		return err
	}

	if opts.JSON {
		return NewJSONResponse("ask", data).Write(out)
	}

	switch {
	case render:
		writeMarkdown(out, data.Response, false)
	case echo != nil && echo.wrote():
		echo.finish(data.Response)
	default:
		fmt.Fprintln(out, data.Response)
	}
	fmt.Fprintln(stderr, DimStyle.Render(fmt.Sprintf("Tokens: %s  Cost: %s",
		util.FormatTokens(data.Tokens), util.FormatCost(data.Cost))))
	return nil
}

// askStreaming runs a normal chat turn through the streaming controller.
func askStreaming(cmd *cobra.Command, app *App, store *session.Store, chatID, text string) (AskData, error) {
	sc := controller.NewStreamingController(store, app.Client, nil)
	turn, err := sc.Submit(cmd.Context(), chatID, text)
	if err != nil {
		return AskData{}, &CommandError{Command: "ask", Action: "submit", Err: err}
	}
	if turn.Err != nil {
		return AskData{}, &CommandError{Command: "ask", Action: "stream", Err: turn.Err}
	}

	sess, _ := store.Get(chatID)
	return AskData{
		ChatID:    chatID,
		Response:  turn.Content,
		MessageID: turn.MessageID,
		Tokens:    sess.Tokens,
		Cost:      sess.Cost,
	}, nil
}

// askOnce uses the non-streaming endpoint. The exchange and its usage are
// recorded in the store the same way a streamed turn is.
func askOnce(cmd *cobra.Command, app *App, store *session.Store, chatID, text string) (AskData, error) {
	history, ok := recordQuestion(store, chatID, text)
	if !ok {
		return AskData{}, &CommandError{Command: "ask", Action: "send", Err: controller.ErrSessionNotFound}
	}

	p, err := app.Client.Send(cmd.Context(), api.StreamRequest{Message: text, History: history, ChatID: chatID})
	if err != nil {
		recordAnswer(store, chatID, controller.FailureText, api.FinalPayload{})
		return AskData{}, &CommandError{Command: "ask", Action: "send", Err: err}
	}
	recordAnswer(store, chatID, p.Response, p)

	sess, _ := store.Get(chatID)
	return AskData{
		ChatID:    chatID,
		Response:  p.Response,
		MessageID: p.MessageID,
		Tokens:    sess.Tokens,
		Cost:      sess.Cost,
	}, nil
}

// recordQuestion appends the user message, naming the chat after its first
// message, and returns the history that preceded it.
func recordQuestion(store *session.Store, chatID, text string) ([]model.HistoryEntry, bool) {
	var history []model.HistoryEntry
	ok := store.Update(chatID, session.ChangeMessages, func(s *model.ChatSession) {
		history = s.History(model.MaxHistory)
		if len(s.Messages) == 0 {
			s.Name = model.NameFromText(text)
		}
		s.Append(model.NewUserMessage(text))
	})
	return history, ok
}

// recordAnswer appends the settled reply and its usage in one update.
func recordAnswer(store *session.Store, chatID, content string, p api.FinalPayload) {
	store.Update(chatID, session.ChangeUsage, func(s *model.ChatSession) {
		s.Append(model.NewAssistantMessage(content, p.MessageID))
		s.AddUsage(p.Tokens, p.Cost)
	})
}

// =============================================================================
// LIVE ECHO
// =============================================================================

// chunkEcho prints the growing placeholder text as it streams in.
type chunkEcho struct {
	w      io.Writer
	store  *session.Store
	chatID string

	mu      sync.Mutex
	printed string
}

func (e *chunkEcho) observe(c session.Change) {
	if c.Kind != session.ChangeMessages || c.SessionID != e.chatID {
		return
	}
	sess, ok := e.store.Get(e.chatID)
	if !ok {
		return
	}
	last, ok := sess.LastMessage()
	if !ok || !last.Pending || last.Content == model.PlaceholderText {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if strings.HasPrefix(last.Content, e.printed) {
		fmt.Fprint(e.w, last.Content[len(e.printed):])
		e.printed = last.Content
	}
}

func (e *chunkEcho) wrote() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.printed != ""
}

// finish prints whatever the final answer adds beyond the streamed text.
func (e *chunkEcho) finish(final string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if strings.HasPrefix(final, e.printed) {
		fmt.Fprint(e.w, final[len(e.printed):])
	} else if final != e.printed {
		fmt.Fprint(e.w, "\n\n"+final)
	}
	fmt.Fprintln(e.w)
}
