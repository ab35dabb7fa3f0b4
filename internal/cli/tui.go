// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/securechat-tui/internal/controller"
	"github.com/jeranaias/securechat-tui/internal/logger"
	"github.com/jeranaias/securechat-tui/internal/ui/chat"
)

// runTUI opens the interactive chat interface. Every remaining session is
// cleaned up on the backend when it exits.
func runTUI(ctx context.Context, opts *Options, stderr io.Writer) error {
	app, err := newApp(opts, modeTUI, stderr)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	store := app.NewStore()
	guard := controller.NewGuard()
	streaming := controller.NewStreamingController(store, app.Client, guard)
	streaming.OnStateChange(func(s controller.TurnState) {
		logger.Logger.Debug().Str("state", s.String()).Msg("TURN_STATE")
	})

	model := chat.New(chat.Deps{
		Store:     store,
		Streaming: streaming,
		Upload:    controller.NewUploadController(store, app.Client, guard),
		Feedback:  controller.NewFeedbackController(app.Client),
		Guard:     guard,
		Login:     app.Client.Login,
		User:      app.UserName(ctx),
		Config:    app.Config,
		Context:   ctx,
	})

	logger.Logger.Info().Msg("TUI_STARTED")
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, runErr := p.Run()

	// In-flight streams end with the context; then the backend is told to
	// drop every session this run created.
	cancel()
	app.Shutdown(store)
	logger.Logger.Info().Msg("TUI_STOPPED")

	if runErr != nil {
		return fmt.Errorf("run tui: %w", runErr)
	}
	return nil
}
