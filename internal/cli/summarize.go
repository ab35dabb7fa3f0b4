// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jeranaias/securechat-tui/internal/controller"
	"github.com/jeranaias/securechat-tui/internal/util"
)

func newSummarizeCommand(opts *Options) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "summarize <file>",
		Short: "Summarize a document",
		Long: `# securechat summarize

Upload a document and print its summary. Accepted types: .pdf, .json,
.docx, .txt, .md and .xml.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummarize(cmd, opts, args[0], raw)
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print markdown without rendering it")
	return cmd
}

func runSummarize(cmd *cobra.Command, opts *Options, path string, raw bool) error {
	out := cmd.OutOrStdout()
	app, err := newApp(opts, modeCLI, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer app.Close()

	store := app.NewStore()
	defer app.Shutdown(store)
	chatID := store.Create()

	uc := controller.NewUploadController(store, app.Client, nil)
	turn, err := uc.Submit(cmd.Context(), chatID, path, controller.FileOpener(util.ExpandHome(path)))
	if err != nil {
		return &CommandError{Command: "summarize", Action: "submit", Err: err}
	}
	if turn.Err != nil {
		return &CommandError{Command: "summarize", Action: filepath.Base(path), Err: turn.Err}
	}

	if opts.JSON {
		return NewJSONResponse("summarize", SummaryData{
			ChatID:  chatID,
			File:    filepath.Base(path),
			Summary: turn.Content,
		}).Write(out)
	}
	if !raw && IsStdoutTTY() {
		writeMarkdown(out, turn.Content, false)
		return nil
	}
	fmt.Fprintln(out, turn.Content)
	return nil
}
