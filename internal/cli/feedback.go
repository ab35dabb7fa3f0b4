// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeranaias/securechat-tui/internal/controller"
)

func newFeedbackCommand(opts *Options) *cobra.Command {
	var (
		rating  int
		comment string
	)

	cmd := &cobra.Command{
		Use:   "feedback <message-id>",
		Short: "Rate an answer",
		Long: `# securechat feedback

Send a 1-5 star rating and an optional comment for an answer. The message
id is printed by "securechat ask --json".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFeedback(cmd, opts, args[0], rating, comment)
		},
	}
	cmd.Flags().IntVarP(&rating, "rating", "r", 0, "rating from 1 to 5")
	cmd.Flags().StringVarP(&comment, "comment", "c", "", "optional comment")
	_ = cmd.MarkFlagRequired("rating")
	return cmd
}

func runFeedback(cmd *cobra.Command, opts *Options, messageID string, rating int, comment string) error {
	app, err := newApp(opts, modeCLI, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer app.Close()

	fc := controller.NewFeedbackController(app.Client)
	status, err := fc.Submit(cmd.Context(), messageID, rating, comment)
	if err != nil {
		return &CommandError{Command: "feedback", Action: "submit", Err: err}
	}

	out := cmd.OutOrStdout()
	if opts.JSON {
		return NewJSONResponse("feedback", FeedbackData{
			MessageID: messageID,
			Rating:    rating,
			Status:    status,
		}).Write(out)
	}
	if status == "" {
		status = "Feedback submitted"
	}
	fmt.Fprintf(out, "%s %s\n", RenderStatus("ok"), status)
	return nil
}
