// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newWhoamiCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the identity in the access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWhoami(cmd, opts)
		},
	}
}

func runWhoami(cmd *cobra.Command, opts *Options) error {
	app, err := newApp(opts, modeCLI, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer app.Close()

	id, err := app.Identity(cmd.Context())
	if err != nil {
		return &CommandError{Command: "whoami", Action: "read token", Err: err}
	}

	now := time.Now()
	data := WhoamiData{
		Name:     id.DisplayName(),
		Username: id.Username,
		Email:    id.Email,
		Subject:  id.Subject,
		Expired:  id.Expired(now),
	}
	if !id.ExpiresAt.IsZero() {
		exp := id.ExpiresAt
		data.ExpiresAt = &exp
	}

	out := cmd.OutOrStdout()
	if opts.JSON {
		return NewJSONResponse("whoami", data).Write(out)
	}

	fmt.Fprintln(out, TitleStyle.Render("Identity"))
	fmt.Fprintln(out, RenderField("Name", data.Name))
	if data.Username != "" {
		fmt.Fprintln(out, RenderField("Username", data.Username))
	}
	if data.Email != "" {
		fmt.Fprintln(out, RenderField("Email", data.Email))
	}
	if data.Subject != "" {
		fmt.Fprintln(out, RenderField("Subject", data.Subject))
	}
	switch {
	case data.ExpiresAt == nil:
		fmt.Fprintln(out, RenderField("Expires", "never"))
	case data.Expired:
		fmt.Fprintln(out, RenderField("Expires", data.ExpiresAt.Local().Format(time.RFC1123))+" "+RenderStatus("expired"))
	default:
		fmt.Fprintln(out, RenderField("Expires", data.ExpiresAt.Local().Format(time.RFC1123)))
	}
	return nil
}
