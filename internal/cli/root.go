// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// NewRootCommand builds the securechat command tree.
func NewRootCommand() *cobra.Command {
	opts := &Options{}

	root := &cobra.Command{
		Use:   "securechat",
		Short: "Terminal client for the SecureChat assistant",
		Long: `# SecureChat

**A terminal client for the SecureChat assistant.**

Run **securechat** with no arguments to open the chat interface, or use a
subcommand for one-shot, scriptable access.

## Configuration

Settings are read from ~/.securechat/config.toml, then .env files, then
SECURECHAT_* environment variables, then flags.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildDate),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), opts, cmd.ErrOrStderr())
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetHelpFunc(renderMarkdownHelp)
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &UsageError{Reason: err.Error()}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&opts.ConfigPath, "config", "", "config file (default ~/.securechat/config.toml)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&opts.APIURL, "api-url", "", "backend base URL")
	pf.BoolVar(&opts.JSON, "json", false, "print machine-readable JSON")

	root.AddCommand(
		newAskCommand(opts),
		newSummarizeCommand(opts),
		newFeedbackCommand(opts),
		newConfigCommand(opts),
		newWhoamiCommand(opts),
	)
	return root
}

// Execute runs the command line with args and returns the exit code.
func Execute(ctx context.Context, args []string) int {
	return run(ctx, args, os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	cmd, err := root.ExecuteContextC(ctx)
	if err == nil {
		return ExitSuccess
	}
	if asJSON, _ := root.PersistentFlags().GetBool("json"); asJSON {
		_ = NewJSONErrorResponse(commandName(cmd), err).Write(stdout)
	} else {
		fmt.Fprintf(stderr, "%s %v\n", ErrorStyle.Render("Error:"), err)
	}
	return ExitCode(err)
}

// commandName is the command path without the binary name, e.g. "config set".
func commandName(cmd *cobra.Command) string {
	if cmd == nil {
		return ""
	}
	return strings.TrimPrefix(strings.TrimPrefix(cmd.CommandPath(), "securechat"), " ")
}

// =============================================================================
// HELP
// =============================================================================

// renderMarkdownHelp renders command help as markdown through glamour.
func renderMarkdownHelp(cmd *cobra.Command, args []string) {
	var b strings.Builder

	if cmd.Long != "" {
		b.WriteString(cmd.Long)
	} else {
		b.WriteString("# " + cmd.Short)
	}
	b.WriteString("\n\n## Usage\n\n```\n")
	b.WriteString(cmd.UseLine())
	b.WriteString("\n```\n\n")

	if cmd.HasAvailableSubCommands() {
		b.WriteString("## Commands\n\n")
		for _, sub := range cmd.Commands() {
			if sub.IsAvailableCommand() {
				fmt.Fprintf(&b, "- **%s** - %s\n", sub.Name(), sub.Short)
			}
		}
		b.WriteString("\n")
	}

	if flags := cmd.LocalFlags().FlagUsages(); flags != "" {
		b.WriteString("## Flags\n\n```\n" + flags + "```\n\n")
	}
	if cmd.HasParent() {
		if flags := cmd.InheritedFlags().FlagUsages(); flags != "" {
			b.WriteString("## Global Flags\n\n```\n" + flags + "```\n\n")
		}
	}

	writeMarkdown(cmd.OutOrStdout(), b.String(), !IsStdoutTTY())
}

// writeMarkdown renders md with glamour, or writes it unchanged when plain
// is set or rendering fails.
func writeMarkdown(w io.Writer, md string, plain bool) {
	if !plain {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(GetTerminalWidth()-4),
		)
		if err == nil {
			if out, err := r.Render(md); err == nil {
				fmt.Fprint(w, out)
				return
			}
		}
	}
	fmt.Fprintln(w, strings.TrimRight(md, "\n"))
}
