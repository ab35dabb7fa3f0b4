// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/securechat-tui/internal/config"
)

func newConfigCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or edit the configuration file",
		Long: `# securechat config

Keys use dot notation, e.g. ` + "`api.base_url`" + ` or ` + "`ui.theme`" + `.
Environment variables (SECURECHAT_*) override the file but are never written
back to it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd, opts)
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigInit(cmd, opts, force)
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runConfigShow(cmd, opts)
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the configuration file path",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				path, err := opts.configPath()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			},
		},
		initCmd,
		&cobra.Command{
			Use:   "get <key>",
			Short: "Print one effective value",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runConfigGet(cmd, opts, args[0])
			},
		},
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Change one value in the configuration file",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runConfigSet(cmd, opts, args[0], args[1])
			},
		},
	)
	return cmd
}

func runConfigShow(cmd *cobra.Command, opts *Options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if opts.JSON {
		return NewJSONResponse("config show", configValues(cfg.Redacted())).Write(out)
	}
	fmt.Fprint(out, cfg.String())
	return nil
}

// configValues flattens cfg into its dot-notation keys.
func configValues(cfg *config.Config) map[string]interface{} {
	values := make(map[string]interface{}, len(config.AllKeys()))
	for _, key := range config.AllKeys() {
		if v, err := cfg.Get(key); err == nil {
			values[key] = v
		}
	}
	return values
}

func runConfigGet(cmd *cobra.Command, opts *Options, key string) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	v, err := cfg.Redacted().Get(key)
	if err != nil {
		return &UsageError{Reason: err.Error()}
	}
	out := cmd.OutOrStdout()
	if opts.JSON {
		return NewJSONResponse("config get", map[string]interface{}{key: v}).Write(out)
	}
	fmt.Fprintln(out, v)
	return nil
}

func runConfigSet(cmd *cobra.Command, opts *Options, key, value string) error {
	path, err := opts.configPath()
	if err != nil {
		return err
	}
	cfg, err := config.ReadFile(path)
	if err != nil {
		return &ConfigError{Path: path, Err: err}
	}
	if err := cfg.Set(key, value); err != nil {
		return &UsageError{Reason: err.Error()}
	}
	if err := cfg.Validate(); err != nil {
		return &ConfigError{Path: path, Err: err}
	}
	if err := config.SaveTo(cfg, path); err != nil {
		return &ConfigError{Path: path, Err: err}
	}

	out := cmd.OutOrStdout()
	if opts.JSON {
		return NewJSONResponse("config set", map[string]string{key: value}).Write(out)
	}
	shown := value
	if strings.EqualFold(key, "auth.token") {
		shown = "[REDACTED]"
	}
	fmt.Fprintf(out, "%s %s = %s\n", RenderStatus("ok"), key, shown)
	return nil
}

func runConfigInit(cmd *cobra.Command, opts *Options, force bool) error {
	path, err := opts.configPath()
	if err != nil {
		return err
	}
	if _, statErr := os.Stat(path); statErr == nil && !force {
		return &UsageError{Reason: fmt.Sprintf("%s already exists (use --force to overwrite)", path)}
	}
	if err := config.SaveTo(config.Default(), path); err != nil {
		return &ConfigError{Path: path, Err: err}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s wrote %s\n", RenderStatus("ok"), path)
	return nil
}
