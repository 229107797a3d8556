// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hytalib Contributors

package main

import (
	"log/slog"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/hytalab/hytalib/internal/xdg"
	"github.com/hytalab/hytalib/pkg/logging"
)

// app holds state shared by subcommands once settings are loaded.
type app struct {
	fs           afero.Fs
	settingsPath string
	settings     settings
	logger       *slog.Logger
}

// NewRootCmd creates the root command for the hytalib CLI.
func NewRootCmd() *cobra.Command {
	return newRootCmd(afero.NewOsFs())
}

func newRootCmd(fs afero.Fs) *cobra.Command {
	a := &app{
		fs:       fs,
		settings: defaultSettings(),
		logger:   slog.Default(),
	}
	defaults := defaultSettings()

	cmd := &cobra.Command{
		Use:   "hytalib",
		Short: "Hytalib - tooling for hytalib plugins",
		Long: `Hytalib inspects and edits plugin configuration files and checks
the databases plugins are configured to use.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.settingsPath, "settings", "", "settings file (default: $XDG_CONFIG_HOME/hytalib/settings.yaml)")
	flags.String("log-format", defaults.Log.Format, "log format (json or text)")
	flags.String("log-level", defaults.Log.Level, "log level (debug, info, warn or error)")

	cmd.AddCommand(newConfigCmd(a))
	cmd.AddCommand(newDBCmd(a))

	return cmd
}

// init loads settings for the command being run and sets up logging.
func (a *app) init(cmd *cobra.Command) error {
	path, required := a.settingsPath, true
	if path == "" {
		required = false
		if p, err := xdg.SettingsFile(); err == nil {
			path = p
		}
	}

	s, err := loadSettings(path, required, cmd.Flags())
	if err != nil {
		return err
	}
	if err := s.Validate(); err != nil {
		return err
	}

	level, _ := logging.ParseLevel(s.Log.Level)
	a.settings = s
	a.logger = logging.SetDefault("hytalib", version, s.Log.Format, level, cmd.ErrOrStderr())
	a.logger.Debug("settings loaded", "path", path)
	return nil
}
