// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hytalib Contributors

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hytalab/hytalib/pkg/database"
)

func newDBCmd(a *app) *cobra.Command {
	defaults := defaultSettings().Database

	cmd := &cobra.Command{
		Use:   "db",
		Short: "Check plugin database settings",
		Long: `Check database settings. Values come from the database section of the
settings file; flags override them.`,
	}

	flags := cmd.PersistentFlags()
	flags.String("kind", "", "database kind (postgres, mysql or sqlite)")
	flags.String("host", defaults.Host, "database host")
	flags.Int("port", 0, "database port (default: the engine's standard port)")
	flags.String("name", "", "database name")
	flags.String("file", "", "sqlite database file, relative to $XDG_DATA_HOME/hytalib unless absolute")
	flags.String("user", "", "database user")
	flags.String("password", "", "database password")
	flags.StringSlice("property", nil, "driver property as key=value (repeatable)")
	flags.Int("max-pool-size", defaults.Pool.MaxSize, "maximum pool size")
	flags.Duration("connection-timeout", defaults.Pool.ConnectionTimeout, "how long to keep retrying the first connection")

	cmd.AddCommand(&cobra.Command{
		Use:   "ping",
		Short: "Connect to the configured database and ping it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.pingDatabase(cmd.Context(), cmd)
		},
	})

	return cmd
}

func (a *app) pingDatabase(ctx context.Context, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := a.settings.Database.databaseConfig()
	if err != nil {
		return err
	}

	start := time.Now()
	db, err := database.Open(ctx, cfg, database.WithLogger(a.logger))
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Ping(ctx); err != nil {
		return err
	}
	stats := db.Stats()
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "ok: %s responded in %s (pool max %d)\n",
		db.Kind(), time.Since(start).Round(time.Millisecond), stats.MaxOpen)
	return err
}
