// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hytalib Contributors

// Package main is a minimal hytalib plugin. It keeps its settings in
// plugins/ExamplePlugin/config.yml and, when data.sql-enabled is set, opens a
// MySQL pool for the lifetime of the plugin.
//
// Run it with:
//
//	go run ./plugins/example --metrics-addr 127.0.0.1:9100
//
// and stop it with Ctrl-C. Without --metrics-addr no HTTP endpoint is
// started.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"

	"github.com/hytalab/hytalib/internal/observability"
	"github.com/hytalab/hytalib/pkg/config"
	"github.com/hytalab/hytalib/pkg/database"
	"github.com/hytalab/hytalib/pkg/logging"
	"github.com/hytalab/hytalib/pkg/plugin"
)

const pluginName = "ExamplePlugin"

func configDefaults() *config.Map {
	data := config.NewMap().
		Put("sql-enabled", config.BoolValue(false)).
		Put("host", config.StringValue(database.DefaultHost)).
		Put("port", config.IntValue(int64(database.KindMySQL.DefaultPort()))).
		Put("database", config.StringValue("hytale")).
		Put("username", config.StringValue("root")).
		Put("password", config.StringValue(""))
	return config.NewMap().
		Put("greeting", config.StringValue("&aWelcome to the server!")).
		Put("data", config.MapValue(data))
}

type examplePlugin struct {
	*plugin.Base

	// openDB is swapped in tests.
	openDB func(ctx context.Context, b *database.Builder) (database.Database, error)

	// metrics receives the pool collector while a database is open. May be nil.
	metrics prometheus.Registerer

	config *config.Store
	db     database.Database
	pool   prometheus.Collector
}

func newExamplePlugin(opts ...plugin.Option) *examplePlugin {
	p := &examplePlugin{
		openDB: func(ctx context.Context, b *database.Builder) (database.Database, error) {
			return b.Build(ctx)
		},
	}
	p.Base = plugin.New(p, opts...)
	return p
}

func (p *examplePlugin) OnEnable(ctx context.Context) error {
	cfg, err := p.OpenConfig("config.yml")
	if err != nil {
		return err
	}
	if err := cfg.ApplyDefaults(configDefaults()); err != nil {
		return err
	}
	p.config = cfg

	data := cfg.Section("data")
	if !data.Value("sql-enabled").BoolOr(false) {
		p.Logger().Info("sql disabled")
		return nil
	}

	db, err := p.openDB(ctx, database.NewBuilder().
		Kind(database.KindMySQL).
		Host(data.Value("host").StringOr(database.DefaultHost)).
		Port(data.Value("port").IntOr(0)).
		Database(data.Value("database").StringOr("")).
		User(data.Value("username").StringOr("")).
		Password(data.Value("password").StringOr("")).
		MaxPoolSize(20).
		With(database.WithLogger(p.Logger().Slog())))
	if err != nil {
		return err
	}
	p.db = db

	if p.metrics != nil {
		pool := database.NewPoolCollector(pluginName, db)
		if err := p.metrics.Register(pool); err != nil {
			p.Logger().Warn("pool metrics not registered", "error", err)
		} else {
			p.pool = pool
		}
	}
	return nil
}

func (p *examplePlugin) OnDisable(context.Context) error {
	if p.pool != nil {
		p.metrics.Unregister(p.pool)
		p.pool = nil
	}
	if p.db != nil {
		p.db.Close()
		p.db = nil
	}
	return nil
}

func main() {
	flags := pflag.NewFlagSet(pluginName, pflag.ExitOnError)
	metricsAddr := flags.String("metrics-addr", "", "serve /metrics and health probes on this address")
	logFormat := flags.String("log-format", logging.FormatText, "log format (json or text)")
	//nolint:errcheck // ExitOnError
	flags.Parse(os.Args[1:])

	os.Exit(run(*metricsAddr, *logFormat))
}

func run(metricsAddr, logFormat string) int {
	if err := logging.ValidateFormat(logFormat); err != nil {
		slog.Error("invalid log format", "error", err)
		return 2
	}
	logger := logging.Setup(pluginName, "dev", logFormat, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := newExamplePlugin(plugin.WithLogger(logger))

	var srvErr <-chan error
	if metricsAddr != "" {
		srv := observability.NewServer(metricsAddr, p.IsEnabled, logger)
		p.metrics = srv.Registry()
		errCh, err := srv.Start()
		if err != nil {
			logger.Error("metrics server failed to start", "error", err)
			return 1
		}
		srvErr = errCh
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Stop(shutdownCtx); err != nil {
				logger.Warn("metrics server shutdown failed", "error", err)
			}
		}()
	}

	if err := p.Load(ctx, pluginName); err != nil {
		logger.Error("load failed", "error", err)
		return 1
	}
	p.Enable(ctx)
	if !p.IsEnabled() {
		return 1
	}

	select {
	case <-ctx.Done():
	case err := <-srvErr:
		if err != nil {
			logger.Error("metrics server stopped", "error", err)
		}
	}
	p.Disable(context.Background())
	return 0
}
