// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hytalib Contributors

// Package database opens pooled connections to Postgres, MySQL and SQLite
// from a single declarative Config.
//
// Postgres uses a pgx pool and hands out *pgxpool.Conn. MySQL and SQLite
// use database/sql and hand out *sql.Conn. Every constructor pings the
// database before returning, retrying transient failures until the
// configured connection timeout.
package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// Error codes returned by this package.
const (
	CodeConfigInvalid   = "DATABASE_CONFIG_INVALID"
	CodeUnsupportedKind = "DATABASE_UNSUPPORTED_KIND"
	CodeConnFailed      = "DATABASE_CONN_FAILED"
)

// Database is an open connection pool.
type Database interface {
	Kind() Kind
	Ping(ctx context.Context) error
	Stats() Stats
	Close()
}

// Stats is a point-in-time view of a pool.
type Stats struct {
	MaxOpen int
	Open    int
	InUse   int
	Idle    int
}

type options struct {
	logger *slog.Logger
}

// Option configures Open and the per-engine constructors.
type Option func(*options)

// WithLogger sets the logger for connection diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func newOptions(opts []Option) options {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Open validates cfg and opens the engine it names.
func Open(ctx context.Context, cfg Config, opts ...Option) (Database, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Kind {
	case KindPostgres:
		return OpenPostgres(ctx, cfg, opts...)
	case KindMySQL:
		return OpenMySQL(ctx, cfg, opts...)
	default:
		return OpenSQLite(ctx, cfg, opts...)
	}
}

// Retry tuning for the initial ping.
var (
	retryBase = 100 * time.Millisecond
	retryCap  = 2 * time.Second
)

// connect pings until success, a permanent failure, or the connection
// timeout.
func connect(ctx context.Context, cfg Config, logger *slog.Logger, ping func(context.Context) error, permanent func(error) bool) error {
	err := pingWithRetry(ctx, cfg, logger, ping, permanent)
	ConnectAttempts.WithLabelValues(string(cfg.Kind), resultLabel(err)).Inc()
	if err != nil {
		logger.Warn("database connection failed", "database", cfg, "error", err)
		return connFailed(cfg.Kind, err)
	}
	logger.Info("database connected", "database", cfg)
	return nil
}

func pingWithRetry(ctx context.Context, cfg Config, logger *slog.Logger, ping func(context.Context) error, permanent func(error) bool) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.Pool.ConnectionTimeout)
	defer cancel()

	backoff := retry.WithCappedDuration(retryCap, retry.NewExponential(retryBase))

	var (
		attempts int
		lastErr  error
	)
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++
		err := ping(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		if permanent(err) {
			return err
		}
		logger.Debug("database ping failed, retrying",
			"kind", string(cfg.Kind),
			"attempt", attempts,
			"error", err)
		return retry.RetryableError(err)
	})
	if err != nil && lastErr != nil && !errors.Is(err, lastErr) {
		return fmt.Errorf("gave up after %d attempts: %w", attempts, lastErr)
	}
	return err
}

func connFailed(kind Kind, err error) error {
	return oops.Code(CodeConnFailed).With("kind", string(kind)).Wrap(err)
}
