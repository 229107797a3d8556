// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hytalib Contributors

package database

import (
	"log/slog"
	"math"
	"time"

	"github.com/samber/oops"
)

// MaxPoolSizeLimit is the largest pool size any backend accepts.
const MaxPoolSizeLimit = math.MaxInt32

// PoolSettings bounds the connection pool.
type PoolSettings struct {
	MaxPoolSize       int
	MinIdle           int
	ConnectionTimeout time.Duration
	IdleTimeout       time.Duration
	MaxLifetime       time.Duration
}

// DefaultPoolSettings returns the pool settings used when none are given.
func DefaultPoolSettings() PoolSettings {
	return PoolSettings{
		MaxPoolSize:       10,
		MinIdle:           2,
		ConnectionTimeout: 30 * time.Second,
		IdleTimeout:       10 * time.Minute,
		MaxLifetime:       30 * time.Minute,
	}
}

// DefaultHost is used for network engines when Host is empty.
const DefaultHost = "localhost"

// Config describes a database to connect to.
type Config struct {
	Kind Kind

	// Network engines.
	Host     string
	Port     int
	Database string

	// SQLite.
	FilePath string

	User     string
	Password string

	// Properties are passed to the driver as connection parameters.
	Properties map[string]string

	Pool PoolSettings
}

// DefaultConfig returns a Config with default host and pool settings and no
// kind.
func DefaultConfig() Config {
	return Config{
		Host: DefaultHost,
		Pool: DefaultPoolSettings(),
	}
}

// Address returns host:port for network engines, applying the default host
// and the engine's default port.
func (c Config) Address() (string, int) {
	host := c.Host
	if host == "" {
		host = DefaultHost
	}
	port := c.Port
	if port <= 0 {
		port = c.Kind.DefaultPort()
	}
	return host, port
}

// Validate reports the first missing or inconsistent field. Errors carry
// code CodeConfigInvalid and a "field" context value, or CodeUnsupportedKind
// for an engine this package cannot open.
func (c Config) Validate() error {
	if c.Kind == "" {
		return invalid("kind", "database kind is required")
	}
	if !c.Kind.supported() {
		return oops.Code(CodeUnsupportedKind).
			With("kind", string(c.Kind)).
			Errorf("unsupported database kind %q", c.Kind)
	}

	switch c.Kind {
	case KindPostgres, KindMySQL:
		if c.Database == "" {
			return invalid("database", "%s requires a database name", c.Kind)
		}
		if c.User == "" && c.Password != "" {
			return invalid("user", "%s password given without a user", c.Kind)
		}
	case KindSQLite:
		if c.FilePath == "" {
			return invalid("file_path", "sqlite requires a file path")
		}
	}

	p := c.Pool
	switch {
	case p.MaxPoolSize <= 0:
		return invalid("max_pool_size", "max pool size must be positive, got %d", p.MaxPoolSize)
	case p.MaxPoolSize > MaxPoolSizeLimit:
		return invalid("max_pool_size", "max pool size %d exceeds %d", p.MaxPoolSize, MaxPoolSizeLimit)
	case p.MinIdle < 0:
		return invalid("min_idle", "min idle must not be negative, got %d", p.MinIdle)
	case p.MinIdle > p.MaxPoolSize:
		return invalid("min_idle", "min idle %d exceeds max pool size %d", p.MinIdle, p.MaxPoolSize)
	case p.ConnectionTimeout <= 0:
		return invalid("connection_timeout", "connection timeout must be positive")
	case p.IdleTimeout < 0:
		return invalid("idle_timeout", "idle timeout must not be negative")
	case p.MaxLifetime < 0:
		return invalid("max_lifetime", "max lifetime must not be negative")
	}
	return nil
}

// LogValue renders the config without credentials.
func (c Config) LogValue() slog.Value {
	attrs := []slog.Attr{slog.String("kind", string(c.Kind))}
	if c.Kind == KindSQLite {
		attrs = append(attrs, slog.String("file", c.FilePath))
	} else {
		host, port := c.Address()
		attrs = append(attrs,
			slog.String("host", host),
			slog.Int("port", port),
			slog.String("database", c.Database),
			slog.String("user", c.User),
		)
	}
	attrs = append(attrs, slog.Int("max_pool_size", c.Pool.MaxPoolSize))
	return slog.GroupValue(attrs...)
}

func invalid(field, format string, args ...any) error {
	return oops.Code(CodeConfigInvalid).With("field", field).Errorf(format, args...)
}
