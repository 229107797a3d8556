// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hytalib Contributors

package database

import (
	"context"
	"maps"
	"time"
)

// Builder assembles a Config fluently.
//
//	db, err := database.NewBuilder().
//		Kind(database.KindMySQL).
//		Host("db.internal").
//		Database("homes").
//		User("plugin").
//		MaxPoolSize(20).
//		Build(ctx)
type Builder struct {
	cfg  Config
	opts []Option
}

// NewBuilder starts from DefaultConfig.
func NewBuilder() *Builder {
	return &Builder{cfg: DefaultConfig()}
}

// Kind sets the database engine.
func (b *Builder) Kind(k Kind) *Builder { b.cfg.Kind = k; return b }

// Host sets the server host. Ignored for SQLite.
func (b *Builder) Host(host string) *Builder { b.cfg.Host = host; return b }

// Port sets the server port; 0 selects the engine default.
func (b *Builder) Port(port int) *Builder { b.cfg.Port = port; return b }

// Database sets the database name.
func (b *Builder) Database(name string) *Builder { b.cfg.Database = name; return b }

// FilePath sets the SQLite database file.
func (b *Builder) FilePath(path string) *Builder { b.cfg.FilePath = path; return b }

// User sets the login user.
func (b *Builder) User(user string) *Builder { b.cfg.User = user; return b }

// Password sets the login password. It requires a user.
func (b *Builder) Password(pw string) *Builder { b.cfg.Password = pw; return b }

// Property adds a driver connection parameter.
func (b *Builder) Property(key, value string) *Builder {
	if b.cfg.Properties == nil {
		b.cfg.Properties = make(map[string]string)
	}
	b.cfg.Properties[key] = value
	return b
}

// MaxPoolSize sets the maximum number of open connections.
func (b *Builder) MaxPoolSize(n int) *Builder { b.cfg.Pool.MaxPoolSize = n; return b }

// MinIdle sets the number of idle connections kept ready.
func (b *Builder) MinIdle(n int) *Builder { b.cfg.Pool.MinIdle = n; return b }

// ConnectionTimeout bounds how long Open keeps retrying the first ping.
func (b *Builder) ConnectionTimeout(d time.Duration) *Builder {
	b.cfg.Pool.ConnectionTimeout = d
	return b
}

// IdleTimeout closes connections idle for longer than d.
func (b *Builder) IdleTimeout(d time.Duration) *Builder {
	b.cfg.Pool.IdleTimeout = d
	return b
}

// MaxLifetime closes connections older than d.
func (b *Builder) MaxLifetime(d time.Duration) *Builder {
	b.cfg.Pool.MaxLifetime = d
	return b
}

// With adds Open options applied by Build.
func (b *Builder) With(opts ...Option) *Builder {
	b.opts = append(b.opts, opts...)
	return b
}

// Config returns a copy of the assembled configuration.
func (b *Builder) Config() Config {
	cfg := b.cfg
	cfg.Properties = maps.Clone(b.cfg.Properties)
	return cfg
}

// Build validates the configuration and opens the database.
func (b *Builder) Build(ctx context.Context) (Database, error) {
	return Open(ctx, b.Config(), b.opts...)
}
