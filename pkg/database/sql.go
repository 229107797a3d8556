// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hytalib Contributors

package database

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"maps"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// MySQL server error numbers that retrying cannot fix.
const (
	mysqlErrDBAccessDenied  = 1044
	mysqlErrAccessDenied    = 1045
	mysqlErrUnknownDatabase = 1049
)

// MemoryPath opens a private in-memory SQLite database.
const MemoryPath = ":memory:"

// SQLDB is a database/sql pool for MySQL or SQLite.
type SQLDB struct {
	db     *sql.DB
	kind   Kind
	logger *slog.Logger
}

// MySQLDSN returns the go-sql-driver DSN for cfg. Properties become DSN
// parameters; time columns are parsed into time.Time.
func MySQLDSN(cfg Config) string {
	host, port := cfg.Address()
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	mc.DBName = cfg.Database
	mc.ParseTime = true
	mc.Timeout = cfg.Pool.ConnectionTimeout
	if len(cfg.Properties) > 0 {
		mc.Params = maps.Clone(cfg.Properties)
	}
	return mc.FormatDSN()
}

// SQLiteDSN returns the modernc.org/sqlite DSN for cfg:
// file:<path>?<properties>. Properties such as _pragma are interpreted by
// the driver.
func SQLiteDSN(cfg Config) string {
	if cfg.FilePath == MemoryPath {
		return MemoryPath
	}
	dsn := "file:" + cfg.FilePath
	if len(cfg.Properties) > 0 {
		q := url.Values{}
		for k, v := range cfg.Properties {
			q.Set(k, v)
		}
		dsn += "?" + q.Encode()
	}
	return dsn
}

// OpenMySQL opens a MySQL pool. cfg.Kind is forced to KindMySQL.
func OpenMySQL(ctx context.Context, cfg Config, opts ...Option) (*SQLDB, error) {
	cfg.Kind = KindMySQL
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return openSQL(ctx, cfg, "mysql", MySQLDSN(cfg), newOptions(opts), isPermanentMySQLError)
}

// OpenSQLite opens a SQLite database, creating the parent directory of the
// file when needed. cfg.Kind is forced to KindSQLite.
func OpenSQLite(ctx context.Context, cfg Config, opts ...Option) (*SQLDB, error) {
	cfg.Kind = KindSQLite
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.FilePath == MemoryPath {
		// Each connection to :memory: is a separate database.
		cfg.Pool.MaxPoolSize = 1
		cfg.Pool.MinIdle = min(cfg.Pool.MinIdle, 1)
	} else if dir := filepath.Dir(cfg.FilePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:gosec // data directories are shared with the server
			return nil, connFailed(KindSQLite, err)
		}
	}
	return openSQL(ctx, cfg, "sqlite", SQLiteDSN(cfg), newOptions(opts), func(error) bool { return true })
}

func openSQL(ctx context.Context, cfg Config, driver, dsn string, o options, permanent func(error) bool) (*SQLDB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, connFailed(cfg.Kind, err)
	}
	// database/sql has no minimum-idle setting; MinIdle caps the idle set.
	db.SetMaxOpenConns(cfg.Pool.MaxPoolSize)
	db.SetMaxIdleConns(cfg.Pool.MinIdle)
	db.SetConnMaxIdleTime(cfg.Pool.IdleTimeout)
	db.SetConnMaxLifetime(cfg.Pool.MaxLifetime)

	if err := connect(ctx, cfg, o.logger, db.PingContext, permanent); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLDB{db: db, kind: cfg.Kind, logger: o.logger}, nil
}

func isPermanentMySQLError(err error) bool {
	var myErr *mysql.MySQLError
	if !errors.As(err, &myErr) {
		return false
	}
	switch myErr.Number {
	case mysqlErrDBAccessDenied, mysqlErrAccessDenied, mysqlErrUnknownDatabase:
		return true
	}
	return false
}

// Kind returns the engine the pool talks to.
func (d *SQLDB) Kind() Kind { return d.kind }

// Ping checks that a connection can be used.
func (d *SQLDB) Ping(ctx context.Context) error {
	if err := d.db.PingContext(ctx); err != nil {
		return connFailed(d.kind, err)
	}
	return nil
}

// Conn reserves a single connection. Return it with conn.Close.
func (d *SQLDB) Conn(ctx context.Context) (*sql.Conn, error) {
	conn, err := d.db.Conn(ctx)
	if err != nil {
		return nil, connFailed(d.kind, err)
	}
	return conn, nil
}

// DB returns the underlying pool.
func (d *SQLDB) DB() *sql.DB { return d.db }

// Stats reports pool usage.
func (d *SQLDB) Stats() Stats {
	s := d.db.Stats()
	return Stats{
		MaxOpen: s.MaxOpenConnections,
		Open:    s.OpenConnections,
		InUse:   s.InUse,
		Idle:    s.Idle,
	}
}

// Close closes the pool. Errors are logged.
func (d *SQLDB) Close() {
	if err := d.db.Close(); err != nil {
		d.logger.Warn("database close failed", "kind", string(d.kind), "error", err)
		return
	}
	d.logger.Debug("database closed", "kind", string(d.kind))
}
