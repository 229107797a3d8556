// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hytalib Contributors

package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hytalab/hytalib/pkg/errutil"
)

func TestMySQLDSN(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Kind = KindMySQL
	cfg.Host = "db.internal"
	cfg.Database = "homes"
	cfg.User = "plugin"
	cfg.Password = "secret"
	cfg.Pool.ConnectionTimeout = 5 * time.Second
	cfg.Properties = map[string]string{"charset": "utf8mb4"}

	dsn := MySQLDSN(cfg)
	assert.True(t, strings.HasPrefix(dsn, "plugin:secret@tcp(db.internal:3306)/homes?"), dsn)
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "timeout=5s")
	assert.Contains(t, dsn, "charset=utf8mb4")

	parsed, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "homes", parsed.DBName)
	assert.True(t, parsed.ParseTime)
}

func TestSQLiteDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{name: "plain file", cfg: Config{FilePath: "data/homes.db"}, want: "file:data/homes.db"},
		{name: "memory", cfg: Config{FilePath: MemoryPath}, want: ":memory:"},
		{
			name: "pragma",
			cfg:  Config{FilePath: "homes.db", Properties: map[string]string{"_pragma": "foreign_keys(1)"}},
			want: "file:homes.db?_pragma=foreign_keys%281%29",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SQLiteDSN(tt.cfg))
		})
	}
}

func TestOpenSQLite_File(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "plugins", "homes", "homes.db")

	cfg := DefaultConfig()
	cfg.FilePath = path
	db, err := OpenSQLite(ctx, cfg, WithLogger(discardLogger()))
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, KindSQLite, db.Kind())
	require.NoError(t, db.Ping(ctx))

	conn, err := db.Conn(ctx)
	require.NoError(t, err)
	_, err = conn.ExecContext(ctx, `CREATE TABLE homes (owner TEXT, name TEXT)`)
	require.NoError(t, err)
	_, err = conn.ExecContext(ctx, `INSERT INTO homes VALUES (?, ?)`, "steve", "base")
	require.NoError(t, err)

	stats := db.Stats()
	assert.Equal(t, 10, stats.MaxOpen)
	assert.Equal(t, 1, stats.InUse)
	require.NoError(t, conn.Close())

	var name string
	require.NoError(t, db.DB().QueryRowContext(ctx, `SELECT name FROM homes WHERE owner = ?`, "steve").Scan(&name))
	assert.Equal(t, "base", name)

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file is created")
}

func TestOpenSQLite_Memory(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.Kind = KindSQLite
	cfg.FilePath = MemoryPath

	db, err := Open(ctx, cfg, WithLogger(discardLogger()))
	require.NoError(t, err)
	defer db.Close()

	sqlDB, ok := db.(*SQLDB)
	require.True(t, ok)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpen)

	_, err = sqlDB.DB().ExecContext(ctx, `CREATE TABLE t (v INTEGER)`)
	require.NoError(t, err)
	_, err = sqlDB.DB().ExecContext(ctx, `INSERT INTO t VALUES (1)`)
	require.NoError(t, err, "the table is visible on the single shared connection")
}

func TestOpenSQLite_UnwritableDirectory(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	cfg := DefaultConfig()
	cfg.FilePath = filepath.Join(blocker, "homes.db")
	_, err := OpenSQLite(context.Background(), cfg, WithLogger(discardLogger()))
	errutil.AssertErrorCode(t, err, CodeConnFailed)
}

func TestOpenMySQL_Unreachable(t *testing.T) {
	fastRetry(t)
	cfg := DefaultConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = 1
	cfg.Database = "homes"
	cfg.Pool.ConnectionTimeout = 200 * time.Millisecond

	start := time.Now()
	_, err := OpenMySQL(context.Background(), cfg, WithLogger(discardLogger()))

	errutil.AssertErrorCode(t, err, CodeConnFailed)
	errutil.AssertErrorContext(t, err, "kind", "mysql")
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestOpen_Dispatch(t *testing.T) {
	_, err := Open(context.Background(), Config{})
	errutil.AssertErrorCode(t, err, CodeConfigInvalid)

	_, err = Open(context.Background(), Config{Kind: "redis", FilePath: "x"})
	errutil.AssertErrorCode(t, err, CodeUnsupportedKind)
}

func TestIsPermanentMySQLError(t *testing.T) {
	assert.True(t, isPermanentMySQLError(&mysql.MySQLError{Number: mysqlErrAccessDenied}))
	assert.True(t, isPermanentMySQLError(&mysql.MySQLError{Number: mysqlErrUnknownDatabase}))
	assert.False(t, isPermanentMySQLError(&mysql.MySQLError{Number: 1040}))
	assert.False(t, isPermanentMySQLError(errors.New("i/o timeout")))
}
