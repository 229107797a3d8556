// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Hytalib Contributors

package database

import (
	"strings"

	"github.com/samber/oops"
)

// Kind identifies a database engine.
type Kind string

// Supported engines.
const (
	KindPostgres Kind = "postgres"
	KindMySQL    Kind = "mysql"
	KindSQLite   Kind = "sqlite"
)

// String returns the engine name.
func (k Kind) String() string { return string(k) }

// DefaultPort returns the engine's standard TCP port, or 0 for file-backed
// engines.
func (k Kind) DefaultPort() int {
	switch k {
	case KindPostgres:
		return 5432
	case KindMySQL:
		return 3306
	default:
		return 0
	}
}

func (k Kind) supported() bool {
	switch k {
	case KindPostgres, KindMySQL, KindSQLite:
		return true
	default:
		return false
	}
}

// ParseKind maps an engine name to a Kind. Matching ignores case and
// accepts "postgresql" and "sqlite3" as aliases.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "postgres", "postgresql":
		return KindPostgres, nil
	case "mysql":
		return KindMySQL, nil
	case "sqlite", "sqlite3":
		return KindSQLite, nil
	}
	return "", oops.Code(CodeUnsupportedKind).
		With("kind", s).
		Errorf("unsupported database kind %q", s)
}
