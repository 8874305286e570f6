// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package sqlsrc

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
)

type Dialect string

const (
	SQLite Dialect = "sqlite3"
	MySQL  Dialect = "mysql"
)

func ParseDialect(s string) (Dialect, error) {
	switch d := Dialect(strings.ToLower(s)); d {
	case SQLite, MySQL:
		return d, nil
	case "sqlite":
		return SQLite, nil
	}
	return "", fmt.Errorf("unsupported sql dialect %q", s)
}

// Quote quotes an identifier.
func (d Dialect) Quote(ident string) string {
	if d == MySQL {
		return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// orderExpr renders an ORDER BY term whose order agrees with
// rowhash.CompareTokens. MySQL compares text with the column collation,
// which is usually case-insensitive, so text columns are ordered by their
// binary collation instead.
func (d Dialect) orderExpr(ident string, text bool) string {
	if d == MySQL && text {
		return d.Quote(ident) + " COLLATE utf8mb4_bin"
	}
	return d.Quote(ident)
}

// Connect opens a database handle. MySQL DSNs are amended to parse
// DATETIME values into time.Time.
func Connect(d Dialect, dsn string) (*sql.DB, error) {
	if d == MySQL {
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return nil, fmt.Errorf("mysql dsn: %w", err)
		}
		cfg.ParseTime = true
		dsn = cfg.FormatDSN()
	}
	return sql.Open(string(d), dsn)
}
