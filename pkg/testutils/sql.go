// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wrgl/tabsum/pkg/sqlutil"
)

// CreateSQLDB opens a sqlite database under a temp dir and runs the given
// statements in one transaction. The sqlite3 driver must be registered by
// the caller.
func CreateSQLDB(t *testing.T, createTableStatements []string) (db *sql.DB, stop func()) {
	t.Helper()
	dir := t.TempDir()
	db, err := sql.Open("sqlite3", filepath.Join(dir, "sqlite.db"))
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, sqlutil.RunInTx(ctx, db, func(tx *sql.Tx) error {
		return sqlutil.ExecAll(ctx, tx, createTableStatements)
	}))
	return db, func() {
		require.NoError(t, db.Close())
	}
}

// InsertRows inserts CSV-like rows into table. The first row is the header.
// Empty cells are inserted as NULL.
func InsertRows(t *testing.T, db *sql.DB, table string, rows [][]string) {
	t.Helper()
	header := rows[0]
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(header)), ", ")
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(header, ", "), marks)
	require.NoError(t, sqlutil.RunInTx(context.Background(), db, func(tx *sql.Tx) error {
		for _, row := range rows[1:] {
			args := make([]interface{}, len(row))
			for i, s := range row {
				if s != "" {
					args[i] = s
				}
			}
			if _, err := tx.Exec(stmt, args...); err != nil {
				return err
			}
		}
		return nil
	}))
}
