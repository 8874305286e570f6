// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package sqlutil

import (
	"context"
	"database/sql"
	"fmt"
)

// DB is satisfied by both *sql.DB and *sql.Tx.
type DB interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// RunInTx commits when run succeeds and rolls back otherwise.
func RunInTx(ctx context.Context, db *sql.DB, run func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err = run(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// ExecAll runs statements in order, stopping at the first failure.
func ExecAll(ctx context.Context, tx *sql.Tx, stmts []string) error {
	for i, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("statement #%d: %w", i+1, err)
		}
	}
	return nil
}

// QueryRows scans every row of query into scans and calls cb after each.
func QueryRows(ctx context.Context, db DB, query string, args []interface{}, scans []interface{}, cb func() error) error {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := rows.Scan(scans...); err != nil {
			return err
		}
		if err = cb(); err != nil {
			return err
		}
	}
	return rows.Err()
}
