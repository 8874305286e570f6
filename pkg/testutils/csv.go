// SPDX-License-Identifier: Apache-2.0
// Copyright © 2021 Wrangle Ltd

package testutils

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"
)

// FakeUsers builds a users table (header included) of n rows with ids 1..n.
// The same seed always yields the same table.
func FakeUsers(seed int64, n int) [][]string {
	f := gofakeit.New(seed)
	rows := [][]string{{"id", "name", "email", "balance", "updated_at"}}
	for i := 0; i < n; i++ {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			f.Name(),
			f.Email(),
			strconv.FormatFloat(f.Float64Range(0, 10000), 'f', 2, 64),
			f.DateRange(
				mustParseDate("2020-01-01"), mustParseDate("2024-01-01"),
			).UTC().Format("2006-01-02 15:04:05"),
		})
	}
	return rows
}

// WriteCSV writes rows to a new file under t.TempDir and returns its path.
func WriteCSV(t *testing.T, rows [][]string) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "*.csv")
	require.NoError(t, err)
	defer f.Close()
	w := csv.NewWriter(f)
	require.NoError(t, w.WriteAll(rows))
	return filepath.Clean(f.Name())
}
