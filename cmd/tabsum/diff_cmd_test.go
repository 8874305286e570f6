// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package tabsum

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-logr/logr/funcr"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wrgl/tabsum/cmd/tabsum/utils"
	"github.com/wrgl/tabsum/pkg/errors"
	"github.com/wrgl/tabsum/pkg/schema"
	"github.com/wrgl/tabsum/pkg/testutils"
)

func scenarioFiles(t *testing.T) (left, right string) {
	t.Helper()
	left = testutils.WriteCSV(t, [][]string{
		{"id", "name"},
		{"1", "Alice"},
		{"2", "Bob"},
	})
	right = testutils.WriteCSV(t, [][]string{
		{"id", "name"},
		{"1", "Alice"},
		{"2", "Bobby"},
		{"3", "Cara"},
	})
	return
}

func TestDiffCmd(t *testing.T) {
	setupConfigDir(t)
	schemaPath := writeFile(t, "users.yaml", usersSchema)
	left, right := scenarioFiles(t)

	out, err := runCmd(t, "diff", left, right, "-s", schemaPath, "--format", "csv")
	assert.True(t, errors.Is(err, utils.ErrDivergent))
	assert.Equal(t, strings.Join([]string{
		"id,status",
		"2,changed",
		"3,only-right",
		"#complete,matched=1,changed=1,only-left=0,only-right=1",
		"",
	}, "\n"), out)
	assert.Equal(t, utils.ExitDivergent, utils.ExitCode(err))

	out, err = runCmd(t, "diff", left, right, "-s", schemaPath, "--show-matched")
	assert.True(t, errors.Is(err, utils.ErrDivergent))
	assert.Equal(t, strings.Join([]string{
		fmt.Sprintf("%-20s  %s", "1", "matched"),
		fmt.Sprintf("%-20s  %s", "2", "changed"),
		fmt.Sprintf("%-20s  %s", "3", "only-right"),
		"# complete matched=1 changed=1 only-left=0 only-right=1",
		"",
	}, "\n"), out)

	out, err = runCmd(t, "diff", left, left, "-s", schemaPath)
	require.NoError(t, err)
	assert.Equal(t, "# complete matched=2 changed=0 only-left=0 only-right=0\n", out)
	assert.Equal(t, utils.ExitClean, utils.ExitCode(err))
}

func TestDiffCmdRightSchema(t *testing.T) {
	setupConfigDir(t)
	left, _ := scenarioFiles(t)
	right := testutils.WriteCSV(t, [][]string{
		{"id", "name", "note"},
		{"1", "Alice", "x"},
		{"2", "Bob", "y"},
	})
	rightSchema := writeFile(t, "users_v2.yaml", usersSchema+"  - name: note\n    kind: text\n")

	out, err := runCmd(t, "diff", left, right, "-s", writeFile(t, "users.yaml", usersSchema), "--right-schema", rightSchema)
	require.NoError(t, err)
	assert.Equal(t, "# complete matched=2 changed=0 only-left=0 only-right=0\n", out)

	noKey := writeFile(t, "nokey.yaml", "table: users\ncolumns:\n  - name: id\n  - name: name\n")
	_, err = runCmd(t, "diff", left, right, "-s", noKey)
	assert.True(t, errors.Is(err, errors.ErrNoDeterministicOrder), "got %v", err)
	assert.Equal(t, utils.ExitFailure, utils.ExitCode(err))
}

func createUsersDB(t *testing.T, n int) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "app.db")
	db, err := sql.Open("sqlite3", p)
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec("CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT)")
	require.NoError(t, err)
	rows := [][]string{{"id", "name"}}
	for i := 1; i <= n; i++ {
		rows = append(rows, []string{fmt.Sprint(i), fmt.Sprintf("user %d", i)})
	}
	testutils.InsertRows(t, db, "users", rows)
	return p
}

func TestDiffCmdPartitioned(t *testing.T) {
	setupConfigDir(t)
	schemaPath := writeFile(t, "users.yaml", usersSchema)
	dbPath := createUsersDB(t, 20)
	rows := [][]string{{"id", "name"}}
	for i := 1; i <= 21; i++ {
		switch i {
		case 7:
			continue
		case 12:
			rows = append(rows, []string{"12", "changed"})
		default:
			rows = append(rows, []string{fmt.Sprint(i), fmt.Sprintf("user %d", i)})
		}
	}
	right := testutils.WriteCSV(t, rows)
	expected := strings.Join([]string{
		"id,status",
		"7,only-left",
		"12,changed",
		"21,only-right",
		"#complete,matched=18,changed=1,only-left=1,only-right=1",
		"",
	}, "\n")

	for _, args := range [][]string{
		nil,
		{"--partitions", "4"},
		{"--partitions", "3", "--workers", "2"},
	} {
		out, err := runCmd(t, append([]string{
			"diff", "sqlite3://" + dbPath + "?table=users", right, "-s", schemaPath, "-f", "csv",
		}, args...)...)
		assert.True(t, errors.Is(err, utils.ErrDivergent), "args %v: %v", args, err)
		assert.Equal(t, expected, out, "args %v", args)
	}
}

func createEventsDB(t *testing.T, nullName string, n int) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "events.db")
	db, err := sql.Open("sqlite3", p)
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec("CREATE TABLE events (id INTEGER, name TEXT)")
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO events (id, name) VALUES (NULL, ?)", nullName)
	require.NoError(t, err)
	for i := 1; i <= n; i++ {
		_, err = db.Exec("INSERT INTO events (id, name) VALUES (?, ?)", i, fmt.Sprintf("event %d", i))
		require.NoError(t, err)
	}
	return p
}

func TestDiffCmdPartitionedNullOrderColumn(t *testing.T) {
	setupConfigDir(t)
	schemaPath := writeFile(t, "events.yaml", `table: events
orderBy: [id]
columns:
  - name: id
    kind: numeric
    nullable: true
  - name: name
    kind: text
`)
	left := "sqlite3://" + createEventsDB(t, "z", 10) + "?table=events"
	right := "sqlite3://" + createEventsDB(t, "y", 9) + "?table=events"
	expected := strings.Join([]string{
		"id,status",
		",changed",
		"10,only-left",
		"#complete,matched=9,changed=1,only-left=1,only-right=0",
		"",
	}, "\n")

	for _, args := range [][]string{
		nil,
		{"--partitions", "2"},
		{"--partitions", "4", "--workers", "2"},
	} {
		out, err := runCmd(t, append([]string{"diff", left, right, "-s", schemaPath, "-f", "csv"}, args...)...)
		assert.True(t, errors.Is(err, utils.ErrDivergent), "args %v: %v", args, err)
		assert.Equal(t, expected, out, "args %v", args)
	}
}

func TestDiffCmdNamedSources(t *testing.T) {
	setupConfigDir(t)
	schemaPath := writeFile(t, "users.yaml", usersSchema)
	dbPath := createUsersDB(t, 3)
	right := testutils.WriteCSV(t, [][]string{
		{"id", "name"},
		{"1", "user 1"},
		{"2", "user 2"},
		{"3", "user 3"},
	})
	for _, args := range [][]string{
		{"config", "set", "sources.prod.driver", "sqlite3"},
		{"config", "set", "sources.prod.dsn", dbPath},
		{"config", "set", "sources.prod.schema", schemaPath},
		{"config", "set", "sources.snapshot.path", right},
		{"config", "set", "sources.snapshot.schema", schemaPath},
		{"config", "set", "diff.format", "json"},
	} {
		_, err := runCmd(t, args...)
		require.NoError(t, err, "%v", args)
	}
	out, err := runCmd(t, "diff", "prod", "snapshot")
	require.NoError(t, err)
	assert.JSONEq(t, `{"complete":true,"summary":{"matched":3,"changed":0,"only-left":0,"only-right":0}}`, out)
}

func TestLogSkippedColumns(t *testing.T) {
	resolve := func(cols ...string) *schema.Descriptor {
		d := &schema.Descriptor{Table: "users", Key: []string{"id"}}
		for _, c := range cols {
			d.Columns = append(d.Columns, schema.ColumnSpec{Name: c, Kind: schema.Text})
		}
		require.NoError(t, d.Resolve())
		return d
	}
	var lines []string
	logger := funcr.New(func(prefix, args string) {
		lines = append(lines, args)
	}, funcr.Options{})

	logSkippedColumns(logger, resolve("id", "name"), resolve("id", "name"))
	assert.Empty(t, lines)

	logSkippedColumns(logger, resolve("id", "name"), resolve("id", "name", "note"))
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"columns not compared"`)
	assert.Contains(t, lines[0], `"onlyRight"=["note"]`)
}
