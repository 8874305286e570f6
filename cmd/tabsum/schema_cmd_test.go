// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package tabsum

import (
	"fmt"
	"strings"
	"testing"
)

func TestSchemaCmd(t *testing.T) {
	setupConfigDir(t)
	p := writeFile(t, "users.yaml", eventsSchema)
	row := func(cells ...interface{}) string {
		return fmt.Sprintf("%-8s  %-10s  %-8s  %-3s  %s", cells...)
	}
	cmd := rootCmd()
	cmd.SetArgs([]string{"schema", p})
	assertCmdOutput(t, cmd, strings.Join([]string{
		"table users",
		"order id",
		"watermark updated_at",
		"",
		row("POSITION", "NAME", "KIND", "KEY", "EXCLUDED"),
		row("1", "id", "numeric", "yes", "no"),
		row("2", "name", "text", "no", "no"),
		row("3", "updated_at", "temporal", "no", "yes"),
		"",
	}, "\n"))

	cmd = rootCmd()
	cmd.SetArgs([]string{"schema", writeFile(t, "bad.yaml", "table: t\ncolumns: []\n")})
	assertCmdFailed(t, cmd, "", fmt.Errorf(`table "t" has no columns`))
}
