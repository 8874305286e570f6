// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package tabsum

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	confhelpers "github.com/wrgl/tabsum/pkg/conf/helpers"
	"github.com/wrgl/tabsum/pkg/errors"
)

const usersSchema = `table: users
key: [id]
columns:
  - name: id
    kind: numeric
  - name: name
    kind: text
`

func rootCmd() *cobra.Command {
	cmd := RootCmd()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	return cmd
}

// setupConfigDir isolates every config level and returns the local config
// directory.
func setupConfigDir(t *testing.T) string {
	t.Helper()
	confhelpers.MockGlobalConf(t, true)
	confhelpers.MockSystemConf(t)
	dir := filepath.Join(t.TempDir(), ".tabsum")
	viper.Set("config_dir", dir)
	t.Cleanup(func() {
		viper.Set("config_dir", "")
	})
	return dir
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := rootCmd()
	cmd.SetArgs(args)
	buf := bytes.NewBuffer(nil)
	cmd.SetOut(buf)
	err := cmd.Execute()
	return buf.String(), err
}

func assertCmdOutput(t *testing.T, cmd *cobra.Command, output string) {
	t.Helper()
	buf := bytes.NewBufferString("")
	cmd.SetOut(buf)
	err := cmd.Execute()
	assert.Equal(t, output, buf.String())
	require.NoError(t, err)
}

func assertCmdFailed(t *testing.T, cmd *cobra.Command, output string, err error) {
	t.Helper()
	buf := bytes.NewBufferString("")
	cmd.SetOut(buf)
	exErr := cmd.Execute()
	assert.True(t, errors.Contains(exErr, err), "expecting error %v to contain error %v", exErr, err)
	assert.Equal(t, output, buf.String())
}
