// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

// Package confhelpers points every config level at temp dirs during tests.
// Environment changes are undone when the test ends.
package confhelpers

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func tempDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	return dir
}

// MockGlobalConf moves the global config under a temp dir, either through
// XDG_CONFIG_HOME or through HOME, and returns that dir.
func MockGlobalConf(t *testing.T, setXDGConfigHome bool) string {
	t.Helper()
	dir := tempDir(t)
	if setXDGConfigHome {
		t.Setenv("XDG_CONFIG_HOME", dir)
	} else {
		t.Setenv("XDG_CONFIG_HOME", "")
		t.Setenv("HOME", dir)
	}
	return dir
}

// MockSystemConf moves the system config under a temp dir and returns it.
func MockSystemConf(t *testing.T) string {
	t.Helper()
	dir := tempDir(t)
	t.Setenv("TABSUM_SYSTEM_CONFIG_DIR", dir)
	return dir
}
