// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package testutils

import (
	"os"
	"path/filepath"
)

// runnerDir moves relative dirs under RUNNER_TEMP when CI sets it.
func runnerDir(dir string) string {
	if v := os.Getenv("RUNNER_TEMP"); v != "" && !filepath.IsAbs(dir) {
		return filepath.Join(v, dir)
	}
	return dir
}

func TempDir(dir, pattern string) (string, error) {
	return os.MkdirTemp(runnerDir(dir), pattern)
}

func TempFile(dir, pattern string) (*os.File, error) {
	return os.CreateTemp(runnerDir(dir), pattern)
}
