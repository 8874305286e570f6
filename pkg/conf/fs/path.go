// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package conffs

import (
	"fmt"
	"os"
	"path/filepath"
)

const configFile = "config.yaml"

func systemConfigPath() string {
	if s := os.Getenv("TABSUM_SYSTEM_CONFIG_DIR"); s != "" {
		return filepath.Join(s, configFile)
	}
	return "/usr/local/etc/tabsum/" + configFile
}

// globalConfigPath lives under $XDG_CONFIG_HOME or ~/.config on Unix,
// ~/Library/Application Support on macOS and %AppData% on Windows.
func globalConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "tabsum", configFile), nil
}

func localPath(rootDir string) string {
	return filepath.Join(rootDir, configFile)
}

func (s *Store) path() (string, error) {
	switch s.source {
	case SystemSource:
		return systemConfigPath(), nil
	case GlobalSource:
		return globalConfigPath()
	case LocalSource:
		return localPath(s.rootDir), nil
	case FileSource:
		return s.fp, nil
	default:
		return "", fmt.Errorf("unrecognized source: %v", s.source)
	}
}

// Path returns the file this store reads and writes.
func (s *Store) Path() (string, error) {
	if s.source == AggregateSource {
		return "", fmt.Errorf("aggregated config has no single path")
	}
	return s.path()
}
