// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package utils

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/wrgl/tabsum/pkg/conf"
	conffs "github.com/wrgl/tabsum/pkg/conf/fs"
)

const DefaultConfigDir = ".tabsum"

// ConfigDir returns the local config directory, taken from --config-dir,
// then TABSUM_DIR, then ".tabsum" in the working directory.
func ConfigDir() (string, error) {
	if d := viper.GetString("config_dir"); d != "" {
		return d, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, DefaultConfigDir), nil
}

// OpenConfig reads the aggregated system, global and local config.
func OpenConfig(cmd *cobra.Command) (*conf.Config, string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, "", err
	}
	c, err := conffs.NewStore(dir, conffs.AggregateSource, "").Open()
	if err != nil {
		return nil, "", err
	}
	return c, dir, nil
}

// ResolvePath makes p relative to the config directory unless it is
// absolute.
func ResolvePath(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

// RunContext applies the configured timeout to the command context.
func RunContext(cmd *cobra.Command, c *conf.Config) (context.Context, context.CancelFunc) {
	if d := c.GetTimeout(); d > 0 {
		return context.WithTimeout(cmd.Context(), d)
	}
	return context.WithCancel(cmd.Context())
}

// IsQuiet is true when --quiet is given or the config says so.
func IsQuiet(cmd *cobra.Command, c *conf.Config) bool {
	if q, err := cmd.Flags().GetBool("quiet"); err == nil && q {
		return true
	}
	return c.IsQuiet()
}
