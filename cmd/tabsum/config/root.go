// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package config

import (
	"github.com/spf13/cobra"
	"github.com/wrgl/tabsum/cmd/tabsum/utils"
	"github.com/wrgl/tabsum/pkg/conf"
	conffs "github.com/wrgl/tabsum/pkg/conf/fs"
)

func RootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Read or write config.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Usage()
		},
	}
	cmd.PersistentFlags().Bool("system", false, "for writing commands: write to system-wide /usr/local/etc/tabsum/config.yaml rather than the local .tabsum/config.yaml. For reading commands: read only from the system-wide file rather than from all available files.")
	cmd.PersistentFlags().Bool("global", false, "for writing commands: write to global $XDG_CONFIG_HOME/tabsum/config.yaml rather than the local .tabsum/config.yaml. For reading commands: read only from the global file rather than from all available files.")
	cmd.PersistentFlags().Bool("local", false, "for writing commands: write to file .tabsum/config.yaml. This is the default behavior. For reading commands: read only from the local .tabsum/config.yaml rather than from all available files.")
	cmd.PersistentFlags().StringP("file", "f", "", "use the given config file instead of .tabsum/config.yaml")
	cmd.AddCommand(getCmd())
	cmd.AddCommand(setCmd())
	cmd.AddCommand(unsetCmd())
	return cmd
}

// configStore picks the level named by flags. Reads default to the
// aggregate of every level while writes default to the local file.
func configStore(cmd *cobra.Command, write bool) (conf.Store, error) {
	rootDir, err := utils.ConfigDir()
	if err != nil {
		return nil, err
	}
	file, err := cmd.Flags().GetString("file")
	if err != nil {
		return nil, err
	}
	source := conffs.AggregateSource
	if write {
		source = conffs.LocalSource
	}
	for _, f := range []struct {
		name   string
		source conffs.Source
	}{
		{"system", conffs.SystemSource},
		{"global", conffs.GlobalSource},
		{"local", conffs.LocalSource},
	} {
		set, err := cmd.Flags().GetBool(f.name)
		if err != nil {
			return nil, err
		}
		if set {
			source = f.source
			file = ""
			break
		}
	}
	return conffs.NewStore(rootDir, source, file), nil
}

func readableConfigStore(cmd *cobra.Command) (conf.Store, error) {
	return configStore(cmd, false)
}

func writeableConfigStore(cmd *cobra.Command) (conf.Store, error) {
	return configStore(cmd, true)
}
