// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package tabsum

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/wrgl/tabsum/cmd/tabsum/config"
	"github.com/wrgl/tabsum/cmd/tabsum/utils"
)

func RootCmd() *cobra.Command {
	var cleanupLogger func()
	rootCmd := &cobra.Command{
		Use:   "tabsum",
		Short: "Fingerprint, diff and reconcile tables",
		Long: "Fingerprint, diff and reconcile tables. Rows are canonicalized, hashed and compared by key " +
			"so two copies of a table can be checked without replication or foreign keys.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
			cleanupLogger, err = utils.SetupLogger(cmd)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if cleanupLogger != nil {
				cleanupLogger()
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Usage()
		},
	}
	viper.SetEnvPrefix("tabsum")
	rootCmd.PersistentFlags().String("config-dir", "", "local config directory, default to .tabsum in the current working directory.")
	viper.BindEnv("config_dir", "TABSUM_DIR")
	viper.BindPFlag("config_dir", rootCmd.PersistentFlags().Lookup("config-dir"))
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "don't display progress bars")
	utils.AddLoggerFlags(rootCmd.PersistentFlags())
	rootCmd.AddCommand(newDigestCmd())
	rootCmd.AddCommand(newDiffCmd())
	rootCmd.AddCommand(newReconcileCmd())
	rootCmd.AddCommand(newSchemaCmd())
	rootCmd.AddCommand(config.RootCmd())
	return rootCmd
}
