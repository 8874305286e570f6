// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package config

import (
	"github.com/spf13/cobra"
	"github.com/wrgl/tabsum/cmd/tabsum/utils"
	"github.com/wrgl/tabsum/pkg/dotno"
)

func setCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set NAME VALUE",
		Short: "Set value for a field.",
		Long:  "Set value for a field. For boolean fields, only \"true\" or \"false\" value can be set. Durations are written like \"1h30m\".",
		Example: utils.CombineExamples([]utils.Example{
			{
				Comment: "keep digests in a sqlite file",
				Line:    "tabsum config set store.type sqlite",
			},
			{
				Comment: "name a source",
				Line:    "tabsum config set sources.prod.dsn 'user:pass@tcp(db:3306)/crm'",
			},
			{
				Comment: "alter global config",
				Line:    "tabsum config set algorithm blake2b --global",
			},
		}),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := writeableConfigStore(cmd)
			if err != nil {
				return err
			}
			c, err := s.Open()
			if err != nil {
				return err
			}
			if err := dotno.SetWithDotNotation(c, args[0], args[1]); err != nil {
				return err
			}
			return s.Save(c)
		},
	}
	return cmd
}
