// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package config

import (
	"github.com/spf13/cobra"
	"github.com/wrgl/tabsum/cmd/tabsum/utils"
	"github.com/wrgl/tabsum/pkg/dotno"
)

func unsetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unset NAME",
		Short: "Remove a field.",
		Example: utils.CombineExamples([]utils.Example{
			{
				Comment: "remove an option",
				Line:    "tabsum config unset diff.showMatched",
			},
			{
				Comment: "remove a named source",
				Line:    "tabsum config unset sources.prod",
			},
		}),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := writeableConfigStore(cmd)
			if err != nil {
				return err
			}
			c, err := s.Open()
			if err != nil {
				return err
			}
			if err := dotno.UnsetField(c, args[0]); err != nil {
				return err
			}
			return s.Save(c)
		},
	}
	return cmd
}
