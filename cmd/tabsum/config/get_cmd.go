// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package config

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/wrgl/tabsum/cmd/tabsum/utils"
	"github.com/wrgl/tabsum/pkg/dotno"
)

func getCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get NAME",
		Short: "Get value of a field.",
		Long:  "Get value of a field. Nested objects are printed as YAML. Returns an error if the key is not set.",
		Example: utils.CombineExamples([]utils.Example{
			{
				Comment: "get the digest algorithm",
				Line:    "tabsum config get algorithm",
			},
			{
				Comment: "print a named source",
				Line:    "tabsum config get sources.prod",
			},
		}),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := readableConfigStore(cmd)
			if err != nil {
				return err
			}
			c, err := s.Open()
			if err != nil {
				return err
			}
			v, err := dotno.GetFieldValue(c, args[0], false)
			if err != nil {
				return fmt.Errorf("key %q is not set", args[0])
			}
			str, err := dotno.MarshalValue(v)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), str)
			return err
		},
	}
	return cmd
}
