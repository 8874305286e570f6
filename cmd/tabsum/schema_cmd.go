// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package tabsum

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/wrgl/tabsum/cmd/tabsum/utils"
	"github.com/wrgl/tabsum/pkg/schema"
)

func newSchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema FILE",
		Short: "Print the resolved column order of a schema file.",
		Long: "Print the resolved column order of a schema file: ordinal position, name, kind and whether the " +
			"column is part of the key or excluded from hashing. Row digests are computed over the non-excluded " +
			"columns in exactly this order.",
		Example: utils.CombineExamples([]utils.Example{
			{
				Comment: "check which columns are hashed",
				Line:    "tabsum schema users.yaml",
			},
		}),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, err := schema.Load(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "table %s\n", desc.Table)
			if cols, err := desc.OrderColumns(); err == nil {
				fmt.Fprintf(out, "order %s\n", joinNames(cols))
			}
			if desc.Watermark != "" {
				fmt.Fprintf(out, "watermark %s\n", desc.Watermark)
			}
			fmt.Fprintln(out)
			rows := [][]string{{"POSITION", "NAME", "KIND", "KEY", "EXCLUDED"}}
			for _, col := range desc.Columns {
				rows = append(rows, []string{
					strconv.Itoa(col.Position), col.Name, col.Kind.String(), yesNo(col.Key), yesNo(col.Excluded),
				})
			}
			return utils.PrintTable(out, rows, 0)
		},
	}
	return cmd
}

func joinNames(cols []schema.ColumnSpec) string {
	s := ""
	for i, col := range cols {
		if i > 0 {
			s += ", "
		}
		s += col.Name
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
