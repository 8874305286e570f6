// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package main

import (
	"encoding/csv"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/spf13/cobra"
)

var (
	updatedFrom = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	updatedTo   = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
)

const timeLayout = "2006-01-02 15:04:05"

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a users table of fake rows to stdout",
		Example: `  # 1000 rows, reproducible
  csvgen generate -n 1000 --seed 42 > users.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := cmd.Flags().GetInt("rows")
			if err != nil {
				return err
			}
			seed, err := seedFlag(cmd)
			if err != nil {
				return err
			}
			w := csv.NewWriter(cmd.OutOrStdout())
			return w.WriteAll(fakeUsers(gofakeit.New(seed), n))
		},
	}
	cmd.Flags().IntP("rows", "n", 100, "number of rows")
	return cmd
}

// fakeUsers returns a header and n rows with ids 1..n.
func fakeUsers(f *gofakeit.Faker, n int) [][]string {
	rows := [][]string{{"id", "name", "email", "balance", "updated_at"}}
	for i := 0; i < n; i++ {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			f.Name(),
			f.Email(),
			strconv.FormatFloat(f.Float64Range(0, 10000), 'f', 2, 64),
			f.DateRange(updatedFrom, updatedTo).UTC().Format(timeLayout),
		})
	}
	return rows
}
