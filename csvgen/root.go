// SPDX-License-Identifier: Apache-2.0
// Copyright © 2021 Wrangle Ltd

package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "csvgen",
		Short: "Generate CSV fixtures for diff and reconcile runs",
	}
	cmd.PersistentFlags().Int64("seed", 0, "random seed, current time if zero")
	cmd.AddCommand(newGenerateCmd())
	cmd.AddCommand(newMutateCmd())
	return cmd
}

func seedFlag(cmd *cobra.Command) (int64, error) {
	seed, err := cmd.Flags().GetInt64("seed")
	if err != nil {
		return 0, err
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return seed, nil
}

func readCSV(name string) (rows [][]string, err error) {
	f, err := os.Open(name)
	if err != nil {
		return
	}
	defer f.Close()
	r := csv.NewReader(f)
	rows, err = r.ReadAll()
	if err != nil {
		return
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s has no header", name)
	}
	return
}

func writeCSV(name string, rows [][]string) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
