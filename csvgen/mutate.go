// SPDX-License-Identifier: Apache-2.0
// Copyright © 2021 Wrangle Ltd

package main

import (
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/spf13/cobra"
	"github.com/wrgl/tabsum/pkg/rowhash"
	"github.com/wrgl/tabsum/pkg/schema"
)

func newMutateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mutate CSV_FILE",
		Short: "Add, remove and modify rows of a CSV and write the result to stdout",
		Long: strings.Join([]string{
			"Add, remove and modify rows of a CSV and write the result to stdout.",
			"Rows are identified by the key column. Modified rows get one non-key cell",
			"replaced with a value of the same shape (number, timestamp or text). With",
			"--expect, the diff a comparison of both files should report is written as",
			"CSV with columns KEY,status in ascending key order.",
		}, " "),
		Example: `  # remove 5, modify 10 and add 3 rows
  csvgen mutate users.csv --remove 5 --modify 10 --add 3 --expect expected.csv > users_v2.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := mutatorFromFlags(cmd)
			if err != nil {
				return err
			}
			rows, err := readCSV(args[0])
			if err != nil {
				return err
			}
			if err := m.setHeader(rows[0]); err != nil {
				return err
			}
			nAdd, nRem, nMod, err := countFlags(cmd)
			if err != nil {
				return err
			}
			data, changes, err := m.mutate(rows[1:], nAdd, nRem, nMod)
			if err != nil {
				return err
			}
			shuffle, err := cmd.Flags().GetBool("shuffle")
			if err != nil {
				return err
			}
			if shuffle {
				m.f.Rand.Shuffle(len(data), func(i, j int) {
					data[i], data[j] = data[j], data[i]
				})
			}
			if expect, err := cmd.Flags().GetString("expect"); err != nil {
				return err
			} else if expect != "" {
				if err := writeCSV(expect, m.expected(changes)); err != nil {
					return err
				}
			}
			w := csv.NewWriter(cmd.OutOrStdout())
			return w.WriteAll(append([][]string{rows[0]}, data...))
		},
	}
	cmd.Flags().String("key", "id", "key column")
	cmd.Flags().String("key-kind", "numeric", "kind of the key column, numeric or text")
	cmd.Flags().StringSlice("skip-cols", nil, "columns that are never modified, e.g. excluded columns")
	cmd.Flags().Int("add", 0, "number of rows to add")
	cmd.Flags().Int("remove", 0, "number of rows to remove")
	cmd.Flags().Int("modify", 0, "number of rows to modify")
	cmd.Flags().Bool("shuffle", false, "shuffle output rows")
	cmd.Flags().String("expect", "", "write the expected diff to this file")
	return cmd
}

func mutatorFromFlags(cmd *cobra.Command) (*mutator, error) {
	seed, err := seedFlag(cmd)
	if err != nil {
		return nil, err
	}
	key, err := cmd.Flags().GetString("key")
	if err != nil {
		return nil, err
	}
	s, err := cmd.Flags().GetString("key-kind")
	if err != nil {
		return nil, err
	}
	var kind schema.Kind
	if err := kind.UnmarshalText([]byte(s)); err != nil {
		return nil, err
	}
	if kind != schema.Numeric && kind != schema.Text {
		return nil, fmt.Errorf("key kind must be numeric or text, got %q", s)
	}
	skip, err := cmd.Flags().GetStringSlice("skip-cols")
	if err != nil {
		return nil, err
	}
	return newMutator(gofakeit.New(seed), key, kind, skip...), nil
}

func countFlags(cmd *cobra.Command) (nAdd, nRem, nMod int, err error) {
	if nAdd, err = cmd.Flags().GetInt("add"); err != nil {
		return
	}
	if nRem, err = cmd.Flags().GetInt("remove"); err != nil {
		return
	}
	if nMod, err = cmd.Flags().GetInt("modify"); err != nil {
		return
	}
	if nAdd < 0 || nRem < 0 || nMod < 0 {
		err = fmt.Errorf("row counts must not be negative")
	}
	return
}

type change struct {
	key    string
	status string
}

type mutator struct {
	f        *gofakeit.Faker
	key      string
	kind     schema.Kind
	skip     map[string]struct{}
	header   []string
	keyIdx   int
	editable []int
}

func newMutator(f *gofakeit.Faker, key string, kind schema.Kind, skip ...string) *mutator {
	m := &mutator{
		f:    f,
		key:  key,
		kind: kind,
		skip: map[string]struct{}{},
	}
	for _, s := range skip {
		m.skip[s] = struct{}{}
	}
	return m
}

func (m *mutator) setHeader(header []string) error {
	m.header = header
	m.keyIdx = -1
	m.editable = nil
	for i, name := range header {
		if name == m.key {
			m.keyIdx = i
			continue
		}
		if _, ok := m.skip[name]; !ok {
			m.editable = append(m.editable, i)
		}
	}
	if m.keyIdx == -1 {
		return fmt.Errorf("key column %q not found in header %v", m.key, header)
	}
	return nil
}

// mutate removes nRem rows and modifies nMod other rows of data, then
// appends nAdd rows under new keys. Kept rows stay in their original order.
func (m *mutator) mutate(data [][]string, nAdd, nRem, nMod int) ([][]string, []change, error) {
	if nRem+nMod > len(data) {
		return nil, nil, fmt.Errorf("cannot remove %d and modify %d of %d rows", nRem, nMod, len(data))
	}
	if nMod > 0 && len(m.editable) == 0 {
		return nil, nil, fmt.Errorf("no column besides the key can be modified")
	}
	keys := map[string]struct{}{}
	for _, row := range data {
		keys[row[m.keyIdx]] = struct{}{}
	}
	perm := m.f.Rand.Perm(len(data))
	removed := map[int]struct{}{}
	for _, i := range perm[:nRem] {
		removed[i] = struct{}{}
	}
	modified := map[int]struct{}{}
	for _, i := range perm[nRem : nRem+nMod] {
		modified[i] = struct{}{}
	}

	changes := []change{}
	res := make([][]string, 0, len(data)-nRem+nAdd)
	for i, row := range data {
		if _, ok := removed[i]; ok {
			changes = append(changes, change{row[m.keyIdx], "only-left"})
			continue
		}
		if _, ok := modified[i]; ok {
			row = m.modifyRow(row)
			changes = append(changes, change{row[m.keyIdx], "changed"})
		}
		res = append(res, row)
	}
	for i := 0; i < nAdd; i++ {
		k, err := m.newKey(keys)
		if err != nil {
			return nil, nil, err
		}
		keys[k] = struct{}{}
		row := m.newRow(data, k)
		res = append(res, row)
		changes = append(changes, change{k, "only-right"})
	}
	return res, changes, nil
}

func (m *mutator) modifyRow(row []string) []string {
	row = append([]string{}, row...)
	j := m.editable[m.f.Number(0, len(m.editable)-1)]
	row[j] = m.fakeValue(row[j])
	return row
}

// newRow builds a row shaped like a random existing row, or of plain words
// when data is empty.
func (m *mutator) newRow(data [][]string, key string) []string {
	row := make([]string, len(m.header))
	var tmpl []string
	if len(data) > 0 {
		tmpl = data[m.f.Number(0, len(data)-1)]
	}
	for i := range row {
		switch {
		case i == m.keyIdx:
			row[i] = key
		case tmpl != nil:
			row[i] = m.fakeValue(tmpl[i])
		default:
			row[i] = m.f.Word()
		}
	}
	return row
}

func (m *mutator) newKey(keys map[string]struct{}) (string, error) {
	if m.kind == schema.Text {
		for {
			k := strings.ToLower(m.f.LetterN(8))
			if _, ok := keys[k]; !ok {
				return k, nil
			}
		}
	}
	var max int64
	for k := range keys {
		n, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			return "", fmt.Errorf("key %q is not an integer, use --key-kind text", k)
		}
		if n > max {
			max = n
		}
	}
	return strconv.FormatInt(max+1, 10), nil
}

// fakeValue returns a value different from old but of the same shape so that
// it still canonicalizes under the column's kind.
func (m *mutator) fakeValue(old string) string {
	if t, err := time.Parse(timeLayout, old); err == nil {
		return t.Add(time.Duration(m.f.Number(1, 1000)) * time.Hour).Format(timeLayout)
	}
	if _, err := strconv.ParseFloat(old, 64); err == nil {
		prec := 0
		if i := strings.IndexByte(old, '.'); i != -1 {
			prec = len(old) - i - 1
		}
		for {
			s := strconv.FormatFloat(m.f.Float64Range(0, 10000), 'f', prec, 64)
			if s != old {
				return s
			}
		}
	}
	for {
		s := m.f.Word()
		if s != old {
			return s
		}
	}
}

// expected renders changes as the CSV a diff of the two files reports.
func (m *mutator) expected(changes []change) [][]string {
	sorted := append([]change{}, changes...)
	sort.Slice(sorted, func(i, j int) bool {
		return rowhash.CompareTokens(m.kind, sorted[i].key, sorted[j].key) < 0
	})
	rows := [][]string{{m.key, "status"}}
	for _, c := range sorted {
		rows = append(rows, []string{c.key, c.status})
	}
	return rows
}
