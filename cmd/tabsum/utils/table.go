// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package utils

import (
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// PrintTable prints rows of text in aligned columns.
func PrintTable(w io.Writer, rows [][]string, indent int) error {
	widths := []int{}
	for _, row := range rows {
		for i, cell := range row {
			n := runewidth.StringWidth(cell)
			if i >= len(widths) {
				widths = append(widths, n)
			} else if widths[i] < n {
				widths[i] = n
			}
		}
	}
	sb := &strings.Builder{}
	for _, row := range rows {
		sb.WriteString(strings.Repeat(" ", indent))
		for i, cell := range row {
			if i == len(row)-1 {
				sb.WriteString(cell)
			} else {
				sb.WriteString(runewidth.FillRight(cell, widths[i]))
				sb.WriteString("  ")
			}
		}
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
