// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package utils

import (
	"strings"
)

type Example struct {
	Comment string
	Line    string
}

// CombineExamples renders examples for cobra's Example field. An example
// without comment is printed as a bare command line.
func CombineExamples(sl []Example) string {
	blocks := make([]string, 0, len(sl))
	for _, ex := range sl {
		var lines []string
		if ex.Comment != "" {
			lines = append(lines, "  # "+ex.Comment)
		}
		lines = append(lines, "  "+ex.Line)
		blocks = append(blocks, strings.Join(lines, "\n"))
	}
	return strings.Join(blocks, "\n\n")
}
