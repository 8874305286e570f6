// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/wrgl/tabsum/pkg/aggregate"
	"github.com/wrgl/tabsum/pkg/rowhash"
)

// WriteDigest writes the hex table digest. Text output is the bare digest.
func WriteDigest(w io.Writer, f Format, table string, algo rowhash.Algorithm, d *aggregate.TableDigest) error {
	switch f {
	case Text, "":
		_, err := fmt.Fprintln(w, d.Hex())
		return err
	case CSV:
		cw := csv.NewWriter(w)
		cw.Write([]string{"table", "algorithm", "rows", "digest"})
		cw.Write([]string{table, string(algo), strconv.FormatInt(d.Rows, 10), d.Hex()})
		cw.Flush()
		return cw.Error()
	case JSON:
		return json.NewEncoder(w).Encode(map[string]interface{}{
			"table":     table,
			"algorithm": string(algo),
			"rows":      d.Rows,
			"digest":    d.Hex(),
		})
	}
	return fmt.Errorf("unknown report format %q", f)
}
