// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package report

import (
	"encoding/hex"
	"io"

	"github.com/fatih/color"
	"github.com/wrgl/tabsum/pkg/reconcile"
)

// PlanWriter writes merge plan lines {key, action, newDigest}.
type PlanWriter struct {
	enc encoder
}

func NewPlanWriter(w io.Writer, f Format, opts ...Option) (*PlanWriter, error) {
	enc, err := newEncoder(w, f, newOptions(opts), map[string]color.Attribute{
		reconcile.Insert.String(): color.FgGreen,
		reconcile.Update.String(): color.FgYellow,
	})
	if err != nil {
		return nil, err
	}
	if err := enc.begin([]string{"action", "newDigest"}); err != nil {
		return nil, err
	}
	return &PlanWriter{enc: enc}, nil
}

func (w *PlanWriter) Write(e *reconcile.Entry) error {
	return w.enc.record(e.Key, []string{e.Action.String(), hex.EncodeToString(e.Sum)})
}

// Close writes the trailer. A non-nil err marks the plan incomplete.
func (w *PlanWriter) Close(sum reconcile.Summary, err error) error {
	return w.enc.end(err == nil, []stat{
		{"run", sum.RunID},
		{"insert", sum.Inserts},
		{"update", sum.Updates},
		{"skip", sum.Skips},
	}, err)
}
