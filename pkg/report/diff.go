// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package report

import (
	"io"

	"github.com/fatih/color"
	"github.com/wrgl/tabsum/pkg/diff"
)

// DiffWriter writes {key, status} lines. Matched keys are left out unless
// ShowMatched is set.
type DiffWriter struct {
	enc         encoder
	ShowMatched bool
}

func NewDiffWriter(w io.Writer, f Format, opts ...Option) (*DiffWriter, error) {
	enc, err := newEncoder(w, f, newOptions(opts), map[string]color.Attribute{
		diff.Changed.String():   color.FgYellow,
		diff.OnlyLeft.String():  color.FgRed,
		diff.OnlyRight.String(): color.FgGreen,
	})
	if err != nil {
		return nil, err
	}
	if err := enc.begin([]string{"status"}); err != nil {
		return nil, err
	}
	return &DiffWriter{enc: enc}, nil
}

func (w *DiffWriter) Write(r *diff.Record) error {
	if r.Status == diff.Matched && !w.ShowMatched {
		return nil
	}
	return w.enc.record(r.Key, []string{r.Status.String()})
}

// Close writes the trailer. A non-nil err marks the report incomplete.
func (w *DiffWriter) Close(sum diff.Summary, err error) error {
	return w.enc.end(err == nil, []stat{
		{"matched", sum.Matched},
		{"changed", sum.Changed},
		{"only-left", sum.OnlyLeft},
		{"only-right", sum.OnlyRight},
	}, err)
}
