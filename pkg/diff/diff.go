// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

// Package diff compares two row digest streams ordered by key with a single
// sorted merge.
package diff

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/go-logr/logr"
	"github.com/wrgl/tabsum/pkg/rowhash"
	"github.com/wrgl/tabsum/pkg/stream"
)

type Status int

const (
	Unspecified Status = iota
	Matched
	Changed
	OnlyLeft
	OnlyRight
)

var statusNames = map[Status]string{
	Matched:   "matched",
	Changed:   "changed",
	OnlyLeft:  "only-left",
	OnlyRight: "only-right",
}

func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return "unspecified"
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	for k, v := range statusNames {
		if strings.EqualFold(v, string(b)) {
			*s = k
			return nil
		}
	}
	return fmt.Errorf("unknown diff status %q", string(b))
}

type Record struct {
	Key    rowhash.Key
	Status Status

	// LeftSum and RightSum are nil on the side where the key is absent.
	LeftSum  []byte
	RightSum []byte
}

type Summary struct {
	Matched   int64 `json:"matched"`
	Changed   int64 `json:"changed"`
	OnlyLeft  int64 `json:"onlyLeft"`
	OnlyRight int64 `json:"onlyRight"`
}

func (s *Summary) Add(st Status) {
	switch st {
	case Matched:
		s.Matched++
	case Changed:
		s.Changed++
	case OnlyLeft:
		s.OnlyLeft++
	case OnlyRight:
		s.OnlyRight++
	}
}

func (s *Summary) Merge(o Summary) {
	s.Matched += o.Matched
	s.Changed += o.Changed
	s.OnlyLeft += o.OnlyLeft
	s.OnlyRight += o.OnlyRight
}

func (s Summary) Total() int64 {
	return s.Matched + s.Changed + s.OnlyLeft + s.OnlyRight
}

// Divergent reports whether any key is not Matched.
func (s Summary) Divergent() bool {
	return s.Changed+s.OnlyLeft+s.OnlyRight > 0
}

type Option func(d *Differ)

func WithLogger(logger logr.Logger) Option {
	return func(d *Differ) {
		d.logger = logger
	}
}

// WithSides names both inputs in errors. Defaults are "left" and "right".
func WithSides(left, right string) Option {
	return func(d *Differ) {
		d.leftName, d.rightName = left, right
	}
}

// Differ pulls from both inputs only as far as needed to classify the next
// key, holding at most one digest per side.
type Differ struct {
	left, right         stream.Iterator
	leftName, rightName string
	l, r                *rowhash.RowDigest
	lDone, rDone        bool
	err                 error
	summary             Summary
	logger              logr.Logger
}

func NewDiffer(left, right stream.Iterator, opts ...Option) *Differ {
	d := &Differ{
		leftName:  "left",
		rightName: "right",
		logger:    logr.Discard(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.left = stream.Ordered(left, d.leftName)
	d.right = stream.Ordered(right, d.rightName)
	return d
}

func (d *Differ) fill() error {
	var err error
	if d.l == nil && !d.lDone {
		d.l, err = d.left.Read()
		if err == io.EOF {
			d.l, d.lDone = nil, true
		} else if err != nil {
			return err
		}
	}
	if d.r == nil && !d.rDone {
		d.r, err = d.right.Read()
		if err == io.EOF {
			d.r, d.rDone = nil, true
		} else if err != nil {
			return err
		}
	}
	return nil
}

// Read returns the next record in ascending key order, or io.EOF once both
// inputs are exhausted. After an error every call returns the same error.
func (d *Differ) Read() (*Record, error) {
	if d.err != nil {
		return nil, d.err
	}
	if err := d.fill(); err != nil {
		d.err = err
		return nil, err
	}
	var rec *Record
	switch {
	case d.l == nil && d.r == nil:
		d.err = io.EOF
		d.logger.V(1).Info("diff done",
			"matched", d.summary.Matched, "changed", d.summary.Changed,
			"onlyLeft", d.summary.OnlyLeft, "onlyRight", d.summary.OnlyRight,
		)
		return nil, io.EOF
	case d.r == nil:
		rec = &Record{Key: d.l.Key, Status: OnlyLeft, LeftSum: d.l.Sum}
		d.l = nil
	case d.l == nil:
		rec = &Record{Key: d.r.Key, Status: OnlyRight, RightSum: d.r.Sum}
		d.r = nil
	default:
		switch c := d.l.Key.Compare(d.r.Key); {
		case c < 0:
			rec = &Record{Key: d.l.Key, Status: OnlyLeft, LeftSum: d.l.Sum}
			d.l = nil
		case c > 0:
			rec = &Record{Key: d.r.Key, Status: OnlyRight, RightSum: d.r.Sum}
			d.r = nil
		default:
			rec = &Record{Key: d.l.Key, Status: Changed, LeftSum: d.l.Sum, RightSum: d.r.Sum}
			if bytes.Equal(d.l.Sum, d.r.Sum) {
				rec.Status = Matched
			}
			d.l, d.r = nil, nil
		}
	}
	d.summary.Add(rec.Status)
	if v := d.logger.V(2); v.Enabled() {
		v.Info("diff record", "key", rec.Key.String(), "status", rec.Status.String())
	}
	return rec, nil
}

// Summary counts records returned so far.
func (d *Differ) Summary() Summary {
	return d.summary
}

// Run drains d into emit, checking ctx before every record.
func Run(ctx context.Context, d *Differ, emit func(*Record) error) (Summary, error) {
	for {
		if err := ctx.Err(); err != nil {
			return d.Summary(), err
		}
		rec, err := d.Read()
		if err == io.EOF {
			return d.Summary(), nil
		}
		if err != nil {
			return d.Summary(), err
		}
		if err := emit(rec); err != nil {
			return d.Summary(), err
		}
	}
}
