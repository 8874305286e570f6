// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

// Package reconcile compares freshly computed row digests against digests
// kept from an earlier run and produces a merge plan. Planning never writes
// to the digest store, Apply does.
package reconcile

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/wrgl/tabsum/pkg/digeststore"
	"github.com/wrgl/tabsum/pkg/partition"
	"github.com/wrgl/tabsum/pkg/pbar"
	"github.com/wrgl/tabsum/pkg/rowhash"
	"github.com/wrgl/tabsum/pkg/schema"
	"github.com/wrgl/tabsum/pkg/source"
	"github.com/wrgl/tabsum/pkg/stream"
)

type Action int

const (
	Unspecified Action = iota
	Insert
	Update
	Skip
)

var actionNames = map[Action]string{
	Insert: "insert",
	Update: "update",
	Skip:   "skip",
}

func (a Action) String() string {
	if n, ok := actionNames[a]; ok {
		return n
	}
	return "unspecified"
}

func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Action) UnmarshalText(b []byte) error {
	for k, v := range actionNames {
		if strings.EqualFold(v, string(b)) {
			*a = k
			return nil
		}
	}
	return fmt.Errorf("unknown merge action %q", string(b))
}

// Entry is one line of a merge plan.
type Entry struct {
	Key    rowhash.Key
	Action Action

	// Sum is the newly computed digest.
	Sum []byte

	// PrevSum is the stored digest, nil for Insert.
	PrevSum []byte
}

type Summary struct {
	RunID   string `json:"runId"`
	Inserts int64  `json:"inserts"`
	Updates int64  `json:"updates"`
	Skips   int64  `json:"skips"`
}

func (s *Summary) Add(a Action) {
	switch a {
	case Insert:
		s.Inserts++
	case Update:
		s.Updates++
	case Skip:
		s.Skips++
	}
}

// Pending reports whether the plan has anything to apply.
func (s Summary) Pending() bool {
	return s.Inserts+s.Updates > 0
}

type Option func(r *Reconciler)

func WithLogger(logger logr.Logger) Option {
	return func(r *Reconciler) {
		r.logger = logger
	}
}

func WithHasherOptions(opts ...rowhash.Option) Option {
	return func(r *Reconciler) {
		r.hasherOpts = append(r.hasherOpts, opts...)
	}
}

// WithRunID replaces the random run ID.
func WithRunID(id uuid.UUID) Option {
	return func(r *Reconciler) {
		r.runID = id
	}
}

// WithWorkers sets how many key ranges PlanSource reads at once.
func WithWorkers(n int) Option {
	return func(r *Reconciler) {
		r.workers = n
	}
}

// WithProgressBar counts rows planned by PlanSource.
func WithProgressBar(bar pbar.Bar) Option {
	return func(r *Reconciler) {
		r.bar = bar
	}
}

type Reconciler struct {
	lookup     digeststore.Getter
	runID      uuid.UUID
	hasherOpts []rowhash.Option
	workers    int
	bar        pbar.Bar
	logger     logr.Logger
}

func New(lookup digeststore.Getter, opts ...Option) *Reconciler {
	r := &Reconciler{
		lookup:  lookup,
		runID:   uuid.New(),
		workers: 1,
		bar:     pbar.NewNoopBar(),
		logger:  logr.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Reconciler) RunID() uuid.UUID {
	return r.runID
}

func (r *Reconciler) classify(ctx context.Context, d *rowhash.RowDigest) (*Entry, error) {
	stored, err := r.lookup.Get(ctx, d.Key)
	if err != nil {
		return nil, fmt.Errorf("digest store lookup of key [%s]: %w", d.Key, err)
	}
	e := &Entry{Key: d.Key, Sum: d.Sum}
	switch {
	case stored == nil:
		e.Action = Insert
	case bytes.Equal(stored.Sum, d.Sum):
		e.Action = Skip
		e.PrevSum = stored.Sum
	default:
		e.Action = Update
		e.PrevSum = stored.Sum
	}
	return e, nil
}

func (r *Reconciler) plan(ctx context.Context, it stream.Iterator, emit func(*Entry) error) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		d, err := it.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		e, err := r.classify(ctx, d)
		if err != nil {
			return err
		}
		if v := r.logger.V(2); v.Enabled() {
			v.Info("planned", "key", e.Key.String(), "action", e.Action.String())
		}
		if err := emit(e); err != nil {
			return err
		}
	}
}

// Plan classifies every digest of it, which must be in ascending key
// order, and passes the entries to emit in the same order.
func (r *Reconciler) Plan(ctx context.Context, it stream.Iterator, emit func(*Entry) error) (Summary, error) {
	sum := Summary{RunID: r.runID.String()}
	err := r.plan(ctx, stream.Ordered(it, "candidates"), func(e *Entry) error {
		sum.Add(e.Action)
		return emit(e)
	})
	r.logDone(sum, err)
	return sum, err
}

// PlanSource plans every row of src modified after watermark. A nil
// watermark takes every row. Each range is streamed separately and entries
// reach emit in range order.
func (r *Reconciler) PlanSource(
	ctx context.Context, src source.Source, desc *schema.Descriptor, watermark *time.Time,
	ranges []source.KeyRange, emit func(*Entry) error,
) (Summary, error) {
	if watermark != nil && desc.Watermark == "" {
		return Summary{}, fmt.Errorf("table %q has no watermark column", desc.Table)
	}
	sum := Summary{RunID: r.runID.String()}
	err := partition.Run(ctx, ranges, r.workers, func(ctx context.Context, rng *source.KeyRange, send func(*Entry) error) error {
		opts := []stream.Option{
			stream.WithLogger(r.logger),
			stream.WithHasherOptions(r.hasherOpts...),
		}
		s, err := stream.New(src, source.Query{Descriptor: desc, ModifiedAfter: watermark, Range: rng}, opts...)
		if err != nil {
			return err
		}
		rd, err := s.Open(ctx)
		if err != nil {
			return err
		}
		defer rd.Close()
		return r.plan(ctx, rd, send)
	}, func(e *Entry) error {
		sum.Add(e.Action)
		r.bar.Incr()
		return emit(e)
	})
	if err != nil {
		r.bar.Abort()
	} else {
		r.bar.Done()
	}
	r.logDone(sum, err)
	return sum, err
}

func (r *Reconciler) logDone(sum Summary, err error) {
	if err != nil {
		r.logger.Error(err, "reconcile failed", "runId", sum.RunID)
		return
	}
	r.logger.V(1).Info("reconcile planned",
		"runId", sum.RunID, "inserts", sum.Inserts, "updates", sum.Updates, "skips", sum.Skips,
	)
}

// Apply persists the digest of an Insert or Update entry with timestamp ts.
// Skip entries are left untouched.
func Apply(ctx context.Context, store digeststore.Putter, e *Entry, ts time.Time) error {
	if e.Action != Insert && e.Action != Update {
		return nil
	}
	if err := store.Put(ctx, e.Key, e.Sum, ts); err != nil {
		return fmt.Errorf("store digest of key [%s]: %w", e.Key, err)
	}
	return nil
}
