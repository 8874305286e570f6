// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

// Package sorter sorts records that may not fit in memory. Sorted runs are
// spilled to s2-compressed temp files and merged on read.
package sorter

import (
	"bufio"
	"io"
	"os"
	"sort"

	"github.com/klauspost/compress/s2"
	"github.com/wrgl/tabsum/pkg/mem"
	"github.com/wrgl/tabsum/pkg/pbar"
)

// CompareFunc returns a negative number when a sorts before b, zero when
// they are equal and a positive number otherwise.
type CompareFunc func(a, b []string) int

func getRunSize() (uint64, error) {
	total, err := mem.GetTotalMem()
	if err != nil {
		return 0, err
	}
	avail, err := mem.GetAvailMem()
	if err != nil {
		return 0, err
	}
	size := avail
	if size < total/8 {
		size = total / 8
	}
	return size / 4, nil
}

type chunk struct {
	f   *os.File
	r   *bufio.Reader
	dec *recordDecoder
	row []string
	eof bool
}

// Sorter accumulates records with AddRow then yields them in order with
// Sorted. Equal records keep their insertion order within one run.
type Sorter struct {
	compare   CompareFunc
	runSize   uint64
	size      uint64
	bar       pbar.Bar
	chunks    []*chunk
	current   [][]string
	RowsCount uint32
}

type SorterOption func(s *Sorter)

// WithRunSize sets number of bytes held in memory before a run is spilled.
// When unset it is derived from available memory.
func WithRunSize(runSize uint64) SorterOption {
	return func(s *Sorter) {
		s.runSize = runSize
	}
}

func WithProgressBar(bar pbar.Bar) SorterOption {
	return func(s *Sorter) {
		s.bar = bar
	}
}

func NewSorter(compare CompareFunc, opts ...SorterOption) (s *Sorter, err error) {
	s = &Sorter{
		compare: compare,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.runSize == 0 {
		s.runSize, err = getRunSize()
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Sorter) sortCurrent() {
	sort.SliceStable(s.current, func(i, j int) bool {
		return s.compare(s.current[i], s.current[j]) < 0
	})
}

func (s *Sorter) AddRow(row []string) error {
	s.size += 4
	for _, str := range row {
		s.size += uint64(len(str)) + 4
	}
	if s.bar != nil {
		s.bar.Incr()
	}
	s.RowsCount++
	s.current = append(s.current, append(make([]string, 0, len(row)), row...))
	if s.size >= s.runSize {
		s.size = 0
		return s.spill()
	}
	return nil
}

func (s *Sorter) spill() error {
	s.sortCurrent()
	f, err := os.CreateTemp("", "tabsum_run_*")
	if err != nil {
		return err
	}
	w := s2.NewWriter(f)
	enc := newRecordEncoder()
	for _, row := range s.current {
		if _, err := w.Write(enc.Encode(row)); err != nil {
			f.Close()
			return err
		}
	}
	if err := w.Close(); err != nil {
		f.Close()
		return err
	}
	if _, err = f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return err
	}
	s.chunks = append(s.chunks, &chunk{
		f:   f,
		r:   bufio.NewReader(s2.NewReader(f)),
		dec: newRecordDecoder(),
	})
	s.current = s.current[:0]
	return nil
}

// Iterator yields records in order. It is only valid until the Sorter is
// closed.
type Iterator struct {
	s *Sorter
}

// Sorted sorts the in-memory run and returns an iterator merging it with
// every spilled run. It must be called once, after the last AddRow.
func (s *Sorter) Sorted() *Iterator {
	s.sortCurrent()
	if s.bar != nil {
		s.bar.Done()
	}
	return &Iterator{s: s}
}

// Next returns the next record or io.EOF. Ties are broken by run order.
func (it *Iterator) Next() ([]string, error) {
	s := it.s
	minInd := -1
	var minRow []string
	for i, c := range s.chunks {
		if c.eof {
			continue
		}
		if c.row == nil {
			row, err := c.dec.Read(c.r)
			if err == io.EOF {
				c.eof = true
				continue
			} else if err != nil {
				return nil, err
			}
			c.row = row
		}
		if minRow == nil || s.compare(c.row, minRow) < 0 {
			minRow = c.row
			minInd = i
		}
	}
	if len(s.current) > 0 {
		if minRow == nil || s.compare(s.current[0], minRow) < 0 {
			minRow = s.current[0]
			minInd = len(s.chunks)
		}
	}
	if minRow == nil {
		return nil, io.EOF
	}
	if minInd < len(s.chunks) {
		s.chunks[minInd].row = nil
	} else {
		s.current = s.current[1:]
	}
	return minRow, nil
}

// Close removes spilled runs.
func (s *Sorter) Close() error {
	for _, c := range s.chunks {
		if err := c.f.Close(); err != nil {
			return err
		}
		if err := os.Remove(c.f.Name()); err != nil {
			return err
		}
	}
	s.chunks = nil
	s.current = nil
	return nil
}
