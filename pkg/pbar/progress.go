// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

// Package pbar renders progress bars with mpb. Bars are only drawn when the
// output is a terminal.
package pbar

import (
	"io"
	"os"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"golang.org/x/term"
)

type Unit int

const (
	UnitRows Unit = iota
)

type Container struct {
	p     *mpb.Progress
	out   io.Writer
	quiet bool
}

// NewContainer creates a Container writing to out. It is quiet when quiet
// is set or out is not a terminal.
func NewContainer(out io.Writer, quiet bool) *Container {
	return &Container{
		out:   out,
		quiet: quiet || !IsTerminal(out),
	}
}

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (c *Container) Quiet() bool {
	return c.quiet
}

func (c *Container) ensureProgress() {
	if c.p == nil {
		c.p = mpb.New(mpb.WithOutput(c.out))
	}
}

// NewBar adds a bar. A total of zero or less means unknown.
func (c *Container) NewBar(total int64, name string, unit Unit) Bar {
	if c.quiet {
		return &noopBar{}
	}
	return newBar(c, total, name, unit)
}

func (c *Container) addBar(total int64, name string, unit Unit) *mpb.Bar {
	c.ensureProgress()
	counters := decor.CountersNoUnit("%d / %d")
	options := []mpb.BarOption{
		mpb.PrependDecorators(decor.Name(name, decor.WC{W: len(name) + 1, C: decor.DindentRight}), counters),
		mpb.BarRemoveOnComplete(),
	}
	if total > 0 {
		options = append(options,
			mpb.AppendDecorators(decor.Percentage(decor.WC{W: 5, C: decor.DindentRight}), decor.Elapsed(decor.ET_STYLE_GO)),
		)
	} else {
		options = append(options,
			mpb.AppendDecorators(decor.Elapsed(decor.ET_STYLE_GO)),
		)
	}
	return c.p.New(total,
		mpb.BarStyle().Lbound("[").Filler("=").Tip(">").Padding(" ").Rbound("]"),
		options...,
	)
}

// Wait blocks until every bar is done or aborted.
func (c *Container) Wait() {
	if c.p == nil {
		return
	}
	c.p.Wait()
	c.p = nil
}
