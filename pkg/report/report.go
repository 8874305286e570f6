// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

// Package report renders table digests, diff records and merge plans. Every
// streamed report ends with a trailer telling whether it is complete.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/wrgl/tabsum/pkg/rowhash"
)

type Format string

const (
	Text Format = "text"
	CSV  Format = "csv"
	JSON Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "":
		return Text, nil
	case Text, CSV, JSON:
		return f, nil
	}
	return "", fmt.Errorf("unknown report format %q, expected one of text, csv, json", s)
}

const defaultKeyWidth = 20

type Option func(o *options)

type options struct {
	keyCols  []string
	keyWidth int
	color    bool
}

// WithKeyColumns names key components. CSV headers use them.
func WithKeyColumns(cols ...string) Option {
	return func(o *options) {
		o.keyCols = cols
	}
}

// WithKeyWidth sets the minimum display width of the key in text reports.
func WithKeyWidth(w int) Option {
	return func(o *options) {
		o.keyWidth = w
	}
}

// WithColor paints statuses and actions in text reports.
func WithColor(enabled bool) Option {
	return func(o *options) {
		o.color = enabled
	}
}

func newOptions(opts []Option) *options {
	o := &options{keyWidth: defaultKeyWidth}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

type stat struct {
	name  string
	value interface{}
}

// encoder writes one record per line followed by a trailer.
type encoder interface {
	begin(fields []string) error
	record(key rowhash.Key, values []string) error
	end(complete bool, stats []stat, err error) error
}

func newEncoder(w io.Writer, f Format, o *options, paint map[string]color.Attribute) (encoder, error) {
	switch f {
	case Text, "":
		e := &textEncoder{w: w, width: o.keyWidth, paint: map[string]*color.Color{}}
		for v, attr := range paint {
			c := color.New(attr)
			if o.color {
				c.EnableColor()
			} else {
				c.DisableColor()
			}
			e.paint[v] = c
		}
		return e, nil
	case CSV:
		return &csvEncoder{w: csv.NewWriter(w), keyCols: o.keyCols}, nil
	case JSON:
		return &jsonEncoder{enc: json.NewEncoder(w)}, nil
	}
	return nil, fmt.Errorf("unknown report format %q", f)
}

type textEncoder struct {
	w     io.Writer
	width int
	paint map[string]*color.Color
}

func (e *textEncoder) begin(fields []string) error {
	return nil
}

func (e *textEncoder) record(key rowhash.Key, values []string) error {
	sb := &strings.Builder{}
	sb.WriteString(runewidth.FillRight(key.String(), e.width))
	for _, v := range values {
		sb.WriteString("  ")
		if c, ok := e.paint[v]; ok {
			sb.WriteString(c.Sprint(v))
		} else {
			sb.WriteString(v)
		}
	}
	sb.WriteByte('\n')
	_, err := io.WriteString(e.w, sb.String())
	return err
}

func (e *textEncoder) end(complete bool, stats []stat, err error) error {
	sb := &strings.Builder{}
	if complete {
		sb.WriteString("# complete")
	} else {
		sb.WriteString("# incomplete")
	}
	for _, s := range stats {
		fmt.Fprintf(sb, " %s=%v", s.name, s.value)
	}
	if err != nil {
		fmt.Fprintf(sb, " error=%q", err.Error())
	}
	sb.WriteByte('\n')
	_, werr := io.WriteString(e.w, sb.String())
	return werr
}

type csvEncoder struct {
	w       *csv.Writer
	keyCols []string
}

func (e *csvEncoder) begin(fields []string) error {
	header := append([]string{}, e.keyCols...)
	if len(header) == 0 {
		header = append(header, "key")
	}
	return e.w.Write(append(header, fields...))
}

func (e *csvEncoder) record(key rowhash.Key, values []string) error {
	var row []string
	if len(e.keyCols) == 0 {
		row = append(row, key.String())
	} else {
		row = append(row, key.Tokens...)
	}
	return e.w.Write(append(row, values...))
}

func (e *csvEncoder) end(complete bool, stats []stat, err error) error {
	row := []string{"#complete"}
	if !complete {
		row[0] = "#incomplete"
	}
	for _, s := range stats {
		row = append(row, fmt.Sprintf("%s=%v", s.name, s.value))
	}
	if err != nil {
		row = append(row, "error="+err.Error())
	}
	if werr := e.w.Write(row); werr != nil {
		return werr
	}
	e.w.Flush()
	return e.w.Error()
}

type jsonEncoder struct {
	enc    *json.Encoder
	fields []string
}

func (e *jsonEncoder) begin(fields []string) error {
	e.fields = fields
	return nil
}

func (e *jsonEncoder) record(key rowhash.Key, values []string) error {
	m := make(map[string]interface{}, len(values)+1)
	m["key"] = key.Tokens
	for i, v := range values {
		m[e.fields[i]] = v
	}
	return e.enc.Encode(m)
}

func (e *jsonEncoder) end(complete bool, stats []stat, err error) error {
	summary := make(map[string]interface{}, len(stats))
	for _, s := range stats {
		summary[s.name] = s.value
	}
	m := map[string]interface{}{
		"complete": complete,
		"summary":  summary,
	}
	if err != nil {
		m["error"] = err.Error()
	}
	return e.enc.Encode(m)
}
