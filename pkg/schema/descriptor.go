// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package schema

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/gobwas/glob"
	"github.com/wrgl/tabsum/pkg/errors"
	"github.com/wrgl/tabsum/pkg/slice"
	"gopkg.in/yaml.v3"
)

type ColumnSpec struct {
	Name string `yaml:"name" json:"name"`

	// Type is the declared engine type. When Kind is empty it is derived from
	// Type with KindOf.
	Type string `yaml:"type,omitempty" json:"type,omitempty"`

	Kind     Kind `yaml:"kind,omitempty" json:"kind,omitempty"`
	Nullable bool `yaml:"nullable,omitempty" json:"nullable,omitempty"`

	// Position is the 1-based ordinal position. It is the only source of
	// column order. Zero means "position in the list".
	Position int `yaml:"position,omitempty" json:"position,omitempty"`

	Key bool `yaml:"key,omitempty" json:"key,omitempty"`

	// Excluded columns are never read nor hashed.
	Excluded bool `yaml:"excluded,omitempty" json:"excluded,omitempty"`
}

// Descriptor describes one table. Call Resolve once after loading it and
// treat it as read-only afterward.
type Descriptor struct {
	Table   string       `yaml:"table" json:"table"`
	Columns []ColumnSpec `yaml:"columns" json:"columns"`

	// Key lists key column names in key order. Columns flagged with Key are
	// appended in ordinal order when Key is empty.
	Key []string `yaml:"key,omitempty" json:"key,omitempty"`

	// OrderBy gives an explicit ordering for tables that have no key.
	OrderBy []string `yaml:"orderBy,omitempty" json:"orderBy,omitempty"`

	// Watermark names the last-modified column used by incremental runs.
	Watermark string `yaml:"watermark,omitempty" json:"watermark,omitempty"`

	// Exclude holds glob patterns. Matching columns are marked Excluded.
	Exclude []string `yaml:"exclude,omitempty" json:"exclude,omitempty"`

	resolved bool
	byName   map[string]int
	hashed   []ColumnSpec
	keyCols  []ColumnSpec
}

// Load reads a YAML descriptor from path and resolves it.
func Load(path string) (*Descriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	d, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", path, err)
	}
	return d, nil
}

func Decode(r io.Reader) (*Descriptor, error) {
	d := &Descriptor{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(d); err != nil {
		return nil, err
	}
	if err := d.Resolve(); err != nil {
		return nil, err
	}
	return d, nil
}

// Resolve assigns positions, sorts columns by position, derives kinds,
// applies exclusion patterns and validates key and order columns.
func (d *Descriptor) Resolve() error {
	if len(d.Columns) == 0 {
		return fmt.Errorf("table %q has no columns", d.Table)
	}
	for i := range d.Columns {
		col := &d.Columns[i]
		if col.Name == "" {
			return fmt.Errorf("column #%d has no name", i+1)
		}
		if col.Position == 0 {
			col.Position = i + 1
		}
		if col.Kind == Unspecified {
			col.Kind = KindOf(col.Type)
		}
		if IsChangeTrackingType(col.Type) {
			col.Excluded = true
		}
	}
	sort.SliceStable(d.Columns, func(i, j int) bool {
		return d.Columns[i].Position < d.Columns[j].Position
	})

	globs := make([]glob.Glob, 0, len(d.Exclude))
	for _, pat := range d.Exclude {
		g, err := glob.Compile(pat)
		if err != nil {
			return fmt.Errorf("exclude pattern %q: %v", pat, err)
		}
		globs = append(globs, g)
	}

	d.byName = make(map[string]int, len(d.Columns))
	for i := range d.Columns {
		col := &d.Columns[i]
		if _, ok := d.byName[col.Name]; ok {
			return fmt.Errorf("duplicated column %q", col.Name)
		}
		if i > 0 && d.Columns[i-1].Position == col.Position {
			return fmt.Errorf("columns %q and %q share position %d", d.Columns[i-1].Name, col.Name, col.Position)
		}
		for _, g := range globs {
			if g.Match(col.Name) {
				col.Excluded = true
				break
			}
		}
		d.byName[col.Name] = i
	}

	if len(d.Key) == 0 {
		for _, col := range d.Columns {
			if col.Key {
				d.Key = append(d.Key, col.Name)
			}
		}
	}
	if name, ok := slice.Duplicated(d.Key); ok {
		return fmt.Errorf("key column %q listed twice", name)
	}
	keySet := make(map[string]struct{}, len(d.Key))
	for _, name := range d.Key {
		i, ok := d.byName[name]
		if !ok {
			return fmt.Errorf("key column %q not found", name)
		}
		keySet[name] = struct{}{}
		if d.Columns[i].Excluded {
			return fmt.Errorf("key column %q is excluded", name)
		}
	}
	for i := range d.Columns {
		_, d.Columns[i].Key = keySet[d.Columns[i].Name]
	}
	for _, name := range d.OrderBy {
		if i, ok := d.byName[name]; !ok {
			return fmt.Errorf("order column %q not found", name)
		} else if d.Columns[i].Excluded {
			return fmt.Errorf("order column %q is excluded", name)
		}
	}
	if d.Watermark != "" {
		if _, ok := d.byName[d.Watermark]; !ok {
			return fmt.Errorf("watermark column %q not found", d.Watermark)
		}
	}

	d.hashed = nil
	for _, col := range d.Columns {
		if !col.Excluded {
			d.hashed = append(d.hashed, col)
		}
	}
	if len(d.hashed) == 0 {
		return fmt.Errorf("table %q has no hashable column", d.Table)
	}
	d.keyCols = nil
	for _, name := range d.Key {
		d.keyCols = append(d.keyCols, d.Columns[d.byName[name]])
	}
	d.resolved = true
	return nil
}

func (d *Descriptor) mustResolve() {
	if !d.resolved {
		if err := d.Resolve(); err != nil {
			panic(err)
		}
	}
}

// Column returns the column with given name.
func (d *Descriptor) Column(name string) (ColumnSpec, bool) {
	d.mustResolve()
	i, ok := d.byName[name]
	if !ok {
		return ColumnSpec{}, false
	}
	return d.Columns[i], true
}

// Hashed returns non-excluded columns in ordinal order.
func (d *Descriptor) Hashed() []ColumnSpec {
	d.mustResolve()
	return d.hashed
}

// KeyColumns returns key columns in key order.
func (d *Descriptor) KeyColumns() []ColumnSpec {
	d.mustResolve()
	return d.keyCols
}

// OrderColumns returns the columns that define row order: the key when
// present, otherwise OrderBy. It fails with ErrNoDeterministicOrder when
// neither is available.
func (d *Descriptor) OrderColumns() ([]ColumnSpec, error) {
	d.mustResolve()
	if len(d.keyCols) > 0 {
		return d.keyCols, nil
	}
	if len(d.OrderBy) > 0 {
		cols := make([]ColumnSpec, len(d.OrderBy))
		for i, name := range d.OrderBy {
			cols[i] = d.Columns[d.byName[name]]
		}
		return cols, nil
	}
	return nil, fmt.Errorf("%w: table %q has no key and no order columns", errors.ErrNoDeterministicOrder, d.Table)
}

// ReadColumns returns names of every column a data source must fetch:
// hashed columns in ordinal order, followed by the watermark column if it is
// not already included.
func (d *Descriptor) ReadColumns() []string {
	d.mustResolve()
	names := make([]string, 0, len(d.hashed)+1)
	hasWatermark := false
	for _, col := range d.hashed {
		names = append(names, col.Name)
		if col.Name == d.Watermark {
			hasWatermark = true
		}
	}
	if d.Watermark != "" && !hasWatermark {
		names = append(names, d.Watermark)
	}
	return names
}

// Clone returns a resolved deep copy.
func (d *Descriptor) Clone() *Descriptor {
	c := &Descriptor{
		Table:     d.Table,
		Columns:   append([]ColumnSpec(nil), d.Columns...),
		Key:       append([]string(nil), d.Key...),
		OrderBy:   append([]string(nil), d.OrderBy...),
		Watermark: d.Watermark,
		Exclude:   append([]string(nil), d.Exclude...),
	}
	if err := c.Resolve(); err != nil {
		panic(err)
	}
	return c
}
