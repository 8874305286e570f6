// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package utils

import (
	"database/sql"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/go-logr/logr"
	"github.com/wrgl/tabsum/pkg/conf"
	"github.com/wrgl/tabsum/pkg/partition"
	"github.com/wrgl/tabsum/pkg/pbar"
	"github.com/wrgl/tabsum/pkg/schema"
	"github.com/wrgl/tabsum/pkg/source"
	"github.com/wrgl/tabsum/pkg/source/csvsrc"
	"github.com/wrgl/tabsum/pkg/source/sqlsrc"
)

const DriverCSV = "csv"

// Source is an opened data source together with its descriptor.
type Source struct {
	Name   string
	Source source.Source
	Desc   *schema.Descriptor

	// Bounder is set for SQL sources, which are the only ones partitioned.
	Bounder partition.Bounder

	db *sql.DB
}

func (s *Source) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func splitTable(rest string) (dsn, table string, err error) {
	i := strings.LastIndex(rest, "?")
	if i < 0 {
		return rest, "", nil
	}
	q, err := url.ParseQuery(rest[i+1:])
	if err != nil {
		return "", "", err
	}
	table = q.Get("table")
	q.Del("table")
	dsn = rest[:i]
	if len(q) > 0 {
		dsn += "?" + q.Encode()
	}
	return dsn, table, nil
}

// ParseSource resolves spec, which is either a source named in config, a
// "sqlite3://PATH?table=NAME" or "mysql://DSN?table=NAME" URI, or a CSV
// file path.
func ParseSource(c *conf.Config, spec string) (name string, sc *conf.Source, err error) {
	if s, ok := c.GetSource(spec); ok {
		cp := *s
		if cp.Driver == "" {
			cp.Driver = DriverCSV
		}
		return spec, &cp, nil
	}
	for _, d := range []sqlsrc.Dialect{sqlsrc.SQLite, sqlsrc.MySQL} {
		prefix := string(d) + "://"
		if !strings.HasPrefix(spec, prefix) {
			continue
		}
		dsn, table, err := splitTable(strings.TrimPrefix(spec, prefix))
		if err != nil {
			return "", nil, fmt.Errorf("source %q: %w", spec, err)
		}
		if dsn == "" {
			return "", nil, fmt.Errorf("source %q has no dsn", spec)
		}
		name = string(d)
		if d == sqlsrc.SQLite {
			name = filepath.Base(dsn)
		}
		return name, &conf.Source{Driver: string(d), DSN: dsn, Table: table}, nil
	}
	if strings.Contains(spec, "://") {
		return "", nil, fmt.Errorf("unsupported source %q", spec)
	}
	return filepath.Base(spec), &conf.Source{Driver: DriverCSV, Path: spec}, nil
}

func parseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return ',', nil
	case `\t`, "tab":
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) {
		return 0, fmt.Errorf("delimiter %q must be a single character", s)
	}
	return r, nil
}

// LoadDescriptor loads schemaPath, falling back to the schema configured for
// the source. A configured table name replaces the one in the schema file.
func LoadDescriptor(name string, sc *conf.Source, schemaPath string) (*schema.Descriptor, error) {
	if schemaPath == "" {
		schemaPath = sc.Schema
	}
	if schemaPath == "" {
		return nil, fmt.Errorf("no schema given for source %q", name)
	}
	desc, err := schema.Load(schemaPath)
	if err != nil {
		return nil, err
	}
	if sc.Table != "" && sc.Table != desc.Table {
		desc = desc.Clone()
		desc.Table = sc.Table
	}
	return desc, nil
}

// OpenSource parses spec, loads its descriptor and connects to it. bar
// receives CSV sort progress and may be nil.
func OpenSource(c *conf.Config, spec, schemaPath string, logger logr.Logger, bar pbar.Bar) (*Source, error) {
	name, sc, err := ParseSource(c, spec)
	if err != nil {
		return nil, err
	}
	desc, err := LoadDescriptor(name, sc, schemaPath)
	if err != nil {
		return nil, err
	}
	s := &Source{Name: name, Desc: desc}
	if sc.Driver == DriverCSV {
		if sc.Path == "" {
			return nil, fmt.Errorf("source %q has no path", name)
		}
		comma, err := parseDelimiter(sc.Delimiter)
		if err != nil {
			return nil, err
		}
		opts := []csvsrc.Option{csvsrc.WithLogger(logger), csvsrc.WithDelimiter(comma)}
		if sc.Presorted {
			opts = append(opts, csvsrc.WithPresorted())
		}
		if bar != nil {
			opts = append(opts, csvsrc.WithProgressBar(bar))
		}
		s.Source = csvsrc.New(sc.Path, opts...)
		return s, nil
	}
	d, err := sqlsrc.ParseDialect(sc.Driver)
	if err != nil {
		return nil, err
	}
	db, err := sqlsrc.Connect(d, sc.DSN)
	if err != nil {
		return nil, err
	}
	src := sqlsrc.New(db, d, sqlsrc.WithLogger(logger), sqlsrc.WithName(name))
	s.Source = src
	s.Bounder = src
	s.db = db
	return s, nil
}
