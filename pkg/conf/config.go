// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package conf

import (
	"fmt"
	"time"

	"github.com/wrgl/tabsum/pkg/rowhash"
)

const (
	DefaultNamespace = "default"
	DefaultStorePath = "digests"
)

type StoreType string

func (s StoreType) String() string {
	return string(s)
}

const (
	// STBadger keeps row digests in a badger directory.
	STBadger StoreType = "badger"

	// STSQLite keeps row digests in a staging table of a sqlite file.
	STSQLite StoreType = "sqlite"
)

type DigestStore struct {
	// Type is either "badger" (the default) or "sqlite".
	Type StoreType `yaml:"type,omitempty" json:"type,omitempty"`

	// Path is the badger directory or sqlite file. Relative paths are
	// resolved against the config directory. Defaults to "digests".
	Path string `yaml:"path,omitempty" json:"path,omitempty"`

	// Namespace separates digests of different tables sharing one store.
	// Defaults to the table name, then to "default".
	Namespace string `yaml:"namespace,omitempty" json:"namespace,omitempty"`
}

type Source struct {
	// Driver is one of "sqlite3", "mysql" or "csv".
	Driver string `yaml:"driver,omitempty" json:"driver,omitempty"`

	// DSN is the data source name passed to the SQL driver.
	DSN string `yaml:"dsn,omitempty" json:"dsn,omitempty"`

	// Path is the CSV file path when Driver is "csv".
	Path string `yaml:"path,omitempty" json:"path,omitempty"`

	// Table overrides the table name of the schema file.
	Table string `yaml:"table,omitempty" json:"table,omitempty"`

	// Schema is the path of the schema file describing this source.
	Schema string `yaml:"schema,omitempty" json:"schema,omitempty"`

	// Delimiter is the CSV field delimiter, "," by default.
	Delimiter string `yaml:"delimiter,omitempty" json:"delimiter,omitempty"`

	// Presorted tells that the CSV file is already in ascending key order so
	// the external sort can be skipped.
	Presorted bool `yaml:"presorted,omitempty" json:"presorted,omitempty"`
}

type Diff struct {
	// Partitions is how many key ranges a diff is split into. Only numeric
	// single-column keys of SQL sources are split.
	Partitions int `yaml:"partitions,omitempty" json:"partitions,omitempty"`

	// Workers is how many partitions are read at once. Defaults to
	// Partitions.
	Workers int `yaml:"workers,omitempty" json:"workers,omitempty"`

	ShowMatched *bool `yaml:"showMatched,omitempty" json:"showMatched,omitempty"`

	// Format is the default report format.
	Format string `yaml:"format,omitempty" json:"format,omitempty"`
}

type Config struct {
	// Algorithm is the row digest function: "sha256" (default), "blake2b"
	// or "xxhash".
	Algorithm string             `yaml:"algorithm,omitempty" json:"algorithm,omitempty"`
	Store     *DigestStore       `yaml:"store,omitempty" json:"store,omitempty"`
	Sources   map[string]*Source `yaml:"sources,omitempty" json:"sources,omitempty"`
	Diff      *Diff              `yaml:"diff,omitempty" json:"diff,omitempty"`

	// Quiet disables progress bars.
	Quiet *bool `yaml:"quiet,omitempty" json:"quiet,omitempty"`

	// Timeout bounds a whole command run, e.g. "30m". Zero means no limit.
	Timeout Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}

func (c *Config) GetAlgorithm() (rowhash.Algorithm, error) {
	return rowhash.ParseAlgorithm(c.Algorithm)
}

func (c *Config) StoreType() (StoreType, error) {
	if c.Store == nil || c.Store.Type == "" {
		return STBadger, nil
	}
	switch c.Store.Type {
	case STBadger, STSQLite:
		return c.Store.Type, nil
	}
	return "", fmt.Errorf("unknown store type %q", c.Store.Type)
}

func (c *Config) StorePath() string {
	if c.Store != nil && c.Store.Path != "" {
		return c.Store.Path
	}
	return DefaultStorePath
}

// StoreNamespace returns the configured namespace, falling back to table.
func (c *Config) StoreNamespace(table string) string {
	if c.Store != nil && c.Store.Namespace != "" {
		return c.Store.Namespace
	}
	if table != "" {
		return table
	}
	return DefaultNamespace
}

func (c *Config) GetSource(name string) (*Source, bool) {
	if c.Sources == nil {
		return nil, false
	}
	s, ok := c.Sources[name]
	return s, ok
}

func (c *Config) DiffPartitions() int {
	if c.Diff != nil && c.Diff.Partitions > 0 {
		return c.Diff.Partitions
	}
	return 1
}

func (c *Config) DiffWorkers() int {
	if c.Diff != nil && c.Diff.Workers > 0 {
		return c.Diff.Workers
	}
	return c.DiffPartitions()
}

func (c *Config) DiffShowMatched() bool {
	return c.Diff != nil && c.Diff.ShowMatched != nil && *c.Diff.ShowMatched
}

func (c *Config) DiffFormat() string {
	if c.Diff != nil {
		return c.Diff.Format
	}
	return ""
}

func (c *Config) IsQuiet() bool {
	return c.Quiet != nil && *c.Quiet
}

func (c *Config) GetTimeout() time.Duration {
	return time.Duration(c.Timeout)
}
