// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package utils

import (
	"io"
	"os"
	"path/filepath"

	"github.com/wrgl/tabsum/pkg/conf"
	"github.com/wrgl/tabsum/pkg/digeststore"
	dsbadger "github.com/wrgl/tabsum/pkg/digeststore/badger"
	dssqlite "github.com/wrgl/tabsum/pkg/digeststore/sqlite"
)

type DigestStore interface {
	digeststore.Store
	io.Closer
}

// OpenDigestStore opens the configured digest store. Relative paths are
// resolved against the config directory.
func OpenDigestStore(c *conf.Config, dir, table string, debug bool) (DigestStore, error) {
	st, err := c.StoreType()
	if err != nil {
		return nil, err
	}
	path := ResolvePath(dir, c.StorePath())
	ns := c.StoreNamespace(table)
	if st == conf.STSQLite {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, err
		}
		s, err := dssqlite.Open(path, ns)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	s, err := dsbadger.Open(path, ns, debug)
	if err != nil {
		return nil, err
	}
	return s, nil
}
