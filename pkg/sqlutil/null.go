// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package sqlutil

import (
	"database/sql/driver"
	"fmt"
)

// NullBytes scans a BLOB column that may be NULL. Scanned bytes are copied
// since drivers may reuse their buffer.
type NullBytes struct {
	Bytes []byte
	Valid bool
}

func (nb *NullBytes) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		nb.Bytes, nb.Valid = nil, false
		return nil
	case []byte:
		nb.Bytes = append([]byte(nil), v...)
	case string:
		nb.Bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into NullBytes", value)
	}
	nb.Valid = true
	return nil
}

func (nb NullBytes) Value() (driver.Value, error) {
	if !nb.Valid {
		return nil, nil
	}
	return nb.Bytes, nil
}
