// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package schema

import (
	"fmt"
	"strings"
)

// Kind is the canonicalization class of a column. It decides how a raw value
// is turned into a canonical token.
type Kind string

const (
	Unspecified Kind = ""
	Boolean     Kind = "boolean"
	Text        Kind = "text"
	Numeric     Kind = "numeric"
	Temporal    Kind = "temporal"
	Binary      Kind = "binary"
	Other       Kind = "other"
)

func (k Kind) String() string {
	if k == Unspecified {
		return "unspecified"
	}
	return string(k)
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	s := Kind(strings.ToLower(strings.TrimSpace(string(b))))
	switch s {
	case Unspecified, Boolean, Text, Numeric, Temporal, Binary, Other:
		*k = s
		return nil
	}
	return fmt.Errorf("unknown column kind %q", string(b))
}

// changeTrackingTypes hold no business meaning: an ever-incrementing stamp
// rewritten on every update. Columns declared with one of these are excluded.
//
// SQL Server's deprecated "timestamp" is a synonym of rowversion but reads
// as a temporal type everywhere else, so KindOf treats it as Temporal.
// Descriptors for SQL Server must declare such columns as "rowversion" or
// set excluded.
var changeTrackingTypes = map[string]struct{}{
	"rowversion": {},
	"xmin":       {},
	"xid":        {},
}

// IsChangeTrackingType reports whether declared is a version-stamp type.
func IsChangeTrackingType(declared string) bool {
	_, ok := changeTrackingTypes[baseType(declared)]
	return ok
}

// baseType lower-cases declared and strips length/precision arguments, so
// "NVARCHAR(50)" becomes "nvarchar".
func baseType(declared string) string {
	s := strings.ToLower(strings.TrimSpace(declared))
	if i := strings.IndexByte(s, '('); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	return s
}

// KindOf maps a declared engine type to its Kind. "timestamp" is always
// Temporal, see changeTrackingTypes for SQL Server.
func KindOf(declared string) Kind {
	s := baseType(declared)
	switch s {
	case "bit", "bool", "boolean":
		return Boolean
	case "char", "nchar", "varchar", "nvarchar", "text", "ntext", "tinytext",
		"mediumtext", "longtext", "clob", "nclob", "xml", "json", "jsonb",
		"string", "character", "character varying", "uuid", "uniqueidentifier",
		"citext", "enum", "sysname":
		return Text
	case "tinyint", "smallint", "mediumint", "int", "integer", "bigint",
		"decimal", "numeric", "number", "dec", "money", "smallmoney",
		"float", "real", "double", "double precision", "float4", "float8",
		"int2", "int4", "int8", "serial", "bigserial", "smallserial":
		return Numeric
	case "date", "time", "datetime", "datetime2", "smalldatetime",
		"datetimeoffset", "timestamp", "timestamptz", "timetz",
		"timestamp with time zone", "timestamp without time zone",
		"time with time zone", "time without time zone":
		return Temporal
	case "binary", "varbinary", "image", "blob", "tinyblob", "mediumblob",
		"longblob", "bytea", "raw", "long raw":
		return Binary
	}
	if strings.HasPrefix(s, "timestamp") || strings.HasPrefix(s, "time ") {
		return Temporal
	}
	return Other
}
