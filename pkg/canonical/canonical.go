// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

// Package canonical turns raw column values into canonical tokens: strings
// free of driver, engine and locale rendering differences.
package canonical

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/wrgl/tabsum/pkg/errors"
	"github.com/wrgl/tabsum/pkg/schema"
)

const (
	// Delimiter separates tokens of a row. It sits in the C0 control range and
	// Canonicalize rejects any token containing it.
	Delimiter byte = 0x1F

	// MaxWidth caps numeric and other tokens, in bytes.
	MaxWidth = 500
)

// Canonicalize renders value as the canonical token of column col. A nil
// value (NULL) renders as the empty string, so NULL and empty text collapse
// into the same token.
func Canonicalize(value interface{}, col schema.ColumnSpec) (string, error) {
	if col.Excluded {
		return "", columnErr(col, "column is excluded from hashing")
	}
	if v, ok := value.(driver.Valuer); ok {
		var err error
		value, err = v.Value()
		if err != nil {
			return "", columnErr(col, err.Error())
		}
	}
	if value == nil {
		return "", nil
	}
	var (
		tok string
		err error
	)
	switch col.Kind {
	case schema.Boolean:
		tok, err = canonicalBool(value)
	case schema.Temporal:
		tok, err = canonicalTime(value)
	case schema.Text:
		tok, err = canonicalText(value)
	case schema.Numeric:
		tok, err = canonicalNumber(value)
		tok = truncate(tok)
	case schema.Binary:
		return "", columnErr(col, "large binary values must be hashed out-of-band")
	default:
		tok, err = canonicalOther(value)
		tok = truncate(tok)
	}
	if err != nil {
		return "", columnErr(col, err.Error())
	}
	if strings.IndexByte(tok, Delimiter) >= 0 {
		return "", columnErr(col, fmt.Sprintf("value contains reserved delimiter 0x%02X", Delimiter))
	}
	return tok, nil
}

func columnErr(col schema.ColumnSpec, reason string) error {
	return &errors.ColumnError{Column: col.Name, Reason: reason, Err: errors.ErrUnsupportedType}
}

func canonicalBool(value interface{}) (string, error) {
	switch v := value.(type) {
	case bool:
		if v {
			return "1", nil
		}
		return "0", nil
	case int64:
		return intBool(v)
	case int:
		return intBool(int64(v))
	case int32:
		return intBool(int64(v))
	case int16:
		return intBool(int64(v))
	case int8:
		return intBool(int64(v))
	case uint8:
		return intBool(int64(v))
	case []byte:
		if tok, ok := bitBool(v); ok {
			return tok, nil
		}
		return stringBool(string(v))
	case string:
		return stringBool(v)
	}
	return "", fmt.Errorf("cannot read %T as boolean", value)
}

// bitBool reads a big-endian BIT(n) value such as the MySQL driver scans,
// accepting only 0 and 1.
func bitBool(b []byte) (string, bool) {
	if len(b) == 0 {
		return "", false
	}
	for _, c := range b[:len(b)-1] {
		if c != 0 {
			return "", false
		}
	}
	switch b[len(b)-1] {
	case 0:
		return "0", true
	case 1:
		return "1", true
	}
	return "", false
}

func intBool(i int64) (string, error) {
	switch i {
	case 0:
		return "0", nil
	case 1:
		return "1", nil
	}
	return "", fmt.Errorf("integer %d is not a boolean", i)
}

func stringBool(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "t", "true", "y", "yes":
		return "1", nil
	case "0", "f", "false", "n", "no":
		return "0", nil
	}
	return "", fmt.Errorf("string %q is not a boolean", s)
}

func canonicalText(value interface{}) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), nil
	case fmt.Stringer:
		return v.String(), nil
	}
	return fmt.Sprint(value), nil
}

func canonicalOther(value interface{}) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	}
	if s, err := canonicalNumber(value); err == nil {
		return s, nil
	}
	return canonicalText(value)
}

// truncate cuts s to at most MaxWidth bytes without splitting a rune.
func truncate(s string) string {
	if len(s) <= MaxWidth {
		return s
	}
	n := MaxWidth
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
