// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Every failure surfaced by the engine unwraps to exactly one of these.
var (
	ErrUnsupportedType      = errors.New("unsupported type")
	ErrNoDeterministicOrder = errors.New("no deterministic order")
	ErrDuplicateKey         = errors.New("duplicate key")
	ErrSourceRead           = errors.New("source read failure")
	ErrSchemaMismatch       = errors.New("schema mismatch")
)

// ColumnError reports a problem with a single column value.
type ColumnError struct {
	Column string
	Reason string
	Err    error
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("%v: column %q: %s", e.Err, e.Column, e.Reason)
}

func (e *ColumnError) Unwrap() error {
	return e.Err
}

// KeyError reports a problem tied to a row key, such as a duplicate or an
// out-of-order key in a stream that must be sorted.
type KeyError struct {
	Side   string
	Key    []string
	Reason string
	Err    error
}

func (e *KeyError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Err.Error())
	if e.Side != "" {
		sb.WriteString(" on ")
		sb.WriteString(e.Side)
	}
	fmt.Fprintf(&sb, ": key %v", e.Key)
	if e.Reason != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Reason)
	}
	return sb.String()
}

func (e *KeyError) Unwrap() error {
	return e.Err
}

// SourceReadError wraps any I/O failure coming from a data source so callers
// can tell it apart from engine errors. Errors that already unwrap to one of
// the sentinels are returned as is.
func SourceReadError(name string, err error) error {
	if err == nil {
		return nil
	}
	for _, target := range []error{
		ErrSourceRead, ErrUnsupportedType, ErrNoDeterministicOrder, ErrDuplicateKey, ErrSchemaMismatch,
	} {
		if errors.Is(err, target) {
			return err
		}
	}
	return fmt.Errorf("%w: %s: %v", ErrSourceRead, name, err)
}

func SchemaMismatchf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrSchemaMismatch, fmt.Sprintf(format, args...))
}
