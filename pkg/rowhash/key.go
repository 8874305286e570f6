// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package rowhash

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"
	"github.com/wrgl/tabsum/pkg/canonical"
	"github.com/wrgl/tabsum/pkg/schema"
)

// Key is the ordered list of canonical key tokens of a row, along with the
// kind of each key column.
type Key struct {
	Tokens []string
	Kinds  []schema.Kind
}

func NewKey(kinds []schema.Kind, tokens ...string) Key {
	return Key{Tokens: tokens, Kinds: kinds}
}

// Compare returns -1, 0 or 1. Numeric components compare by value, every
// other component compares bytewise which orders canonical temporal
// tokens chronologically. The empty token (NULL) sorts first.
func (k Key) Compare(o Key) int {
	n := len(k.Tokens)
	if len(o.Tokens) < n {
		n = len(o.Tokens)
	}
	for i := 0; i < n; i++ {
		var kind schema.Kind
		if i < len(k.Kinds) {
			kind = k.Kinds[i]
		}
		if c := CompareTokens(kind, k.Tokens[i], o.Tokens[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(k.Tokens) < len(o.Tokens):
		return -1
	case len(k.Tokens) > len(o.Tokens):
		return 1
	}
	return 0
}

func (k Key) Equal(o Key) bool {
	if len(k.Tokens) != len(o.Tokens) {
		return false
	}
	for i, s := range k.Tokens {
		if o.Tokens[i] != s {
			return false
		}
	}
	return true
}

// Bytes joins tokens with the reserved delimiter.
func (k Key) Bytes() []byte {
	return []byte(strings.Join(k.Tokens, string(canonical.Delimiter)))
}

// String joins tokens with ", ". Tokens that contain the separator or start
// with a double quote are quoted so the components stay readable.
func (k Key) String() string {
	parts := make([]string, len(k.Tokens))
	for i, tok := range k.Tokens {
		if strings.Contains(tok, keySep) || strings.HasPrefix(tok, `"`) {
			tok = strconv.Quote(tok)
		}
		parts[i] = tok
	}
	return strings.Join(parts, keySep)
}

const keySep = ", "

// DecodeKey is the reverse of Key.Bytes.
func DecodeKey(kinds []schema.Kind, b []byte) (Key, error) {
	parts := bytes.Split(b, []byte{canonical.Delimiter})
	if len(parts) != len(kinds) {
		return Key{}, fmt.Errorf("key has %d tokens, expected %d", len(parts), len(kinds))
	}
	tokens := make([]string, len(parts))
	for i, p := range parts {
		tokens[i] = string(p)
	}
	return Key{Tokens: tokens, Kinds: kinds}, nil
}

// CompareTokens compares two canonical tokens of the same kind.
func CompareTokens(kind schema.Kind, a, b string) int {
	if a == b {
		return 0
	}
	if a == "" {
		return -1
	}
	if b == "" {
		return 1
	}
	if kind == schema.Numeric {
		var x, y apd.Decimal
		if _, _, err := x.SetString(a); err == nil {
			if _, _, err := y.SetString(b); err == nil {
				return x.CmpTotal(&y)
			}
		}
	}
	return strings.Compare(a, b)
}
