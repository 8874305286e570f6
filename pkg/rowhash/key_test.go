// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package rowhash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wrgl/tabsum/pkg/schema"
)

func TestKeyCompare(t *testing.T) {
	num := []schema.Kind{schema.Numeric}
	text := []schema.Kind{schema.Text}
	for i, c := range []struct {
		a, b Key
		cmp  int
	}{
		{NewKey(num, "2"), NewKey(num, "10"), -1},
		{NewKey(text, "2"), NewKey(text, "10"), 1},
		{NewKey(num, "-1.5"), NewKey(num, "-1"), -1},
		{NewKey(num, ""), NewKey(num, "-100"), -1},
		{NewKey(num, "7"), NewKey(num, "7"), 0},
		{NewKey(text, "B"), NewKey(text, "a"), -1},
		{NewKey([]schema.Kind{schema.Temporal}, "2023-12-31T23:59:59.9999999"), NewKey([]schema.Kind{schema.Temporal}, "2024-01-01T00:00:00.0000000"), -1},
		{
			NewKey([]schema.Kind{schema.Text, schema.Numeric}, "a", "9"),
			NewKey([]schema.Kind{schema.Text, schema.Numeric}, "a", "10"),
			-1,
		},
		{
			NewKey([]schema.Kind{schema.Text, schema.Numeric}, "b", "1"),
			NewKey([]schema.Kind{schema.Text, schema.Numeric}, "a", "10"),
			1,
		},
	} {
		assert.Equal(t, c.cmp, c.a.Compare(c.b), "case %d", i)
		assert.Equal(t, -c.cmp, c.b.Compare(c.a), "case %d", i)
	}
}

func TestKeyBytes(t *testing.T) {
	kinds := []schema.Kind{schema.Text, schema.Numeric}
	k := NewKey(kinds, "a", "12")
	assert.Equal(t, []byte("a\x1f12"), k.Bytes())
	assert.Equal(t, "a, 12", k.String())
	assert.Equal(t, `"Smith, J", 12`, NewKey(kinds, "Smith, J", "12").String())
	assert.Equal(t, `"\"q", 1`, NewKey(kinds, `"q`, "1").String())
	assert.NotEqual(t, NewKey(kinds, "a, b", "1").String(), NewKey([]schema.Kind{schema.Text, schema.Text, schema.Numeric}, "a", "b", "1").String())
	k2, err := DecodeKey(kinds, k.Bytes())
	require.NoError(t, err)
	assert.True(t, k.Equal(k2))
	assert.False(t, k.Equal(NewKey(kinds, "a", "13")))

	_, err = DecodeKey(kinds, []byte("a"))
	assert.Error(t, err)
}
