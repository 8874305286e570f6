// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package slice

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDuplicated(t *testing.T) {
	for i, c := range []struct {
		S  []string
		V  string
		OK bool
	}{
		{[]string{"1", "2"}, "", false},
		{nil, "", false},
		{[]string{"abc"}, "", false},
		{[]string{"1", "1"}, "1", true},
		{[]string{"abc", "def", "def", "abc"}, "def", true},
	} {
		v, ok := Duplicated(c.S)
		assert.Equal(t, c.V, v, "case %d", i)
		assert.Equal(t, c.OK, ok, "case %d", i)
	}
	v, ok := Duplicated([]int{3, 1, 3})
	assert.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestMissing(t *testing.T) {
	for i, c := range []struct {
		S1, S2 []string
		R      []string
	}{
		{[]string{"a", "b"}, []string{"b", "a", "c"}, nil},
		{[]string{"a", "d", "b", "e"}, []string{"a", "b"}, []string{"d", "e"}},
		{[]string{"a"}, nil, []string{"a"}},
		{nil, []string{"a"}, nil},
	} {
		assert.Equal(t, c.R, Missing(c.S1, c.S2), fmt.Sprintf("case %d", i))
	}
}

func TestCompare(t *testing.T) {
	unchanged, added, removed := Compare(
		[]string{"id", "name", "email"},
		[]string{"id", "phone", "name"},
	)
	assert.Equal(t, []string{"id", "name"}, unchanged)
	assert.Equal(t, []string{"email"}, added)
	assert.Equal(t, []string{"phone"}, removed)

	unchanged, added, removed = Compare([]string{"a"}, []string{"a"})
	assert.Equal(t, []string{"a"}, unchanged)
	assert.Nil(t, added)
	assert.Nil(t, removed)
}
