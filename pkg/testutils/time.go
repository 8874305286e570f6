// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package testutils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// CreateTimeGen creates a time generator that returns a UTC timestamp
// increasing by 1 second each time it is called.
func CreateTimeGen() func() time.Time {
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func AssertTimeEqual(t *testing.T, expected, actual time.Time, msgAndArgs ...interface{}) {
	t.Helper()
	require.Equal(t, expected.UnixNano(), actual.UnixNano(), msgAndArgs...)
}

func mustParseDate(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}
