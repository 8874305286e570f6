// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package pbar

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainerQuietOffTerminal(t *testing.T) {
	buf := &bytes.Buffer{}
	c := NewContainer(buf, false)
	assert.True(t, c.Quiet())
	bar := c.NewBar(10, "hashing", UnitRows)
	bar.Incr()
	bar.Done()
	c.Wait()
	assert.Empty(t, buf.String())
}

func TestNoopBar(t *testing.T) {
	c := NewContainer(&bytes.Buffer{}, true)
	bar := c.NewBar(0, "diffing", UnitRows)
	assert.IsType(t, &noopBar{}, bar)
	bar.SetTotal(5)
	bar.IncrBy(3)
	bar.Done()
	bar.Abort()
	c.Wait()
	assert.False(t, IsTerminal(&bytes.Buffer{}))
}
