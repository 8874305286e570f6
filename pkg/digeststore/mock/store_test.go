// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package dsmock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wrgl/tabsum/pkg/digeststore"
)

func TestStore(t *testing.T) {
	s := NewStore()
	digeststore.AssertStore(t, s)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 3, s.Puts())
}
