// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package utils

import (
	"github.com/wrgl/tabsum/pkg/errors"
)

// ErrDivergent is returned by commands that ran to completion and found a
// divergence. The report already tells the details.
var ErrDivergent = errors.New("divergence found")

const (
	ExitClean     = 0
	ExitDivergent = 1
	ExitFailure   = 2
)

func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitClean
	case errors.Is(err, ErrDivergent):
		return ExitDivergent
	}
	return ExitFailure
}
