// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package utils

import (
	"github.com/spf13/cobra"
	"github.com/wrgl/tabsum/pkg/conf"
	"github.com/wrgl/tabsum/pkg/pbar"
)

// ProgressContainer draws bars on stderr so reports stay clean.
func ProgressContainer(cmd *cobra.Command, c *conf.Config) *pbar.Container {
	return pbar.NewContainer(cmd.ErrOrStderr(), IsQuiet(cmd, c))
}
