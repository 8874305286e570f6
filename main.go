// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package main

import (
	"fmt"
	"os"

	"github.com/wrgl/tabsum/cmd/tabsum"
	"github.com/wrgl/tabsum/cmd/tabsum/utils"
	"github.com/wrgl/tabsum/pkg/errors"
)

func main() {
	rootCmd := tabsum.RootCmd()
	rootCmd.SetOut(os.Stdout)
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, utils.ErrDivergent) {
		fmt.Fprintf(os.Stderr, "%s\n", err.Error())
	}
	os.Exit(utils.ExitCode(err))
}
