// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package utils

import (
	"io"
	"log"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Logger returns the logger installed by SetupLogger or a discarding one.
func Logger(cmd *cobra.Command) logr.Logger {
	if ctx := cmd.Context(); ctx != nil {
		if l, err := logr.FromContext(ctx); err == nil {
			return l
		}
	}
	return logr.Discard()
}

func AddLoggerFlags(flags *pflag.FlagSet) {
	flags.Int("log-verbosity", 0, "log verbosity. Higher value means more log")
	flags.String("log-file", "", "append logs to specified file instead of stderr")
}

// SetupLogger stores a stdr logger in the command context. Logs go to
// stderr unless --log-file is given so they never mix with reports.
func SetupLogger(cmd *cobra.Command) (cleanup func(), err error) {
	if ctx := cmd.Context(); ctx != nil {
		if _, err := logr.FromContext(ctx); err == nil {
			return nil, nil
		}
	}
	verbosity, err := cmd.Flags().GetInt("log-verbosity")
	if err != nil {
		return nil, err
	}
	logFile, err := cmd.Flags().GetString("log-file")
	if err != nil {
		return nil, err
	}
	var out io.Writer = cmd.ErrOrStderr()
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, err
		}
		out = f
		cleanup = func() { f.Close() }
	}
	stdr.SetVerbosity(verbosity)
	logger := stdr.New(log.New(out, "", log.LstdFlags)).WithName("tabsum")
	cmd.SetContext(logr.NewContext(cmd.Context(), logger))
	return cleanup, nil
}
