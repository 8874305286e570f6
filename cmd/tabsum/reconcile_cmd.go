// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package tabsum

import (
	"fmt"
	"io"
	"time"

	"github.com/mitchellh/colorstring"
	"github.com/spf13/cobra"
	"github.com/wrgl/tabsum/cmd/tabsum/utils"
	"github.com/wrgl/tabsum/pkg/partition"
	"github.com/wrgl/tabsum/pkg/pbar"
	"github.com/wrgl/tabsum/pkg/reconcile"
	"github.com/wrgl/tabsum/pkg/report"
	"github.com/wrgl/tabsum/pkg/rowhash"
	"github.com/wrgl/tabsum/pkg/source"
)

func newReconcileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile SOURCE",
		Short: "Plan which row digests to insert or update in the digest store.",
		Long: "Plan which row digests to insert or update in the digest store. Every row (or, with --watermark, " +
			"every row modified after the watermark) is hashed and looked up among digests kept by earlier " +
			"runs: unknown keys are inserts, different digests are updates and identical ones are skips. " +
			"Planning never writes the store; --apply persists inserts and updates. Without --apply the " +
			"command exits with code 1 when the plan has anything to apply.",
		Example: utils.CombineExamples([]utils.Example{
			{
				Comment: "show the plan for rows modified since yesterday",
				Line:    "tabsum reconcile 'sqlite3://app.db?table=users' -s users.yaml --watermark 2024-01-01T00:00:00Z",
			},
			{
				Comment: "apply the plan",
				Line:    "tabsum reconcile prod --apply",
			},
		}),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, dir, err := utils.OpenConfig(cmd)
			if err != nil {
				return err
			}
			schemaPath, err := cmd.Flags().GetString("schema")
			if err != nil {
				return err
			}
			format, err := formatFlag(cmd, "")
			if err != nil {
				return err
			}
			algo, err := algorithmFlag(cmd, c)
			if err != nil {
				return err
			}
			apply, err := cmd.Flags().GetBool("apply")
			if err != nil {
				return err
			}
			watermark, err := watermarkFlag(cmd)
			if err != nil {
				return err
			}
			partitions, workers, err := partitionFlags(cmd, c)
			if err != nil {
				return err
			}
			logger := utils.Logger(cmd)
			ctx, cancel := utils.RunContext(cmd, c)
			defer cancel()

			src, err := utils.OpenSource(c, args[0], schemaPath, logger, nil)
			if err != nil {
				return err
			}
			defer src.Close()
			store, err := utils.OpenDigestStore(c, dir, src.Desc.Table, logger.V(3).Enabled())
			if err != nil {
				return err
			}
			defer store.Close()
			var ranges []source.KeyRange
			if partitions > 1 && src.Bounder != nil {
				ranges, err = partition.Plan(ctx, src.Bounder, src.Desc, partitions)
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			w, err := report.NewPlanWriter(out, format,
				report.WithKeyColumns(orderColumnNames(src.Desc)...),
				report.WithColor(useColor(out)),
			)
			if err != nil {
				return err
			}
			pc := utils.ProgressContainer(cmd, c)
			defer pc.Wait()
			r := reconcile.New(store,
				reconcile.WithLogger(logger),
				reconcile.WithHasherOptions(rowhash.WithAlgorithm(algo)),
				reconcile.WithWorkers(workers),
				reconcile.WithProgressBar(pc.NewBar(0, "planning "+src.Name, pbar.UnitRows)),
			)
			runAt := time.Now()
			sum, err := r.PlanSource(ctx, src.Source, src.Desc, watermark, ranges, func(e *reconcile.Entry) error {
				if err := w.Write(e); err != nil {
					return err
				}
				if apply {
					return reconcile.Apply(ctx, store, e, runAt)
				}
				return nil
			})
			if cerr := w.Close(sum, err); cerr != nil && err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}
			if !utils.IsQuiet(cmd, c) && pbar.IsTerminal(cmd.ErrOrStderr()) {
				printPlanSummary(cmd.ErrOrStderr(), sum, apply)
			}
			if sum.Pending() && !apply {
				return utils.ErrDivergent
			}
			return nil
		},
	}
	cmd.Flags().StringP("schema", "s", "", "schema file describing the source table")
	cmd.Flags().String("algorithm", "", `row digest algorithm: "sha256" (default), "blake2b" or "xxhash"`)
	cmd.Flags().String("watermark", "", "only consider rows whose watermark column is after this RFC 3339 time")
	cmd.Flags().Bool("apply", false, "persist inserted and updated digests to the digest store")
	addFormatFlag(cmd)
	addPartitionFlags(cmd)
	return cmd
}

func watermarkFlag(cmd *cobra.Command) (*time.Time, error) {
	s, err := cmd.Flags().GetString("watermark")
	if err != nil || s == "" {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil, fmt.Errorf("invalid watermark %q: %w", s, err)
	}
	return &t, nil
}

func printPlanSummary(w io.Writer, sum reconcile.Summary, applied bool) {
	verb := "planned"
	if applied {
		verb = "applied"
	}
	colorstring.Fprintf(w, "run [bold]%s[reset] %s: [green]%d insert[reset], [yellow]%d update[reset], %d skip\n",
		sum.RunID, verb, sum.Inserts, sum.Updates, sum.Skips)
}
