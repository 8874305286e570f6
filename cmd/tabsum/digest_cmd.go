// SPDX-License-Identifier: Apache-2.0
// Copyright © 2022 Wrangle Ltd

package tabsum

import (
	"github.com/spf13/cobra"
	"github.com/wrgl/tabsum/cmd/tabsum/utils"
	"github.com/wrgl/tabsum/pkg/aggregate"
	"github.com/wrgl/tabsum/pkg/conf"
	"github.com/wrgl/tabsum/pkg/pbar"
	"github.com/wrgl/tabsum/pkg/report"
	"github.com/wrgl/tabsum/pkg/rowhash"
	"github.com/wrgl/tabsum/pkg/source"
	"github.com/wrgl/tabsum/pkg/stream"
)

func newDigestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "digest SOURCE",
		Short: "Print the table digest of a source.",
		Long: "Print the table digest of a source. The digest is computed from row digests in ascending key " +
			"order, so two tables with byte-identical rows always yield the same digest.",
		Example: utils.CombineExamples([]utils.Example{
			{
				Comment: "digest a CSV file",
				Line:    "tabsum digest users.csv --schema users.yaml",
			},
			{
				Comment: "digest a sqlite table with blake2b",
				Line:    "tabsum digest 'sqlite3://app.db?table=users' --schema users.yaml --algorithm blake2b",
			},
			{
				Comment: "digest a source named in config as JSON",
				Line:    "tabsum digest prod --format json",
			},
		}),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := utils.OpenConfig(cmd)
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
			logger := utils.Logger(cmd)
			ctx, cancel := utils.RunContext(cmd, c)
			defer cancel()

			pc := utils.ProgressContainer(cmd, c)
			defer pc.Wait()
			src, err := utils.OpenSource(c, args[0], schemaPath, logger, nil)
			if err != nil {
				return err
			}
			defer src.Close()
			bar := pc.NewBar(0, "hashing "+src.Name, pbar.UnitRows)
			defer bar.Abort()
			s, err := stream.New(src.Source, source.Query{Descriptor: src.Desc},
				stream.WithLogger(logger),
				stream.WithHasherOptions(rowhash.WithAlgorithm(algo)),
				stream.WithProgressBar(bar),
			)
			if err != nil {
				return err
			}
			rd, err := s.Open(ctx)
			if err != nil {
				return err
			}
			defer rd.Close()
			d, err := aggregate.Aggregate(ctx, rd, aggregate.WithLogger(logger))
			if err != nil {
				return err
			}
			return report.WriteDigest(cmd.OutOrStdout(), format, src.Desc.Table, algo, d)
		},
	}
	cmd.Flags().StringP("schema", "s", "", "schema file describing the source table")
	cmd.Flags().String("algorithm", "", `row digest algorithm: "sha256" (default), "blake2b" or "xxhash"`)
	addFormatFlag(cmd)
	return cmd
}

func addFormatFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", "", `output format: "text" (default), "csv" or "json"`)
}

func formatFlag(cmd *cobra.Command, fallback string) (report.Format, error) {
	s, err := cmd.Flags().GetString("format")
	if err != nil {
		return "", err
	}
	if s == "" {
		s = fallback
	}
	return report.ParseFormat(s)
}

func algorithmFlag(cmd *cobra.Command, c *conf.Config) (rowhash.Algorithm, error) {
	s, err := cmd.Flags().GetString("algorithm")
	if err != nil {
		return "", err
	}
	if s != "" {
		return rowhash.ParseAlgorithm(s)
	}
	return c.GetAlgorithm()
}
