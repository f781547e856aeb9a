package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"sliceinsight/adapters/excel"
	"sliceinsight/adapters/payload"
	"sliceinsight/adapters/report"
	"sliceinsight/app"
	"sliceinsight/domain/insight"
	"sliceinsight/internal"
	"sliceinsight/internal/drilldown"
	"sliceinsight/internal/testkit"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "sliceinsight",
		Short:         "Summarize two-period metric changes by dimension slice",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newSummarizeCmd(),
		newDimensionCmd(),
		newGenerateCmd(),
		newInspectCmd(),
	)
	return rootCmd
}

type viewOptions struct {
	payloadFile string
	mode        string
	sensitivity string
	noGroup     bool
	maxChildren int
}

func (o *viewOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.payloadFile, "payload", "p", os.Getenv("INSIGHT_PAYLOAD_FILE"), "Insight payload JSON file")
	cmd.Flags().StringVar(&o.mode, "mode", string(insight.ModeOutlier), "Ranking mode: impact or outlier")
	cmd.Flags().StringVar(&o.sensitivity, "sensitivity", string(insight.SensitivityMedium), "Outlier sensitivity: low, medium or high")
	cmd.Flags().BoolVar(&o.noGroup, "no-group", false, "List surfaced slices flat instead of nesting them")
	cmd.Flags().IntVar(&o.maxChildren, "max-children", 0, "Cap on children per top-level row (0 = unlimited)")
}

// load ingests the payload into a fresh service configured from the flags
func (o *viewOptions) load(cmd *cobra.Command) (*app.ComparisonInsightService, error) {
	if o.payloadFile == "" {
		return nil, fmt.Errorf("--payload is required")
	}
	mode, err := insight.ParseMode(o.mode)
	if err != nil {
		return nil, err
	}
	sensitivity, err := insight.ParseSensitivity(o.sensitivity)
	if err != nil {
		return nil, err
	}

	logger := cliLogger(cmd.ErrOrStderr())
	config := app.DefaultComparisonInsightConfig()
	config.Params = drilldown.Params{
		Mode:        mode,
		Sensitivity: sensitivity,
		GroupRows:   !o.noGroup,
		MaxChildren: o.maxChildren,
	}
	service := app.NewComparisonInsightService(config, logger)

	metrics, err := payload.NewFileSource(o.payloadFile, logger).LoadMetrics(cmd.Context())
	if err != nil {
		return nil, err
	}
	if err := service.UpdateMetrics(metrics); err != nil {
		return nil, err
	}
	return service, nil
}

func cliLogger(w io.Writer) *internal.Logger {
	return internal.NewLoggerTo(w, internal.ParseLogLevel(os.Getenv("LOG_LEVEL"), internal.LogLevelWarn))
}

func newSummarizeCmd() *cobra.Command {
	var opts viewOptions
	var out string

	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Print the top-segment rows of the analyzed metric",
		Long: `Filter, cluster and nest the analyzed metric's top driver slices.

The rows are printed as an indented tree. With --out the flat table is
written instead; the format follows the extension (.csv, .xlsx, .html, .md).

Example: sliceinsight summarize -p payload.json --mode impact --out segments.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := opts.load(cmd)
			if err != nil {
				return err
			}
			view := service.View()
			if out != "" {
				return writeTable(cmd, service, view, "", out)
			}
			printOverview(cmd.OutOrStdout(), view.Overview)
			printForest(cmd.OutOrStdout(), view.TableRowStatus, service)
			printClusters(cmd.OutOrStdout(), view.Clusters)
			return nil
		},
	}
	opts.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the table to this file instead of printing rows")
	return cmd
}

func newDimensionCmd() *cobra.Command {
	var opts viewOptions
	var expand []string
	var out string

	cmd := &cobra.Command{
		Use:   "dimension [name]",
		Short: "Print one dimension's slices, optionally drilling into a row",
		Long: `Print the single-dimension slices of a dimension ranked by absolute impact.

--expand takes a row path (comma separated canonical keys starting at a
top-level row); each row on it is expanded, computing children on demand.

Example: sliceinsight dimension country -p payload.json --expand "country:US,country:US|device:mobile"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dimension := args[0]
			service, err := opts.load(cmd)
			if err != nil {
				return err
			}
			for i := range expand {
				if _, err := service.ToggleRow(expand[:i+1], dimension); err != nil {
					return err
				}
			}
			view := service.View()
			if out != "" {
				return writeTable(cmd, service, view, dimension, out)
			}
			dv, ok := view.TableRowStatusByDimension.Get(dimension)
			if !ok {
				return fmt.Errorf("dimension %q has no single-dimension slices", dimension)
			}
			printForest(cmd.OutOrStdout(), dv.RowStatus, service)
			return nil
		},
	}
	opts.register(cmd)
	cmd.Flags().StringSliceVar(&expand, "expand", nil, "Row path to expand")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the dimension table to this file")
	return cmd
}

func newGenerateCmd() *cobra.Command {
	config := testkit.DefaultSliceConfig()
	var out string
	var related int

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic insight payload",
		Long: `Generate a deterministic payload of overlapping dimension slices for demos
and load testing.

Example: sliceinsight generate --dimensions 4 --depth 3 --seed 7 -o payload.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var metrics []insight.InsightMetric
			for i := 0; i <= related; i++ {
				name := "metric"
				if i > 0 {
					name = fmt.Sprintf("related_%d", i)
				}
				c := config
				c.Seed = config.Seed + int64(i)
				m, err := testkit.NewSliceGenerator(c).Generate(name)
				if err != nil {
					return err
				}
				metrics = append(metrics, *m)
			}

			if out == "" {
				return payload.Encode(cmd.OutOrStdout(), metrics)
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := payload.Encode(f, metrics); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d metrics (%d slices each) to %s\n",
				len(metrics), metrics[0].DimensionSliceInfo.Len(), out)
			return nil
		},
	}

	cmd.Flags().IntVar(&config.Dimensions, "dimensions", config.Dimensions, "Number of dimensions")
	cmd.Flags().IntVar(&config.ValuesPerDimension, "values", config.ValuesPerDimension, "Values per dimension")
	cmd.Flags().IntVar(&config.MaxDepth, "depth", config.MaxDepth, "Maximum dimensions combined in one slice")
	cmd.Flags().IntVar(&config.BaseCount, "base-count", config.BaseCount, "Records per single-dimension slice")
	cmd.Flags().Float64Var(&config.NestedShare, "nested-share", config.NestedShare, "Probability a nested slice keeps nearly all parent records")
	cmd.Flags().Int64Var(&config.Seed, "seed", config.Seed, "Random seed for deterministic output")
	cmd.Flags().IntVar(&related, "related", 1, "Number of related metrics")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	return cmd
}

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Print a previously exported table",
		Long: `Read a .csv or .xlsx export written by summarize or dimension and print it
as aligned columns.

Example: sliceinsight inspect segments.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := excel.ReadRecords(args[0])
			if err != nil {
				return err
			}
			return printRecords(cmd.OutOrStdout(), records)
		},
	}
	return cmd
}

func writeTable(cmd *cobra.Command, service *app.ComparisonInsightService, view *app.View, dimension, out string) error {
	table, err := service.Table(dimension)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(out)) {
	case ".html", ".md":
		title := "Top segments"
		if dimension != "" {
			title = "Segments by " + dimension
		}
		if view.Overview != nil {
			title = view.Overview.Metric.Name + ": " + title
		}
		doc := report.Report{Title: title, Table: table}
		content := doc.HTML()
		if strings.HasSuffix(strings.ToLower(out), ".md") {
			content = []byte(doc.Markdown())
		}
		if err := os.WriteFile(out, content, 0o644); err != nil {
			return err
		}
	default:
		if err := excel.NewDataWriter(out, cliLogger(cmd.ErrOrStderr())).WriteTable(table); err != nil {
			return err
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s\n", table.Len(), out)
	return nil
}
