package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"sliceinsight/app"
	"sliceinsight/internal/drilldown"
)

func printOverview(w io.Writer, o *app.Overview) {
	if o == nil {
		return
	}
	fmt.Fprintf(w, "%s: %g -> %g (%+.1f%%)\n", o.Metric.Name, o.Metric.BaselineValue, o.Metric.ComparisonValue, o.Metric.ChangePct)
	fmt.Fprintf(w, "%d of %d segments surfaced, total impact %g\n\n", o.SurfacedSegments, o.TotalSegments, o.SurfacedImpact)
}

// printForest writes one line per row, children indented under parents.
// Collapsed rows with children are marked "+", expanded ones "-".
func printForest(w io.Writer, forest *drilldown.Forest, service *app.ComparisonInsightService) {
	if forest.Len() == 0 {
		fmt.Fprintln(w, "no segments surfaced")
		return
	}
	forest.Walk(func(row *drilldown.RowStatus, depth int) {
		marker := " "
		switch {
		case row.NumChildren() > 0 && row.IsExpanded:
			marker = "-"
		case row.NumChildren() > 0 || !row.HasCalculatedChildren:
			marker = "+"
		}
		impact := ""
		if info, ok := service.Slice(row.SliceKey()); ok {
			impact = fmt.Sprintf("  impact=%g", info.Impact)
		}
		fmt.Fprintf(w, "%s%s %s%s\n", strings.Repeat("  ", depth), marker, row.SliceKey(), impact)
	})
}

func printClusters(w io.Writer, clusters []app.ClusterGroup) {
	if len(clusters) == 0 {
		return
	}
	fmt.Fprintln(w, "\nmerged overlapping slices:")
	for _, c := range clusters {
		var merged []string
		for _, member := range c.Members {
			if member != c.Representative {
				merged = append(merged, member)
			}
		}
		fmt.Fprintf(w, "  %s <- %s\n", c.Representative, strings.Join(merged, ", "))
	}
}

func printRecords(w io.Writer, records [][]string) error {
	if len(records) <= 1 {
		fmt.Fprintln(w, "no rows")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, record := range records {
		fmt.Fprintln(tw, strings.Join(record, "\t"))
	}
	return tw.Flush()
}
