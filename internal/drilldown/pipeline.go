package drilldown

import (
	"sliceinsight/domain/insight"
)

// Params are the user-controlled inputs of a rebuild.
type Params struct {
	Mode        insight.Mode
	Sensitivity insight.Sensitivity
	GroupRows   bool
	// MaxChildren caps children per row in the top-level pass; zero is
	// unlimited. Overflow keys become top-level rows.
	MaxChildren int
}

// DefaultParams mirrors the dashboard's initial state.
func DefaultParams() Params {
	return Params{
		Mode:        insight.ModeOutlier,
		Sensitivity: insight.SensitivityMedium,
		GroupRows:   true,
	}
}

// Summary is the result of one full rebuild of the top-segment view.
type Summary struct {
	Params   Params
	Filtered []string
	Clusters *Clusters
	Keys     []string
	Forest   *Forest
	Table    *Table
}

// Summarize runs filter, clustering (outlier mode), grouping and export over
// the metric's top drivers. It is a pure function of its inputs.
func Summarize(metric *insight.InsightMetric, params Params) (*Summary, error) {
	catalog := &metric.DimensionSliceInfo

	filtered, err := FilterSignificant(catalog, metric.TopDriverSliceKeys, params.Mode, params.Sensitivity)
	if err != nil {
		return nil, err
	}

	keys := filtered
	var clusters *Clusters
	if params.Mode == insight.ModeOutlier {
		clusters, keys, err = ClusterOverlaps(catalog, filtered)
		if err != nil {
			return nil, err
		}
	}

	var identity *Clusters
	if params.GroupRows {
		identity = clusters
	}
	forest := BuildForest(keys, identity, BuildOptions{
		GroupRows:   params.GroupRows,
		MaxChildren: params.MaxChildren,
	})

	table, err := ExportTable(catalog, forest.Keys())
	if err != nil {
		return nil, err
	}

	return &Summary{
		Params:   params,
		Filtered: filtered,
		Clusters: clusters,
		Keys:     keys,
		Forest:   forest,
		Table:    table,
	}, nil
}
