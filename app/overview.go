package app

import (
	"math"

	"sliceinsight/domain/insight"

	"github.com/montanaflynn/stats"
)

// MetricSummary compares one metric across the two periods.
type MetricSummary struct {
	Name            string  `json:"name"`
	BaselineValue   float64 `json:"baselineValue"`
	ComparisonValue float64 `json:"comparisonValue"`
	Change          float64 `json:"change"`
	ChangePct       float64 `json:"changePct"`
}

// Overview is the headline block shown above the segment tables.
type Overview struct {
	Metric            MetricSummary   `json:"metric"`
	Dimensions        []string        `json:"dimensions"`
	TotalSegments     int             `json:"totalSegments"`
	BaselineNumRows   int             `json:"baselineNumRows"`
	ComparisonNumRows int             `json:"comparisonNumRows"`
	SupportingMetrics []MetricSummary `json:"supportingMetrics"`

	// Aggregates over the top-level rows currently surfaced
	SurfacedSegments int     `json:"surfacedSegments"`
	SurfacedImpact   float64 `json:"surfacedImpact"`
	MaxAbsImpact     float64 `json:"maxAbsImpact"`
	MedianChangeDev  float64 `json:"medianChangeDev"`
}

func summarizeMetric(m *insight.InsightMetric) MetricSummary {
	s := MetricSummary{
		Name:            m.Name,
		BaselineValue:   m.BaselineValue,
		ComparisonValue: m.ComparisonValue,
		Change:          m.ComparisonValue - m.BaselineValue,
	}
	if m.BaselineValue != 0 {
		s.ChangePct = s.Change / math.Abs(m.BaselineValue) * 100
	}
	return s
}

// BuildOverview summarizes the analyzed metric, its related metrics and the
// surfaced top-level slices.
func BuildOverview(analyzing *insight.InsightMetric, related []*insight.InsightMetric, surfaced []string) Overview {
	o := Overview{
		Metric:            summarizeMetric(analyzing),
		Dimensions:        analyzing.DimensionNames(),
		TotalSegments:     analyzing.TotalSegments,
		BaselineNumRows:   analyzing.BaselineNumRows,
		ComparisonNumRows: analyzing.ComparisonNumRows,
		SupportingMetrics: make([]MetricSummary, 0, len(related)),
		SurfacedSegments:  len(surfaced),
	}
	if o.TotalSegments == 0 {
		o.TotalSegments = analyzing.DimensionSliceInfo.Len()
	}
	for _, m := range related {
		o.SupportingMetrics = append(o.SupportingMetrics, summarizeMetric(m))
	}

	var impacts, absImpacts, changeDevs stats.Float64Data
	for _, key := range surfaced {
		info, ok := analyzing.DimensionSliceInfo.Get(key)
		if !ok {
			continue
		}
		impacts = append(impacts, info.Impact)
		absImpacts = append(absImpacts, math.Abs(info.Impact))
		changeDevs = append(changeDevs, info.ChangeDev)
	}
	if len(impacts) == 0 {
		return o
	}

	o.SurfacedImpact, _ = stats.Sum(impacts)
	o.MaxAbsImpact, _ = stats.Max(absImpacts)
	o.MedianChangeDev, _ = stats.Median(changeDevs)
	return o
}
