package testkit

import (
	"sliceinsight/domain/insight"
)

// SliceOption customizes one fixture slice.
type SliceOption func(*insight.DimensionSliceInfo)

// WithImpact sets the slice's impact.
func WithImpact(impact float64) SliceOption {
	return func(info *insight.DimensionSliceInfo) { info.Impact = impact }
}

// WithCounts sets the baseline and comparison record counts.
func WithCounts(baseline, comparison int) SliceOption {
	return func(info *insight.DimensionSliceInfo) {
		info.BaselineValue.SliceCount = baseline
		info.ComparisonValue.SliceCount = comparison
	}
}

// WithOutlier sets changeDev and confidence.
func WithOutlier(changeDev, confidence float64) SliceOption {
	return func(info *insight.DimensionSliceInfo) {
		info.ChangeDev = changeDev
		info.Confidence = confidence
	}
}

// WithSizes sets the baseline and comparison slice sizes.
func WithSizes(baseline, comparison float64) SliceOption {
	return func(info *insight.DimensionSliceInfo) {
		info.BaselineValue.SliceSize = baseline
		info.ComparisonValue.SliceSize = comparison
	}
}

// WithValues sets the baseline and comparison metric values.
func WithValues(baseline, comparison float64) SliceOption {
	return func(info *insight.DimensionSliceInfo) {
		info.BaselineValue.SliceValue = baseline
		info.ComparisonValue.SliceValue = comparison
	}
}

// MetricBuilder assembles InsightMetric fixtures from canonical keys.
type MetricBuilder struct {
	metric insight.InsightMetric
	slices []insight.DimensionSliceInfo
	top    []string
}

// NewMetric starts a fixture metric.
func NewMetric(name string) *MetricBuilder {
	return &MetricBuilder{metric: insight.InsightMetric{Name: name}}
}

// Slice adds a catalog entry for the canonical key. Slices default to a
// significant outlier with 100 records per period so tests only spell out
// what they care about.
func (b *MetricBuilder) Slice(key string, opts ...SliceOption) *MetricBuilder {
	pairs, err := insight.ParseSliceKey(key)
	if err != nil {
		panic(err)
	}
	info := insight.DimensionSliceInfo{
		Key:             pairs,
		SerializedKey:   key,
		BaselineValue:   insight.PeriodValue{SliceCount: 100, SliceSize: 100, SliceValue: 1},
		ComparisonValue: insight.PeriodValue{SliceCount: 100, SliceSize: 100, SliceValue: 1},
		ChangeDev:       1,
		Confidence:      0.01,
	}
	for _, opt := range opts {
		opt(&info)
	}
	b.slices = append(b.slices, info)
	return b
}

// Top sets the ranked top-driver keys.
func (b *MetricBuilder) Top(keys ...string) *MetricBuilder {
	b.top = append(b.top, keys...)
	return b
}

// Totals sets the metric-level baseline and comparison values.
func (b *MetricBuilder) Totals(baseline, comparison float64) *MetricBuilder {
	b.metric.BaselineValue = baseline
	b.metric.ComparisonValue = comparison
	return b
}

// Build returns the metric. Without an explicit Top call, every slice is a
// top driver in insertion order.
func (b *MetricBuilder) Build() (*insight.InsightMetric, error) {
	catalog, err := insight.NewCatalog(b.slices...)
	if err != nil {
		return nil, err
	}
	m := b.metric
	m.DimensionSliceInfo = *catalog
	m.TotalSegments = catalog.Len()
	if b.top != nil {
		m.TopDriverSliceKeys = append([]string(nil), b.top...)
	} else {
		m.TopDriverSliceKeys = catalog.Keys()
	}
	return &m, nil
}

// MustBuild is Build for fixtures known to be valid.
func (b *MetricBuilder) MustBuild() *insight.InsightMetric {
	m, err := b.Build()
	if err != nil {
		panic(err)
	}
	return m
}
