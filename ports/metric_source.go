package ports

import (
	"context"

	"sliceinsight/domain/insight"
)

// MetricSource delivers the precomputed insight payload. The first metric is
// the one being analyzed; the rest are related metrics shown alongside it.
type MetricSource interface {
	LoadMetrics(ctx context.Context) ([]insight.InsightMetric, error)
}
