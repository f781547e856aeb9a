package postgres

import (
	"database/sql"
	"testing"

	"sliceinsight/domain/core"
	"sliceinsight/domain/insight"
	"sliceinsight/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisassembleThenAssembleKeepsCatalogOrder(t *testing.T) {
	original := testkit.NewMetric("revenue").
		Totals(100, 120).
		Slice("country:US|device:mobile", testkit.WithImpact(12), testkit.WithOutlier(0.3, 0.02)).
		Slice("country:CA", testkit.WithImpact(-4), testkit.WithCounts(7, 9)).
		Top("country:CA").
		MustBuild()
	original.Dimensions = map[string]insight.Dimension{"country": {Name: "country", Values: []string{"US", "CA"}}}
	original.BaselineDateRange = insight.DateRange{From: "2024-01-01", To: "2024-01-31"}

	reportID := core.NewReportID()
	mrow, srows, err := disassembleMetric(reportID, 2, original)
	require.NoError(t, err)
	assert.Equal(t, 2, mrow.Position)
	assert.True(t, mrow.Dimensions.Valid)
	require.Len(t, srows, 2)
	assert.Equal(t, 0, srows[0].Position)
	assert.Equal(t, "country:CA", srows[1].SerializedKey)
	assert.Equal(t, reportID, srows[1].ReportID)
	assert.Equal(t, "revenue", srows[1].MetricName)

	got, err := assembleMetric(mrow, srows)
	require.NoError(t, err)
	assert.Equal(t, original.Name, got.Name)
	assert.Equal(t, original.Dimensions, got.Dimensions)
	assert.Equal(t, original.BaselineDateRange, got.BaselineDateRange)
	assert.Equal(t, []string{"country:CA"}, got.TopDriverSliceKeys)
	assert.Equal(t, original.DimensionSliceInfo.Keys(), got.DimensionSliceInfo.Keys())

	ca, ok := got.DimensionSliceInfo.Get("country:CA")
	require.True(t, ok)
	assert.Equal(t, 16, ca.CombinedCount())
	assert.Equal(t, -4.0, ca.Impact)
}

func TestAssembleMetricNullColumns(t *testing.T) {
	row := metricRow{Name: "orders"}
	slices := []sliceRow{{
		SerializedKey: "year:2024",
		SliceKey:      `[{"dimension":"year","value":2024}]`,
		Confidence:    sql.NullFloat64{},
	}}

	got, err := assembleMetric(row, slices)
	require.NoError(t, err)
	assert.Nil(t, got.Dimensions)
	assert.Equal(t, []string{}, got.TopDriverSliceKeys)

	info, ok := got.DimensionSliceInfo.Get("year:2024")
	require.True(t, ok)
	assert.Zero(t, info.Confidence)
	assert.Equal(t, []string{"2024"}, info.Key.Values())
}

func TestAssembleMetricRejectsInconsistentSlice(t *testing.T) {
	row := metricRow{Name: "orders"}

	_, err := assembleMetric(row, []sliceRow{{
		SerializedKey: "country:US",
		SliceKey:      `[{"dimension":"country","value":"CA"}]`,
	}})
	assert.ErrorIs(t, err, core.ErrInvalidSlice)

	_, err = assembleMetric(row, []sliceRow{{SerializedKey: "country:US", SliceKey: `{`}})
	assert.ErrorContains(t, err, "failed to unmarshal key")
}
