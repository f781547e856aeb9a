package payload

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sliceinsight/domain/insight"
	"sliceinsight/internal"
	"sliceinsight/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePayload = `{
  "revenue": {
    "name": "revenue",
    "baselineValue": 1000,
    "comparisonValue": 1200,
    "baselineNumRows": 40,
    "comparisonNumRows": 44,
    "dimensionSliceInfo": {
      "year:2024|country:US": {
        "key": [{"dimension": "year", "value": 2024}, {"dimension": "country", "value": "US"}],
        "baselineValue": {"sliceCount": 10, "sliceSize": 0.25, "sliceValue": 300},
        "comparisonValue": {"sliceCount": 12, "sliceSize": 0.27, "sliceValue": 420},
        "impact": 120, "changeDev": 0.4, "confidence": 0.01
      },
      "country:CA": {
        "key": [{"dimension": "country", "value": "CA"}],
        "baselineValue": {"sliceCount": 8, "sliceSize": 0.2, "sliceValue": 200},
        "comparisonValue": {"sliceCount": 7, "sliceSize": 0.16, "sliceValue": 180},
        "impact": -20, "changeDev": 0.1, "confidence": null
      }
    },
    "topDriverSliceKeys": ["year:2024|country:US", "country:CA"]
  },
  "orders": {
    "baselineValue": 50,
    "comparisonValue": 55,
    "dimensionSliceInfo": {},
    "topDriverSliceKeys": []
  }
}`

func TestDecodeKeepsDocumentOrder(t *testing.T) {
	metrics, err := Decode(strings.NewReader(samplePayload))
	require.NoError(t, err)
	require.Len(t, metrics, 2)

	revenue := metrics[0]
	assert.Equal(t, "revenue", revenue.Name)
	assert.Equal(t, []string{"year:2024|country:US", "country:CA"}, revenue.DimensionSliceInfo.Keys())
	assert.Equal(t, []string{"year", "country"}, revenue.DimensionNames())

	us, ok := revenue.DimensionSliceInfo.Get("year:2024|country:US")
	require.True(t, ok)
	assert.Equal(t, "2024", us.Key.Values()[0])
	assert.Equal(t, 22, us.CombinedCount())

	ca, _ := revenue.DimensionSliceInfo.Get("country:CA")
	assert.Zero(t, ca.Confidence)

	assert.Equal(t, "orders", metrics[1].Name, "name defaults to the payload key")
	assert.Equal(t, 0, metrics[1].DimensionSliceInfo.Len())
}

func TestDecodeRejectsMalformedPayloads(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr string
	}{
		{"array", `[]`, "JSON object keyed by metric name"},
		{"duplicate metric", `{"a": {"dimensionSliceInfo": {}}, "a": {"dimensionSliceInfo": {}}}`, "appears twice"},
		{"mismatched key", `{"a": {"dimensionSliceInfo": {"country:US": {"key": [{"dimension": "country", "value": "CA"}]}}}}`, "country:US"},
		{"negative count", `{"a": {"dimensionSliceInfo": {"country:US": {"baselineValue": {"sliceCount": -1}}}}}`, "SliceCount"},
		{"empty top key", `{"a": {"topDriverSliceKeys": [""]}}`, "TopDriverSliceKeys"},
		{"truncated", `{"a": {`, "failed to decode metric"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.payload))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEncodeRoundTripsOrder(t *testing.T) {
	revenue := testkit.NewMetric("revenue").
		Slice("country:US", testkit.WithImpact(5)).
		Slice("country:CA|device:mobile", testkit.WithImpact(-3)).
		MustBuild()
	orders := testkit.NewMetric("orders").Totals(1, 2).MustBuild()

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, []insight.InsightMetric{*revenue, *orders}))

	metrics, err := Decode(&buf)
	require.NoError(t, err)
	require.Len(t, metrics, 2)
	assert.Equal(t, []string{"revenue", "orders"}, []string{metrics[0].Name, metrics[1].Name})
	assert.Equal(t, revenue.DimensionSliceInfo.Keys(), metrics[0].DimensionSliceInfo.Keys())
	assert.Equal(t, revenue.TopDriverSliceKeys, metrics[0].TopDriverSliceKeys)
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payload.json")
	require.NoError(t, os.WriteFile(path, []byte(samplePayload), 0o644))

	var logs bytes.Buffer
	src := NewFileSource(path, internal.NewLoggerTo(&logs, internal.LogLevelInfo))

	metrics, err := src.LoadMetrics(context.Background())
	require.NoError(t, err)
	assert.Len(t, metrics, 2)
	assert.Contains(t, logs.String(), "loaded 2 metrics")

	_, err = NewFileSource(filepath.Join(t.TempDir(), "missing.json"), nil).LoadMetrics(context.Background())
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = src.LoadMetrics(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
