package drilldown

import (
	"bytes"
	"encoding/json"
	"testing"

	"sliceinsight/domain/insight"
	"sliceinsight/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeClusteredExample(t *testing.T) {
	m := testkit.NewMetric("revenue").
		Slice("A:x", testkit.WithImpact(10), testkit.WithCounts(100, 100)).
		Slice("A:x|B:y", testkit.WithImpact(8), testkit.WithCounts(99, 99)).
		Slice("C:z", testkit.WithImpact(5), testkit.WithCounts(40, 60)).
		MustBuild()

	summary, err := Summarize(m, DefaultParams())
	require.NoError(t, err)

	assert.Equal(t, []string{"A:x|B:y", "C:z"}, summary.Forest.Keys())
	assert.Equal(t, 1, summary.Clusters.Len())
	assert.Len(t, summary.Table.Records(), 3)
	assert.Equal(t, "A|B", summary.Table.Rows[0].Columns)
}

func TestSummarizeImpactModeSkipsClustering(t *testing.T) {
	m := testkit.NewMetric("revenue").
		Slice("A:x", testkit.WithCounts(100, 100)).
		Slice("A:x|B:y", testkit.WithCounts(99, 99)).
		MustBuild()

	params := DefaultParams()
	params.Mode = insight.ModeImpact
	summary, err := Summarize(m, params)
	require.NoError(t, err)

	assert.Nil(t, summary.Clusters)
	assert.Equal(t, []string{"A:x"}, summary.Forest.Keys())
	top, _ := summary.Forest.Get("A:x")
	assert.Equal(t, []string{"A:x|B:y"}, childKeys(top))
	assert.Len(t, summary.Table.Records(), 2)
}

func TestSummarizeUngroupedYieldsFlatRows(t *testing.T) {
	m := generatedMetric(t, 77)
	params := Params{Mode: insight.ModeImpact, Sensitivity: insight.SensitivityLow, GroupRows: false}

	summary, err := Summarize(m, params)
	require.NoError(t, err)

	assert.Equal(t, len(m.TopDriverSliceKeys), summary.Forest.Len())
	for _, row := range summary.Forest.Rows() {
		assert.Zero(t, row.NumChildren())
	}
	assert.Equal(t, summary.Forest.Len()+1, len(summary.Table.Records()))
}

func TestSummarizeIsRepeatable(t *testing.T) {
	m := generatedMetric(t, 12)

	first, err := Summarize(m, DefaultParams())
	require.NoError(t, err)
	second, err := Summarize(m, DefaultParams())
	require.NoError(t, err)

	a, err := json.Marshal(first.Forest)
	require.NoError(t, err)
	b, err := json.Marshal(second.Forest)
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
}

func TestForestJSONShape(t *testing.T) {
	forest := BuildForest([]string{"a:1", "a:1|b:1"}, nil, BuildOptions{GroupRows: true})

	data, err := json.Marshal(forest)
	require.NoError(t, err)
	assert.JSONEq(t, `[{
		"key": ["a:1"], "keyComponents": ["a:1"], "isExpanded": false, "hasCalculatedChildren": true,
		"children": [{
			"key": ["a:1", "a:1|b:1"], "keyComponents": ["a:1", "b:1"], "isExpanded": false,
			"hasCalculatedChildren": true, "children": []
		}]
	}]`, string(data))
}

func TestDimensionViewsJSONShape(t *testing.T) {
	m := testkit.NewMetric("revenue").
		Slice("A:x", testkit.WithImpact(-3)).
		Slice("A:y", testkit.WithImpact(1)).
		Slice("B:z", testkit.WithImpact(2)).
		MustBuild()

	data, err := json.Marshal(BuildDimensionViews(&m.DimensionSliceInfo))
	require.NoError(t, err)

	var decoded map[string]struct {
		Dimension string            `json:"dimension"`
		RowStatus []json.RawMessage `json:"rowStatus"`
		RowCSV    [][]string        `json:"rowCSV"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 2)

	a := decoded["A"]
	assert.Equal(t, "A", a.Dimension)
	assert.Len(t, a.RowStatus, 2)
	require.Len(t, a.RowCSV, 3)
	assert.Equal(t, TableHeader, a.RowCSV[0])
	assert.Equal(t, []string{"A", "x", "100", "100", "1", "1", "-3"}, a.RowCSV[1])
	assert.Equal(t, []string{"A", "y", "100", "100", "1", "1", "1"}, a.RowCSV[2])

	b := decoded["B"]
	require.Len(t, b.RowCSV, 2)
	assert.Equal(t, TableHeader, b.RowCSV[0])

	assert.Less(t, bytes.Index(data, []byte(`"A":`)), bytes.Index(data, []byte(`"B":`)), "dimensions keep display order")
}

func TestEmptyDimensionViewsJSON(t *testing.T) {
	data, err := json.Marshal(NewDimensionViews())
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}
