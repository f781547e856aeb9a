package drilldown

import (
	"testing"

	"sliceinsight/domain/core"
	"sliceinsight/domain/insight"
	"sliceinsight/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generatedMetric(t *testing.T, seed int64) *insight.InsightMetric {
	t.Helper()
	config := testkit.DefaultSliceConfig()
	config.Seed = seed
	m, err := testkit.NewSliceGenerator(config).Generate("revenue")
	require.NoError(t, err)
	return m
}

func TestFilterImpactModeIsIdentity(t *testing.T) {
	for _, seed := range []int64{1, 7, 42} {
		m := generatedMetric(t, seed)
		kept, err := FilterSignificant(&m.DimensionSliceInfo, m.TopDriverSliceKeys, insight.ModeImpact, insight.SensitivityHigh)
		require.NoError(t, err)
		assert.Equal(t, m.TopDriverSliceKeys, kept)
	}
}

func TestFilterOutlierModeAppliesBothConditions(t *testing.T) {
	m := testkit.NewMetric("revenue").
		Slice("a:1", testkit.WithOutlier(0.2, 0.01)).
		Slice("a:2", testkit.WithOutlier(0.2, 0.05)).
		Slice("a:3", testkit.WithOutlier(0.15, 0.01)).
		Slice("a:4", testkit.WithOutlier(0.1, 0.2)).
		Slice("a:5", testkit.WithOutlier(0.3, 0.0)).
		MustBuild()

	kept, err := FilterSignificant(&m.DimensionSliceInfo, m.TopDriverSliceKeys, insight.ModeOutlier, insight.SensitivityMedium)
	require.NoError(t, err)
	assert.Equal(t, []string{"a:1", "a:5"}, kept)
}

func TestFilterOutlierModeProperties(t *testing.T) {
	levels := []insight.Sensitivity{insight.SensitivityLow, insight.SensitivityMedium, insight.SensitivityHigh}

	for _, seed := range []int64{3, 11, 99} {
		m := generatedMetric(t, seed)
		previous := len(m.TopDriverSliceKeys) + 1

		for _, level := range levels {
			kept, err := FilterSignificant(&m.DimensionSliceInfo, m.TopDriverSliceKeys, insight.ModeOutlier, level)
			require.NoError(t, err)

			for _, key := range kept {
				info, _ := m.DimensionSliceInfo.Get(key)
				assert.Greater(t, info.ChangeDev, level.Threshold())
				assert.Less(t, info.Confidence, insight.ConfidenceCutoff)
			}
			assert.LessOrEqual(t, len(kept), previous, "sensitivity %s grew the result", level)
			previous = len(kept)
		}
	}
}

func TestFilterReportsMissingSlice(t *testing.T) {
	m := testkit.NewMetric("revenue").Slice("a:1").Top("a:1", "ghost:1").MustBuild()

	for _, mode := range []insight.Mode{insight.ModeImpact, insight.ModeOutlier} {
		_, err := FilterSignificant(&m.DimensionSliceInfo, m.TopDriverSliceKeys, mode, insight.SensitivityLow)
		require.Error(t, err)
		assert.ErrorIs(t, err, core.ErrSliceNotFound)
	}
}

func TestFilterRejectsUnknownMode(t *testing.T) {
	m := testkit.NewMetric("revenue").Slice("a:1").MustBuild()
	_, err := FilterSignificant(&m.DimensionSliceInfo, m.TopDriverSliceKeys, insight.Mode("loudest"), insight.SensitivityLow)
	assert.ErrorIs(t, err, core.ErrInvalidMode)
}

func TestFilterRejectsUnknownSensitivity(t *testing.T) {
	m := testkit.NewMetric("revenue").Slice("a:1").MustBuild()
	for _, mode := range []insight.Mode{insight.ModeImpact, insight.ModeOutlier} {
		_, err := FilterSignificant(&m.DimensionSliceInfo, m.TopDriverSliceKeys, mode, insight.Sensitivity("extreme"))
		assert.ErrorIs(t, err, core.ErrInvalidSensitivity, "mode %s", mode)
	}
}
