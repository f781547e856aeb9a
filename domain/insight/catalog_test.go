package insight

import (
	"encoding/json"
	"testing"

	"sliceinsight/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogUnmarshalKeepsOrder(t *testing.T) {
	raw := `{
		"device:mobile": {"key": [{"dimension": "device", "value": "mobile"}], "impact": 1},
		"country:US|device:mobile": {"key": [{"dimension": "country", "value": "US"}, {"dimension": "device", "value": "mobile"}], "impact": 2},
		"country:US": {"key": [{"dimension": "country", "value": "US"}], "impact": 3}
	}`

	var c Catalog
	require.NoError(t, json.Unmarshal([]byte(raw), &c))

	assert.Equal(t, []string{"device:mobile", "country:US|device:mobile", "country:US"}, c.Keys())
	info, err := c.Lookup("country:US|device:mobile")
	require.NoError(t, err)
	assert.Equal(t, "country:US|device:mobile", info.SerializedKey)
	assert.Equal(t, 2.0, info.Impact)
}

func TestCatalogRoundTripPreservesOrder(t *testing.T) {
	c, err := NewCatalog(
		DimensionSliceInfo{Key: SliceKey{{Dimension: "b", Value: "1"}}},
		DimensionSliceInfo{Key: SliceKey{{Dimension: "a", Value: "2"}}},
	)
	require.NoError(t, err)

	data, err := json.Marshal(c)
	require.NoError(t, err)

	var decoded Catalog
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, []string{"b:1", "a:2"}, decoded.Keys())
}

func TestCatalogNumericValuesKeepTheirText(t *testing.T) {
	raw := `{"year:2024": {"key": [{"dimension": "year", "value": 2024}]}}`

	var c Catalog
	require.NoError(t, json.Unmarshal([]byte(raw), &c))
	info, ok := c.Get("year:2024")
	require.True(t, ok)
	assert.Equal(t, []string{"2024"}, info.Key.Values())
}

func TestCatalogRejectsMalformedSlices(t *testing.T) {
	tests := []struct {
		name string
		key  string
		info DimensionSliceInfo
	}{
		{"empty key", "", DimensionSliceInfo{}},
		{"repeated dimension", "a:1|a:2", DimensionSliceInfo{Key: SliceKey{{Dimension: "a", Value: "1"}, {Dimension: "a", Value: "2"}}}},
		{"key mismatch", "a:1", DimensionSliceInfo{Key: SliceKey{{Dimension: "a", Value: "2"}}}},
		{"unparseable key", "nocolon", DimensionSliceInfo{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Catalog
			err := c.Add(tt.key, tt.info)
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrInvalidSlice)
		})
	}
}

func TestCatalogRejectsDuplicateKey(t *testing.T) {
	var c Catalog
	require.NoError(t, c.Add("a:1", DimensionSliceInfo{}))
	assert.ErrorIs(t, c.Add("a:1", DimensionSliceInfo{}), core.ErrInvalidSlice)
}

func TestCatalogLookupMissing(t *testing.T) {
	var c Catalog
	_, err := c.Lookup("nope:1")
	assert.ErrorIs(t, err, core.ErrSliceNotFound)
	assert.True(t, core.IsDataIntegrityError(err))
}

func TestAddDerivesPairsFromKey(t *testing.T) {
	var c Catalog
	require.NoError(t, c.Add("country:US|device:mobile", DimensionSliceInfo{Impact: 4}))

	info, _ := c.Get("country:US|device:mobile")
	assert.Equal(t, []string{"country", "device"}, info.Key.Dimensions())
	assert.Equal(t, []string{"US", "mobile"}, info.Key.Values())
}
