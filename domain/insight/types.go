package insight

import "sort"

// PeriodValue aggregates one slice over one comparison period.
type PeriodValue struct {
	SliceCount int     `json:"sliceCount" validate:"gte=0"`
	SliceSize  float64 `json:"sliceSize"`
	SliceValue float64 `json:"sliceValue"`
}

// DimensionSliceInfo holds the precomputed statistics for one slice.
// Values are produced upstream and never mutated here.
type DimensionSliceInfo struct {
	Key             SliceKey    `json:"key" validate:"required,min=1,dive"`
	SerializedKey   string      `json:"serializedKey"`
	BaselineValue   PeriodValue `json:"baselineValue"`
	ComparisonValue PeriodValue `json:"comparisonValue"`
	Impact          float64     `json:"impact"`
	ChangeDev       float64     `json:"changeDev"`
	Confidence      float64     `json:"confidence"`
}

// CombinedCount is the number of records in the slice across both periods.
func (i DimensionSliceInfo) CombinedCount() int {
	return i.BaselineValue.SliceCount + i.ComparisonValue.SliceCount
}

// DateRange bounds one comparison period.
type DateRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Dimension describes one breakdown column of the analyzed table.
type Dimension struct {
	Name   string   `json:"name" validate:"required"`
	Values []string `json:"values,omitempty"`
}

// InsightMetric is the per-metric payload delivered by the statistics backend.
type InsightMetric struct {
	Name                string               `json:"name" validate:"required"`
	Dimensions          map[string]Dimension `json:"dimensions,omitempty"`
	TotalSegments       int                  `json:"totalSegments" validate:"gte=0"`
	BaselineValue       float64              `json:"baselineValue"`
	ComparisonValue     float64              `json:"comparisonValue"`
	BaselineNumRows     int                  `json:"baselineNumRows" validate:"gte=0"`
	ComparisonNumRows   int                  `json:"comparisonNumRows" validate:"gte=0"`
	BaselineDateRange   DateRange            `json:"baselineDateRange"`
	ComparisonDateRange DateRange            `json:"comparisonDateRange"`
	DimensionSliceInfo  Catalog              `json:"dimensionSliceInfo"`
	TopDriverSliceKeys  []string             `json:"topDriverSliceKeys" validate:"dive,required"`
}

// DimensionNames returns the metric's dimension names in catalog order of
// first appearance, followed by declared dimensions never seen in a slice,
// sorted by name.
func (m *InsightMetric) DimensionNames() []string {
	seen := make(map[string]struct{})
	var names []string
	for _, info := range m.DimensionSliceInfo.Entries() {
		for _, dim := range info.Key.Dimensions() {
			if _, ok := seen[dim]; !ok {
				seen[dim] = struct{}{}
				names = append(names, dim)
			}
		}
	}
	var declared []string
	for name := range m.Dimensions {
		if _, ok := seen[name]; !ok {
			declared = append(declared, name)
		}
	}
	sort.Strings(declared)
	return append(names, declared...)
}
