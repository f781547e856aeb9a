package drilldown

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"

	"sliceinsight/domain/insight"
)

// DimensionView is the per-dimension table: one row per single-dimension
// slice, children computed lazily on first expansion.
type DimensionView struct {
	Dimension string  `json:"dimension"`
	RowStatus *Forest `json:"rowStatus"`
	RowCSV    *Table  `json:"rowCSV"`
}

// MarshalJSON renders the table as header-prefixed records, matching the
// top-level export.
func (v *DimensionView) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Dimension string     `json:"dimension"`
		RowStatus *Forest    `json:"rowStatus"`
		RowCSV    [][]string `json:"rowCSV"`
	}{
		Dimension: v.Dimension,
		RowStatus: v.RowStatus,
		RowCSV:    v.RowCSV.Records(),
	})
}

// DimensionViews holds one view per dimension in display order.
type DimensionViews struct {
	views map[string]*DimensionView
	order []string
}

// BuildDimensionViews groups every single-dimension slice by its dimension,
// ordered by descending absolute impact. Ties keep catalog order.
func BuildDimensionViews(catalog *insight.Catalog) *DimensionViews {
	entries := catalog.Entries()
	sort.SliceStable(entries, func(i, j int) bool {
		return math.Abs(entries[i].Impact) > math.Abs(entries[j].Impact)
	})

	result := NewDimensionViews()
	for _, info := range entries {
		if len(info.Key) != 1 {
			continue
		}
		dimension := info.Key[0].Dimension
		view, ok := result.views[dimension]
		if !ok {
			view = &DimensionView{
				Dimension: dimension,
				RowStatus: NewForest(),
				RowCSV:    &Table{},
			}
			result.views[dimension] = view
			result.order = append(result.order, dimension)
		}
		view.RowStatus.add(newRow(nil, info.SerializedKey, info.Key.Components(), false))
		view.RowCSV.Rows = append(view.RowCSV.Rows, NewTableRow(info))
	}
	return result
}

// NewDimensionViews returns an empty set of views.
func NewDimensionViews() *DimensionViews {
	return &DimensionViews{views: make(map[string]*DimensionView)}
}

// Get returns the view for dimension.
func (d *DimensionViews) Get(dimension string) (*DimensionView, bool) {
	if d == nil {
		return nil, false
	}
	view, ok := d.views[dimension]
	return view, ok
}

// Dimensions returns the dimension names in display order.
func (d *DimensionViews) Dimensions() []string {
	if d == nil {
		return nil
	}
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// Views returns the views in display order.
func (d *DimensionViews) Views() []*DimensionView {
	if d == nil {
		return nil
	}
	out := make([]*DimensionView, len(d.order))
	for i, dim := range d.order {
		out[i] = d.views[dim]
	}
	return out
}

// MarshalJSON renders the views as an object keyed by dimension, in display
// order.
func (d *DimensionViews) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, view := range d.Views() {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(view.Dimension)
		if err != nil {
			return nil, err
		}
		body, err := json.Marshal(view)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(body)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
