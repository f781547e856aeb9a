package drilldown

import (
	"fmt"
	"strconv"
	"strings"

	"sliceinsight/domain/insight"
)

// TableHeader is the fixed first record of every export.
var TableHeader = []string{
	"columns",
	"column_values",
	"base_period_size",
	"comparison_period_size",
	"previous_value",
	"comparison_value",
	"impact",
}

// TableRow is one exported slice.
type TableRow struct {
	Columns              string  `json:"columns"`
	ColumnValues         string  `json:"column_values"`
	BasePeriodSize       float64 `json:"base_period_size"`
	ComparisonPeriodSize float64 `json:"comparison_period_size"`
	PreviousValue        float64 `json:"previous_value"`
	ComparisonValue      float64 `json:"comparison_value"`
	Impact               float64 `json:"impact"`
}

// Values returns the row's cells in header order.
func (r TableRow) Values() []interface{} {
	return []interface{}{
		r.Columns,
		r.ColumnValues,
		r.BasePeriodSize,
		r.ComparisonPeriodSize,
		r.PreviousValue,
		r.ComparisonValue,
		r.Impact,
	}
}

// Table is the flat export of a selected set of slices.
type Table struct {
	Rows []TableRow `json:"rows"`
}

// NewTableRow flattens one slice.
func NewTableRow(info insight.DimensionSliceInfo) TableRow {
	return TableRow{
		Columns:              strings.Join(info.Key.Dimensions(), insight.ComponentSeparator),
		ColumnValues:         strings.Join(info.Key.Values(), insight.ComponentSeparator),
		BasePeriodSize:       info.BaselineValue.SliceSize,
		ComparisonPeriodSize: info.ComparisonValue.SliceSize,
		PreviousValue:        info.BaselineValue.SliceValue,
		ComparisonValue:      info.ComparisonValue.SliceValue,
		Impact:               info.Impact,
	}
}

// ExportTable flattens the slices named by keys, in order.
func ExportTable(catalog *insight.Catalog, keys []string) (*Table, error) {
	table := &Table{Rows: make([]TableRow, 0, len(keys))}
	for _, key := range keys {
		info, err := catalog.Lookup(key)
		if err != nil {
			return nil, fmt.Errorf("exporting rows: %w", err)
		}
		table.Rows = append(table.Rows, NewTableRow(info))
	}
	return table, nil
}

// Len returns the number of data rows, excluding the header.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Records returns the header followed by one string record per row.
func (t *Table) Records() [][]string {
	records := make([][]string, 0, t.Len()+1)
	header := make([]string, len(TableHeader))
	copy(header, TableHeader)
	records = append(records, header)
	if t == nil {
		return records
	}
	for _, row := range t.Rows {
		records = append(records, []string{
			row.Columns,
			row.ColumnValues,
			formatNumber(row.BasePeriodSize),
			formatNumber(row.ComparisonPeriodSize),
			formatNumber(row.PreviousValue),
			formatNumber(row.ComparisonValue),
			formatNumber(row.Impact),
		})
	}
	return records
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
