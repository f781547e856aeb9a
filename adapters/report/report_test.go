package report

import (
	"strings"
	"testing"

	"sliceinsight/internal/drilldown"
	"sliceinsight/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdownEscapesKeySeparators(t *testing.T) {
	m := testkit.NewMetric("revenue").
		Slice("country:US|device:mobile", testkit.WithImpact(7), testkit.WithValues(10, 17)).
		MustBuild()
	table, err := drilldown.ExportTable(&m.DimensionSliceInfo, m.TopDriverSliceKeys)
	require.NoError(t, err)

	md := Report{Title: "revenue", Summary: []string{"1 segment surfaced"}, Table: table}.Markdown()

	lines := strings.Split(strings.TrimSpace(md), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "# revenue", lines[0])
	assert.Equal(t, "- 1 segment surfaced", lines[2])
	assert.Equal(t, "| columns | column_values | base_period_size | comparison_period_size | previous_value | comparison_value | impact |", lines[4])
	assert.Equal(t, `| country\|device | US\|mobile | 100 | 100 | 10 | 17 | 7 |`, lines[6])
}

func TestMarkdownWithoutRows(t *testing.T) {
	md := Report{Title: "orders"}.Markdown()

	assert.Contains(t, md, "| columns |")
	assert.Contains(t, md, "_No segments surfaced._")
}

func TestHTMLRendersTable(t *testing.T) {
	m := testkit.NewMetric("revenue").Slice("country:US", testkit.WithImpact(3)).MustBuild()
	table, err := drilldown.ExportTable(&m.DimensionSliceInfo, m.TopDriverSliceKeys)
	require.NoError(t, err)

	page := string(Report{Title: "Top segments", Table: table}.HTML())

	assert.Contains(t, page, "<title>Top segments</title>")
	assert.Contains(t, page, "<table>")
	assert.Contains(t, page, "<th>columns</th>")
	assert.Contains(t, page, "<td>country</td>")
}
