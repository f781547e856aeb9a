package excel

import (
	"bytes"
	"io"
	"path/filepath"
	"testing"

	"sliceinsight/internal"
	"sliceinsight/internal/drilldown"
	"sliceinsight/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable(t *testing.T) *drilldown.Table {
	t.Helper()
	m := testkit.NewMetric("revenue").
		Slice("country:US", testkit.WithImpact(12.5), testkit.WithSizes(0.5, 0.25), testkit.WithValues(100, 150)).
		Slice("country:US|device:mobile", testkit.WithImpact(-3), testkit.WithValues(40, 20)).
		MustBuild()
	table, err := drilldown.ExportTable(&m.DimensionSliceInfo, m.TopDriverSliceKeys)
	require.NoError(t, err)
	return table
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatCSV, FormatFromPath("out/segments.CSV"))
	assert.Equal(t, FormatXLSX, FormatFromPath("segments.xlsx"))
	assert.Equal(t, FormatXLSX, FormatFromPath("segments"))
	assert.Contains(t, ContentType(FormatCSV), "text/csv")
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, sampleTable(t)))

	want := "columns,column_values,base_period_size,comparison_period_size,previous_value,comparison_value,impact\n" +
		"country,US,0.5,0.25,100,150,12.5\n" +
		"country|device,US|mobile,100,100,40,20,-3\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteXLSXRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatXLSX, sampleTable(t)))

	rows, err := Read(&buf, FormatXLSX)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, drilldown.TableHeader, rows[0])
	assert.Equal(t, []string{"country", "US", "0.5", "0.25", "100", "150", "12.5"}, rows[1])
	assert.Equal(t, "-3", rows[2][6])
}

func TestWriteEmptyTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatXLSX, nil))

	rows, err := Read(&buf, FormatXLSX)
	require.NoError(t, err)
	assert.Equal(t, [][]string{drilldown.TableHeader}, rows)
}

func TestWriteRejectsUnknownFormat(t *testing.T) {
	err := Write(io.Discard, "ods", sampleTable(t))
	assert.ErrorContains(t, err, "unsupported export format")
}

func TestDataWriterPicksFormatFromExtension(t *testing.T) {
	dir := t.TempDir()
	var logs bytes.Buffer
	logger := internal.NewLoggerTo(&logs, internal.LogLevelInfo)

	for _, name := range []string{"segments.csv", "segments.xlsx"} {
		path := filepath.Join(dir, name)
		require.NoError(t, NewDataWriter(path, logger).WriteTable(sampleTable(t)))

		rows, err := ReadRecords(path)
		require.NoError(t, err)
		assert.Len(t, rows, 3, name)
		assert.Equal(t, "country|device", rows[2][0], name)
	}
	assert.Contains(t, logs.String(), "[DataWriter] wrote 2 rows")

	_, err := ReadRecords(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}
